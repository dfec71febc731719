package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestIs_MatchesByKind(t *testing.T) {
	err := fmt.Errorf("decide: %w", NotFound("change %s", "abc"))

	if !errors.Is(err, ErrNotFound) {
		t.Fatal("wrapped NotFound should match ErrNotFound")
	}
	if errors.Is(err, ErrValidation) {
		t.Fatal("NotFound must not match ErrValidation")
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"validation", Validation("bad"), KindValidation},
		{"invalid input", InvalidInput("views", "missing"), KindInvalidInput},
		{"wrapped store", fmt.Errorf("get: %w", StoreUnavailable(errors.New("timeout"), "redis")), KindStoreUnavailable},
		{"foreign", errors.New("boom"), ""},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestError_UnwrapsCause(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := StoreUnavailable(cause, "redis get")

	if !errors.Is(err, cause) {
		t.Fatal("StoreUnavailable should unwrap to its cause")
	}
	if got := err.Error(); got != "STORE_UNAVAILABLE: redis get: dial tcp: refused" {
		t.Errorf("Error() = %q", got)
	}
}

func TestInvalidInput_CarriesField(t *testing.T) {
	err := InvalidInput("subscriberCount", "subscriberCount is required")
	if err.Field != "subscriberCount" {
		t.Errorf("Field = %q", err.Field)
	}
}
