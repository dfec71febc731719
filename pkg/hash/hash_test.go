package hash

import (
	"testing"
)

func TestSHA256Hex(t *testing.T) {
	// Known SHA256 of "hello"
	want := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	got := SHA256Hex("hello")
	if got != want {
		t.Errorf("SHA256Hex(\"hello\") = %s, want %s", got, want)
	}
}

func TestSHA256Hex_Empty(t *testing.T) {
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	got := SHA256Hex("")
	if got != want {
		t.Errorf("SHA256Hex(\"\") = %s, want %s", got, want)
	}
}

func TestPrefix(t *testing.T) {
	fullHash := SHA256Hex("admin@example.com")

	tests := []struct {
		name      string
		prefixLen int
		want      string
	}{
		{"4 char prefix", 4, fullHash[:4]},
		{"12 char prefix", 12, fullHash[:12]},
		{"full hash if prefix too long", 100, fullHash},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Prefix("admin@example.com", tt.prefixLen)
			if got != tt.want {
				t.Errorf("Prefix(%d) = %s, want %s", tt.prefixLen, got, tt.want)
			}
		})
	}
}

func TestForLog(t *testing.T) {
	got := ForLog("hello")
	if got != "2cf24dba5fb0" {
		t.Errorf("ForLog(\"hello\") = %s", got)
	}
}

func TestDigest_Deterministic(t *testing.T) {
	type doc struct {
		A int      `json:"a"`
		B []string `json:"b"`
	}
	d1, err := Digest(doc{A: 1, B: []string{"x", "y"}})
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	d2, _ := Digest(doc{A: 1, B: []string{"x", "y"}})
	d3, _ := Digest(doc{A: 2, B: []string{"x", "y"}})

	if d1 != d2 {
		t.Error("equal documents should have equal digests")
	}
	if d1 == d3 {
		t.Error("different documents should have different digests")
	}
	if len(d1) != 64 {
		t.Errorf("digest length = %d, want 64", len(d1))
	}
}

func TestDigest_Unencodable(t *testing.T) {
	if _, err := Digest(make(chan int)); err == nil {
		t.Fatal("expected error for a channel value")
	}
}
