package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
)

func TestRateLimiter_AllowsUpToMax(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{Max: 5, Window: time.Minute, KeyFn: KeyByIP})
	defer rl.Close()

	for i := 0; i < 5; i++ {
		if !rl.Allow("test-ip") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("test-ip") {
		t.Fatal("6th request should be blocked")
	}
}

func TestRateLimiter_DifferentKeysIndependent(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{Max: 1, Window: time.Minute, KeyFn: KeyByIP})
	defer rl.Close()

	rl.Allow("ip-a")
	if rl.Allow("ip-a") {
		t.Fatal("ip-a should be blocked")
	}
	if !rl.Allow("ip-b") {
		t.Fatal("ip-b should be allowed (independent key)")
	}
}

func TestRateLimiter_WindowResets(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{Max: 1, Window: 50 * time.Millisecond, KeyFn: KeyByIP})
	defer rl.Close()

	rl.Allow("test")
	if rl.Allow("test") {
		t.Fatal("should be blocked within window")
	}

	time.Sleep(60 * time.Millisecond)

	if !rl.Allow("test") {
		t.Fatal("should be allowed after window reset")
	}
}

func TestRateLimiter_EvictExpired(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{Max: 1, Window: time.Minute, KeyFn: KeyByIP})
	defer rl.Close()

	rl.Allow("a")
	rl.evictExpired(time.Now().Add(2 * time.Minute))

	if len(rl.entries) != 0 {
		t.Fatalf("entries = %d, want 0 after eviction", len(rl.entries))
	}
}

func TestRateLimiter_PresetLimits(t *testing.T) {
	tests := []struct {
		name string
		rl   *RateLimiter
		max  int
	}{
		{"evaluate", NewEvaluateRateLimiter(), 60},
		{"search", NewSearchRateLimiter(), 10},
		{"admin write", NewAdminWriteRateLimiter(), 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer tt.rl.Close()
			for i := 0; i < tt.max; i++ {
				if !tt.rl.Allow("k") {
					t.Fatalf("request %d should be allowed (max %d)", i+1, tt.max)
				}
			}
			if tt.rl.Allow("k") {
				t.Fatalf("request %d should be blocked", tt.max+1)
			}
		})
	}
}

func TestRateLimiter_Handler(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{Max: 1, Window: time.Minute, KeyFn: KeyByActor})
	defer rl.Close()

	app := fiber.New()
	app.Get("/", rl.Handler(), func(c fiber.Ctx) error { return c.SendString("ok") })

	send := func(actor string) int {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(ActorHeader, actor)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		return resp.StatusCode
	}

	if got := send("alice"); got != fiber.StatusOK {
		t.Fatalf("first request status = %d", got)
	}
	if got := send("alice"); got != fiber.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", got)
	}
	if got := send("bob"); got != fiber.StatusOK {
		t.Fatalf("other actor status = %d, want 200", got)
	}
}
