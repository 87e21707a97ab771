package chat

import (
	"testing"
	"time"

	"github.com/dkeye/Banter/internal/core"
)

func TestRateLimiterCapsWindow(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	id := core.ConnID("c1")

	for i := 0; i < 3; i++ {
		if !rl.Allow(id) {
			t.Fatalf("attempt %d denied, want allowed", i+1)
		}
	}
	if rl.Allow(id) {
		t.Error("attempt over the limit allowed")
	}
	if !rl.Allow(core.ConnID("c2")) {
		t.Error("unrelated connection throttled")
	}
}

func TestRateLimiterForget(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	id := core.ConnID("c1")

	rl.Allow(id)
	if rl.Allow(id) {
		t.Fatal("second attempt allowed before Forget")
	}
	rl.Forget(id)
	if !rl.Allow(id) {
		t.Error("attempt denied after Forget")
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := NewRateLimiter(0, time.Minute)
	for i := 0; i < 100; i++ {
		if !rl.Allow(core.ConnID("c1")) {
			t.Fatal("zero limit must disable throttling")
		}
	}
}
