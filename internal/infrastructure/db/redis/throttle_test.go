package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		server.Close()
	})
	return server, client
}

func TestThrottleAllowsWithinBudget(t *testing.T) {
	_, client := newTestClient(t)
	throttle := NewThrottle(client, time.Minute, 3)

	for i := 0; i < 3; i++ {
		ok, err := throttle.Allow(context.Background(), "pwreset:a@example.com")
		if err != nil {
			t.Fatalf("attempt %d: unexpected error: %v", i+1, err)
		}
		if !ok {
			t.Fatalf("attempt %d: expected allowed", i+1)
		}
	}

	ok, err := throttle.Allow(context.Background(), "pwreset:a@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected fourth attempt to be denied")
	}
}

func TestThrottleKeysAreIndependent(t *testing.T) {
	_, client := newTestClient(t)
	throttle := NewThrottle(client, time.Minute, 1)

	if ok, _ := throttle.Allow(context.Background(), "pwreset:a@example.com"); !ok {
		t.Fatal("expected first key to be allowed")
	}
	if ok, _ := throttle.Allow(context.Background(), "pwreset:b@example.com"); !ok {
		t.Fatal("expected second key to be allowed")
	}
	if ok, _ := throttle.Allow(context.Background(), "pwreset:a@example.com"); ok {
		t.Fatal("expected repeat on first key to be denied")
	}
}

func TestThrottleResetsAfterWindow(t *testing.T) {
	server, client := newTestClient(t)
	throttle := NewThrottle(client, time.Minute, 1)

	if ok, _ := throttle.Allow(context.Background(), "pwreset:a@example.com"); !ok {
		t.Fatal("expected first attempt to be allowed")
	}
	if ok, _ := throttle.Allow(context.Background(), "pwreset:a@example.com"); ok {
		t.Fatal("expected second attempt to be denied")
	}

	server.FastForward(time.Minute + time.Second)

	if ok, _ := throttle.Allow(context.Background(), "pwreset:a@example.com"); !ok {
		t.Fatal("expected attempt after window to be allowed")
	}
}
