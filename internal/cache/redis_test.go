package cache

import (
	"context"
	"testing"
	"time"

	"github.com/aurelia-jewelry/internal/config"
)

func TestNilStoreIsNoop(t *testing.T) {
	var s *Store
	ctx := context.Background()

	if s.Enabled() {
		t.Fatalf("nil store should be disabled")
	}
	var dest map[string]string
	hit, err := s.GetJSON(ctx, "k", &dest)
	if err != nil || hit {
		t.Fatalf("expected miss without error, hit=%v err=%v", hit, err)
	}
	if err := s.SetJSON(ctx, "k", map[string]string{"a": "b"}, time.Minute); err != nil {
		t.Fatalf("set should be noop: %v", err)
	}
	if err := s.Del(ctx, "k"); err != nil {
		t.Fatalf("del should be noop: %v", err)
	}
}

func TestNewDisabledReturnsNil(t *testing.T) {
	if s := New(config.RedisConfig{Enabled: false}); s != nil {
		t.Fatalf("expected nil store when disabled")
	}
}

func TestKeyPrefix(t *testing.T) {
	s := NewWithClient(nil, " shop ")
	if got := s.Key("store:settings"); got != "shop:store:settings" {
		t.Fatalf("unexpected key: %s", got)
	}
	if got := s.Key(""); got != "shop" {
		t.Fatalf("unexpected empty key: %s", got)
	}
}
