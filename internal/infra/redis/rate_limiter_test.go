//go:build !integration

package redis

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

// fakeClient is an in-memory Client for limiter and cache tests.
type fakeClient struct {
	counters map[string]int64
	values   map[string]string
	expires  map[string]time.Duration
	incrErr  error
	getErr   error
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		counters: make(map[string]int64),
		values:   make(map[string]string),
		expires:  make(map[string]time.Duration),
	}
}

func (f *fakeClient) Ping(ctx context.Context) error { return nil }

func (f *fakeClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	f.values[key] = fmt.Sprint(value)
	f.expires[key] = expiration
	return nil
}

func (f *fakeClient) Get(ctx context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	v, ok := f.values[key]
	if !ok {
		return "", errors.New("redis: nil")
	}
	return v, nil
}

func (f *fakeClient) Incr(ctx context.Context, key string) (int64, error) {
	if f.incrErr != nil {
		return 0, f.incrErr
	}
	f.counters[key]++
	return f.counters[key], nil
}

func (f *fakeClient) Expire(ctx context.Context, key string, expiration time.Duration) error {
	f.expires[key] = expiration
	return nil
}

func (f *fakeClient) Del(ctx context.Context, keys ...string) error { return nil }
func (f *fakeClient) Close() error                                  { return nil }

func TestRateLimiterAllowWithinLimit(t *testing.T) {
	fc := newFakeClient()
	rl := NewRateLimiter(fc)
	key := UserCommandKey(7, "/ask")

	for i := 0; i < 3; i++ {
		ok, err := rl.Allow(context.Background(), key, 3, time.Minute)
		if err != nil {
			t.Fatalf("unexpected error on hit %d: %v", i+1, err)
		}
		if !ok {
			t.Fatalf("hit %d should be allowed", i+1)
		}
	}

	ok, err := rl.Allow(context.Background(), key, 3, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("fourth hit must be rejected")
	}
	if fc.expires[key] != time.Minute {
		t.Errorf("first hit should arm the window TTL, got %v", fc.expires[key])
	}
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	fc := newFakeClient()
	rl := NewRateLimiter(fc)

	if ok, _ := rl.Allow(context.Background(), UserCommandKey(7, "/img"), 1, time.Minute); !ok {
		t.Fatal("first /img hit should be allowed")
	}
	if ok, _ := rl.Allow(context.Background(), UserCommandKey(7, "/img"), 1, time.Minute); ok {
		t.Error("second /img hit must be rejected")
	}
	if ok, _ := rl.Allow(context.Background(), UserCommandKey(7, "/ask"), 1, time.Minute); !ok {
		t.Error("/ask for the same user must not share the /img window")
	}
	if ok, _ := rl.Allow(context.Background(), UserCommandKey(8, "/img"), 1, time.Minute); !ok {
		t.Error("another user's /img must not share the window")
	}
}

func TestRateLimiterPropagatesRedisErrors(t *testing.T) {
	fc := newFakeClient()
	fc.incrErr = errors.New("connection refused")
	rl := NewRateLimiter(fc)

	ok, err := rl.Allow(context.Background(), UserCommandKey(7, "/ask"), 3, time.Minute)
	if err == nil {
		t.Fatal("expected the redis error to surface")
	}
	if ok {
		t.Error("a failed check must not report allowed")
	}
}

func TestMembershipCacheRoundTrip(t *testing.T) {
	fc := newFakeClient()
	mc := NewMembershipCache(fc, time.Minute)
	ctx := context.Background()

	if _, found := mc.Get(ctx, "@channel", 7); found {
		t.Error("empty cache must report not found")
	}

	if err := mc.Set(ctx, "@channel", 7, true); err != nil {
		t.Fatalf("set: %v", err)
	}
	isMember, found := mc.Get(ctx, "@channel", 7)
	if !found || !isMember {
		t.Errorf("expected cached member, got isMember=%v found=%v", isMember, found)
	}

	if err := mc.Set(ctx, "@channel", 8, false); err != nil {
		t.Fatalf("set: %v", err)
	}
	isMember, found = mc.Get(ctx, "@channel", 8)
	if !found || isMember {
		t.Errorf("expected cached non-member, got isMember=%v found=%v", isMember, found)
	}
}
