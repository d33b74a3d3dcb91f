package redis

import (
	"context"
	"fmt"
	"time"
)

// MembershipCache remembers channel membership checks so the gate does not
// hit the Telegram API on every message.
type MembershipCache struct {
	client Client
	ttl    time.Duration
}

func NewMembershipCache(client Client, ttl time.Duration) *MembershipCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &MembershipCache{client: client, ttl: ttl}
}

func (m *MembershipCache) key(channel string, userID int64) string {
	return fmt.Sprintf("member:%s:%d", channel, userID)
}

// Get returns (isMember, found).
func (m *MembershipCache) Get(ctx context.Context, channel string, userID int64) (bool, bool) {
	v, err := m.client.Get(ctx, m.key(channel, userID))
	if err != nil {
		return false, false
	}
	return v == "1", true
}

func (m *MembershipCache) Set(ctx context.Context, channel string, userID int64, isMember bool) error {
	v := "0"
	if isMember {
		v = "1"
	}
	return m.client.Set(ctx, m.key(channel, userID), v, m.ttl)
}
