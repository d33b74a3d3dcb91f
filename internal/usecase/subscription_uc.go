package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"telegram-polyai-bot/internal/domain/ports/adapter"
	red "telegram-polyai-bot/internal/infra/redis"
)

// Compile-time check
var _ SubscriptionUseCase = (*subscriptionUC)(nil)

// SubscriptionUseCase gates bot usage on membership of the configured
// Telegram channel. Checks are cached in redis for a short TTL.
type SubscriptionUseCase interface {
	IsSubscriber(ctx context.Context, userID int64) (bool, error)
	Channel() string
}

type subscriptionUC struct {
	channel string
	enabled bool
	checker adapter.MembershipChecker
	cache   *red.MembershipCache
	log     *zerolog.Logger
}

func NewSubscriptionUseCase(channel string, enabled bool, checker adapter.MembershipChecker, cache *red.MembershipCache, logger *zerolog.Logger) *subscriptionUC {
	return &subscriptionUC{channel: channel, enabled: enabled, checker: checker, cache: cache, log: logger}
}

func (u *subscriptionUC) Channel() string { return u.channel }

func (u *subscriptionUC) IsSubscriber(ctx context.Context, userID int64) (bool, error) {
	if !u.enabled || u.channel == "" {
		return true, nil
	}
	if u.cache != nil {
		if ok, found := u.cache.Get(ctx, u.channel, userID); found {
			return ok, nil
		}
	}
	ok, err := u.checker.IsChannelMember(ctx, u.channel, userID)
	if err != nil {
		// Fail open: an API hiccup must not lock subscribers out.
		u.log.Warn().Err(err).Int64("tg_id", userID).Msg("membership check failed")
		return true, nil
	}
	if u.cache != nil {
		if cerr := u.cache.Set(ctx, u.channel, userID, ok); cerr != nil {
			u.log.Warn().Err(cerr).Msg("membership cache write failed")
		}
	}
	return ok, nil
}
