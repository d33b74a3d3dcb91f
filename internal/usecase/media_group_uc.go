package usecase

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"telegram-polyai-bot/internal/domain/model"
	"telegram-polyai-bot/internal/infra/logging"
	"telegram-polyai-bot/internal/infra/metrics"
)

// MediaGroupHandler receives the aggregated request exactly once per group.
// Reporting the outcome of downstream processing to the user is the
// handler's responsibility; the aggregator never retries.
type MediaGroupHandler func(ctx context.Context, req *model.MediaGroupRequest)

// UsageErrorFunc reports a malformed group (no caption) back to the user,
// addressed at the group's first message.
type UsageErrorFunc func(ctx context.Context, first model.PhotoMessage)

// MediaGroupAggregator coalesces the photo messages of one Telegram media
// group into a single request. The first message of a group creates the
// buffer and schedules exactly one deferred flush; every buffer is flushed
// and discarded after the debounce window, captioned or not.
type MediaGroupAggregator struct {
	mu     sync.Mutex
	groups map[string]*mediaGroup

	window  time.Duration
	command string // caption trigger prefix, e.g. "/ask"
	emit    MediaGroupHandler
	usage   UsageErrorFunc
	log     *zerolog.Logger

	entropyMu sync.Mutex
	entropy   *ulid.MonotonicEntropy
}

type mediaGroup struct {
	mu        sync.Mutex
	messages  []model.PhotoMessage
	processed bool
}

func NewMediaGroupAggregator(window time.Duration, command string, emit MediaGroupHandler, usage UsageErrorFunc, logger *zerolog.Logger) *MediaGroupAggregator {
	if window <= 0 {
		window = 2 * time.Second
	}
	return &MediaGroupAggregator{
		groups:  make(map[string]*mediaGroup),
		window:  window,
		command: command,
		emit:    emit,
		usage:   usage,
		log:     logger,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
}

// OnPhoto buffers one photo of a media group. Safe under concurrent
// invocation for the same group id: the buffer is created, and its flush
// scheduled, exactly once.
func (a *MediaGroupAggregator) OnPhoto(ctx context.Context, groupID string, msg model.PhotoMessage) {
	a.mu.Lock()
	g, ok := a.groups[groupID]
	if !ok {
		g = &mediaGroup{messages: []model.PhotoMessage{msg}}
		a.groups[groupID] = g
		flushCtx := logging.WithMediaGroupID(context.WithoutCancel(ctx), groupID)
		time.AfterFunc(a.window, func() { a.flush(flushCtx, groupID) })
		a.mu.Unlock()
		a.log.Debug().Str("media_group_id", groupID).Msg("media group buffer created")
		return
	}
	a.mu.Unlock()

	g.mu.Lock()
	if !g.processed {
		g.messages = append(g.messages, msg)
	}
	g.mu.Unlock()
}

// flush runs once per buffer after the debounce window. The buffer is
// removed from the map in every outcome, so captionless groups cannot leak.
func (a *MediaGroupAggregator) flush(ctx context.Context, groupID string) {
	a.mu.Lock()
	g, ok := a.groups[groupID]
	if ok {
		delete(a.groups, groupID)
	}
	a.mu.Unlock()
	if !ok {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.processed {
		return
	}
	// Processed is set before any downstream call: a failing handler must
	// not cause re-delivery.
	g.processed = true

	caption := a.resolveCaption(g.messages)
	first := g.messages[0]
	if caption == "" {
		a.log.Info().Str("media_group_id", groupID).Int("messages", len(g.messages)).Msg("media group without caption")
		metrics.IncMediaUsageError()
		if a.usage != nil {
			a.usage(ctx, first)
		}
		return
	}

	fileIDs := make([]string, 0, len(g.messages))
	for _, m := range g.messages {
		fileIDs = append(fileIDs, m.FileID)
	}

	req := &model.MediaGroupRequest{
		ID:      a.newULID(),
		GroupID: groupID,
		ChatID:  first.ChatID,
		UserID:  first.UserID,
		ReplyTo: first.MessageID,
		Caption: caption,
		FileIDs: fileIDs,
	}
	metrics.ObserveMediaGroup(len(fileIDs))
	a.log.Debug().Str("media_group_id", groupID).Str("request_id", req.ID).Int("photos", len(fileIDs)).Msg("media group aggregated")
	if a.emit != nil {
		a.emit(ctx, req)
	}
}

// resolveCaption picks the first non-empty caption in arrival order and
// strips the trigger command prefix.
func (a *MediaGroupAggregator) resolveCaption(msgs []model.PhotoMessage) string {
	for _, m := range msgs {
		if m.Caption == "" {
			continue
		}
		c := m.Caption
		if a.command != "" && strings.HasPrefix(c, a.command) {
			c = strings.TrimSpace(strings.TrimPrefix(c, a.command))
		}
		if c != "" {
			return c
		}
	}
	return ""
}

func (a *MediaGroupAggregator) newULID() string {
	a.entropyMu.Lock()
	defer a.entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), a.entropy).String()
}

// pending reports the number of buffered groups (used by tests and stats).
func (a *MediaGroupAggregator) pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.groups)
}
