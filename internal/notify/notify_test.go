package notify

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"lifeflow/internal/repository"
	"lifeflow/internal/service"
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (s *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if s.err != nil {
		return tgbotapi.Message{}, s.err
	}
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		s.sent = append(s.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.now
}

func newTelegram(t *testing.T, fallback int64) (*Telegram, *fakeSender, *repository.MemoryRepository, *fixedClock) {
	t.Helper()
	sender := &fakeSender{}
	repo := repository.NewMemoryRepository()
	clock := &fixedClock{now: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)}
	return NewTelegram(context.Background(), sender, repo, clock, fallback, zap.NewNop()), sender, repo, clock
}

func TestTelegram_PermissionStates(t *testing.T) {
	ctx := context.Background()
	tg, _, repo, clock := newTelegram(t, 0)

	assert.Equal(t, service.PermissionDefault, tg.Permission())
	assert.Equal(t, service.PermissionDefault, tg.RequestPermission(ctx))
	assert.False(t, tg.Notify(ctx, service.Notification{Title: "x"}))

	tg.Register(ctx, 42)
	assert.Equal(t, service.PermissionGranted, tg.Permission())
	assert.Equal(t, int64(42), tg.ChatID())

	tg.SetMuted(ctx, true)
	assert.Equal(t, service.PermissionDenied, tg.Permission())

	// The subscription survives a restart.
	restored := NewTelegram(ctx, &fakeSender{}, repo, clock, 0, zap.NewNop())
	assert.Equal(t, service.PermissionDenied, restored.Permission())
	assert.Equal(t, int64(42), restored.ChatID())

	restored.SetMuted(ctx, false)
	assert.Equal(t, service.PermissionGranted, restored.Permission())
}

func TestTelegram_FallbackChat(t *testing.T) {
	tg, _, _, _ := newTelegram(t, 7)
	assert.Equal(t, service.PermissionGranted, tg.Permission())
	assert.Equal(t, int64(7), tg.ChatID())
}

func TestTelegram_Notify(t *testing.T) {
	ctx := context.Background()
	tg, sender, _, _ := newTelegram(t, 0)
	tg.Register(ctx, 42)

	ok := tg.Notify(ctx, service.Notification{Title: "⏰ Gym <3", Body: "En 15 min (14:00)", Icon: "🏋️"})
	require.True(t, ok)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, int64(42), sender.sent[0].ChatID)
	assert.Equal(t, tgbotapi.ModeHTML, sender.sent[0].ParseMode)
	assert.Equal(t, "<b>⏰ Gym &lt;3</b>\n🏋️ En 15 min (14:00)", sender.sent[0].Text)
}

func TestTelegram_NotifySendFailure(t *testing.T) {
	ctx := context.Background()
	tg, sender, _, _ := newTelegram(t, 42)
	sender.err = errors.New("network down")

	assert.False(t, tg.Notify(ctx, service.Notification{Title: "x", Tag: "p1"}))

	// A failed send does not mark the tag, so the retry goes out.
	sender.err = nil
	assert.True(t, tg.Notify(ctx, service.Notification{Title: "x", Tag: "p1"}))
	assert.Len(t, sender.sent, 1)
}

func TestTelegram_TagCollapsesWithinDay(t *testing.T) {
	ctx := context.Background()
	tg, sender, _, clock := newTelegram(t, 42)

	note := service.Notification{Title: "💸 Pago vence hoy", Body: "Luz", Tag: "p1"}
	assert.True(t, tg.Notify(ctx, note))
	assert.True(t, tg.Notify(ctx, note))
	assert.Len(t, sender.sent, 1)

	clock.now = clock.now.AddDate(0, 0, 1)
	assert.True(t, tg.Notify(ctx, note))
	assert.Len(t, sender.sent, 2)
}

func TestConsole_Notify(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	assert.Equal(t, service.PermissionGranted, c.Permission())
	assert.True(t, c.Notify(context.Background(), service.Notification{Title: "Hola", Body: "mundo", Icon: "☕"}))
	assert.Equal(t, "☕ Hola | mundo\n", buf.String())
}

func TestWithCue(t *testing.T) {
	ctx := context.Background()
	var bell bytes.Buffer

	tg, _, _, _ := newTelegram(t, 0)
	n := WithCue(tg, Bell{Out: &bell})

	assert.False(t, n.Notify(ctx, service.Notification{Title: "x"}))
	assert.Zero(t, bell.Len(), "no cue without delivery")

	tg.Register(ctx, 1)
	assert.True(t, n.Notify(ctx, service.Notification{Title: "x"}))
	assert.Equal(t, "\a", bell.String())
	assert.Equal(t, service.PermissionGranted, n.Permission())
}

func TestWithCue_NilCue(t *testing.T) {
	c := NewConsole(&bytes.Buffer{})
	assert.Same(t, c, WithCue(c, nil))
}
