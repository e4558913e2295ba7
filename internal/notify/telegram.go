package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"lifeflow/internal/model"
	"lifeflow/internal/repository"
	"lifeflow/internal/service"
)

// DocSubscription holds the registered chat and its mute flag.
const DocSubscription = "notification_chat"

// Sender is the part of the Telegram API the notifier needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type subscription struct {
	ChatID int64 `json:"chatId"`
	Muted  bool  `json:"muted"`
}

// Telegram delivers alerts as messages to one registered chat. A chat that
// never sent /start means permission was not asked yet; /stop denies it.
type Telegram struct {
	sender Sender
	repo   service.DocumentRepository
	clock  service.Clock
	log    *zap.Logger

	mu   sync.Mutex
	sub  subscription
	tags map[string]model.Date
}

// NewTelegram restores the persisted subscription. fallbackChatID, when
// non-zero, registers that chat if none was persisted yet.
func NewTelegram(ctx context.Context, sender Sender, repo service.DocumentRepository, clock service.Clock, fallbackChatID int64, log *zap.Logger) *Telegram {
	t := &Telegram{
		sender: sender,
		repo:   repo,
		clock:  clock,
		log:    log.Named("telegram"),
		tags:   make(map[string]model.Date),
	}

	data, err := repo.Load(ctx, DocSubscription)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &t.sub); err != nil {
			t.log.Warn("subscription malformed, ignoring", zap.Error(err))
			t.sub = subscription{}
		}
	case !errors.Is(err, repository.ErrNotFound):
		t.log.Warn("subscription unavailable", zap.Error(err))
	}

	if t.sub.ChatID == 0 && fallbackChatID != 0 {
		t.sub = subscription{ChatID: fallbackChatID}
	}
	return t
}

func (t *Telegram) Permission() service.Permission {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.permissionLocked()
}

func (t *Telegram) permissionLocked() service.Permission {
	switch {
	case t.sub.ChatID == 0:
		return service.PermissionDefault
	case t.sub.Muted:
		return service.PermissionDenied
	default:
		return service.PermissionGranted
	}
}

// RequestPermission cannot prompt a chat that never talked to the bot, so it
// only records that alerts are waiting for /start.
func (t *Telegram) RequestPermission(context.Context) service.Permission {
	p := t.Permission()
	if p == service.PermissionDefault {
		t.log.Info("reminders are waiting for a chat: send /start to the bot")
	}
	return p
}

// Register grants permission for chatID.
func (t *Telegram) Register(ctx context.Context, chatID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sub = subscription{ChatID: chatID}
	t.persist(ctx)
	t.log.Info("chat registered for reminders", zap.Int64("chat_id", chatID))
}

// SetMuted denies (true) or grants (false) permission for the registered chat.
func (t *Telegram) SetMuted(ctx context.Context, muted bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sub.ChatID == 0 {
		return
	}
	t.sub.Muted = muted
	t.persist(ctx)
}

func (t *Telegram) ChatID() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sub.ChatID
}

// persist must be called with t.mu held.
func (t *Telegram) persist(ctx context.Context) {
	data, err := json.Marshal(t.sub)
	if err != nil {
		t.log.Error("encode subscription", zap.Error(err))
		return
	}
	if err := t.repo.Save(ctx, DocSubscription, data); err != nil {
		t.log.Error("persist subscription", zap.Error(err))
	}
}

// Notify sends n to the registered chat. A tagged alert already shown today
// collapses into the earlier message and counts as delivered.
func (t *Telegram) Notify(_ context.Context, n service.Notification) bool {
	t.mu.Lock()
	if t.permissionLocked() != service.PermissionGranted {
		t.mu.Unlock()
		return false
	}
	chatID := t.sub.ChatID
	today := model.DateOf(t.clock.Now())
	if n.Tag != "" && t.tags[n.Tag] == today {
		t.mu.Unlock()
		t.log.Debug("alert collapsed by tag", zap.String("tag", n.Tag))
		return true
	}
	t.mu.Unlock()

	msg := tgbotapi.NewMessage(chatID, FormatHTML(n))
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := t.sender.Send(msg); err != nil {
		t.log.Warn("send alert", zap.Int64("chat_id", chatID), zap.Error(err))
		return false
	}

	if n.Tag != "" {
		t.mu.Lock()
		t.tags[n.Tag] = today
		t.mu.Unlock()
	}
	return true
}

// FormatHTML renders n for Telegram's HTML parse mode.
func FormatHTML(n service.Notification) string {
	text := fmt.Sprintf("<b>%s</b>", html.EscapeString(n.Title))
	if n.Body != "" {
		text += "\n"
		if n.Icon != "" {
			text += n.Icon + " "
		}
		text += html.EscapeString(n.Body)
	}
	return text
}
