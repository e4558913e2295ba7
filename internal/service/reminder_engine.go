package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"lifeflow/internal/model"
)

// MatchMode decides how a task's trigger minute is compared with the poll time.
type MatchMode int

const (
	// MatchExact fires only when the poll lands on the trigger minute itself.
	// A minute that no poll lands on is lost for the day.
	MatchExact MatchMode = iota
	// MatchWindow fires when trigger <= current < trigger+pollMinutes, which
	// tolerates coarse polling while the ledger still keeps it to one alert.
	MatchWindow
)

type ReminderKind string

const (
	KindTask            ReminderKind = "task"
	KindPaymentToday    ReminderKind = "payment_due_today"
	KindPaymentTomorrow ReminderKind = "payment_due_tomorrow"
)

// Reminder is one delivered alert.
type Reminder struct {
	Kind     ReminderKind
	Key      string
	EntityID string
	Notification
}

// ReminderSource is the read-only view of the entities the engine evaluates.
type ReminderSource interface {
	Tasks() []model.Task
	Payments() []model.Payment
}

// ReminderEngine decides, on every poll, which task and payment reminders are
// due and delivers each logical occurrence at most once per process lifetime.
// It keeps no entity state between polls; all scheduling memory is in the ledgers.
type ReminderEngine struct {
	source      ReminderSource
	notifier    Notifier
	clock       Clock
	taskLedger  *Ledger
	payLedger   *Ledger
	match       MatchMode
	pollMinutes int
	log         *zap.Logger
}

type EngineOption func(*ReminderEngine)

// WithMatchMode selects the task matching rule. pollInterval sizes the window
// for MatchWindow and is rounded up to whole minutes.
func WithMatchMode(mode MatchMode, pollInterval time.Duration) EngineOption {
	return func(e *ReminderEngine) {
		e.match = mode
		minutes := int((pollInterval + time.Minute - 1) / time.Minute)
		if minutes < 1 {
			minutes = 1
		}
		e.pollMinutes = minutes
	}
}

func WithLedgerCapacity(capacity int) EngineOption {
	return func(e *ReminderEngine) {
		e.taskLedger = NewLedger(capacity)
		e.payLedger = NewLedger(capacity)
	}
}

func WithEngineLogger(log *zap.Logger) EngineOption {
	return func(e *ReminderEngine) {
		e.log = log.Named("reminders")
	}
}

func NewReminderEngine(source ReminderSource, notifier Notifier, clock Clock, opts ...EngineOption) *ReminderEngine {
	e := &ReminderEngine{
		source:      source,
		notifier:    notifier,
		clock:       clock,
		taskLedger:  NewLedger(DefaultLedgerCapacity),
		payLedger:   NewLedger(DefaultLedgerCapacity),
		match:       MatchExact,
		pollMinutes: 1,
		log:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Tick evaluates reminders at the clock's current time.
func (e *ReminderEngine) Tick(ctx context.Context) []Reminder {
	return e.Evaluate(ctx, e.clock.Now())
}

// Evaluate delivers every reminder due at now. It never fails; undelivered
// reminders stay unrecorded so a later qualifying poll retries them.
func (e *ReminderEngine) Evaluate(ctx context.Context, now time.Time) []Reminder {
	today := model.DateOf(now)
	fired := e.evaluateTasks(ctx, now, today)
	fired = append(fired, e.evaluatePayments(ctx, today)...)
	if len(fired) > 0 {
		e.log.Info("reminders delivered", zap.Int("count", len(fired)), zap.Time("at", now))
	}
	return fired
}

func (e *ReminderEngine) evaluateTasks(ctx context.Context, now time.Time, today model.Date) []Reminder {
	var fired []Reminder
	weekday := model.WeekdayOf(now)
	current := now.Hour()*60 + now.Minute()

	for _, task := range e.source.Tasks() {
		if task.Done || !task.HasReminder() || task.Day != weekday {
			continue
		}
		trigger := task.TriggerMinute()
		if !e.matches(trigger, current) {
			continue
		}
		key := TaskReminderKey(task.ID, today, trigger)
		if e.taskLedger.HasFired(key) {
			continue
		}
		r := Reminder{
			Kind:         KindTask,
			Key:          key,
			EntityID:     task.ID,
			Notification: taskNotification(task),
		}
		if e.deliver(ctx, e.taskLedger, r) {
			fired = append(fired, r)
		}
	}
	return fired
}

func (e *ReminderEngine) evaluatePayments(ctx context.Context, today model.Date) []Reminder {
	var fired []Reminder
	tomorrow := today.AddDays(1)

	for _, p := range e.source.Payments() {
		if p.Paid {
			continue
		}
		var kind ReminderKind
		switch p.DueDate {
		case today:
			kind = KindPaymentToday
		case tomorrow:
			kind = KindPaymentTomorrow
		default:
			continue
		}
		key := PaymentReminderKey(p.ID, today)
		if e.payLedger.HasFired(key) {
			continue
		}
		r := Reminder{
			Kind:         kind,
			Key:          key,
			EntityID:     p.ID,
			Notification: paymentNotification(p, kind),
		}
		if e.deliver(ctx, e.payLedger, r) {
			fired = append(fired, r)
		}
	}
	return fired
}

func (e *ReminderEngine) matches(trigger, current int) bool {
	if trigger < 0 {
		return false
	}
	if e.match == MatchWindow {
		return trigger <= current && current < trigger+e.pollMinutes
	}
	return current == trigger
}

func (e *ReminderEngine) deliver(ctx context.Context, ledger *Ledger, r Reminder) bool {
	if !e.notifier.Notify(ctx, r.Notification) {
		e.log.Debug("reminder not delivered, will retry",
			zap.String("key", r.Key),
			zap.String("permission", string(e.notifier.Permission())),
		)
		return false
	}
	if ledger.MarkFired(r.Key) {
		e.log.Info("reminder ledger cleared after overflow", zap.String("kind", string(r.Kind)))
	}
	e.log.Debug("reminder delivered", zap.String("key", r.Key), zap.Int("ledger_size", ledger.Len()))
	return true
}

// TaskReminderKey identifies one task reminder occurrence. Editing the task's
// time or lead time changes the trigger minute and therefore the key.
func TaskReminderKey(taskID string, day model.Date, triggerMinute int) string {
	return fmt.Sprintf("task:%s:%s:%d", taskID, day, triggerMinute)
}

// PaymentReminderKey allows one payment alert per payment per calendar day.
func PaymentReminderKey(paymentID string, day model.Date) string {
	return fmt.Sprintf("payment:%s:%s", paymentID, day)
}

func taskNotification(t model.Task) Notification {
	body := fmt.Sprintf("En %d min (%s)", t.ReminderMinutes, t.Time)
	if t.Description != "" {
		body += ": " + t.Description
	}
	return Notification{
		Title: "⏰ " + t.Name,
		Body:  body,
		Icon:  t.Icon.Emoji(),
	}
}

func paymentNotification(p model.Payment, kind ReminderKind) Notification {
	title := "💸 Pago vence hoy"
	if kind == KindPaymentTomorrow {
		title = "💸 Pago vence mañana"
	}
	return Notification{
		Title: title,
		Body:  fmt.Sprintf("%s · $%s", p.Description, p.Amount.StringFixed(2)),
		Icon:  p.Icon.Emoji(),
		Tag:   p.ID,
	}
}
