package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"lifeflow/internal/model"
)

var (
	// ErrValidation wraps every input problem; nothing is saved when it is returned.
	ErrValidation = errors.New("invalid input")
	// ErrNotFound is returned when an edit targets an id the store no longer holds.
	ErrNotFound = errors.New("not found")
)

// PaymentInput is the raw form data for a payment.
type PaymentInput struct {
	Description string
	Amount      string
	DueDate     string
	Icon        string
	Recurrence  string
}

// TaskInput is the raw form data for a task.
type TaskInput struct {
	Name            string
	Description     string
	Time            string
	Day             string
	Icon            string
	ReminderMinutes string
	Recurrence      string
}

// PlannerService turns user input into store mutations.
type PlannerService struct {
	store       *Store
	permissions PermissionRequester
	notifier    Notifier
	log         *zap.Logger
}

func NewPlannerService(store *Store, notifier Notifier, permissions PermissionRequester, log *zap.Logger) *PlannerService {
	return &PlannerService{store: store, notifier: notifier, permissions: permissions, log: log.Named("planner")}
}

func (s *PlannerService) CreatePayment(ctx context.Context, input PaymentInput) (model.Payment, error) {
	p, err := ParsePaymentInput(input)
	if err != nil {
		return model.Payment{}, err
	}
	p.ID = uuid.NewString()
	if !s.store.AddPayment(ctx, p) {
		return model.Payment{}, fmt.Errorf("add payment %s: duplicate id", p.ID)
	}
	s.log.Info("payment created", zap.String("id", p.ID), zap.String("due", p.DueDate.String()))
	return p, nil
}

func (s *PlannerService) CreateTask(ctx context.Context, input TaskInput) (model.Task, error) {
	t, err := ParseTaskInput(input)
	if err != nil {
		return model.Task{}, err
	}
	t.ID = uuid.NewString()
	if !s.store.AddTask(ctx, t) {
		return model.Task{}, fmt.Errorf("add task %s: duplicate id", t.ID)
	}
	s.log.Info("task created", zap.String("id", t.ID), zap.String("day", string(t.Day)), zap.Stringer("time", t.Time))
	if t.HasReminder() {
		s.ensurePermission(ctx)
	}
	return t, nil
}

// EditTask applies opts to a task. The edited task must still be valid.
func (s *PlannerService) EditTask(ctx context.Context, id string, opts ...TaskOption) (model.Task, error) {
	current, ok := s.store.Task(id)
	if !ok {
		return model.Task{}, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	for _, opt := range opts {
		opt(&current)
	}
	if err := current.Validate(); err != nil {
		return model.Task{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if !s.store.UpdateTask(ctx, id, func(t *model.Task) { *t = current }) {
		return model.Task{}, fmt.Errorf("task %s removed during edit: %w", id, ErrNotFound)
	}
	if current.HasReminder() {
		s.ensurePermission(ctx)
	}
	return current, nil
}

// EditPayment applies opts to a live payment. The edited payment must still be valid.
func (s *PlannerService) EditPayment(ctx context.Context, id string, opts ...PaymentOption) (model.Payment, error) {
	current, ok := s.store.Payment(id)
	if !ok {
		return model.Payment{}, fmt.Errorf("payment %s: %w", id, ErrNotFound)
	}
	for _, opt := range opts {
		opt(&current)
	}
	if err := current.Validate(); err != nil {
		return model.Payment{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if !s.store.UpdatePayment(ctx, id, func(p *model.Payment) { *p = current }) {
		return model.Payment{}, fmt.Errorf("payment %s removed during edit: %w", id, ErrNotFound)
	}
	return current, nil
}

// ensurePermission asks for alert permission the first time a reminder is
// configured while the user has not answered yet.
func (s *PlannerService) ensurePermission(ctx context.Context) {
	if s.permissions == nil || s.notifier == nil {
		return
	}
	if s.notifier.Permission() != PermissionDefault {
		return
	}
	got := s.permissions.RequestPermission(ctx)
	s.log.Info("alert permission requested", zap.String("permission", string(got)))
}

// ParsePaymentInput validates raw payment input without assigning an id.
func ParsePaymentInput(input PaymentInput) (model.Payment, error) {
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return model.Payment{}, fmt.Errorf("%w: %w", ErrValidation, model.ErrEmptyDescription)
	}
	rawAmount := strings.ReplaceAll(strings.TrimSpace(input.Amount), ",", ".")
	if rawAmount == "" {
		return model.Payment{}, fmt.Errorf("%w: %w", ErrValidation, model.ErrInvalidAmount)
	}
	amount, err := decimal.NewFromString(rawAmount)
	if err != nil {
		return model.Payment{}, fmt.Errorf("%w: %w: %q", ErrValidation, model.ErrInvalidAmount, input.Amount)
	}
	if strings.TrimSpace(input.DueDate) == "" {
		return model.Payment{}, fmt.Errorf("%w: %w", ErrValidation, model.ErrMissingDueDate)
	}
	due, err := model.ParseDate(input.DueDate)
	if err != nil {
		return model.Payment{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	p := model.Payment{
		Description: description,
		Amount:      amount,
		DueDate:     due,
		Icon:        model.NormalizeIcon(strings.TrimSpace(input.Icon), model.IconBill),
		Recurrence:  parseRecurrence(input.Recurrence),
	}
	if err := p.Validate(); err != nil {
		return model.Payment{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return p, nil
}

// ParseTaskInput validates raw task input without assigning an id.
func ParseTaskInput(input TaskInput) (model.Task, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return model.Task{}, fmt.Errorf("%w: %w", ErrValidation, model.ErrEmptyName)
	}
	clock, err := model.ParseClockTime(input.Time)
	if err != nil {
		return model.Task{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	day := model.Monday
	if strings.TrimSpace(input.Day) != "" {
		day, err = model.ParseWeekday(input.Day)
		if err != nil {
			return model.Task{}, fmt.Errorf("%w: %w", ErrValidation, err)
		}
	}
	minutes := 0
	if raw := strings.TrimSpace(input.ReminderMinutes); raw != "" {
		minutes, err = strconv.Atoi(raw)
		if err != nil || minutes < 0 {
			return model.Task{}, fmt.Errorf("%w: %w: %q", ErrValidation, model.ErrInvalidReminder, raw)
		}
	}

	t := model.Task{
		Name:            name,
		Description:     strings.TrimSpace(input.Description),
		Time:            clock,
		Day:             day,
		Icon:            model.NormalizeIcon(strings.TrimSpace(input.Icon), model.IconWork),
		ReminderMinutes: minutes,
		Recurrence:      parseRecurrence(input.Recurrence),
	}
	if err := t.Validate(); err != nil {
		return model.Task{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return t, nil
}

func parseRecurrence(raw string) model.Recurrence {
	r := model.Recurrence(strings.ToLower(strings.TrimSpace(raw)))
	if r.Valid() {
		return r
	}
	return model.RecurrenceNone
}
