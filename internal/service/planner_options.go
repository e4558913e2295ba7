package service

import (
	"github.com/shopspring/decimal"

	"lifeflow/internal/model"
)

// TaskOption edits one field of a task.
type TaskOption func(*model.Task)

func WithTaskName(name string) TaskOption {
	return func(t *model.Task) {
		t.Name = name
	}
}

func WithTaskDescription(description string) TaskOption {
	return func(t *model.Task) {
		t.Description = description
	}
}

func WithSchedule(day model.Weekday, at model.ClockTime) TaskOption {
	return func(t *model.Task) {
		t.Day = day
		t.Time = at
	}
}

func WithReminderMinutes(minutes int) TaskOption {
	return func(t *model.Task) {
		t.ReminderMinutes = minutes
	}
}

// PaymentOption edits one field of a payment.
type PaymentOption func(*model.Payment)

func WithPaymentDescription(description string) PaymentOption {
	return func(p *model.Payment) {
		p.Description = description
	}
}

func WithAmount(amount decimal.Decimal) PaymentOption {
	return func(p *model.Payment) {
		p.Amount = amount
	}
}

func WithDueDate(due model.Date) PaymentOption {
	return func(p *model.Payment) {
		p.DueDate = due
	}
}
