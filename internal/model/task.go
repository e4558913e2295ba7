package model

import (
	"errors"
	"strings"
)

// Task is a weekly planner slot: it recurs on Day at Time every week.
type Task struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	Time            ClockTime  `json:"time"`
	Day             Weekday    `json:"day"`
	Done            bool       `json:"done"`
	Icon            Icon       `json:"icon"`
	ReminderMinutes int        `json:"reminderMinutes,omitempty"`
	Recurrence      Recurrence `json:"recurrence,omitempty"`
}

var (
	ErrEmptyName       = errors.New("empty name")
	ErrInvalidTime     = errors.New("invalid time")
	ErrInvalidDay      = errors.New("invalid day")
	ErrInvalidReminder = errors.New("invalid reminder minutes")
)

func (t Task) EntityID() string {
	return t.ID
}

// HasReminder reports whether a lead-time reminder is configured.
func (t Task) HasReminder() bool {
	return t.ReminderMinutes > 0
}

// TriggerMinute is the minute of day the reminder fires. It may be negative
// when the lead time reaches past midnight; such reminders never fire.
func (t Task) TriggerMinute() int {
	return t.Time.MinuteOfDay() - t.ReminderMinutes
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	if !t.Time.Valid() {
		return ErrInvalidTime
	}
	if !t.Day.Valid() {
		return ErrInvalidDay
	}
	if t.ReminderMinutes < 0 {
		return ErrInvalidReminder
	}
	if !t.Icon.Valid() {
		return ErrInvalidIcon
	}
	if t.Recurrence != "" && !t.Recurrence.Valid() {
		return ErrInvalidRecurrence
	}
	return nil
}
