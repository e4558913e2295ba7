package model

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Payment is a bill the user has to pay by DueDate.
type Payment struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	DueDate     Date            `json:"dueDate"`
	Paid        bool            `json:"paid"`
	Icon        Icon            `json:"icon"`
	Recurrence  Recurrence      `json:"recurrence,omitempty"`
}

// SoonDays is how close a due date must be for an unpaid payment to count as soon.
const SoonDays = 3

// Urgency ranks an unpaid payment by how close its due date is.
type Urgency string

const (
	UrgencyNone    Urgency = "none"
	UrgencyOverdue Urgency = "overdue"
	UrgencySoon    Urgency = "soon"
	UrgencyNormal  Urgency = "normal"
)

var (
	ErrEmptyDescription  = errors.New("empty description")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrMissingDueDate    = errors.New("missing due date")
	ErrInvalidIcon       = errors.New("invalid icon")
	ErrInvalidRecurrence = errors.New("invalid recurrence")
)

func (p Payment) EntityID() string {
	return p.ID
}

// Urgency classifies p on today. Paid payments have no urgency.
func (p Payment) Urgency(today Date) Urgency {
	if p.Paid {
		return UrgencyNone
	}
	switch days := today.DaysUntil(p.DueDate); {
	case days < 0:
		return UrgencyOverdue
	case days <= SoonDays:
		return UrgencySoon
	default:
		return UrgencyNormal
	}
}

func (p Payment) Validate() error {
	if strings.TrimSpace(p.Description) == "" {
		return ErrEmptyDescription
	}
	if p.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if p.DueDate.IsZero() {
		return ErrMissingDueDate
	}
	if !p.Icon.Valid() {
		return ErrInvalidIcon
	}
	if p.Recurrence != "" && !p.Recurrence.Valid() {
		return ErrInvalidRecurrence
	}
	return nil
}
