package model

import (
	"fmt"
	"strings"
	"time"
)

// Weekday is a localized day name. Tasks recur on their weekday every week.
type Weekday string

const (
	Monday    Weekday = "Lunes"
	Tuesday   Weekday = "Martes"
	Wednesday Weekday = "Miércoles"
	Thursday  Weekday = "Jueves"
	Friday    Weekday = "Viernes"
	Saturday  Weekday = "Sábado"
	Sunday    Weekday = "Domingo"
)

// Days lists the weekdays in planner order, Monday first.
var Days = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var fromStdlib = map[time.Weekday]Weekday{
	time.Monday:    Monday,
	time.Tuesday:   Tuesday,
	time.Wednesday: Wednesday,
	time.Thursday:  Thursday,
	time.Friday:    Friday,
	time.Saturday:  Saturday,
	time.Sunday:    Sunday,
}

// WeekdayOf maps t's weekday, in t's location, to its localized name.
func WeekdayOf(t time.Time) Weekday {
	return fromStdlib[t.Weekday()]
}

func (w Weekday) Valid() bool {
	for _, d := range Days {
		if d == w {
			return true
		}
	}
	return false
}

// Index returns the planner position of w (Lunes = 0) or -1.
func (w Weekday) Index() int {
	for i, d := range Days {
		if d == w {
			return i
		}
	}
	return -1
}

// ParseWeekday accepts a day name case-insensitively, with or without accents.
func ParseWeekday(s string) (Weekday, error) {
	needle := foldAccents(strings.ToLower(strings.TrimSpace(s)))
	for _, d := range Days {
		if foldAccents(strings.ToLower(string(d))) == needle {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown weekday %q", s)
}

func foldAccents(s string) string {
	return strings.NewReplacer("á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u").Replace(s)
}
