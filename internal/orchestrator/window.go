package orchestrator

import (
	"fmt"
	"time"
)

// Window is an inclusive date-time range tasks are loaded for.
type Window struct {
	From time.Time
	To   time.Time
}

// WeekWindow spans Monday 00:00:00 through Sunday 23:59:59 of the local
// calendar week containing ref.
func WeekWindow(ref time.Time, loc *time.Location) Window {
	y, m, d := ref.In(loc).Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, loc)
	offset := int(day.Weekday())
	if offset == 0 {
		offset = 7 // Sunday belongs to the week that started six days earlier
	}
	monday := day.AddDate(0, 0, -(offset - 1))
	sunday := monday.AddDate(0, 0, 6)
	return Window{
		From: monday,
		To:   time.Date(sunday.Year(), sunday.Month(), sunday.Day(), 23, 59, 59, 0, loc),
	}
}

// MonthWindow spans the first through the last calendar day of ref's month.
func MonthWindow(ref time.Time, loc *time.Location) Window {
	y, m, _ := ref.In(loc).Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, loc)
	return Window{
		From: first,
		To:   first.AddDate(0, 1, 0).Add(-time.Second),
	}
}

// ResolveWindow maps a scope name to a window around the reference date.
func ResolveWindow(scope string, ref time.Time, loc *time.Location) (Window, error) {
	switch scope {
	case "", "week":
		return WeekWindow(ref, loc), nil
	case "month":
		return MonthWindow(ref, loc), nil
	default:
		return Window{}, fmt.Errorf("unknown scope %q (want week or month)", scope)
	}
}
