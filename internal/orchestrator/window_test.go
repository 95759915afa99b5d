package orchestrator

import (
	"testing"
	"time"
)

func TestWeekWindow(t *testing.T) {
	tests := []struct {
		name     string
		ref      time.Time
		wantFrom time.Time
		wantTo   time.Time
	}{
		{
			name:     "midweek reference",
			ref:      time.Date(2026, 9, 2, 15, 30, 0, 0, time.UTC), // Wednesday
			wantFrom: time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
			wantTo:   time.Date(2026, 9, 6, 23, 59, 59, 0, time.UTC),
		},
		{
			name:     "monday reference starts its own week",
			ref:      time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
			wantFrom: time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
			wantTo:   time.Date(2026, 9, 6, 23, 59, 59, 0, time.UTC),
		},
		{
			name:     "sunday reference closes the previous week",
			ref:      time.Date(2026, 9, 6, 10, 0, 0, 0, time.UTC),
			wantFrom: time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
			wantTo:   time.Date(2026, 9, 6, 23, 59, 59, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WeekWindow(tt.ref, time.UTC)
			if !got.From.Equal(tt.wantFrom) || !got.To.Equal(tt.wantTo) {
				t.Errorf("WeekWindow = [%s, %s], want [%s, %s]", got.From, got.To, tt.wantFrom, tt.wantTo)
			}
		})
	}
}

func TestMonthWindow(t *testing.T) {
	got := MonthWindow(time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC), time.UTC)
	wantFrom := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	wantTo := time.Date(2026, 2, 28, 23, 59, 59, 0, time.UTC)
	if !got.From.Equal(wantFrom) || !got.To.Equal(wantTo) {
		t.Errorf("MonthWindow = [%s, %s], want [%s, %s]", got.From, got.To, wantFrom, wantTo)
	}

	got = MonthWindow(time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC), time.UTC)
	if got.To.Day() != 29 {
		t.Errorf("leap February should end on the 29th, got %s", got.To)
	}
}

func TestResolveWindow(t *testing.T) {
	ref := time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC)
	if _, err := ResolveWindow("quarter", ref, time.UTC); err == nil {
		t.Error("unknown scope must error")
	}
	week, err := ResolveWindow("", ref, time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	if !week.From.Equal(WeekWindow(ref, time.UTC).From) {
		t.Error("blank scope should default to week")
	}
}
