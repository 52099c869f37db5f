// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/danielhkuo/lunchpick/models"
)

func TestNewWindow(t *testing.T) {
	tests := []struct {
		deadline string
		wantH    int
		wantM    int
		wantErr  bool
	}{
		{"", 12, 0, false},
		{"11:30", 11, 30, false},
		{"23:59", 23, 59, false},
		{"00:00", 0, 0, true},
		{"24:00", 0, 0, true},
		{"noon", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.deadline, func(t *testing.T) {
			w, err := NewWindow(time.UTC, tt.deadline)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDeadline) {
					t.Errorf("expected ErrInvalidDeadline, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if w.DeadlineHour != tt.wantH || w.DeadlineMinute != tt.wantM {
				t.Errorf("got %02d:%02d", w.DeadlineHour, w.DeadlineMinute)
			}
		})
	}
}

func TestPhaseAt(t *testing.T) {
	w := DefaultWindow(time.UTC)
	day := func(h, m, s int) time.Time { return time.Date(2025, 3, 12, h, m, s, 0, time.UTC) }

	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"midnight", day(0, 0, 0), models.PhaseOpen},
		{"morning", day(9, 15, 0), models.PhaseOpen},
		{"one second before deadline", day(11, 59, 59), models.PhaseOpen},
		{"deadline instant", day(12, 0, 0), models.PhaseClosed},
		{"afternoon", day(16, 0, 0), models.PhaseClosed},
		{"last second of day", day(23, 59, 59), models.PhaseClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.PhaseAt(tt.at); got != tt.want {
				t.Errorf("PhaseAt(%v) = %s, want %s", tt.at, got, tt.want)
			}
		})
	}
}

func TestDayKeyUsesWindowLocation(t *testing.T) {
	warsaw, err := time.LoadLocation("Europe/Warsaw")
	if err != nil {
		t.Skipf("time zone data unavailable: %v", err)
	}
	w := DefaultWindow(warsaw)

	// 23:30 UTC on the 11th is already the 12th in Warsaw
	at := time.Date(2025, 3, 11, 23, 30, 0, 0, time.UTC)
	if got := w.DayKey(at); got != "2025-03-12" {
		t.Errorf("DayKey = %s, want 2025-03-12", got)
	}
	if w.PhaseAt(at) != models.PhaseOpen {
		t.Error("just after local midnight voting should be open")
	}
}

func TestRolloverReopens(t *testing.T) {
	w := DefaultWindow(time.UTC)
	before := time.Date(2025, 3, 12, 23, 59, 59, 0, time.UTC)
	after := before.Add(time.Second)

	if w.PhaseAt(before) != models.PhaseClosed || w.PhaseAt(after) != models.PhaseOpen {
		t.Error("crossing midnight should move CLOSED to OPEN")
	}
	if w.DayKey(before) == w.DayKey(after) {
		t.Error("day key should change at midnight")
	}
}

func TestNextTransition(t *testing.T) {
	w := DefaultWindow(time.UTC)

	at, phase := w.NextTransition(time.Date(2025, 3, 12, 8, 0, 0, 0, time.UTC))
	if phase != models.PhaseClosed || !at.Equal(time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("morning: got %v %s", at, phase)
	}

	at, phase = w.NextTransition(time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC))
	if phase != models.PhaseOpen || !at.Equal(time.Date(2025, 3, 13, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("deadline: got %v %s", at, phase)
	}
}

func TestTimeLeft(t *testing.T) {
	w := DefaultWindow(time.UTC)

	tests := []struct {
		at   time.Time
		want string
	}{
		{time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC), "12:00:00"},
		{time.Date(2025, 3, 12, 10, 45, 30, 0, time.UTC), "01:14:30"},
		{time.Date(2025, 3, 12, 11, 59, 59, 0, time.UTC), "00:00:01"},
		{time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC), "00:00:00"},
		{time.Date(2025, 3, 12, 20, 0, 0, 0, time.UTC), "00:00:00"},
	}

	for _, tt := range tests {
		if got := w.TimeLeft(tt.at); got != tt.want {
			t.Errorf("TimeLeft(%v) = %s, want %s", tt.at, got, tt.want)
		}
	}
}

func TestWeekRange(t *testing.T) {
	w := DefaultWindow(time.UTC)

	tests := []struct {
		name      string
		at        time.Time
		offset    int
		wantStart string
		wantEnd   string
	}{
		{"wednesday", time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC), 0, "2025-03-10", "2025-03-16"},
		{"monday", time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), 0, "2025-03-10", "2025-03-16"},
		{"sunday closes the week", time.Date(2025, 3, 16, 9, 0, 0, 0, time.UTC), 0, "2025-03-10", "2025-03-16"},
		{"last week", time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC), -1, "2025-03-03", "2025-03-09"},
		{"next week over month end", time.Date(2025, 3, 26, 9, 0, 0, 0, time.UTC), 1, "2025-03-31", "2025-04-06"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := w.WeekRange(tt.at, tt.offset)
			if start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("WeekRange = %s..%s, want %s..%s", start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}
