// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/lunchpick/models"
)

var ErrInvalidDeadline = errors.New("deadline must be HH:MM between 00:01 and 23:59")

// Window is the daily voting window: open from local midnight until the
// deadline, closed from the deadline until the next midnight.
type Window struct {
	Location       *time.Location
	DeadlineHour   int
	DeadlineMinute int
}

// DefaultWindow closes voting at noon in loc
func DefaultWindow(loc *time.Location) Window {
	if loc == nil {
		loc = time.Local
	}
	return Window{Location: loc, DeadlineHour: 12}
}

// NewWindow builds a window from an "HH:MM" deadline
func NewWindow(loc *time.Location, deadline string) (Window, error) {
	w := DefaultWindow(loc)
	if deadline == "" {
		return w, nil
	}

	t, err := time.Parse("15:04", deadline)
	if err != nil {
		return Window{}, fmt.Errorf("%w: %q", ErrInvalidDeadline, deadline)
	}
	if t.Hour() == 0 && t.Minute() == 0 {
		return Window{}, fmt.Errorf("%w: %q", ErrInvalidDeadline, deadline)
	}

	w.DeadlineHour = t.Hour()
	w.DeadlineMinute = t.Minute()
	return w, nil
}

func (w Window) loc() *time.Location {
	if w.Location == nil {
		return time.Local
	}
	return w.Location
}

// DayKey returns the calendar date of t in the window's location
func (w Window) DayKey(t time.Time) string {
	return t.In(w.loc()).Format(models.DayLayout)
}

// Midnight returns the start of the local day containing t
func (w Window) Midnight(t time.Time) time.Time {
	lt := t.In(w.loc())
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, w.loc())
}

// NextMidnight returns the start of the local day after t
func (w Window) NextMidnight(t time.Time) time.Time {
	lt := t.In(w.loc())
	return time.Date(lt.Year(), lt.Month(), lt.Day()+1, 0, 0, 0, 0, w.loc())
}

// Deadline returns the voting deadline of the local day containing t
func (w Window) Deadline(t time.Time) time.Time {
	lt := t.In(w.loc())
	return time.Date(lt.Year(), lt.Month(), lt.Day(), w.DeadlineHour, w.DeadlineMinute, 0, 0, w.loc())
}

// PhaseAt reports whether voting is open or closed at t.
// The deadline instant itself is already closed.
func (w Window) PhaseAt(t time.Time) string {
	if t.Before(w.Deadline(t)) {
		return models.PhaseOpen
	}
	return models.PhaseClosed
}

func (w Window) IsOpen(t time.Time) bool {
	return w.PhaseAt(t) == models.PhaseOpen
}

// NextTransition returns the next phase boundary after t and the phase it enters
func (w Window) NextTransition(t time.Time) (time.Time, string) {
	if w.IsOpen(t) {
		return w.Deadline(t), models.PhaseClosed
	}
	return w.NextMidnight(t), models.PhaseOpen
}

// TimeLeft formats the remaining voting time as HH:MM:SS, or "00:00:00" once closed
func (w Window) TimeLeft(t time.Time) string {
	if !w.IsOpen(t) {
		return "00:00:00"
	}
	d := w.Deadline(t).Sub(t)
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// WeekRange returns the Monday and Sunday day keys of the week containing t,
// shifted by offset weeks (0 = this week, -1 = last week)
func (w Window) WeekRange(t time.Time, offset int) (string, string) {
	lt := w.Midnight(t)
	shift := (int(lt.Weekday()) + 6) % 7 // days since Monday
	monday := time.Date(lt.Year(), lt.Month(), lt.Day()-shift+7*offset, 0, 0, 0, 0, w.loc())
	sunday := time.Date(monday.Year(), monday.Month(), monday.Day()+6, 0, 0, 0, 0, w.loc())
	return monday.Format(models.DayLayout), sunday.Format(models.DayLayout)
}
