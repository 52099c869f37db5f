// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package schedule

import (
	"context"
	"log/slog"

	"github.com/danielhkuo/lunchpick/models"
)

// TransitionFunc reacts to a phase boundary for the given day key
type TransitionFunc func(ctx context.Context, day string) error

// Scheduler sleeps until the next voting boundary and runs the matching hook.
// OnOpen fires at local midnight, OnClose at the deadline.
type Scheduler struct {
	Clock   Clock
	Window  Window
	OnOpen  TransitionFunc
	OnClose TransitionFunc
	Logger  *slog.Logger
}

func (s *Scheduler) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

// Run blocks until ctx is cancelled. The open hook also runs once at startup
// so candidates left over from previous days are purged.
func (s *Scheduler) Run(ctx context.Context) error {
	now := s.Clock.Now()
	if s.OnOpen != nil {
		if err := s.OnOpen(ctx, s.Window.DayKey(now)); err != nil {
			s.logger().Error("startup purge failed", "error", err)
		}
	}

	for {
		now = s.Clock.Now()
		at, phase := s.Window.NextTransition(now)

		s.logger().Debug("scheduler waiting",
			"next_phase", phase,
			"at", at,
		)

		select {
		case <-ctx.Done():
			s.logger().Info("scheduler stopped")
			return ctx.Err()
		case <-s.Clock.After(at.Sub(now)):
		}

		day := s.Window.DayKey(at)
		switch phase {
		case models.PhaseOpen:
			s.fire(ctx, s.OnOpen, phase, day)
		case models.PhaseClosed:
			s.fire(ctx, s.OnClose, phase, day)
		}
	}
}

func (s *Scheduler) fire(ctx context.Context, hook TransitionFunc, phase, day string) {
	if hook == nil {
		return
	}
	if err := hook(ctx, day); err != nil {
		s.logger().Error("phase transition hook failed", "phase", phase, "day", day, "error", err)
		return
	}
	s.logger().Info("voting phase changed", "phase", phase, "day", day)
}
