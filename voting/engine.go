// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/singleflight"

	"github.com/danielhkuo/lunchpick/auth"
	"github.com/danielhkuo/lunchpick/db"
	"github.com/danielhkuo/lunchpick/models"
	"github.com/danielhkuo/lunchpick/profiles"
	"github.com/danielhkuo/lunchpick/schedule"
)

// Engine runs the daily restaurant vote. It keeps no state between calls
// besides the in-flight vote operations.
type Engine struct {
	store  db.Store
	clock  schedule.Clock
	window schedule.Window
	logger *slog.Logger

	// one vote operation per voter at a time
	inflight singleflight.Group
}

func NewEngine(store db.Store, clock schedule.Clock, window schedule.Window, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:  store,
		clock:  clock,
		window: window,
		logger: logger,
	}
}

func (e *Engine) Window() schedule.Window {
	return e.window
}

// Today returns the current day key
func (e *Engine) Today() string {
	return e.window.DayKey(e.clock.Now())
}

func (e *Engine) IsOpen() bool {
	return e.window.IsOpen(e.clock.Now())
}

func (e *Engine) ListCandidatesForToday(ctx context.Context) ([]models.Candidate, error) {
	candidates, err := e.store.ListCandidates(ctx, e.Today())
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	return candidates, nil
}

// ProposeCandidate adds a restaurant to today's vote and remembers it in the
// directory when its name has not been seen before.
func (e *Engine) ProposeCandidate(ctx context.Context, name, menuURL, proposerID string) (models.Candidate, error) {
	name = strings.TrimSpace(name)
	menuURL = strings.TrimSpace(menuURL)
	if name == "" || menuURL == "" {
		return models.Candidate{}, ErrMissingField
	}

	now := e.clock.Now()
	if !e.window.IsOpen(now) {
		return models.Candidate{}, ErrVotingClosed
	}

	profile, err := e.store.GetProfile(ctx, proposerID)
	if errors.Is(err, db.ErrNotFound) {
		return models.Candidate{}, ErrInvalidPhone
	}
	if err != nil {
		return models.Candidate{}, fmt.Errorf("failed to load proposer profile: %w", err)
	}
	if !profiles.ValidatePhone(profile.PhoneNumber) {
		return models.Candidate{}, ErrInvalidPhone
	}

	day := e.window.DayKey(now)
	existing, err := e.store.ListCandidates(ctx, day)
	if err != nil {
		return models.Candidate{}, fmt.Errorf("failed to list candidates: %w", err)
	}
	for _, c := range existing {
		if c.MenuURL == menuURL {
			return models.Candidate{}, ErrDuplicateCandidate
		}
	}

	candidate := models.Candidate{
		ID:         auth.NewID(),
		Name:       name,
		MenuURL:    menuURL,
		ProposerID: proposerID,
		Day:        day,
		CreatedAt:  now,
	}
	err = e.store.InsertCandidate(ctx, candidate)
	if errors.Is(err, db.ErrConflict) {
		return models.Candidate{}, ErrDuplicateCandidate
	}
	if err != nil {
		return models.Candidate{}, fmt.Errorf("failed to insert candidate: %w", err)
	}

	e.logger.Info("candidate proposed",
		"candidate_id", candidate.ID,
		"name", candidate.Name,
		"proposer_id", proposerID,
		"day", day,
	)

	// The candidate stands even if the directory write fails
	if err := e.remember(ctx, name, menuURL); err != nil {
		e.logger.Warn("failed to update restaurant directory", "name", name, "error", err)
	}

	return candidate, nil
}

func (e *Engine) remember(ctx context.Context, name, menuURL string) error {
	entries, err := e.store.ListDirectory(ctx)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if strings.EqualFold(entry.Name, name) {
			return nil
		}
	}

	err = e.store.InsertDirectoryEntry(ctx, models.DirectoryEntry{
		ID:      auth.NewID(),
		Name:    name,
		MenuURL: menuURL,
	})
	if errors.Is(err, db.ErrConflict) {
		return nil
	}
	return err
}

// exclusive runs fn unless another vote operation of the same voter is
// already running, in which case it reports applied=false.
func (e *Engine) exclusive(voterID string, fn func() (bool, error)) (bool, error) {
	executed := false
	v, err, _ := e.inflight.Do(voterID, func() (interface{}, error) {
		executed = true
		return fn()
	})
	if !executed {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

// todayCandidate loads a candidate and checks it belongs to today
func (e *Engine) todayCandidate(ctx context.Context, candidateID, day string) (models.Candidate, error) {
	c, err := e.store.GetCandidate(ctx, candidateID)
	if errors.Is(err, db.ErrNotFound) {
		return models.Candidate{}, ErrCandidateNotFound
	}
	if err != nil {
		return models.Candidate{}, fmt.Errorf("failed to load candidate: %w", err)
	}
	if c.Day != day {
		return models.Candidate{}, ErrCandidateNotFound
	}
	return c, nil
}

// CastVote records a vote for candidateID. Votes for other candidates are
// left alone. Returns applied=false when the vote already exists.
func (e *Engine) CastVote(ctx context.Context, voterID, candidateID string) (bool, error) {
	now := e.clock.Now()
	if !e.window.IsOpen(now) {
		return false, ErrVotingClosed
	}
	day := e.window.DayKey(now)

	return e.exclusive(voterID, func() (bool, error) {
		if _, err := e.todayCandidate(ctx, candidateID, day); err != nil {
			return false, err
		}

		votes, err := e.store.ListVotes(ctx, day)
		if err != nil {
			return false, fmt.Errorf("failed to list votes: %w", err)
		}
		for _, v := range votes {
			if v.VoterID == voterID && v.CandidateID == candidateID {
				return false, nil
			}
		}

		if err := e.insertVote(ctx, voterID, candidateID, day, now); err != nil {
			return false, err
		}
		return true, nil
	})
}

func (e *Engine) insertVote(ctx context.Context, voterID, candidateID, day string, now time.Time) error {
	vote := models.Vote{
		ID:          auth.NewID(),
		VoterID:     voterID,
		CandidateID: candidateID,
		Day:         day,
		CreatedAt:   now,
	}
	if err := e.store.InsertVote(ctx, vote); err != nil {
		return fmt.Errorf("failed to insert vote: %w", err)
	}

	e.logger.Info("vote cast", "voter_id", voterID, "candidate_id", candidateID, "day", day)
	return nil
}

// RetractVote removes every vote the voter holds for candidateID today
func (e *Engine) RetractVote(ctx context.Context, voterID, candidateID string) (bool, error) {
	now := e.clock.Now()
	if !e.window.IsOpen(now) {
		return false, ErrVotingClosed
	}
	day := e.window.DayKey(now)

	return e.exclusive(voterID, func() (bool, error) {
		n, err := e.store.DeleteVotes(ctx, voterID, candidateID, day)
		if err != nil {
			return false, fmt.Errorf("failed to delete votes: %w", err)
		}
		if n > 0 {
			e.logger.Info("vote retracted", "voter_id", voterID, "candidate_id", candidateID, "day", day)
		}
		return n > 0, nil
	})
}

// SwitchVote makes candidateID the voter's only vote today
func (e *Engine) SwitchVote(ctx context.Context, voterID, candidateID string) (bool, error) {
	now := e.clock.Now()
	if !e.window.IsOpen(now) {
		return false, ErrVotingClosed
	}
	day := e.window.DayKey(now)

	return e.exclusive(voterID, func() (bool, error) {
		if _, err := e.todayCandidate(ctx, candidateID, day); err != nil {
			return false, err
		}

		votes, err := e.store.ListVotes(ctx, day)
		if err != nil {
			return false, fmt.Errorf("failed to list votes: %w", err)
		}

		changed := false
		hasTarget := false
		retracted := map[string]bool{}
		for _, v := range votes {
			if v.VoterID != voterID {
				continue
			}
			if v.CandidateID == candidateID {
				hasTarget = true
				continue
			}
			if retracted[v.CandidateID] {
				continue
			}
			if _, err := e.store.DeleteVotes(ctx, voterID, v.CandidateID, day); err != nil {
				return false, fmt.Errorf("failed to delete votes: %w", err)
			}
			retracted[v.CandidateID] = true
			changed = true
		}

		if !hasTarget {
			if err := e.insertVote(ctx, voterID, candidateID, day, now); err != nil {
				return false, err
			}
			changed = true
		}
		return changed, nil
	})
}

// Board returns today's candidates with their tallies and the viewer's votes
func (e *Engine) Board(ctx context.Context, viewerID string) (models.CandidateListResponse, error) {
	now := e.clock.Now()
	day := e.window.DayKey(now)

	candidates, err := e.store.ListCandidates(ctx, day)
	if err != nil {
		return models.CandidateListResponse{}, fmt.Errorf("failed to list candidates: %w", err)
	}
	votes, err := e.store.ListVotes(ctx, day)
	if err != nil {
		return models.CandidateListResponse{}, fmt.Errorf("failed to list votes: %w", err)
	}

	tallies := Tally(votes, candidates)
	total := 0
	for _, t := range tallies {
		total += t.Votes
	}

	mine := []string{}
	seen := map[string]bool{}
	for _, v := range votes {
		if v.VoterID == viewerID && !seen[v.CandidateID] {
			seen[v.CandidateID] = true
			mine = append(mine, v.CandidateID)
		}
	}

	return models.CandidateListResponse{
		Day:        day,
		Phase:      e.window.PhaseAt(now),
		Candidates: tallies,
		MyVotes:    mine,
		TotalVotes: total,
	}, nil
}

// TodayWinner returns today's winner once voting has closed.
// ok is false when nobody voted.
func (e *Engine) TodayWinner(ctx context.Context) (models.CandidateTally, bool, error) {
	return e.WinnerAt(ctx, e.clock.Now())
}

// WinnerAt returns the winner of the day containing now, checking the phase
// at that same instant.
func (e *Engine) WinnerAt(ctx context.Context, now time.Time) (models.CandidateTally, bool, error) {
	if e.window.IsOpen(now) {
		return models.CandidateTally{}, false, ErrVotingOpen
	}
	return e.winnerOf(ctx, e.window.DayKey(now))
}

// Winner answers GET /winner for the current instant
func (e *Engine) Winner(ctx context.Context) (models.WinnerResponse, error) {
	now := e.clock.Now()
	winner, ok, err := e.WinnerAt(ctx, now)
	if err != nil {
		return models.WinnerResponse{}, err
	}

	resp := models.WinnerResponse{Day: e.window.DayKey(now)}
	if ok {
		resp.Winner = &winner.Candidate
		resp.Votes = winner.Votes
	}
	return resp, nil
}

// WinnerOf computes the winner of any day still in the store, regardless of phase
func (e *Engine) WinnerOf(ctx context.Context, day string) (models.CandidateTally, bool, error) {
	return e.winnerOf(ctx, day)
}

func (e *Engine) winnerOf(ctx context.Context, day string) (models.CandidateTally, bool, error) {
	candidates, err := e.store.ListCandidates(ctx, day)
	if err != nil {
		return models.CandidateTally{}, false, fmt.Errorf("failed to list candidates: %w", err)
	}
	votes, err := e.store.ListVotes(ctx, day)
	if err != nil {
		return models.CandidateTally{}, false, fmt.Errorf("failed to list votes: %w", err)
	}

	winner, count, ok := ComputeWinner(votes, candidates)
	if !ok {
		return models.CandidateTally{}, false, nil
	}
	return models.CandidateTally{Candidate: winner, Votes: count}, true, nil
}

// Status describes the voting window at the current instant
func (e *Engine) Status(ctx context.Context) (models.StatusResponse, error) {
	now := e.clock.Now()
	deadline := e.window.Deadline(now)
	next, _ := e.window.NextTransition(now)

	status := models.StatusResponse{
		Day:        e.window.DayKey(now),
		Phase:      e.window.PhaseAt(now),
		Deadline:   deadline,
		TimeLeft:   e.window.TimeLeft(now),
		ClosesIn:   humanize.RelTime(deadline, now, "ago", "from now"),
		Now:        now,
		NextChange: next,
	}

	if status.Phase == models.PhaseClosed {
		winner, ok, err := e.WinnerAt(ctx, now)
		if err != nil {
			return models.StatusResponse{}, err
		}
		if ok {
			status.Winner = &winner.Candidate
		}
	}

	return status, nil
}

// Suggestions returns directory entries whose name contains query,
// case-insensitively, sorted by name. An empty query matches everything.
func (e *Engine) Suggestions(ctx context.Context, query string) ([]models.DirectoryEntry, error) {
	entries, err := e.store.ListDirectory(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list directory: %w", err)
	}

	q := strings.ToLower(strings.TrimSpace(query))
	matches := []models.DirectoryEntry{}
	for _, entry := range entries {
		if strings.Contains(strings.ToLower(entry.Name), q) {
			matches = append(matches, entry)
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return strings.ToLower(matches[i].Name) < strings.ToLower(matches[j].Name)
	})
	return matches, nil
}

// PurgeCandidates deletes every candidate proposed before today.
// Votes are kept; they no longer match any candidate and are ignored.
func (e *Engine) PurgeCandidates(ctx context.Context, today string) (int64, error) {
	n, err := e.store.PurgeCandidates(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("failed to purge candidates: %w", err)
	}
	if n > 0 {
		e.logger.Info("purged stale candidates", "count", n, "before", today)
	}
	return n, nil
}
