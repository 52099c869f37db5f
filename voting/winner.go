// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import "github.com/danielhkuo/lunchpick/models"

// Tally counts votes per candidate, keeping the order of candidates.
// Votes for candidates not in the list are ignored.
func Tally(votes []models.Vote, candidates []models.Candidate) []models.CandidateTally {
	counts := make(map[string]int, len(candidates))
	for _, c := range candidates {
		counts[c.ID] = 0
	}
	for _, v := range votes {
		if _, ok := counts[v.CandidateID]; ok {
			counts[v.CandidateID]++
		}
	}

	tallies := make([]models.CandidateTally, 0, len(candidates))
	for _, c := range candidates {
		tallies = append(tallies, models.CandidateTally{Candidate: c, Votes: counts[c.ID]})
	}
	return tallies
}

// ComputeWinner returns the candidate with the most votes and its count.
// Ties go to the earliest proposed candidate, then to the smallest ID.
// ok is false when no known candidate received a vote.
func ComputeWinner(votes []models.Vote, candidates []models.Candidate) (winner models.Candidate, count int, ok bool) {
	for _, t := range Tally(votes, candidates) {
		if t.Votes == 0 {
			continue
		}
		if !ok || t.Votes > count || (t.Votes == count && before(t.Candidate, winner)) {
			winner, count, ok = t.Candidate, t.Votes, true
		}
	}
	return winner, count, ok
}

func before(a, b models.Candidate) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}
