// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"strings"

	"github.com/danielhkuo/lunchpick/middleware"
	"github.com/danielhkuo/lunchpick/models"
	"github.com/danielhkuo/lunchpick/voting"
)

type VotingHandler struct {
	engine *voting.Engine
}

func NewVotingHandler(engine *voting.Engine) *VotingHandler {
	return &VotingHandler{engine: engine}
}

// voteMessage describes the outcome of a vote operation
func voteMessage(applied bool, done, noop string) string {
	if applied {
		return done
	}
	return noop
}

// CastVote handles POST /candidates/{id}/vote
func (h *VotingHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	candidateID := r.PathValue("id")
	if candidateID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "candidate id is required")
		return
	}

	applied, err := h.engine.CastVote(r.Context(), user.ID, candidateID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.VoteResponse{
		CandidateID: candidateID,
		Applied:     applied,
		Message:     voteMessage(applied, "Vote recorded", "You already voted for this restaurant"),
	})
}

// RetractVote handles DELETE /candidates/{id}/vote
func (h *VotingHandler) RetractVote(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	candidateID := r.PathValue("id")
	if candidateID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "candidate id is required")
		return
	}

	applied, err := h.engine.RetractVote(r.Context(), user.ID, candidateID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.VoteResponse{
		CandidateID: candidateID,
		Applied:     applied,
		Message:     voteMessage(applied, "Vote withdrawn", "No vote to withdraw"),
	})
}

// SwitchVote handles PUT /vote
func (h *VotingHandler) SwitchVote(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req models.SwitchVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	req.CandidateID = strings.TrimSpace(req.CandidateID)
	if req.CandidateID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "candidate_id is required")
		return
	}

	applied, err := h.engine.SwitchVote(r.Context(), user.ID, req.CandidateID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.VoteResponse{
		CandidateID: req.CandidateID,
		Applied:     applied,
		Message:     voteMessage(applied, "Vote moved", "Your vote already goes to this restaurant"),
	})
}

// GetWinner handles GET /winner. Winner is null when nobody voted.
func (h *VotingHandler) GetWinner(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(w, r); !ok {
		return
	}

	resp, err := h.engine.Winner(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}

// GetStatus handles GET /status
func (h *VotingHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(w, r); !ok {
		return
	}

	status, err := h.engine.Status(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, status)
}
