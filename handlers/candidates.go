// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/lunchpick/middleware"
	"github.com/danielhkuo/lunchpick/models"
)

// ListCandidates handles GET /candidates
func (h *VotingHandler) ListCandidates(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	board, err := h.engine.Board(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, board)
}

// ProposeCandidate handles POST /candidates
func (h *VotingHandler) ProposeCandidate(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req models.ProposeCandidateRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	candidate, err := h.engine.ProposeCandidate(r.Context(), req.Name, req.MenuURL, user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, candidate)
}

// Suggestions handles GET /restaurants/suggestions?q=
func (h *VotingHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(w, r); !ok {
		return
	}

	entries, err := h.engine.Suggestions(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, entries)
}
