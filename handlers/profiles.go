// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"net/http"

	"github.com/danielhkuo/lunchpick/middleware"
	"github.com/danielhkuo/lunchpick/models"
	"github.com/danielhkuo/lunchpick/profiles"
)

type ProfileHandler struct {
	profiles *profiles.Service
}

func NewProfileHandler(svc *profiles.Service) *ProfileHandler {
	return &ProfileHandler{profiles: svc}
}

// GetMe handles GET /me
func (h *ProfileHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	resp := models.MeResponse{UserID: user.ID, DisplayName: user.DisplayName}

	// A user without a profile yet is still signed in
	profile, err := h.profiles.Get(r.Context(), user.ID)
	switch {
	case err == nil:
		resp.Profile = &profile
	case !errors.Is(err, profiles.ErrNotFound):
		writeError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}

// GetProfile handles GET /profile
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	profile, err := h.profiles.Get(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, profile)
}

// SaveProfile handles PUT /profile
func (h *ProfileHandler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req models.SaveProfileRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	profile, err := h.profiles.Save(r.Context(), user.ID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, profile)
}

// ListTeam handles GET /team
func (h *ProfileHandler) ListTeam(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(w, r); !ok {
		return
	}

	team, err := h.profiles.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if team == nil {
		team = []models.Profile{}
	}

	middleware.JSONResponse(w, http.StatusOK, team)
}
