// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/lunchpick/models"
	"github.com/danielhkuo/lunchpick/testutil"
)

func TestGetMe(t *testing.T) {
	env := setupHandlers(t)

	t.Run("without profile", func(t *testing.T) {
		req := asUser(httptest.NewRequest("GET", "/me", nil), "newcomer")
		w := httptest.NewRecorder()

		env.profiles.GetMe(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)
		var resp models.MeResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.UserID != "newcomer" || resp.Profile != nil {
			t.Errorf("Unexpected response: %+v", resp)
		}
	})

	t.Run("with profile", func(t *testing.T) {
		testutil.CreateTestProfile(t, env.store, "ann", "Ann", false)
		req := asUser(httptest.NewRequest("GET", "/me", nil), "ann")
		w := httptest.NewRecorder()

		env.profiles.GetMe(w, req)

		var resp models.MeResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.Profile == nil || resp.Profile.FirstName != "Ann" {
			t.Errorf("Expected Ann's profile, got %+v", resp.Profile)
		}
	})
}

func TestGetProfileNotFound(t *testing.T) {
	env := setupHandlers(t)

	req := asUser(httptest.NewRequest("GET", "/profile", nil), "ghost")
	w := httptest.NewRecorder()

	env.profiles.GetProfile(w, req)

	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestSaveProfile(t *testing.T) {
	env := setupHandlers(t)

	testCases := []struct {
		name           string
		body           interface{}
		expectedStatus int
	}{
		{
			name:           "valid profile",
			body:           models.SaveProfileRequest{FirstName: "Ann", LastName: "Lee", PhoneNumber: "600700800"},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "short phone",
			body:           models.SaveProfileRequest{FirstName: "Ann", LastName: "Lee", PhoneNumber: "12345"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing last name",
			body:           models.SaveProfileRequest{FirstName: "Ann", PhoneNumber: "600700800"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid JSON",
			body:           "not an object",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := asUser(testutil.MakeRequest("PUT", "/profile", tc.body, nil), "ann")
			w := httptest.NewRecorder()

			env.profiles.SaveProfile(w, req)

			testutil.AssertStatus(t, w, tc.expectedStatus)
		})
	}

	// The valid case above persisted the profile
	req := asUser(httptest.NewRequest("GET", "/profile", nil), "ann")
	w := httptest.NewRecorder()
	env.profiles.GetProfile(w, req)

	var profile models.Profile
	testutil.AssertJSON(t, w, &profile)
	if profile.PhoneNumber != "600700800" || profile.IsAdmin {
		t.Errorf("Unexpected stored profile: %+v", profile)
	}
}

func TestListTeam(t *testing.T) {
	env := setupHandlers(t)

	req := asUser(httptest.NewRequest("GET", "/team", nil), "ann")
	w := httptest.NewRecorder()
	env.profiles.ListTeam(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	if body := w.Body.String(); body != "[]\n" {
		t.Errorf("Expected empty array for empty team, got %q", body)
	}

	testutil.CreateTestProfile(t, env.store, "ben", "Ben", false)
	testutil.CreateTestProfile(t, env.store, "ann", "Ann", true)

	w = httptest.NewRecorder()
	env.profiles.ListTeam(w, req)

	var team []models.Profile
	testutil.AssertJSON(t, w, &team)
	if len(team) != 2 || team[0].FirstName != "Ann" {
		t.Errorf("Expected team sorted by first name, got %+v", team)
	}
}
