// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/lunchpick/auth"
	"github.com/danielhkuo/lunchpick/db"
	"github.com/danielhkuo/lunchpick/models"
	"github.com/danielhkuo/lunchpick/ordering"
	"github.com/danielhkuo/lunchpick/profiles"
	"github.com/danielhkuo/lunchpick/schedule/scheduletest"
	"github.com/danielhkuo/lunchpick/testutil"
	"github.com/danielhkuo/lunchpick/voting"
)

type testEnv struct {
	store    *db.SQLStore
	clock    *scheduletest.ManualClock
	profiles *ProfileHandler
	voting   *VotingHandler
	orders   *OrderHandler
}

// setupHandlers wires every handler to one in-memory store with the clock at
// 09:00 on the test day
func setupHandlers(t *testing.T) testEnv {
	t.Helper()

	store := testutil.SetupTestStore(t)
	clock := scheduletest.NewManualClock(testutil.At(9, 0))

	people := profiles.NewService(store, clock)
	votes := voting.NewEngine(store, clock, testutil.TestWindow, nil)
	orders := ordering.NewEngine(store, clock, testutil.TestWindow, votes, people, nil)

	return testEnv{
		store:    store,
		clock:    clock,
		profiles: NewProfileHandler(people),
		voting:   NewVotingHandler(votes),
		orders:   NewOrderHandler(orders),
	}
}

// asUser attaches a signed-in identity the way RequireIdentity does
func asUser(r *http.Request, userID string) *http.Request {
	return r.WithContext(auth.WithIdentity(r.Context(), auth.Identity{ID: userID, DisplayName: userID}))
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp models.ErrorResponse
	testutil.AssertJSON(t, w, &resp)
	return resp.Message
}

func TestStatusFor(t *testing.T) {
	testCases := []struct {
		err      error
		expected int
	}{
		{profiles.ErrInvalidPhone, http.StatusBadRequest},
		{voting.ErrMissingField, http.StatusBadRequest},
		{ordering.ErrNegativeFee, http.StatusBadRequest},
		{ordering.ErrFeeTooLarge, http.StatusBadRequest},
		{auth.ErrNoIdentity, http.StatusUnauthorized},
		{ordering.ErrForbidden, http.StatusForbidden},
		{voting.ErrCandidateNotFound, http.StatusNotFound},
		{fmt.Errorf("failed to load: %w", db.ErrNotFound), http.StatusNotFound},
		{voting.ErrDuplicateCandidate, http.StatusConflict},
		{voting.ErrVotingClosed, http.StatusConflict},
		{ordering.ErrVotingOpen, http.StatusConflict},
		{ordering.ErrOrdersClosed, http.StatusConflict},
		{errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			if got := statusFor(tc.err); got != tc.expected {
				t.Errorf("Expected status %d, got %d", tc.expected, got)
			}
		})
	}
}

func TestWriteErrorHidesInternalErrors(t *testing.T) {
	req := httptest.NewRequest("GET", "/orders", nil)
	w := httptest.NewRecorder()

	writeError(w, req, errors.New("pq: password authentication failed"))

	testutil.AssertStatus(t, w, http.StatusInternalServerError)
	if msg := errorMessage(t, w); msg != "Something went wrong, please try again" {
		t.Errorf("Internal error leaked to client: %q", msg)
	}
}

func TestHandlersRequireIdentity(t *testing.T) {
	env := setupHandlers(t)

	testCases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"GetMe", env.profiles.GetMe},
		{"SaveProfile", env.profiles.SaveProfile},
		{"ListCandidates", env.voting.ListCandidates},
		{"CastVote", env.voting.CastVote},
		{"GetStatus", env.voting.GetStatus},
		{"SubmitOrder", env.orders.SubmitOrder},
		{"GetHistory", env.orders.GetHistory},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			w := httptest.NewRecorder()

			tc.handler(w, req)

			testutil.AssertStatus(t, w, http.StatusUnauthorized)
		})
	}
}
