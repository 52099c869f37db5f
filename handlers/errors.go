// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/lunchpick/auth"
	"github.com/danielhkuo/lunchpick/db"
	"github.com/danielhkuo/lunchpick/middleware"
	"github.com/danielhkuo/lunchpick/ordering"
	"github.com/danielhkuo/lunchpick/profiles"
	"github.com/danielhkuo/lunchpick/voting"
)

// statusFor maps domain errors to HTTP status codes.
// Unknown errors are 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, profiles.ErrMissingField),
		errors.Is(err, profiles.ErrInvalidPhone),
		errors.Is(err, voting.ErrMissingField),
		errors.Is(err, voting.ErrInvalidPhone),
		errors.Is(err, ordering.ErrInvalidOrder),
		errors.Is(err, ordering.ErrNegativeFee),
		errors.Is(err, ordering.ErrFeeTooLarge):
		return http.StatusBadRequest

	case errors.Is(err, auth.ErrNoIdentity):
		return http.StatusUnauthorized

	case errors.Is(err, ordering.ErrForbidden):
		return http.StatusForbidden

	case errors.Is(err, profiles.ErrNotFound),
		errors.Is(err, voting.ErrCandidateNotFound),
		errors.Is(err, ordering.ErrOrderNotFound),
		errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, voting.ErrDuplicateCandidate),
		errors.Is(err, voting.ErrVotingClosed),
		errors.Is(err, voting.ErrVotingOpen),
		errors.Is(err, ordering.ErrNoWinner),
		errors.Is(err, ordering.ErrOrdersClosed),
		errors.Is(err, ordering.ErrOrdersOpen):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// writeError answers with the status for err. Store failures are logged and
// replaced by a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		middleware.ErrorResponse(w, status, "Something went wrong, please try again")
		return
	}
	middleware.ErrorResponse(w, status, err.Error())
}

// currentUser returns the identity placed on the request by RequireIdentity
func currentUser(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	id, err := auth.FromContext(r.Context())
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Sign in required")
		return auth.Identity{}, false
	}
	return id, true
}
