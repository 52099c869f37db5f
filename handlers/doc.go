// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the lunchpick API.

# Handler Types

Each handler wraps one engine:

  - ProfileHandler: profiles and the team list (profiles.Service)
  - VotingHandler: candidates, votes, winner, and status (voting.Engine)
  - OrderHandler: orders, closing, payments, and history (ordering.Engine)

Every handler expects the caller's identity on the request context, placed
there by middleware.RequireIdentity. Requests without one get 401.

# Daily Flow

Before the deadline:

	POST   /candidates            → ProposeCandidate
	POST   /candidates/{id}/vote  → CastVote
	DELETE /candidates/{id}/vote  → RetractVote
	PUT    /vote                  → SwitchVote

After the deadline:

	GET  /winner            → GetWinner
	POST /orders            → SubmitOrder (create or replace)
	POST /orders/close      → CloseOrders (orderer or admin)
	POST /orders/{id}/paid  → TogglePaid (orderer or admin, after close)

# Errors

Engine errors are mapped to status codes in errors.go: validation 400,
permission 403, missing records 404, and phase conflicts 409. Anything
else is logged and answered with a generic 500.
*/
package handlers
