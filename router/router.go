// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/lunchpick/handlers"
	"github.com/danielhkuo/lunchpick/middleware"
	"github.com/danielhkuo/lunchpick/ordering"
	"github.com/danielhkuo/lunchpick/profiles"
	"github.com/danielhkuo/lunchpick/voting"
)

// Deps are the services the routes are served from
type Deps struct {
	Profiles *profiles.Service
	Voting   *voting.Engine
	Ordering *ordering.Engine
	Tokens   middleware.TokenVerifier
}

func NewRouter(deps Deps) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	profileHandler := handlers.NewProfileHandler(deps.Profiles)
	votingHandler := handlers.NewVotingHandler(deps.Voting)
	orderHandler := handlers.NewOrderHandler(deps.Ordering)

	// Every API route is logged and requires a signed-in user
	authed := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.RequireIdentity(deps.Tokens, h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Identity and profiles
	mux.HandleFunc("GET /me", authed(profileHandler.GetMe))
	mux.HandleFunc("GET /profile", authed(profileHandler.GetProfile))
	mux.HandleFunc("PUT /profile", authed(profileHandler.SaveProfile))
	mux.HandleFunc("GET /team", authed(profileHandler.ListTeam))

	// Voting (before the deadline)
	mux.HandleFunc("GET /status", authed(votingHandler.GetStatus))
	mux.HandleFunc("GET /candidates", authed(votingHandler.ListCandidates))
	mux.HandleFunc("POST /candidates", authed(votingHandler.ProposeCandidate))
	mux.HandleFunc("GET /restaurants/suggestions", authed(votingHandler.Suggestions))
	mux.HandleFunc("POST /candidates/{id}/vote", authed(votingHandler.CastVote))
	mux.HandleFunc("DELETE /candidates/{id}/vote", authed(votingHandler.RetractVote))
	mux.HandleFunc("PUT /vote", authed(votingHandler.SwitchVote))
	mux.HandleFunc("GET /winner", authed(votingHandler.GetWinner))

	// Ordering (after the deadline)
	mux.HandleFunc("GET /orders", authed(orderHandler.GetSummary))
	mux.HandleFunc("POST /orders", authed(orderHandler.SubmitOrder))
	mux.HandleFunc("POST /orders/close", authed(orderHandler.CloseOrders))
	mux.HandleFunc("POST /orders/{id}/paid", authed(orderHandler.TogglePaid))
	mux.HandleFunc("GET /history", authed(orderHandler.GetHistory))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("lunchpick API v1"))
	})

	return mux
}
