// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the lunchpick API.

NewRouter creates a configured http.ServeMux from the engines:

	mux := router.NewRouter(router.Deps{
		Profiles: people,
		Voting:   votes,
		Ordering: orders,
		Tokens:   authority,
	})

GET /health and GET / are public. Every other route is wrapped with
middleware.WithLogging and middleware.RequireIdentity, so handlers always see
the caller's identity.
*/
package router
