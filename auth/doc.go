// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth verifies and issues the bearer tokens that identify users.

# Tokens

Tokens are HS256 JWTs. The subject claim is the stable user id and the name
claim the display name:

	authority, err := auth.NewTokenAuthority(secret, auth.DefaultTokenTTL)
	token, err := authority.Issue(auth.Identity{ID: "ann", DisplayName: "Ann"})
	id, err := authority.Verify(token)

Verify returns ErrExpiredToken for expired tokens and wraps ErrInvalidToken
for anything else it rejects, including tokens signed with another algorithm.

# Request Identity

	token := auth.BearerToken(r.Header.Get("Authorization"))
	ctx = auth.WithIdentity(ctx, id)
	id, err := auth.FromContext(ctx)

# ID Generation

Random UUIDs for stored records:

	id := auth.NewID()
*/
package auth
