// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the lunchpick API server.

lunchpick runs a team's daily lunch: colleagues propose restaurants and vote
until the deadline, then everyone orders from the winner, the orderer closes
the orders with the delivery fee, and each participant sees what they owe.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	AUTH_JWT_SECRET=... DATABASE_URL=lunch.db go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." -tz Europe/Warsaw -deadline 11:30

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite file, PostgreSQL or MongoDB connection string
  - AUTH_JWT_SECRET (-jwt-secret): HS256 secret shared with the identity provider

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite, postgres or mongo (default: sqlite)
  - DATABASE_NAME (-db-name): MongoDB database (default: lunchpick)
  - TIMEZONE (-tz): day boundaries (default: Local)
  - VOTING_DEADLINE (-deadline): HH:MM (default: 12:00)

A .env file is loaded when present (-env-file).

# Tokens

Operators can mint a bearer token without an identity provider:

	go run . token -sub ann -name "Ann Lee" -ttl 24h

# Architecture

  - schedule: day keys, the deadline, and the midnight/deadline scheduler
  - voting: candidates, votes, and the winner
  - ordering: orders, closing, bills, and history
  - profiles: user profiles and the admin flag
  - handlers, router, middleware: the HTTP API
  - db: SQL and MongoDB stores
  - auth: bearer token issue and verification
  - cliparse: configuration parsing
*/
package main
