// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
// The statements are valid for both PostgreSQL and SQLite.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Restaurants proposed for one day's vote
CREATE TABLE IF NOT EXISTS candidate (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    menu_url TEXT NOT NULL,
    proposer_id TEXT NOT NULL,
    day_key TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    UNIQUE (day_key, menu_url)
);

CREATE INDEX IF NOT EXISTS idx_candidate_day_key ON candidate(day_key);

-- Every restaurant ever proposed, for autocomplete
CREATE TABLE IF NOT EXISTS restaurant_directory (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    menu_url TEXT NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_restaurant_directory_name ON restaurant_directory(LOWER(name));

-- Votes outlive the candidates they point at
CREATE TABLE IF NOT EXISTS vote (
    id TEXT PRIMARY KEY,
    voter_id TEXT NOT NULL,
    candidate_id TEXT NOT NULL,
    day_key TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_vote_day_key ON vote(day_key);
CREATE INDEX IF NOT EXISTS idx_vote_voter ON vote(voter_id, candidate_id, day_key);

-- Profiles
CREATE TABLE IF NOT EXISTS user_profile (
    user_id TEXT PRIMARY KEY,
    first_name TEXT NOT NULL,
    last_name TEXT NOT NULL,
    phone_number TEXT NOT NULL,
    is_admin BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

-- Orders, one per user per day
CREATE TABLE IF NOT EXISTS food_order (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    restaurant_id TEXT NOT NULL,
    restaurant_name TEXT NOT NULL,
    dish_name TEXT NOT NULL,
    price_cents BIGINT NOT NULL CHECK (price_cents >= 0),
    day_key TEXT NOT NULL,
    is_paid BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    UNIQUE (user_id, day_key)
);

CREATE INDEX IF NOT EXISTS idx_food_order_day_restaurant ON food_order(day_key, restaurant_id);

-- Closing record: one per restaurant per day, holds the delivery fee
CREATE TABLE IF NOT EXISTS order_closure (
    day_key TEXT NOT NULL,
    restaurant_id TEXT NOT NULL,
    delivery_fee_cents BIGINT NOT NULL CHECK (delivery_fee_cents >= 0),
    closed_by TEXT NOT NULL,
    orderer_id TEXT NOT NULL,
    closed_at TIMESTAMP NOT NULL,
    PRIMARY KEY (day_key, restaurant_id)
);
`
