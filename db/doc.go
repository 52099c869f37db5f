// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db stores lunchpick's documents.

# Backends

Open picks a Store implementation by type:

	store, err := db.Open(ctx, db.TypeSQLite, "lunch.db", "")
	store, err := db.Open(ctx, db.TypePostgres, "postgres://...", "")
	store, err := db.Open(ctx, db.TypeMongo, "mongodb://...", "lunchpick")

SQLite and PostgreSQL share SQLStore and CreateSchema. MongoStore keeps one
collection per table and creates matching unique indexes.

# Tables

  - candidate: restaurants proposed for one day
  - restaurant_directory: every restaurant name seen, for autocomplete
  - vote: one row per (voter, candidate) vote
  - user_profile: names, phone number, admin flag
  - food_order: one order per user per day
  - order_closure: the delivery fee and orderer, once orders are closed

Unique violations surface as ErrConflict and missing rows as ErrNotFound.
*/
package db
