// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/danielhkuo/lunchpick/models"
)

// SQLStore implements Store on PostgreSQL or SQLite through database/sql.
// Queries use $N placeholders, which both drivers accept.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// DB exposes the underlying handle (used by tests and schema tooling)
func (s *SQLStore) DB() *sql.DB {
	return s.db
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

// isUniqueViolation recognises duplicate-key errors from both drivers
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		case sqlite3.SQLITE_CONSTRAINT:
			// primary code only, when extended codes are off
			return strings.Contains(liteErr.Error(), "UNIQUE")
		}
	}

	return false
}

type scanner interface {
	Scan(dest ...interface{}) error
}

// Candidates

const candidateColumns = `id, name, menu_url, proposer_id, day_key, created_at`

func scanCandidate(row scanner) (models.Candidate, error) {
	var c models.Candidate
	err := row.Scan(&c.ID, &c.Name, &c.MenuURL, &c.ProposerID, &c.Day, &c.CreatedAt)
	return c, err
}

func (s *SQLStore) ListCandidates(ctx context.Context, day string) ([]models.Candidate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+candidateColumns+`
		FROM candidate
		WHERE day_key = $1
		ORDER BY created_at, id
	`, day)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	candidates := []models.Candidate{}
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

func (s *SQLStore) GetCandidate(ctx context.Context, id string) (models.Candidate, error) {
	c, err := scanCandidate(s.db.QueryRowContext(ctx, `
		SELECT `+candidateColumns+` FROM candidate WHERE id = $1
	`, id))
	if err == sql.ErrNoRows {
		return models.Candidate{}, ErrNotFound
	}
	if err != nil {
		return models.Candidate{}, fmt.Errorf("failed to query candidate: %w", err)
	}
	return c, nil
}

func (s *SQLStore) InsertCandidate(ctx context.Context, c models.Candidate) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO candidate (id, name, menu_url, proposer_id, day_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, c.ID, c.Name, c.MenuURL, c.ProposerID, c.Day, c.CreatedAt.UTC())
	if isUniqueViolation(err) {
		return ErrConflict
	}
	if err != nil {
		return fmt.Errorf("failed to insert candidate: %w", err)
	}
	return nil
}

func (s *SQLStore) PurgeCandidates(ctx context.Context, beforeDay string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM candidate WHERE day_key < $1`, beforeDay)
	if err != nil {
		return 0, fmt.Errorf("failed to purge candidates: %w", err)
	}
	return res.RowsAffected()
}

// Directory

func (s *SQLStore) ListDirectory(ctx context.Context) ([]models.DirectoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, menu_url FROM restaurant_directory ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query directory: %w", err)
	}
	defer rows.Close()

	entries := []models.DirectoryEntry{}
	for rows.Next() {
		var e models.DirectoryEntry
		if err := rows.Scan(&e.ID, &e.Name, &e.MenuURL); err != nil {
			return nil, fmt.Errorf("failed to scan directory entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SQLStore) InsertDirectoryEntry(ctx context.Context, e models.DirectoryEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO restaurant_directory (id, name, menu_url) VALUES ($1, $2, $3)
	`, e.ID, e.Name, e.MenuURL)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	if err != nil {
		return fmt.Errorf("failed to insert directory entry: %w", err)
	}
	return nil
}

// Votes

func (s *SQLStore) ListVotes(ctx context.Context, day string) ([]models.Vote, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, voter_id, candidate_id, day_key, created_at
		FROM vote
		WHERE day_key = $1
		ORDER BY created_at, id
	`, day)
	if err != nil {
		return nil, fmt.Errorf("failed to query votes: %w", err)
	}
	defer rows.Close()

	votes := []models.Vote{}
	for rows.Next() {
		var v models.Vote
		if err := rows.Scan(&v.ID, &v.VoterID, &v.CandidateID, &v.Day, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		votes = append(votes, v)
	}
	return votes, rows.Err()
}

func (s *SQLStore) InsertVote(ctx context.Context, v models.Vote) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO vote (id, voter_id, candidate_id, day_key, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, v.ID, v.VoterID, v.CandidateID, v.Day, v.CreatedAt.UTC())
	if isUniqueViolation(err) {
		return ErrConflict
	}
	if err != nil {
		return fmt.Errorf("failed to insert vote: %w", err)
	}
	return nil
}

func (s *SQLStore) DeleteVotes(ctx context.Context, voterID, candidateID, day string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM vote WHERE voter_id = $1 AND candidate_id = $2 AND day_key = $3
	`, voterID, candidateID, day)
	if err != nil {
		return 0, fmt.Errorf("failed to delete votes: %w", err)
	}
	return res.RowsAffected()
}

// Profiles

const profileColumns = `user_id, first_name, last_name, phone_number, is_admin, created_at, updated_at`

func scanProfile(row scanner) (models.Profile, error) {
	var p models.Profile
	err := row.Scan(&p.UserID, &p.FirstName, &p.LastName, &p.PhoneNumber, &p.IsAdmin, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (s *SQLStore) GetProfile(ctx context.Context, userID string) (models.Profile, error) {
	p, err := scanProfile(s.db.QueryRowContext(ctx, `
		SELECT `+profileColumns+` FROM user_profile WHERE user_id = $1
	`, userID))
	if err == sql.ErrNoRows {
		return models.Profile{}, ErrNotFound
	}
	if err != nil {
		return models.Profile{}, fmt.Errorf("failed to query profile: %w", err)
	}
	return p, nil
}

// SaveProfile creates the profile or updates its contact fields.
// The admin flag and creation time of an existing profile are kept.
func (s *SQLStore) SaveProfile(ctx context.Context, p models.Profile) (models.Profile, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_profile (user_id, first_name, last_name, phone_number, is_admin, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE SET
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			phone_number = excluded.phone_number,
			updated_at = excluded.updated_at
	`, p.UserID, p.FirstName, p.LastName, p.PhoneNumber, p.IsAdmin, p.CreatedAt.UTC(), p.UpdatedAt.UTC())
	if err != nil {
		return models.Profile{}, fmt.Errorf("failed to save profile: %w", err)
	}
	return s.GetProfile(ctx, p.UserID)
}

// SetAdmin changes the admin flag of an existing profile
func (s *SQLStore) SetAdmin(ctx context.Context, userID string, admin bool, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE user_profile SET is_admin = $1, updated_at = $2 WHERE user_id = $3
	`, admin, at.UTC(), userID)
	if err != nil {
		return fmt.Errorf("failed to update admin flag: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update admin flag: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+profileColumns+` FROM user_profile ORDER BY first_name, last_name, user_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer rows.Close()

	profiles := []models.Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// Orders

const orderColumns = `id, user_id, restaurant_id, restaurant_name, dish_name, price_cents, day_key, is_paid, created_at, updated_at`

func scanOrder(row scanner) (models.Order, error) {
	var o models.Order
	err := row.Scan(&o.ID, &o.UserID, &o.RestaurantID, &o.RestaurantName, &o.DishName,
		&o.PriceCents, &o.Day, &o.Paid, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

func (s *SQLStore) queryOrders(ctx context.Context, query string, args ...interface{}) ([]models.Order, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (s *SQLStore) ListOrders(ctx context.Context, day, restaurantID string) ([]models.Order, error) {
	return s.queryOrders(ctx, `
		SELECT `+orderColumns+`
		FROM food_order
		WHERE day_key = $1 AND restaurant_id = $2
		ORDER BY created_at, id
	`, day, restaurantID)
}

func (s *SQLStore) ListOrdersByUser(ctx context.Context, userID, fromDay, toDay string) ([]models.Order, error) {
	return s.queryOrders(ctx, `
		SELECT `+orderColumns+`
		FROM food_order
		WHERE user_id = $1 AND day_key >= $2 AND day_key <= $3
		ORDER BY day_key DESC, created_at DESC
	`, userID, fromDay, toDay)
}

func (s *SQLStore) GetOrder(ctx context.Context, id string) (models.Order, error) {
	o, err := scanOrder(s.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+` FROM food_order WHERE id = $1
	`, id))
	if err == sql.ErrNoRows {
		return models.Order{}, ErrNotFound
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("failed to query order: %w", err)
	}
	return o, nil
}

// UpsertOrder writes the user's order for o.Day. An existing order keeps its
// id, restaurant, paid flag and creation time; only dish, price and
// updated_at change. The boolean reports whether a new row was inserted.
func (s *SQLStore) UpsertOrder(ctx context.Context, o models.Order) (models.Order, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Order{}, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var existingID string
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM food_order WHERE user_id = $1 AND day_key = $2
	`, o.UserID, o.Day).Scan(&existingID)

	created := err == sql.ErrNoRows
	if err != nil && !created {
		return models.Order{}, false, fmt.Errorf("failed to query order: %w", err)
	}

	if created {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO food_order (id, user_id, restaurant_id, restaurant_name, dish_name, price_cents, day_key, is_paid, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, o.ID, o.UserID, o.RestaurantID, o.RestaurantName, o.DishName, o.PriceCents, o.Day, false,
			o.CreatedAt.UTC(), o.UpdatedAt.UTC())
		if isUniqueViolation(err) {
			return models.Order{}, false, ErrConflict
		}
		if err != nil {
			return models.Order{}, false, fmt.Errorf("failed to insert order: %w", err)
		}
		existingID = o.ID
	} else {
		_, err = tx.ExecContext(ctx, `
			UPDATE food_order
			SET dish_name = $1, price_cents = $2, updated_at = $3
			WHERE id = $4
		`, o.DishName, o.PriceCents, o.UpdatedAt.UTC(), existingID)
		if err != nil {
			return models.Order{}, false, fmt.Errorf("failed to update order: %w", err)
		}
	}

	stored, err := scanOrder(tx.QueryRowContext(ctx, `
		SELECT `+orderColumns+` FROM food_order WHERE id = $1
	`, existingID))
	if err != nil {
		return models.Order{}, false, fmt.Errorf("failed to reload order: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.Order{}, false, fmt.Errorf("failed to commit order: %w", err)
	}
	return stored, created, nil
}

// TogglePaid flips the paid flag in one statement and returns the new value
func (s *SQLStore) TogglePaid(ctx context.Context, id string, at time.Time) (bool, error) {
	var paid bool
	err := s.db.QueryRowContext(ctx, `
		UPDATE food_order
		SET is_paid = NOT is_paid, updated_at = $2
		WHERE id = $1
		RETURNING is_paid
	`, id, at.UTC()).Scan(&paid)
	if err == sql.ErrNoRows {
		return false, ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("failed to toggle paid flag: %w", err)
	}
	return paid, nil
}

// Closures

func (s *SQLStore) GetClosure(ctx context.Context, day, restaurantID string) (models.Closure, error) {
	var c models.Closure
	err := s.db.QueryRowContext(ctx, `
		SELECT day_key, restaurant_id, delivery_fee_cents, closed_by, orderer_id, closed_at
		FROM order_closure
		WHERE day_key = $1 AND restaurant_id = $2
	`, day, restaurantID).Scan(&c.Day, &c.RestaurantID, &c.DeliveryFeeCents, &c.ClosedBy, &c.OrdererID, &c.ClosedAt)
	if err == sql.ErrNoRows {
		return models.Closure{}, ErrNotFound
	}
	if err != nil {
		return models.Closure{}, fmt.Errorf("failed to query closure: %w", err)
	}
	return c, nil
}

func (s *SQLStore) InsertClosure(ctx context.Context, c models.Closure) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO order_closure (day_key, restaurant_id, delivery_fee_cents, closed_by, orderer_id, closed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, c.Day, c.RestaurantID, c.DeliveryFeeCents, c.ClosedBy, c.OrdererID, c.ClosedAt.UTC())
	if isUniqueViolation(err) {
		return ErrConflict
	}
	if err != nil {
		return fmt.Errorf("failed to insert closure: %w", err)
	}
	return nil
}
