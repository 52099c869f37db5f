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

	"github.com/danielhkuo/lunchpick/models"
)

// Database types accepted by Open
const (
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
	TypeMongo    = "mongo"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
)

// Store is the document-store contract the engines are built on.
// Every method is a single remote operation; none of them hold locks
// across calls.
type Store interface {
	ListCandidates(ctx context.Context, day string) ([]models.Candidate, error)
	GetCandidate(ctx context.Context, id string) (models.Candidate, error)
	InsertCandidate(ctx context.Context, c models.Candidate) error
	PurgeCandidates(ctx context.Context, beforeDay string) (int64, error)

	ListDirectory(ctx context.Context) ([]models.DirectoryEntry, error)
	InsertDirectoryEntry(ctx context.Context, e models.DirectoryEntry) error

	ListVotes(ctx context.Context, day string) ([]models.Vote, error)
	InsertVote(ctx context.Context, v models.Vote) error
	DeleteVotes(ctx context.Context, voterID, candidateID, day string) (int64, error)

	GetProfile(ctx context.Context, userID string) (models.Profile, error)
	SaveProfile(ctx context.Context, p models.Profile) (models.Profile, error)
	ListProfiles(ctx context.Context) ([]models.Profile, error)
	SetAdmin(ctx context.Context, userID string, admin bool, at time.Time) error

	ListOrders(ctx context.Context, day, restaurantID string) ([]models.Order, error)
	GetOrder(ctx context.Context, id string) (models.Order, error)
	UpsertOrder(ctx context.Context, o models.Order) (models.Order, bool, error)
	TogglePaid(ctx context.Context, id string, at time.Time) (bool, error)
	ListOrdersByUser(ctx context.Context, userID, fromDay, toDay string) ([]models.Order, error)

	GetClosure(ctx context.Context, day, restaurantID string) (models.Closure, error)
	InsertClosure(ctx context.Context, c models.Closure) error

	Close() error
}

// Open connects to the configured backend and makes sure the schema or
// indexes exist
func Open(ctx context.Context, dbType, url, name string) (Store, error) {
	switch dbType {
	case TypeMongo:
		store, err := OpenMongo(ctx, url, name)
		if err != nil {
			return nil, err
		}
		return store, nil
	case TypeSQLite, TypePostgres:
	default:
		return nil, fmt.Errorf("unsupported database type %q", dbType)
	}

	conn, err := sql.Open(dbType, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to an in-memory SQLite database is a separate database
	if dbType == TypeSQLite && strings.Contains(url, ":memory:") {
		conn.SetMaxOpenConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	if err := CreateSchema(conn); err != nil {
		conn.Close()
		return nil, err
	}

	return NewSQLStore(conn), nil
}
