// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/lunchpick/auth"
	"github.com/danielhkuo/lunchpick/cliparse"
	"github.com/danielhkuo/lunchpick/db"
	"github.com/danielhkuo/lunchpick/models"
	"github.com/danielhkuo/lunchpick/schedule"
)

// TestSecret signs tokens in tests
const TestSecret = "test-jwt-secret"

// TestDay is the calendar day most tests run on (a Wednesday)
const TestDay = "2025-03-12"

// TestWindow closes voting at noon UTC
var TestWindow = schedule.DefaultWindow(time.UTC)

// At returns TestDay at hh:mm UTC
func At(hour, minute int) time.Time {
	return time.Date(2025, 3, 12, hour, minute, 0, 0, time.UTC)
}

// SetupTestStore opens a fresh in-memory SQLite store with the full schema
func SetupTestStore(t *testing.T) *db.SQLStore {
	t.Helper()

	conn, err := sql.Open(db.TypeSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	// Each connection would get its own empty database
	conn.SetMaxOpenConns(1)

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	store := db.NewSQLStore(conn)
	t.Cleanup(func() { store.Close() })
	return store
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3318,
		DatabaseURL:  ":memory:",
		DatabaseType: db.TypeSQLite,
		JWTSecret:    TestSecret,
		Window:       TestWindow,
	}
}

// NewTestAuthority returns a token authority using TestSecret
func NewTestAuthority(t *testing.T) *auth.TokenAuthority {
	t.Helper()
	a, err := auth.NewTokenAuthority(TestSecret, time.Hour)
	if err != nil {
		t.Fatalf("Failed to create token authority: %v", err)
	}
	return a
}

// TokenFor issues a bearer token for userID
func TokenFor(t *testing.T, a *auth.TokenAuthority, userID string) string {
	t.Helper()
	token, err := a.Issue(auth.Identity{ID: userID, DisplayName: userID})
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	return token
}

// AuthHeader returns request headers carrying the token
func AuthHeader(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

// CreateTestProfile stores a profile with a valid phone number
func CreateTestProfile(t *testing.T, store db.Store, userID, firstName string, admin bool) models.Profile {
	t.Helper()

	now := At(8, 0)
	p, err := store.SaveProfile(context.Background(), models.Profile{
		UserID:      userID,
		FirstName:   firstName,
		LastName:    "Tester",
		PhoneNumber: "123456789",
		IsAdmin:     admin,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("Failed to create test profile: %v", err)
	}
	return p
}

// CreateTestCandidate inserts a candidate for day directly into the store
func CreateTestCandidate(t *testing.T, store db.Store, day, name, proposerID string, createdAt time.Time) models.Candidate {
	t.Helper()

	c := models.Candidate{
		ID:         auth.NewID(),
		Name:       name,
		MenuURL:    "https://menu.example/" + name,
		ProposerID: proposerID,
		Day:        day,
		CreatedAt:  createdAt,
	}
	if err := store.InsertCandidate(context.Background(), c); err != nil {
		t.Fatalf("Failed to create test candidate: %v", err)
	}
	return c
}

// CreateTestVote records a vote directly, bypassing the deadline check
func CreateTestVote(t *testing.T, store db.Store, day, voterID, candidateID string, createdAt time.Time) models.Vote {
	t.Helper()

	v := models.Vote{
		ID:          auth.NewID(),
		VoterID:     voterID,
		CandidateID: candidateID,
		Day:         day,
		CreatedAt:   createdAt,
	}
	if err := store.InsertVote(context.Background(), v); err != nil {
		t.Fatalf("Failed to create test vote: %v", err)
	}
	return v
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
