// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielhkuo/lunchpick/auth"
	"github.com/danielhkuo/lunchpick/models"
)

func TestWithLogging_PreservesResponse(t *testing.T) {
	testCases := []struct {
		name       string
		statusCode int
		body       string
	}{
		{"OK", http.StatusOK, "ok"},
		{"Created", http.StatusCreated, `{"id":"123"}`},
		{"Conflict", http.StatusConflict, `{"error":"Conflict"}`},
		{"InternalError", http.StatusInternalServerError, "error"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := WithLogging(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.statusCode)
				w.Write([]byte(tc.body))
			})

			req := httptest.NewRequest("POST", "/orders", nil)
			w := httptest.NewRecorder()

			handler(w, req)

			if w.Code != tc.statusCode {
				t.Errorf("Expected status %d, got %d", tc.statusCode, w.Code)
			}
			if w.Body.String() != tc.body {
				t.Errorf("Expected body '%s', got '%s'", tc.body, w.Body.String())
			}
		})
	}
}

func TestJSONResponse(t *testing.T) {
	testCases := []struct {
		name       string
		statusCode int
		data       interface{}
		expected   string
	}{
		{
			name:       "vote response",
			statusCode: http.StatusOK,
			data:       models.VoteResponse{CandidateID: "c1", Applied: true, Message: "Vote recorded"},
			expected:   `{"candidate_id":"c1","applied":true,"message":"Vote recorded"}`,
		},
		{
			name:       "toggle response",
			statusCode: http.StatusOK,
			data:       models.TogglePaidResponse{OrderID: "o1", Paid: false},
			expected:   `{"order_id":"o1","paid":false}`,
		},
		{
			name:       "array data",
			statusCode: http.StatusOK,
			data:       []string{"a", "b"},
			expected:   `["a","b"]`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			JSONResponse(w, tc.statusCode, tc.data)

			if w.Code != tc.statusCode {
				t.Errorf("Expected status %d, got %d", tc.statusCode, w.Code)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Expected Content-Type 'application/json', got '%s'", ct)
			}

			// Encode appends a newline
			body := strings.TrimSpace(w.Body.String())
			if body != tc.expected {
				t.Errorf("Expected body '%s', got '%s'", tc.expected, body)
			}
		})
	}
}

func TestErrorResponse(t *testing.T) {
	w := httptest.NewRecorder()

	ErrorResponse(w, http.StatusConflict, "voting is closed for today")

	if w.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", w.Code)
	}

	var resp models.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if resp.Error != "Conflict" || resp.Message != "voting is closed for today" {
		t.Errorf("Unexpected error body: %+v", resp)
	}
}

func TestParseJSONBody(t *testing.T) {
	t.Run("valid JSON", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"dish_name":"Soup","price":7.5}`))

		var parsed models.SubmitOrderRequest
		if err := ParseJSONBody(req, &parsed); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if parsed.DishName != "Soup" || parsed.Price != 7.5 {
			t.Errorf("Unexpected parse result: %+v", parsed)
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{invalid json}`))

		var parsed models.SubmitOrderRequest
		if err := ParseJSONBody(req, &parsed); err == nil {
			t.Error("Expected error for invalid JSON")
		}
	})

	t.Run("empty body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(""))

		var parsed models.SubmitOrderRequest
		if err := ParseJSONBody(req, &parsed); err == nil {
			t.Error("Expected error for empty body")
		}
	})
}

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("handled"))
	})
	handler := CORS(next)

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest("OPTIONS", "/candidates", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK || w.Body.String() != "" {
			t.Errorf("Preflight should answer 200 with no body, got %d %q", w.Code, w.Body.String())
		}
		if w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
			t.Error("Expected origin to be echoed")
		}
		if !strings.Contains(w.Header().Get("Access-Control-Allow-Headers"), "Authorization") {
			t.Error("Authorization header must be allowed for bearer tokens")
		}
		for _, method := range []string{"GET", "POST", "PUT", "DELETE"} {
			if !strings.Contains(w.Header().Get("Access-Control-Allow-Methods"), method) {
				t.Errorf("Expected %s in allowed methods", method)
			}
		}
	})

	t.Run("no origin", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/status", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if w.Body.String() != "handled" {
			t.Error("Expected next handler to be called")
		}
		if w.Header().Get("Access-Control-Allow-Origin") != "*" {
			t.Error("Expected wildcard origin")
		}
	})
}

func TestGetClientIP(t *testing.T) {
	testCases := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		expectedIP string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": "203.0.113.195, 70.41.3.18"}, "127.0.0.1:1", "203.0.113.195"},
		{"real ip", map[string]string{"X-Real-IP": "203.0.113.50"}, "10.0.0.1:1", "203.0.113.50"},
		{"remote addr with port", nil, "192.168.1.50:54321", "192.168.1.50"},
		{"remote addr without port", nil, "192.168.1.50", "192.168.1.50"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tc.remoteAddr
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}

			if got := GetClientIP(req); got != tc.expectedIP {
				t.Errorf("Expected IP '%s', got '%s'", tc.expectedIP, got)
			}
		})
	}
}

type stubVerifier map[string]auth.Identity

func (s stubVerifier) Verify(raw string) (auth.Identity, error) {
	if raw == "" {
		return auth.Identity{}, auth.ErrMissingToken
	}
	if raw == "old" {
		return auth.Identity{}, auth.ErrExpiredToken
	}
	id, ok := s[raw]
	if !ok {
		return auth.Identity{}, auth.ErrInvalidToken
	}
	return id, nil
}

func TestRequireIdentity(t *testing.T) {
	verifier := stubVerifier{"good": {ID: "user-1", DisplayName: "Ann"}}

	var seen auth.Identity
	handler := RequireIdentity(verifier, func(w http.ResponseWriter, r *http.Request) {
		id, err := auth.FromContext(r.Context())
		if err != nil {
			t.Errorf("identity missing from context: %v", err)
		}
		seen = id
		w.WriteHeader(http.StatusNoContent)
	})

	testCases := []struct {
		name       string
		header     string
		wantStatus int
		wantMsg    string
	}{
		{"valid token", "Bearer good", http.StatusNoContent, ""},
		{"missing header", "", http.StatusUnauthorized, "Authorization: Bearer token required"},
		{"wrong scheme", "Basic good", http.StatusUnauthorized, "Authorization: Bearer token required"},
		{"unknown token", "Bearer bad", http.StatusUnauthorized, "Invalid token"},
		{"expired token", "Bearer old", http.StatusUnauthorized, "Token expired"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			seen = auth.Identity{}
			req := httptest.NewRequest("GET", "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()

			handler(w, req)

			if w.Code != tc.wantStatus {
				t.Fatalf("Expected status %d, got %d", tc.wantStatus, w.Code)
			}
			if tc.wantStatus == http.StatusNoContent {
				if seen.ID != "user-1" {
					t.Errorf("Expected identity user-1, got %+v", seen)
				}
				return
			}

			var resp models.ErrorResponse
			json.NewDecoder(w.Body).Decode(&resp)
			if resp.Message != tc.wantMsg {
				t.Errorf("Expected message %q, got %q", tc.wantMsg, resp.Message)
			}
			if w.Header().Get("WWW-Authenticate") == "" {
				t.Error("Expected WWW-Authenticate header")
			}
		})
	}
}
