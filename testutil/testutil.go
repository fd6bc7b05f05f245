// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/danielhkuo/poll-ledger/auth"
	"github.com/danielhkuo/poll-ledger/cliparse"
	"github.com/danielhkuo/poll-ledger/ledger"
	"github.com/danielhkuo/poll-ledger/middleware"
	"github.com/danielhkuo/poll-ledger/models"
	"github.com/danielhkuo/poll-ledger/record"
	"github.com/danielhkuo/poll-ledger/store"
)

// TestDBURLEnv names the variable holding a Postgres URL for tests. When it
// is unset, tests run against an in-memory SQLite database.
const TestDBURLEnv = "POLL_LEDGER_TEST_DATABASE_URL"

// SetupTestStore opens an empty record store for one test
func SetupTestStore(t *testing.T) *store.SQLStore {
	t.Helper()

	dbType, url := store.TypeSQLite, ":memory:"
	if pg := os.Getenv(TestDBURLEnv); pg != "" {
		dbType, url = store.TypePostgres, pg
	}

	s, err := store.OpenSQLStore(dbType, url)
	if err != nil {
		t.Fatalf("Failed to open test store: %v", err)
	}

	// Shared Postgres databases keep rows between runs
	if _, err := s.DB().Exec(`DELETE FROM poll_record`); err != nil {
		t.Fatalf("Failed to clean test store: %v", err)
	}

	t.Cleanup(func() { s.Close() })
	return s
}

// SetupTestEngine returns an engine over a fresh test store
func SetupTestEngine(t *testing.T, cfg cliparse.Config) *ledger.Engine {
	t.Helper()

	engine, err := ledger.NewEngine(SetupTestStore(t), ledger.Options{
		Limits:      cfg.Limits,
		ClosePolicy: cfg.ClosePolicy,
	})
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	return engine
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3318,
		DatabaseURL:  ":memory:",
		DatabaseType: store.TypeSQLite,
		IdentitySalt: "test-identity-salt",
		ClosePolicy:  models.ClosePolicyFlag,
		LogLevel:     "info",
		Limits:       record.DefaultLimits(),
	}
}

// IdentityToken issues a signed identity token for tests
func IdentityToken(t *testing.T, cfg cliparse.Config, identity string) string {
	t.Helper()

	token, err := auth.IssueIdentityToken(identity, cfg.IdentitySalt)
	if err != nil {
		t.Fatalf("Failed to issue identity token: %v", err)
	}
	return token
}

// IdentityHeaders returns request headers authenticating as identity
func IdentityHeaders(t *testing.T, cfg cliparse.Config, identity string) map[string]string {
	t.Helper()
	return map[string]string{middleware.IdentityHeader: IdentityToken(t, cfg, identity)}
}

// WithIdentity attaches a verified caller to req, as RequireIdentity would
func WithIdentity(req *http.Request, identity string) *http.Request {
	return req.WithContext(middleware.WithIdentityContext(req.Context(), identity))
}

// CreateTestPoll creates an active poll owned by creator and returns its ID
func CreateTestPoll(t *testing.T, engine *ledger.Engine, creator string, candidates ...string) string {
	t.Helper()

	pollID, _ := auth.GenerateID(16)
	if len(candidates) == 0 {
		candidates = []string{"Option A", "Option B"}
	}

	if _, err := engine.CreatePoll(context.Background(), pollID, "Test Poll?", candidates, creator); err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}
	return pollID
}

// CastTestVote records a vote directly through the engine
func CastTestVote(t *testing.T, engine *ledger.Engine, pollID string, optionIndex int, voter string) {
	t.Helper()

	if _, err := engine.Vote(context.Background(), pollID, optionIndex, voter); err != nil {
		t.Fatalf("Failed to cast test vote: %v", err)
	}
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
