// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielhkuo/poll-ledger/auth"
	"github.com/danielhkuo/poll-ledger/models"
)

func TestWithLogging(t *testing.T) {
	// Create a simple handler that returns OK
	handlerCalled := false
	testHandler := func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("success"))
	}

	// Wrap with logging middleware
	wrappedHandler := WithLogging(testHandler)

	// Create test request and recorder
	req := httptest.NewRequest("GET", "/test-path", nil)
	w := httptest.NewRecorder()

	// Execute
	wrappedHandler(w, req)

	// Verify handler was called
	if !handlerCalled {
		t.Error("Expected handler to be called")
	}

	// Verify response was written correctly
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if w.Body.String() != "success" {
		t.Errorf("Expected body 'success', got '%s'", w.Body.String())
	}
}

func TestWithLogging_PreservesResponse(t *testing.T) {
	// Test that logging doesn't interfere with various response codes
	testCases := []struct {
		name       string
		statusCode int
		body       string
	}{
		{"OK", http.StatusOK, "ok"},
		{"Created", http.StatusCreated, `{"id":"123"}`},
		{"BadRequest", http.StatusBadRequest, `{"error":"bad request"}`},
		{"NotFound", http.StatusNotFound, "not found"},
		{"InternalError", http.StatusInternalServerError, "error"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := WithLogging(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.statusCode)
				w.Write([]byte(tc.body))
			})

			req := httptest.NewRequest("POST", "/api/test", nil)
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
			name:       "simple struct",
			statusCode: http.StatusOK,
			data:       map[string]string{"message": "hello"},
			expected:   `{"message":"hello"}`,
		},
		{
			name:       "created response",
			statusCode: http.StatusCreated,
			data:       models.ClosePollResponse{ID: "abc123", Policy: "flag", Active: false},
			expected:   `{"id":"abc123","policy":"flag","active":false}`,
		},
		{
			name:       "error response",
			statusCode: http.StatusBadRequest,
			data:       models.ErrorResponse{Error: "Bad Request", Message: "missing field"},
			expected:   `{"error":"Bad Request","message":"missing field"}`,
		},
		{
			name:       "array data",
			statusCode: http.StatusOK,
			data:       []string{"a", "b", "c"},
			expected:   `["a","b","c"]`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			JSONResponse(w, tc.statusCode, tc.data)

			// Check status code
			if w.Code != tc.statusCode {
				t.Errorf("Expected status %d, got %d", tc.statusCode, w.Code)
			}

			// Check Content-Type header
			contentType := w.Header().Get("Content-Type")
			if contentType != "application/json" {
				t.Errorf("Expected Content-Type 'application/json', got '%s'", contentType)
			}

			// Check body (trim newline added by Encode)
			body := strings.TrimSpace(w.Body.String())
			if body != tc.expected {
				t.Errorf("Expected body '%s', got '%s'", tc.expected, body)
			}
		})
	}
}

func TestErrorResponse(t *testing.T) {
	testCases := []struct {
		name          string
		statusCode    int
		message       string
		expectedError string
	}{
		{
			name:          "bad request",
			statusCode:    http.StatusBadRequest,
			message:       "title is required",
			expectedError: "Bad Request",
		},
		{
			name:          "unauthorized",
			statusCode:    http.StatusUnauthorized,
			message:       "invalid identity token",
			expectedError: "Unauthorized",
		},
		{
			name:          "not found",
			statusCode:    http.StatusNotFound,
			message:       "poll not found",
			expectedError: "Not Found",
		},
		{
			name:          "conflict",
			statusCode:    http.StatusConflict,
			message:       "poll already closed",
			expectedError: "Conflict",
		},
		{
			name:          "internal error",
			statusCode:    http.StatusInternalServerError,
			message:       "database error",
			expectedError: "Internal Server Error",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			ErrorResponse(w, tc.statusCode, tc.message)

			// Check status code
			if w.Code != tc.statusCode {
				t.Errorf("Expected status %d, got %d", tc.statusCode, w.Code)
			}

			// Check Content-Type
			if w.Header().Get("Content-Type") != "application/json" {
				t.Error("Expected Content-Type 'application/json'")
			}

			// Decode and verify error response
			var resp models.ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode error response: %v", err)
			}

			if resp.Error != tc.expectedError {
				t.Errorf("Expected error '%s', got '%s'", tc.expectedError, resp.Error)
			}
			if resp.Message != tc.message {
				t.Errorf("Expected message '%s', got '%s'", tc.message, resp.Message)
			}
		})
	}
}

func TestParseJSONBody(t *testing.T) {
	t.Run("valid JSON", func(t *testing.T) {
		body := `{"question":"Best fruit?","candidates":["apple","banana"]}`
		req := httptest.NewRequest("POST", "/", strings.NewReader(body))

		var parsed models.CreatePollRequest
		err := ParseJSONBody(req, &parsed)

		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if parsed.Question != "Best fruit?" {
			t.Errorf("Expected question 'Best fruit?', got '%s'", parsed.Question)
		}
		if len(parsed.Candidates) != 2 || parsed.Candidates[1] != "banana" {
			t.Errorf("Expected candidates [apple banana], got %v", parsed.Candidates)
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		body := `{invalid json}`
		req := httptest.NewRequest("POST", "/", strings.NewReader(body))

		var parsed models.CreatePollRequest
		err := ParseJSONBody(req, &parsed)

		if err == nil {
			t.Error("Expected error for invalid JSON")
		}
	})

	t.Run("empty body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(""))

		var parsed models.CreatePollRequest
		err := ParseJSONBody(req, &parsed)

		if err == nil {
			t.Error("Expected error for empty body")
		}
	})

	t.Run("null body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader("null"))

		var parsed *models.CreatePollRequest
		err := ParseJSONBody(req, &parsed)

		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if parsed != nil {
			t.Error("Expected nil result for null JSON")
		}
	})

	t.Run("extra fields ignored", func(t *testing.T) {
		body := `{"question":"Test","candidates":["a"],"unknown_field":"ignored"}`
		req := httptest.NewRequest("POST", "/", strings.NewReader(body))

		var parsed models.CreatePollRequest
		err := ParseJSONBody(req, &parsed)

		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if parsed.Question != "Test" {
			t.Errorf("Expected question 'Test', got '%s'", parsed.Question)
		}
	})

	t.Run("body is closed after parsing", func(t *testing.T) {
		body := `{"question":"Test","candidates":["a"]}`
		bodyReader := io.NopCloser(bytes.NewReader([]byte(body)))
		req := httptest.NewRequest("POST", "/", bodyReader)

		var parsed models.CreatePollRequest
		_ = ParseJSONBody(req, &parsed)

		// Try to read from body again - should return empty/error since it's closed
		remaining, err := io.ReadAll(req.Body)
		if err != nil && err != io.EOF {
			// Body closed is expected
		}
		if len(remaining) > 0 {
			t.Error("Expected body to be consumed/closed")
		}
	})
}

func TestCORS(t *testing.T) {
	// Create a simple handler that returns OK
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("handled"))
	})

	corsHandler := CORS(nextHandler)

	t.Run("preflight OPTIONS request", func(t *testing.T) {
		req := httptest.NewRequest("OPTIONS", "/api/polls", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		w := httptest.NewRecorder()

		corsHandler.ServeHTTP(w, req)

		// Should return 200 OK without calling next handler
		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}

		// Body should be empty (preflight doesn't call next)
		if w.Body.String() != "" {
			t.Errorf("Expected empty body for preflight, got '%s'", w.Body.String())
		}

		// Check CORS headers
		if w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
			t.Error("Expected Access-Control-Allow-Origin to match request origin")
		}
		if w.Header().Get("Access-Control-Allow-Credentials") != "true" {
			t.Error("Expected Access-Control-Allow-Credentials to be 'true'")
		}
	})

	t.Run("regular request with origin", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/polls", nil)
		req.Header.Set("Origin", "https://example.com")
		w := httptest.NewRecorder()

		corsHandler.ServeHTTP(w, req)

		// Should call next handler
		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
		if w.Body.String() != "handled" {
			t.Error("Expected next handler to be called")
		}

		// Check CORS headers reflect the origin
		if w.Header().Get("Access-Control-Allow-Origin") != "https://example.com" {
			t.Error("Expected Access-Control-Allow-Origin to reflect request origin")
		}
	})

	t.Run("request without origin defaults to wildcard", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/polls", nil)
		w := httptest.NewRecorder()

		corsHandler.ServeHTTP(w, req)

		if w.Header().Get("Access-Control-Allow-Origin") != "*" {
			t.Error("Expected Access-Control-Allow-Origin to default to '*'")
		}
	})

	t.Run("allows custom headers", func(t *testing.T) {
		req := httptest.NewRequest("OPTIONS", "/api/polls", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		w := httptest.NewRecorder()

		corsHandler.ServeHTTP(w, req)

		allowedHeaders := w.Header().Get("Access-Control-Allow-Headers")

		// Check that the identity and request id headers are allowed
		if !strings.Contains(allowedHeaders, IdentityHeader) {
			t.Errorf("Expected %s in allowed headers", IdentityHeader)
		}
		if !strings.Contains(allowedHeaders, RequestIDHeader) {
			t.Errorf("Expected %s in allowed headers", RequestIDHeader)
		}
		if !strings.Contains(allowedHeaders, "Content-Type") {
			t.Error("Expected Content-Type in allowed headers")
		}
	})

	t.Run("allows required methods", func(t *testing.T) {
		req := httptest.NewRequest("OPTIONS", "/api/polls", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		w := httptest.NewRecorder()

		corsHandler.ServeHTTP(w, req)

		allowedMethods := w.Header().Get("Access-Control-Allow-Methods")

		requiredMethods := []string{"GET", "POST", "OPTIONS"}
		for _, method := range requiredMethods {
			if !strings.Contains(allowedMethods, method) {
				t.Errorf("Expected %s in allowed methods", method)
			}
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
		{
			name:       "X-Forwarded-For single IP",
			headers:    map[string]string{"X-Forwarded-For": "192.168.1.100"},
			remoteAddr: "10.0.0.1:12345",
			expectedIP: "192.168.1.100",
		},
		{
			name:       "X-Forwarded-For chained IPs (comma separated)",
			headers:    map[string]string{"X-Forwarded-For": "192.168.1.100, 10.0.0.1, 172.16.0.1"},
			remoteAddr: "127.0.0.1:12345",
			expectedIP: "192.168.1.100",
		},
		{
			name:       "X-Forwarded-For chained IPs (space after comma)",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.195, 70.41.3.18, 150.172.238.178"},
			remoteAddr: "127.0.0.1:12345",
			expectedIP: "203.0.113.195",
		},
		{
			name:       "X-Real-IP takes precedence over RemoteAddr",
			headers:    map[string]string{"X-Real-IP": "203.0.113.50"},
			remoteAddr: "10.0.0.1:12345",
			expectedIP: "203.0.113.50",
		},
		{
			name:       "X-Forwarded-For takes precedence over X-Real-IP",
			headers:    map[string]string{"X-Forwarded-For": "192.168.1.100", "X-Real-IP": "203.0.113.50"},
			remoteAddr: "10.0.0.1:12345",
			expectedIP: "192.168.1.100",
		},
		{
			name:       "RemoteAddr with port",
			headers:    map[string]string{},
			remoteAddr: "192.168.1.50:54321",
			expectedIP: "192.168.1.50",
		},
		{
			name:       "RemoteAddr without port",
			headers:    map[string]string{},
			remoteAddr: "192.168.1.50",
			expectedIP: "192.168.1.50",
		},
		{
			name:       "IPv6 RemoteAddr with port",
			headers:    map[string]string{},
			remoteAddr: "[::1]:12345",
			expectedIP: "[::1]", // Implementation strips port after last colon
		},
		{
			name:       "IPv6 in X-Forwarded-For",
			headers:    map[string]string{"X-Forwarded-For": "2001:db8::1"},
			remoteAddr: "127.0.0.1:12345",
			expectedIP: "2001:db8::1",
		},
		{
			name:       "empty X-Forwarded-For falls through to RemoteAddr",
			headers:    map[string]string{"X-Forwarded-For": ""},
			remoteAddr: "10.0.0.5:8080",
			expectedIP: "10.0.0.5",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tc.remoteAddr

			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}

			result := GetClientIP(req)

			if result != tc.expectedIP {
				t.Errorf("Expected IP '%s', got '%s'", tc.expectedIP, result)
			}
		})
	}
}

func TestWithLogging_RequestID(t *testing.T) {
	handler := WithLogging(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("generates request id", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		w := httptest.NewRecorder()

		handler(w, req)

		if len(w.Header().Get(RequestIDHeader)) != 36 {
			t.Errorf("Expected generated UUID request id, got '%s'", w.Header().Get(RequestIDHeader))
		}
		if w.Code != http.StatusNoContent {
			t.Errorf("Expected status 204, got %d", w.Code)
		}
	})

	t.Run("echoes client request id", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(RequestIDHeader, "req-42")
		w := httptest.NewRecorder()

		handler(w, req)

		if w.Header().Get(RequestIDHeader) != "req-42" {
			t.Errorf("Expected request id 'req-42', got '%s'", w.Header().Get(RequestIDHeader))
		}
	})
}

func TestRequireIdentity(t *testing.T) {
	salt := "test-identity-salt"
	token, err := auth.IssueIdentityToken("alice", salt)
	if err != nil {
		t.Fatal(err)
	}
	forged, _ := auth.IssueIdentityToken("alice", "other-salt")

	var seen string
	handler := RequireIdentity(salt, func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFrom(r.Context())
		if !ok {
			t.Error("Expected identity on request context")
		}
		seen = identity
		w.WriteHeader(http.StatusOK)
	})

	testCases := []struct {
		name           string
		token          string
		expectedStatus int
		expectedID     string
	}{
		{"valid token", token, http.StatusOK, "alice"},
		{"missing token", "", http.StatusUnauthorized, ""},
		{"forged token", forged, http.StatusUnauthorized, ""},
		{"garbage token", "not-a-token", http.StatusUnauthorized, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest("POST", "/polls", nil)
			if tc.token != "" {
				req.Header.Set(IdentityHeader, tc.token)
			}
			w := httptest.NewRecorder()

			handler(w, req)

			if w.Code != tc.expectedStatus {
				t.Errorf("Expected status %d, got %d", tc.expectedStatus, w.Code)
			}
			if seen != tc.expectedID {
				t.Errorf("Expected identity '%s', got '%s'", tc.expectedID, seen)
			}
		})
	}
}

func TestIdentityFrom_Empty(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	if _, ok := IdentityFrom(req.Context()); ok {
		t.Error("Expected no identity on a bare context")
	}
	if _, ok := IdentityFrom(WithIdentityContext(req.Context(), "")); ok {
		t.Error("Expected empty identity to be treated as missing")
	}
}

func TestCodedErrorResponse(t *testing.T) {
	w := httptest.NewRecorder()

	CodedErrorResponse(w, http.StatusConflict, "vote already cast", "AlreadyVoted")

	var resp models.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if resp.Code != "AlreadyVoted" {
		t.Errorf("Expected code 'AlreadyVoted', got '%s'", resp.Code)
	}
	if resp.Error != "Conflict" {
		t.Errorf("Expected error 'Conflict', got '%s'", resp.Error)
	}
}

func TestWithLogging_VoteRoute(t *testing.T) {
	salt := "test-identity-salt"
	token, err := auth.IssueIdentityToken("voter-a", salt)
	if err != nil {
		t.Fatal(err)
	}

	handler := WithLogging(RequireIdentity(salt, func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "fruit" {
			t.Errorf("Expected poll id 'fruit', got '%s'", r.PathValue("id"))
		}
		CodedErrorResponse(w, http.StatusConflict, "vote already cast", "AlreadyVoted")
	}))

	mux := http.NewServeMux()
	mux.HandleFunc("POST /polls/{id}/votes", handler)

	req := httptest.NewRequest("POST", "/polls/fruit/votes", strings.NewReader(`{"option_index":0}`))
	req.Header.Set(IdentityHeader, token)
	req.Header.Set(RequestIDHeader, "vote-7")
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("Expected status 409 through the logging wrapper, got %d", w.Code)
	}
	if w.Header().Get(RequestIDHeader) != "vote-7" {
		t.Errorf("Expected request id 'vote-7', got '%s'", w.Header().Get(RequestIDHeader))
	}

	var resp models.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if resp.Code != "AlreadyVoted" {
		t.Errorf("Expected code 'AlreadyVoted', got '%s'", resp.Code)
	}
}

func TestErrorResponse_MissingIdentityOnClose(t *testing.T) {
	called := false
	handler := RequireIdentity("test-identity-salt", func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	req := httptest.NewRequest("POST", "/polls/fruit/close", nil)
	w := httptest.NewRecorder()

	handler(w, req)

	if called {
		t.Error("Close handler must not run without an identity token")
	}
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}

	var resp models.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if resp.Error != "Unauthorized" || resp.Message == "" {
		t.Errorf("Expected Unauthorized with a message, got %+v", resp)
	}
	if resp.Code != "" {
		t.Errorf("Expected no code, got '%s'", resp.Code)
	}
}

func TestJSONResponse_Poll(t *testing.T) {
	w := httptest.NewRecorder()

	JSONResponse(w, http.StatusCreated, models.Poll{
		ID:         "fruit",
		Creator:    "alice",
		Question:   "Best fruit?",
		Candidates: []string{"apple", "banana"},
		Tally:      []uint64{0, 1},
		Active:     true,
		Voters:     []string{"voter-a"},
	})

	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected Content-Type 'application/json', got '%s'", ct)
	}

	var poll models.Poll
	if err := json.NewDecoder(w.Body).Decode(&poll); err != nil {
		t.Fatalf("Failed to decode poll: %v", err)
	}
	if poll.ID != "fruit" || !poll.Active {
		t.Errorf("Unexpected poll %+v", poll)
	}
	if len(poll.Tally) != 2 || poll.Tally[1] != 1 {
		t.Errorf("Expected tally [0 1], got %v", poll.Tally)
	}
	if len(poll.Voters) != 1 || poll.Voters[0] != "voter-a" {
		t.Errorf("Expected voters [voter-a], got %v", poll.Voters)
	}
}

func TestParseJSONBody_VoteRequest(t *testing.T) {
	testCases := []struct {
		name      string
		body      string
		wantIndex *int
	}{
		{"index zero", `{"option_index":0}`, intPtr(0)},
		{"index two", `{"option_index":2}`, intPtr(2)},
		{"missing index", `{}`, nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/polls/fruit/votes", strings.NewReader(tc.body))

			var vote models.VoteRequest
			if err := ParseJSONBody(req, &vote); err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			switch {
			case tc.wantIndex == nil && vote.OptionIndex != nil:
				t.Errorf("Expected no option index, got %d", *vote.OptionIndex)
			case tc.wantIndex != nil && vote.OptionIndex == nil:
				t.Errorf("Expected option index %d, got none", *tc.wantIndex)
			case tc.wantIndex != nil && *vote.OptionIndex != *tc.wantIndex:
				t.Errorf("Expected option index %d, got %d", *tc.wantIndex, *vote.OptionIndex)
			}
		})
	}
}

func intPtr(n int) *int { return &n }

func TestCORS_IdentityPreflight(t *testing.T) {
	nextCalled := false
	handler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
	}))

	req := httptest.NewRequest("OPTIONS", "/polls/fruit/votes", nil)
	req.Header.Set("Origin", "https://vote.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", IdentityHeader)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if nextCalled {
		t.Error("Preflight must not reach the vote handler")
	}
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://vote.example.com" {
		t.Errorf("Expected origin echoed, got '%s'", got)
	}
	allowed := w.Header().Get("Access-Control-Allow-Headers")
	for _, h := range []string{IdentityHeader, RequestIDHeader} {
		if !strings.Contains(allowed, h) {
			t.Errorf("Expected %s in allowed headers, got '%s'", h, allowed)
		}
	}
}

func TestGetClientIP_PollRoutes(t *testing.T) {
	testCases := []struct {
		name       string
		method     string
		path       string
		headers    map[string]string
		expectedIP string
	}{
		{
			name:       "vote behind load balancer",
			method:     "POST",
			path:       "/polls/fruit/votes",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"},
			expectedIP: "203.0.113.7",
		},
		{
			name:       "results behind nginx",
			method:     "GET",
			path:       "/polls/fruit/results",
			headers:    map[string]string{"X-Real-IP": "198.51.100.4"},
			expectedIP: "198.51.100.4",
		},
		{
			name:       "direct close",
			method:     "POST",
			path:       "/polls/fruit/close",
			expectedIP: "192.0.2.10",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			req.RemoteAddr = "192.0.2.10:51234"
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}

			if got := GetClientIP(req); got != tc.expectedIP {
				t.Errorf("Expected IP '%s', got '%s'", tc.expectedIP, got)
			}
		})
	}
}
