// Package router tests verify the HTTP routing configuration, middleware
// chains, and the health endpoint.
package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"diyhub/internal/auth"
	"diyhub/internal/handlers"
	"diyhub/internal/models"
)

// noUsers is a UserFinder with no users at all.
type noUsers struct{}

func (noUsers) FindByID(uuid.UUID) (*models.User, error) { return nil, nil }

func testRouter() http.Handler {
	tokens := auth.NewTokens("router-test-secret")
	return New(tokens, noUsers{}, &handlers.Auth{}, &handlers.Projects{}, nil, []string{"*"})
}

func TestHealthHandler(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/health", nil)

	healthHandler(w, r)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}

	ct := resp.Header.Get("Content-Type")
	if ct != "application/json" {
		t.Errorf("content-type: got %q, want %q", ct, "application/json")
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field: got %q, want %q", body["status"], "ok")
	}
}

func TestWritesRequireAuth(t *testing.T) {
	router := testRouter()

	paths := []struct {
		method, path string
	}{
		{"POST", "/projects"},
		{"PUT", "/projects/" + uuid.NewString()},
		{"DELETE", "/projects/" + uuid.NewString()},
		{"POST", "/projects/" + uuid.NewString() + "/like"},
		{"POST", "/projects/" + uuid.NewString() + "/save"},
		{"POST", "/projects/" + uuid.NewString() + "/comments"},
		{"GET", "/projects/saved/list"},
	}
	for _, p := range paths {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(p.method, p.path, nil)
		router.ServeHTTP(w, r)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: got %d, want 401", p.method, p.path, w.Code)
		}
	}
}

func TestPublicReadsPassInvalidTokensBack(t *testing.T) {
	// A present-but-invalid token must be rejected even on public reads.
	router := testRouter()

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/projects", nil)
	r.Header.Set("Authorization", "Bearer garbage")
	router.ServeHTTP(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("got %d, want 401", w.Code)
	}
}

func TestUnknownRoute(t *testing.T) {
	router := testRouter()

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/nope", nil)
	router.ServeHTTP(w, r)

	if w.Code != http.StatusNotFound {
		t.Errorf("got %d, want 404", w.Code)
	}
}
