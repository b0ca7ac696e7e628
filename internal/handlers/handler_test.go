// handler_test.go provides shared test infrastructure for handler
// integration tests. Tests are skipped when PostgreSQL is unavailable.
package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"diyhub/internal/auth"
	"diyhub/internal/database"
	"diyhub/internal/middleware"
	"diyhub/internal/models"
	"diyhub/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "diyhub")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "diyhub")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testEnv holds all dependencies for handler integration tests. The
// response cache is nil: handlers treat that as cache-off.
type testEnv struct {
	DB       *sql.DB
	Users    *store.UserStore
	Projects *store.ProjectStore
	Saved    *store.SavedStore
	Tokens   *auth.Tokens
	Auth     *Auth
	Handlers *Projects
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	users := store.NewUserStore(db)
	projects := store.NewProjectStore(db)
	saved := store.NewSavedStore(db)
	tokens := auth.NewTokens("handler-test-secret")

	return &testEnv{
		DB:       db,
		Users:    users,
		Projects: projects,
		Saved:    saved,
		Tokens:   tokens,
		Auth:     NewAuth(users, tokens),
		Handlers: NewProjects(projects, saved, users, nil),
	}
}

// testUser creates a user with a unique email and removes it on cleanup.
// The row delete cascades to the user's projects.
func testUser(t *testing.T, env *testEnv) *models.User {
	t.Helper()

	email := fmt.Sprintf("handler-%d@test.local", rand.Int63())
	user, err := env.Users.Create("handlertester", email, "password123")
	if err != nil {
		t.Fatalf("create test user: %v", err)
	}
	t.Cleanup(func() {
		env.DB.Exec("DELETE FROM users WHERE id = $1", user.ID)
	})
	return user
}

// testProject creates a published project owned by author. mutate may be
// nil.
func testProject(t *testing.T, env *testEnv, author *models.User, mutate func(*models.Project)) *models.Project {
	t.Helper()

	p := validProject()
	p.AuthorID = author.ID
	p.IsPublished = true
	if mutate != nil {
		mutate(p)
	}
	created, err := env.Projects.Create(p)
	if err != nil {
		t.Fatalf("create test project: %v", err)
	}
	return created
}

// asUser stores an authenticated user in the request context the way the
// auth middleware does.
func asUser(r *http.Request, user *models.User) *http.Request {
	return r.WithContext(middleware.WithUser(r.Context(), user))
}

// withID adds the chi {id} URL parameter to a request.
func withID(r *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
