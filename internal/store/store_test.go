// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"diyhub/internal/database"
	"diyhub/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "diyhub")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "diyhub")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := testDSN()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	// Run migrations to ensure the schema is current.
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Downgrade goose global state.
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testUser creates a throwaway user and registers its removal.
func testUser(t *testing.T, db *sql.DB) *models.User {
	t.Helper()

	email := "test-" + uuid.NewString()[:8] + "@diyhub.test"
	u, err := NewUserStore(db).Create("tester-"+uuid.NewString()[:8], email, "secret123")
	if err != nil {
		t.Fatalf("create test user: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM users WHERE id = $1", u.ID) })
	return u
}

// testProject creates a minimal valid published project owned by author
// and registers its removal. Rows cascade-delete with the author, but the
// explicit cleanup keeps reruns tidy even when user cleanup is skipped.
func testProject(t *testing.T, db *sql.DB, author *models.User, mutate func(*models.Project)) *models.Project {
	t.Helper()

	p := &models.Project{
		Title:         "Test Project " + uuid.NewString()[:8],
		Description:   "A project created by an automated test.",
		Category:      "Woodworking",
		Difficulty:    models.DifficultyBeginner,
		EstimatedTime: "1 hour",
		AuthorID:      author.ID,
		IsPublished:   true,
	}
	if mutate != nil {
		mutate(p)
	}

	created, err := NewProjectStore(db).Create(p)
	if err != nil {
		t.Fatalf("create test project: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM projects WHERE id = $1", created.ID) })
	return created
}
