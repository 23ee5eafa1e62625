// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"blogium/internal/database"
	"blogium/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "blogium")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "blogium")
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

// testUser creates a user with a unique username. Deleting the user in
// cleanup cascades to their posts and comments.
func testUser(t *testing.T, db *sql.DB) *models.User {
	t.Helper()
	s := NewUserStore(db)
	username := "test-user-" + uuid.NewString()[:8]
	u, err := s.Create(username, "password123", "Test", "User", username+"@example.test")
	if err != nil {
		t.Fatalf("create test user: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM users WHERE id = $1", u.ID) })
	return u
}

// testCategory creates a category with a unique slug.
func testCategory(t *testing.T, db *sql.DB, published bool) *models.Category {
	t.Helper()
	s := NewCategoryStore(db)
	slug := "test-cat-" + uuid.NewString()[:8]
	c, err := s.Create(&models.Category{
		Title:       "Test Category",
		Slug:        slug,
		Description: "for testing",
		IsPublished: published,
	})
	if err != nil {
		t.Fatalf("create test category: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM categories WHERE id = $1", c.ID) })
	return c
}

// testLocation creates a published location.
func testLocation(t *testing.T, db *sql.DB) *models.Location {
	t.Helper()
	s := NewLocationStore(db)
	l, err := s.Create(&models.Location{
		Name:        "Test Location " + uuid.NewString()[:8],
		IsPublished: true,
	})
	if err != nil {
		t.Fatalf("create test location: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM locations WHERE id = $1", l.ID) })
	return l
}

// testPost creates a post owned by author in the given category.
// categoryID may be nil.
func testPost(t *testing.T, db *sql.DB, author *models.User, categoryID *uuid.UUID, published bool, pubDate time.Time) *models.Post {
	t.Helper()
	s := NewPostStore(db)
	p, err := s.Create(&models.Post{
		Title:       "Test Post " + uuid.NewString()[:8],
		Text:        "test body",
		PubDate:     pubDate,
		AuthorID:    author.ID,
		CategoryID:  categoryID,
		IsPublished: published,
	})
	if err != nil {
		t.Fatalf("create test post: %v", err)
	}
	// No explicit cleanup: the post goes away with its author.
	return p
}
