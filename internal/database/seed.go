package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// Seed populates the database with initial development data: a default
// user, a couple of published categories and locations, and a sample
// post. It is a no-op if any users already exist.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("blogium"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	var userID string
	err = db.QueryRow(`
		INSERT INTO users (username, first_name, last_name, email, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, "blogium", "Blogium", "Author", "author@blogium.local", string(hash)).Scan(&userID)
	if err != nil {
		return fmt.Errorf("seed insert user: %w", err)
	}

	var categoryID string
	err = db.QueryRow(`
		INSERT INTO categories (title, slug, description, is_published)
		VALUES ($1, $2, $3, TRUE)
		RETURNING id
	`, "General", "general", "Everything that fits nowhere else.").Scan(&categoryID)
	if err != nil {
		return fmt.Errorf("seed insert category: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO locations (name, is_published) VALUES ($1, TRUE), ($2, TRUE)
	`, "Nowhere in particular", "The internet")
	if err != nil {
		return fmt.Errorf("seed insert locations: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO posts (title, text, pub_date, author_id, category_id, is_published)
		VALUES ($1, $2, NOW(), $3, $4, TRUE)
	`, "Hello, Blogium",
		"Welcome to your new blog. Sign in with **blogium** / **blogium** and start writing.",
		userID, categoryID)
	if err != nil {
		return fmt.Errorf("seed insert post: %w", err)
	}

	slog.Info("database seeded with default user",
		"username", "blogium",
		"password", "blogium",
	)

	return nil
}
