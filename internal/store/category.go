// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"blogium/internal/models"
	"blogium/internal/slug"
)

// CategoryStore manages categories in the database.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, title, slug, description, is_published, created_at`

// scanCategory scans a row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(
		&c.ID, &c.Title, &c.Slug, &c.Description, &c.IsPublished, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all categories ordered by title, with post counts.
func (s *CategoryStore) List() ([]models.Category, error) {
	rows, err := s.db.Query(`
		SELECT c.id, c.title, c.slug, c.description, c.is_published, c.created_at,
		       COUNT(p.id) AS post_count
		FROM categories c
		LEFT JOIN posts p ON p.category_id = c.id
		GROUP BY c.id
		ORDER BY c.title
	`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		var c models.Category
		err := rows.Scan(
			&c.ID, &c.Title, &c.Slug, &c.Description, &c.IsPublished, &c.CreatedAt,
			&c.PostCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// ListPublished returns published categories ordered by title. Used for
// the post form's category dropdown.
func (s *CategoryStore) ListPublished() ([]models.Category, error) {
	rows, err := s.db.Query(`
		SELECT ` + categoryColumns + ` FROM categories
		WHERE is_published ORDER BY title
	`)
	if err != nil {
		return nil, fmt.Errorf("list published categories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(id uuid.UUID) (*models.Category, error) {
	row := s.db.QueryRow(`SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// FindPublishedBySlug retrieves a published category by its slug.
// Returns nil if the slug is unknown or the category is unpublished —
// the category listing page treats both as not found.
func (s *CategoryStore) FindPublishedBySlug(slug string) (*models.Category, error) {
	row := s.db.QueryRow(`
		SELECT `+categoryColumns+` FROM categories
		WHERE slug = $1 AND is_published
	`, slug)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by slug: %w", err)
	}
	return c, nil
}

// Create inserts a new category and returns it. An empty slug is
// derived from the title.
func (s *CategoryStore) Create(c *models.Category) (*models.Category, error) {
	if c.Slug == "" {
		c.Slug = slug.Generate(c.Title)
	}
	row := s.db.QueryRow(`
		INSERT INTO categories (title, slug, description, is_published)
		VALUES ($1, $2, $3, $4)
		RETURNING `+categoryColumns,
		c.Title, c.Slug, c.Description, c.IsPublished,
	)
	result, err := scanCategory(row)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return result, nil
}

// Update modifies an existing category.
func (s *CategoryStore) Update(c *models.Category) error {
	_, err := s.db.Exec(`
		UPDATE categories SET title = $1, slug = $2, description = $3, is_published = $4
		WHERE id = $5
	`, c.Title, c.Slug, c.Description, c.IsPublished, c.ID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

// Delete removes a category by ID. Posts referencing it keep existing
// with a null category (ON DELETE SET NULL).
func (s *CategoryStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}
