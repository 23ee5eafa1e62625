// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"blogium/internal/models"
)

// PostStore handles all post-related database operations. Listing methods
// come in two flavors: the Visible* family applies the public visibility
// policy (published post, published category, pub date reached) against a
// caller-supplied instant, and the ByAuthor family serves profile pages.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

// postSelect joins the author plus the optional category and location so
// a single query yields a fully-populated Post.
const postSelect = `
	SELECT p.id, p.title, p.text, p.pub_date, p.author_id, p.location_id,
	       p.category_id, p.image_key, p.is_published, p.comment_count, p.created_at,
	       u.username, u.first_name, u.last_name,
	       c.title, c.slug, c.description, c.is_published, c.created_at,
	       l.name, l.is_published, l.created_at
	FROM posts p
	JOIN users u ON u.id = p.author_id
	LEFT JOIN categories c ON c.id = p.category_id
	LEFT JOIN locations l ON l.id = p.location_id`

// visibleCond is the public visibility predicate in SQL form. A post with
// no category fails it because c.is_published is NULL for the outer join.
// The instant is a bind parameter so callers inject the clock.
const visibleCond = `p.is_published AND c.is_published AND p.pub_date <= `

// scanPost scans one joined row into a Post with its virtual fields.
func scanPost(scanner interface{ Scan(...any) error }) (*models.Post, error) {
	p := &models.Post{}
	var (
		username, firstName, lastName string

		catTitle, catSlug, catDesc sql.NullString
		catPublished               sql.NullBool
		catCreated                 sql.NullTime

		locName      sql.NullString
		locPublished sql.NullBool
		locCreated   sql.NullTime
	)

	err := scanner.Scan(
		&p.ID, &p.Title, &p.Text, &p.PubDate, &p.AuthorID, &p.LocationID,
		&p.CategoryID, &p.ImageKey, &p.IsPublished, &p.CommentCount, &p.CreatedAt,
		&username, &firstName, &lastName,
		&catTitle, &catSlug, &catDesc, &catPublished, &catCreated,
		&locName, &locPublished, &locCreated,
	)
	if err != nil {
		return nil, err
	}

	p.Author = &models.User{
		ID:        p.AuthorID,
		Username:  username,
		FirstName: firstName,
		LastName:  lastName,
	}
	if p.CategoryID != nil {
		p.Category = &models.Category{
			ID:          *p.CategoryID,
			Title:       catTitle.String,
			Slug:        catSlug.String,
			Description: catDesc.String,
			IsPublished: catPublished.Bool,
			CreatedAt:   catCreated.Time,
		}
	}
	if p.LocationID != nil {
		p.Location = &models.Location{
			ID:          *p.LocationID,
			Name:        locName.String,
			IsPublished: locPublished.Bool,
			CreatedAt:   locCreated.Time,
		}
	}
	return p, nil
}

// queryPosts runs a postSelect query and scans all rows.
func (s *PostStore) queryPosts(query string, args ...any) ([]models.Post, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	var items []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// FindByID retrieves a post with its author, category, and location.
// Returns nil if not found.
func (s *PostStore) FindByID(id uuid.UUID) (*models.Post, error) {
	row := s.db.QueryRow(postSelect+` WHERE p.id = $1`, id)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by id: %w", err)
	}
	return p, nil
}

// CountVisible returns the number of publicly visible posts at the given
// instant.
func (s *PostStore) CountVisible(now time.Time) (int, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM posts p
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE `+visibleCond+`$1
	`, now).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count visible posts: %w", err)
	}
	return count, nil
}

// ListVisible returns one page of publicly visible posts ordered by
// pub date ascending.
func (s *PostStore) ListVisible(now time.Time, limit, offset int) ([]models.Post, error) {
	return s.queryPosts(postSelect+`
		WHERE `+visibleCond+`$1
		ORDER BY p.pub_date, p.id
		LIMIT $2 OFFSET $3
	`, now, limit, offset)
}

// CountVisibleByCategory returns the number of visible posts in a category.
func (s *PostStore) CountVisibleByCategory(categoryID uuid.UUID, now time.Time) (int, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM posts p
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE p.category_id = $1 AND `+visibleCond+`$2
	`, categoryID, now).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count visible posts by category: %w", err)
	}
	return count, nil
}

// ListVisibleByCategory returns one page of visible posts in a category,
// ordered by pub date ascending.
func (s *PostStore) ListVisibleByCategory(categoryID uuid.UUID, now time.Time, limit, offset int) ([]models.Post, error) {
	return s.queryPosts(postSelect+`
		WHERE p.category_id = $1 AND `+visibleCond+`$2
		ORDER BY p.pub_date, p.id
		LIMIT $3 OFFSET $4
	`, categoryID, now, limit, offset)
}

// CountByAuthor returns the number of posts by a user, drafts and
// scheduled posts included. Used when the profile owner views their own page.
func (s *PostStore) CountByAuthor(authorID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM posts WHERE author_id = $1`, authorID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count posts by author: %w", err)
	}
	return count, nil
}

// ListByAuthor returns one page of all posts by a user.
func (s *PostStore) ListByAuthor(authorID uuid.UUID, limit, offset int) ([]models.Post, error) {
	return s.queryPosts(postSelect+`
		WHERE p.author_id = $1
		ORDER BY p.pub_date, p.id
		LIMIT $2 OFFSET $3
	`, authorID, limit, offset)
}

// CountVisibleByAuthor returns the number of publicly visible posts by a
// user. Used when someone else views the profile.
func (s *PostStore) CountVisibleByAuthor(authorID uuid.UUID, now time.Time) (int, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM posts p
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE p.author_id = $1 AND `+visibleCond+`$2
	`, authorID, now).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count visible posts by author: %w", err)
	}
	return count, nil
}

// ListVisibleByAuthor returns one page of publicly visible posts by a user.
func (s *PostStore) ListVisibleByAuthor(authorID uuid.UUID, now time.Time, limit, offset int) ([]models.Post, error) {
	return s.queryPosts(postSelect+`
		WHERE p.author_id = $1 AND `+visibleCond+`$2
		ORDER BY p.pub_date, p.id
		LIMIT $3 OFFSET $4
	`, authorID, now, limit, offset)
}

// Create inserts a new post and returns it fully populated.
func (s *PostStore) Create(p *models.Post) (*models.Post, error) {
	var id uuid.UUID
	err := s.db.QueryRow(`
		INSERT INTO posts (title, text, pub_date, author_id, location_id, category_id, image_key, is_published)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, p.Title, p.Text, p.PubDate, p.AuthorID, p.LocationID, p.CategoryID, p.ImageKey, p.IsPublished).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return s.FindByID(id)
}

// Update modifies an existing post's editable fields. The author and the
// comment counter are never changed here.
func (s *PostStore) Update(p *models.Post) error {
	_, err := s.db.Exec(`
		UPDATE posts SET
			title = $1, text = $2, pub_date = $3, location_id = $4,
			category_id = $5, image_key = $6, is_published = $7
		WHERE id = $8
	`, p.Title, p.Text, p.PubDate, p.LocationID, p.CategoryID, p.ImageKey, p.IsPublished, p.ID)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	return nil
}

// Delete removes a post by ID. Its comments are cascade-deleted by the schema.
func (s *PostStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}
