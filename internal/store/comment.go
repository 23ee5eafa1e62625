// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"blogium/internal/models"
)

// CommentStore handles all comment-related database operations and
// maintains the denormalized comment counter on posts. Every insert and
// delete recounts from the comments table and persists the result onto
// the post row inside the same transaction — the counter is recomputed
// from source rows, never incremented, so it cannot drift under
// concurrent writers.
type CommentStore struct {
	db *sql.DB
}

// NewCommentStore creates a new CommentStore with the given database connection.
func NewCommentStore(db *sql.DB) *CommentStore {
	return &CommentStore{db: db}
}

const commentColumns = `id, text, post_id, author_id, created_at`

// scanComment scans a row into a Comment struct.
func scanComment(scanner interface{ Scan(...any) error }) (*models.Comment, error) {
	c := &models.Comment{}
	if err := scanner.Scan(&c.ID, &c.Text, &c.PostID, &c.AuthorID, &c.CreatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

// ListByPost returns a post's comments with their authors, ordered by
// creation time ascending.
func (s *CommentStore) ListByPost(postID uuid.UUID) ([]models.Comment, error) {
	rows, err := s.db.Query(`
		SELECT cm.id, cm.text, cm.post_id, cm.author_id, cm.created_at,
		       u.username, u.first_name, u.last_name
		FROM comments cm
		JOIN users u ON u.id = cm.author_id
		WHERE cm.post_id = $1
		ORDER BY cm.created_at, cm.id
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var items []models.Comment
	for rows.Next() {
		var c models.Comment
		var username, firstName, lastName string
		err := rows.Scan(
			&c.ID, &c.Text, &c.PostID, &c.AuthorID, &c.CreatedAt,
			&username, &firstName, &lastName,
		)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		c.Author = &models.User{
			ID:        c.AuthorID,
			Username:  username,
			FirstName: firstName,
			LastName:  lastName,
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// FindByIDAndAuthor retrieves a comment only if it belongs to the given
// author. Returns nil otherwise — comment mutations are scoped to the
// author's own comments, so a foreign comment surfaces as not found.
func (s *CommentStore) FindByIDAndAuthor(id, authorID uuid.UUID) (*models.Comment, error) {
	row := s.db.QueryRow(`
		SELECT `+commentColumns+` FROM comments
		WHERE id = $1 AND author_id = $2
	`, id, authorID)
	c, err := scanComment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find comment: %w", err)
	}
	return c, nil
}

// CountByPost returns the authoritative comment count for a post,
// straight from the comments table.
func (s *CommentStore) CountByPost(postID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM comments WHERE post_id = $1`, postID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count comments: %w", err)
	}
	return count, nil
}

// Create inserts a comment and refreshes the post's comment counter in
// one transaction. The recount and the insert commit or roll back
// together, so a reader never observes a comment without its counted
// effect on the post.
func (s *CommentStore) Create(c *models.Comment) (*models.Comment, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("create comment begin: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(`
		INSERT INTO comments (text, post_id, author_id)
		VALUES ($1, $2, $3)
		RETURNING `+commentColumns,
		c.Text, c.PostID, c.AuthorID,
	)
	result, err := scanComment(row)
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	if err := recountComments(tx, c.PostID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("create comment commit: %w", err)
	}
	return result, nil
}

// Update modifies a comment's text. Edits cannot change the comment
// count, so no recount happens here.
func (s *CommentStore) Update(c *models.Comment) error {
	_, err := s.db.Exec(`UPDATE comments SET text = $1 WHERE id = $2`, c.Text, c.ID)
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	return nil
}

// Delete removes a comment and refreshes the post's comment counter in
// one transaction. Returns false if the comment did not exist.
func (s *CommentStore) Delete(id uuid.UUID) (bool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("delete comment begin: %w", err)
	}
	defer tx.Rollback()

	var postID uuid.UUID
	err = tx.QueryRow(`DELETE FROM comments WHERE id = $1 RETURNING post_id`, id).Scan(&postID)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("delete comment: %w", err)
	}

	if err := recountComments(tx, postID); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("delete comment commit: %w", err)
	}
	return true, nil
}

// recountComments persists the authoritative comment count onto the post
// row. The UPDATE takes the post's row lock, so concurrent recounts on
// the same post serialize and the last committed value always reflects a
// full count of the comments table.
func recountComments(tx *sql.Tx, postID uuid.UUID) error {
	_, err := tx.Exec(`
		UPDATE posts
		SET comment_count = (SELECT COUNT(*) FROM comments WHERE post_id = $1)
		WHERE id = $1
	`, postID)
	if err != nil {
		return fmt.Errorf("recount comments for post %s: %w", postID, err)
	}
	return nil
}
