// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Post represents a blog publication. PubDate may be in the future for
// scheduled posts; such posts stay out of public listings until the time
// arrives. CommentCount is a denormalized counter kept in sync with the
// comments table by the comment store on every insert and delete.
type Post struct {
	ID           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	Text         string     `json:"text"`
	PubDate      time.Time  `json:"pub_date"`
	AuthorID     uuid.UUID  `json:"author_id"`
	LocationID   *uuid.UUID `json:"location_id,omitempty"`
	CategoryID   *uuid.UUID `json:"category_id,omitempty"`
	ImageKey     *string    `json:"image_key,omitempty"`
	IsPublished  bool       `json:"is_published"`
	CommentCount int        `json:"comment_count"`
	CreatedAt    time.Time  `json:"created_at"`

	// Virtual fields populated by store joins.
	Author   *User     `json:"author,omitempty"`
	Category *Category `json:"category,omitempty"`
	Location *Location `json:"location,omitempty"`

	// ImageURL is resolved from ImageKey by the handlers when object
	// storage is configured. Never persisted.
	ImageURL string `json:"image_url,omitempty"`
}

// VisibleAt reports whether the post belongs in public listings at the
// given instant: published, in a published category, and pub date reached.
// A post with no category is never publicly visible. The caller passes in
// the current time so the predicate stays pure and testable with a fixed
// clock.
func (p *Post) VisibleAt(now time.Time) bool {
	if !p.IsPublished {
		return false
	}
	if p.Category == nil || !p.Category.IsPublished {
		return false
	}
	return !p.PubDate.After(now)
}

// VisibleTo extends VisibleAt with the author bypass: authors always see
// their own posts regardless of publication state.
func (p *Post) VisibleTo(viewer uuid.UUID, now time.Time) bool {
	if viewer != uuid.Nil && viewer == p.AuthorID {
		return true
	}
	return p.VisibleAt(now)
}
