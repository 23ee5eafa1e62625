// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Category groups posts under a unique URL slug. Unpublished categories
// hide every post assigned to them from the public listings.
// Deleting a category nulls the reference on its posts.
type Category struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`

	// Virtual field populated by store methods.
	PostCount int `json:"post_count"`
}
