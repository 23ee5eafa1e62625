package models

import (
	"time"

	"github.com/google/uuid"
)

// Location is an optional place tag for posts. Deleting a location nulls
// the reference on its posts.
type Location struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
}
