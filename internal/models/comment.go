package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment belongs to exactly one post and one author. Comments are
// cascade-deleted with either. CreatedAt is set once on insert and is
// the only ordering key (ascending).
type Comment struct {
	ID        uuid.UUID `json:"id"`
	Text      string    `json:"text"`
	PostID    uuid.UUID `json:"post_id"`
	AuthorID  uuid.UUID `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`

	// Virtual field populated by store joins.
	Author *User `json:"author,omitempty"`
}
