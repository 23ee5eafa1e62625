// Package authz implements the author-only mutation guard for posts.
// The failure mode is a redirect to the read view rather than an error
// page, so the guard returns a decision instead of an error. Comment
// mutations are guarded at the query level instead: the comment store
// fetches scoped to the author, and a miss surfaces as not found.
package authz

import (
	"fmt"

	"github.com/google/uuid"

	"blogium/internal/models"
)

// Decision is the outcome of an ownership check. When Allowed is false,
// RedirectTo carries the target the handler must send the user to before
// touching anything.
type Decision struct {
	Allowed    bool
	RedirectTo string
}

// PostMutation checks whether actor may edit or delete the post. A
// non-author is redirected to the post's detail page. The check must run
// before any write so a denied request never partially mutates.
func PostMutation(post *models.Post, actor uuid.UUID) Decision {
	if actor != uuid.Nil && actor == post.AuthorID {
		return Decision{Allowed: true}
	}
	return Decision{RedirectTo: fmt.Sprintf("/posts/%s/", post.ID)}
}
