// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"blogium/internal/middleware"
	"blogium/internal/models"
	"blogium/internal/render"
	"blogium/internal/store"
)

// Comments groups the authenticated handlers for post comments. Comment
// mutations are author-scoped at the query level: a comment that exists
// but belongs to someone else is indistinguishable from a missing one.
type Comments struct {
	renderer     *render.Renderer
	commentStore *store.CommentStore
	postStore    *store.PostStore
	now          func() time.Time
}

// NewComments creates a new Comments handler group.
func NewComments(renderer *render.Renderer, commentStore *store.CommentStore, postStore *store.PostStore) *Comments {
	return &Comments{
		renderer:     renderer,
		commentStore: commentStore,
		postStore:    postStore,
		now:          time.Now,
	}
}

// Add handles the comment form on the post detail page. Comments can
// only be left on posts the commenter can see.
func (h *Comments) Add(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	postID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.renderer.NotFound(w, r)
		return
	}

	post, err := h.postStore.FindByID(postID)
	if err != nil {
		slog.Error("find post failed", "error", err, "id", postID)
		h.renderer.ServerError(w, r)
		return
	}
	if post == nil || !post.VisibleTo(sess.UserID, h.now()) {
		h.renderer.NotFound(w, r)
		return
	}

	text := r.FormValue("text")
	if msg := validateCommentText(text); msg != "" {
		// Blank or oversized comments are dropped.
		http.Redirect(w, r, fmt.Sprintf("/posts/%s/", post.ID), http.StatusSeeOther)
		return
	}

	_, err = h.commentStore.Create(&models.Comment{
		Text:     text,
		PostID:   post.ID,
		AuthorID: sess.UserID,
	})
	if err != nil {
		slog.Error("create comment failed", "error", err, "post", post.ID)
		h.renderer.ServerError(w, r)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/posts/%s/", post.ID), http.StatusSeeOther)
}

// EditForm renders the edit form for the viewer's own comment.
func (h *Comments) EditForm(w http.ResponseWriter, r *http.Request) {
	comment, ok := h.ownComment(w, r)
	if !ok {
		return
	}

	h.renderer.Page(w, r, "comment_form", &render.PageData{
		Title: "Edit comment",
		Data:  map[string]any{"Comment": comment},
	})
}

// Edit handles the comment edit submission. Only the text changes; the
// post's comment counter is untouched.
func (h *Comments) Edit(w http.ResponseWriter, r *http.Request) {
	comment, ok := h.ownComment(w, r)
	if !ok {
		return
	}

	text := r.FormValue("text")
	if msg := validateCommentText(text); msg != "" {
		h.renderer.Page(w, r, "comment_form", &render.PageData{
			Title:  "Edit comment",
			Errors: []string{msg},
			Data:   map[string]any{"Comment": comment},
		})
		return
	}

	comment.Text = text
	if err := h.commentStore.Update(comment); err != nil {
		slog.Error("update comment failed", "error", err, "id", comment.ID)
		h.renderer.ServerError(w, r)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/posts/%s/", comment.PostID), http.StatusSeeOther)
}

// DeleteConfirm renders the delete confirmation for the viewer's own
// comment.
func (h *Comments) DeleteConfirm(w http.ResponseWriter, r *http.Request) {
	comment, ok := h.ownComment(w, r)
	if !ok {
		return
	}

	h.renderer.Page(w, r, "comment_confirm_delete", &render.PageData{
		Title: "Delete comment",
		Data:  map[string]any{"Comment": comment},
	})
}

// Delete removes the comment and refreshes the post's comment counter.
func (h *Comments) Delete(w http.ResponseWriter, r *http.Request) {
	comment, ok := h.ownComment(w, r)
	if !ok {
		return
	}

	if _, err := h.commentStore.Delete(comment.ID); err != nil {
		slog.Error("delete comment failed", "error", err, "id", comment.ID)
		h.renderer.ServerError(w, r)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/posts/%s/", comment.PostID), http.StatusSeeOther)
}

// ownComment loads the comment named by the URL, scoped to the current
// user. Missing comments, foreign comments, and a post ID that does not
// match all look the same: 404.
func (h *Comments) ownComment(w http.ResponseWriter, r *http.Request) (*models.Comment, bool) {
	postID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.renderer.NotFound(w, r)
		return nil, false
	}
	commentID, err := uuid.Parse(chi.URLParam(r, "comment_id"))
	if err != nil {
		h.renderer.NotFound(w, r)
		return nil, false
	}

	sess := middleware.SessionFromCtx(r.Context())
	comment, err := h.commentStore.FindByIDAndAuthor(commentID, sess.UserID)
	if err != nil {
		slog.Error("find comment failed", "error", err, "id", commentID)
		h.renderer.ServerError(w, r)
		return nil, false
	}
	if comment == nil || comment.PostID != postID {
		h.renderer.NotFound(w, r)
		return nil, false
	}

	return comment, true
}
