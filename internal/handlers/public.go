// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the Blogium blog.
// Handlers are grouped by concern (public, posts, comments, profile,
// auth) and receive their dependencies through the handler struct.
package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"blogium/internal/middleware"
	"blogium/internal/models"
	"blogium/internal/pagination"
	"blogium/internal/render"
	"blogium/internal/slug"
	"blogium/internal/storage"
	"blogium/internal/store"
)

// Public groups the handlers for the read side of the blog: the index
// feed, post detail pages, and category listings. Listings show only
// posts that pass the visibility predicate; the detail page additionally
// lets authors open their own hidden or scheduled posts.
type Public struct {
	renderer      *render.Renderer
	postStore     *store.PostStore
	commentStore  *store.CommentStore
	categoryStore *store.CategoryStore
	storageClient *storage.Client
	perPage       int
	now           func() time.Time
}

// NewPublic creates a new Public handler group. storageClient may be nil
// if S3 is not configured.
func NewPublic(renderer *render.Renderer, postStore *store.PostStore, commentStore *store.CommentStore, categoryStore *store.CategoryStore, storageClient *storage.Client, perPage int) *Public {
	return &Public{
		renderer:      renderer,
		postStore:     postStore,
		commentStore:  commentStore,
		categoryStore: categoryStore,
		storageClient: storageClient,
		perPage:       perPage,
		now:           time.Now,
	}
}

// Index renders the paginated feed of publicly visible posts.
func (p *Public) Index(w http.ResponseWriter, r *http.Request) {
	now := p.now()

	total, err := p.postStore.CountVisible(now)
	if err != nil {
		slog.Error("count visible posts failed", "error", err)
		p.renderer.ServerError(w, r)
		return
	}

	page := pagination.ResolveParam(r.URL.Query().Get("page"), total, p.perPage)
	posts, err := p.postStore.ListVisible(now, page.Limit, page.Offset)
	if err != nil {
		slog.Error("list visible posts failed", "error", err)
		p.renderer.ServerError(w, r)
		return
	}
	resolveImages(p.storageClient, posts, "card")

	p.renderer.Page(w, r, "index", &render.PageData{
		Title: "Latest posts",
		Data: map[string]any{
			"Posts": posts,
			"Page":  page,
		},
	})
}

// PostDetail renders a single post with its comments. Posts that fail
// the visibility predicate return 404, except to their own author.
func (p *Public) PostDetail(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		p.renderer.NotFound(w, r)
		return
	}

	post, err := p.postStore.FindByID(id)
	if err != nil {
		slog.Error("find post failed", "error", err, "id", id)
		p.renderer.ServerError(w, r)
		return
	}
	if post == nil {
		p.renderer.NotFound(w, r)
		return
	}

	sess := middleware.SessionFromCtx(r.Context())
	viewer := uuid.Nil
	if sess != nil {
		viewer = sess.UserID
	}

	if !post.VisibleTo(viewer, p.now()) {
		p.renderer.NotFound(w, r)
		return
	}

	comments, err := p.commentStore.ListByPost(post.ID)
	if err != nil {
		slog.Error("list comments failed", "error", err, "post", post.ID)
		p.renderer.ServerError(w, r)
		return
	}
	resolveImage(p.storageClient, post, "full")

	var viewerID *uuid.UUID
	if sess != nil {
		viewerID = &sess.UserID
	}

	p.renderer.Page(w, r, "post_detail", &render.PageData{
		Title: post.Title,
		Data: map[string]any{
			"Post":     post,
			"Comments": comments,
			"IsAuthor": viewer != uuid.Nil && viewer == post.AuthorID,
			"ViewerID": viewerID,
		},
	})
}

// CategoryPosts renders the paginated listing of visible posts in one
// published category. Hidden categories 404 even when they have posts.
func (p *Public) CategoryPosts(w http.ResponseWriter, r *http.Request) {
	slugParam := chi.URLParam(r, "slug")
	if !slug.Valid(slugParam) {
		p.renderer.NotFound(w, r)
		return
	}

	category, err := p.categoryStore.FindPublishedBySlug(slugParam)
	if err != nil {
		slog.Error("find category failed", "error", err, "slug", slugParam)
		p.renderer.ServerError(w, r)
		return
	}
	if category == nil {
		p.renderer.NotFound(w, r)
		return
	}

	now := p.now()
	total, err := p.postStore.CountVisibleByCategory(category.ID, now)
	if err != nil {
		slog.Error("count category posts failed", "error", err, "category", category.ID)
		p.renderer.ServerError(w, r)
		return
	}

	page := pagination.ResolveParam(r.URL.Query().Get("page"), total, p.perPage)
	posts, err := p.postStore.ListVisibleByCategory(category.ID, now, page.Limit, page.Offset)
	if err != nil {
		slog.Error("list category posts failed", "error", err, "category", category.ID)
		p.renderer.ServerError(w, r)
		return
	}
	resolveImages(p.storageClient, posts, "card")

	p.renderer.Page(w, r, "category", &render.PageData{
		Title: category.Title,
		Data: map[string]any{
			"Category": category,
			"Posts":    posts,
			"Page":     page,
		},
	})
}

// resolveImage fills Post.ImageURL from the stored image key. A nil
// storage client leaves posts without images.
func resolveImage(client *storage.Client, post *models.Post, variant string) {
	if client == nil || post.ImageKey == nil {
		return
	}
	post.ImageURL = client.FileURL(*post.ImageKey + "/" + variant + ".webp")
}

// resolveImages fills ImageURL for a slice of posts.
func resolveImages(client *storage.Client, posts []models.Post, variant string) {
	if client == nil {
		return
	}
	for i := range posts {
		resolveImage(client, &posts[i], variant)
	}
}
