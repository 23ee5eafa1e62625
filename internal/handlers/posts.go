// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"blogium/internal/authz"
	"blogium/internal/imaging"
	"blogium/internal/middleware"
	"blogium/internal/models"
	"blogium/internal/render"
	"blogium/internal/storage"
	"blogium/internal/store"
)

const (
	// maxUploadBytes caps post image uploads at 10 MB.
	maxUploadBytes = 10 << 20

	// pubDateLayout matches the browser's datetime-local input format.
	pubDateLayout = "2006-01-02T15:04"
)

// Posts groups the authenticated CRUD handlers for blog posts. Every
// mutation goes through the authorization guard: only the author may
// change a post, everyone else is bounced back to the detail page.
type Posts struct {
	renderer      *render.Renderer
	postStore     *store.PostStore
	categoryStore *store.CategoryStore
	locationStore *store.LocationStore
	storageClient *storage.Client
	now           func() time.Time
}

// NewPosts creates a new Posts handler group. storageClient may be nil
// if S3 is not configured; the image field is then omitted from forms.
func NewPosts(renderer *render.Renderer, postStore *store.PostStore, categoryStore *store.CategoryStore, locationStore *store.LocationStore, storageClient *storage.Client) *Posts {
	return &Posts{
		renderer:      renderer,
		postStore:     postStore,
		categoryStore: categoryStore,
		locationStore: locationStore,
		storageClient: storageClient,
		now:           time.Now,
	}
}

// postForm holds the parsed and validated post form fields.
type postForm struct {
	Title       string
	Text        string
	PubDate     time.Time
	CategoryID  *uuid.UUID
	LocationID  *uuid.UUID
	IsPublished bool
	Image       *multipart.FileHeader
}

// parsePostForm extracts and validates the post form. It returns the
// parsed values and any validation messages.
func parsePostForm(r *http.Request) (*postForm, []string) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		// Plain form posts (no file field) fall back to ParseForm.
		if err := r.ParseForm(); err != nil {
			return nil, []string{"The submitted form could not be read."}
		}
	}

	form := &postForm{
		Title:       r.FormValue("title"),
		Text:        r.FormValue("text"),
		IsPublished: r.FormValue("is_published") == "true",
	}

	var errs []string
	if msg := validatePostFields(form.Title, form.Text); msg != "" {
		errs = append(errs, msg)
	}

	pubDate, err := time.ParseInLocation(pubDateLayout, r.FormValue("pub_date"), time.Local)
	if err != nil {
		errs = append(errs, "A valid publish date is required.")
	} else {
		form.PubDate = pubDate
	}

	catID, err := uuid.Parse(r.FormValue("category"))
	if err != nil {
		errs = append(errs, "A category is required.")
	} else {
		form.CategoryID = &catID
	}

	if raw := r.FormValue("location"); raw != "" {
		locID, err := uuid.Parse(raw)
		if err != nil {
			errs = append(errs, "The selected location is invalid.")
		} else {
			form.LocationID = &locID
		}
	}

	if r.MultipartForm != nil {
		if files := r.MultipartForm.File["image"]; len(files) > 0 {
			form.Image = files[0]
		}
	}

	return form, errs
}

// renderForm renders the post form with the category and location
// choices loaded.
func (h *Posts) renderForm(w http.ResponseWriter, r *http.Request, post *models.Post, isEdit bool, errs []string) {
	categories, err := h.categoryStore.ListPublished()
	if err != nil {
		slog.Error("list categories failed", "error", err)
	}
	locations, err := h.locationStore.ListPublished()
	if err != nil {
		slog.Error("list locations failed", "error", err)
	}

	pubDateValue := h.now().Format(pubDateLayout)
	title := "New post"
	if post != nil {
		pubDateValue = post.PubDate.Format(pubDateLayout)
		resolveImage(h.storageClient, post, "card")
	}
	if isEdit {
		title = "Edit post"
	}

	h.renderer.Page(w, r, "post_form", &render.PageData{
		Title:  title,
		Errors: errs,
		Data: map[string]any{
			"Post":          post,
			"Categories":    categories,
			"Locations":     locations,
			"IsEdit":        isEdit,
			"PubDateValue":  pubDateValue,
			"ImagesEnabled": h.storageClient != nil,
		},
	})
}

// CreateForm renders the empty post form.
func (h *Posts) CreateForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, nil, false, nil)
}

// Create handles the new post submission. The authenticated user always
// becomes the author regardless of anything in the request.
func (h *Posts) Create(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	form, errs := parsePostForm(r)
	if len(errs) > 0 {
		h.renderForm(w, r, nil, false, errs)
		return
	}

	post := &models.Post{
		Title:       form.Title,
		Text:        form.Text,
		PubDate:     form.PubDate,
		AuthorID:    sess.UserID,
		CategoryID:  form.CategoryID,
		LocationID:  form.LocationID,
		IsPublished: form.IsPublished,
	}

	if form.Image != nil && h.storageClient != nil {
		key, err := h.uploadImage(r.Context(), form.Image)
		if err != nil {
			slog.Error("image upload failed", "error", err)
			h.renderForm(w, r, nil, false, []string{"The image could not be processed."})
			return
		}
		post.ImageKey = &key
	}

	if _, err := h.postStore.Create(post); err != nil {
		slog.Error("create post failed", "error", err)
		h.renderer.ServerError(w, r)
		return
	}

	http.Redirect(w, r, "/profile/", http.StatusSeeOther)
}

// EditForm renders the pre-filled edit form for the post's author.
func (h *Posts) EditForm(w http.ResponseWriter, r *http.Request) {
	post, ok := h.guardedPost(w, r)
	if !ok {
		return
	}
	h.renderForm(w, r, post, true, nil)
}

// Update handles the edit form submission.
func (h *Posts) Update(w http.ResponseWriter, r *http.Request) {
	post, ok := h.guardedPost(w, r)
	if !ok {
		return
	}

	form, errs := parsePostForm(r)
	if len(errs) > 0 {
		h.renderForm(w, r, post, true, errs)
		return
	}

	post.Title = form.Title
	post.Text = form.Text
	post.PubDate = form.PubDate
	post.CategoryID = form.CategoryID
	post.LocationID = form.LocationID
	post.IsPublished = form.IsPublished

	if form.Image != nil && h.storageClient != nil {
		oldKey := post.ImageKey
		key, err := h.uploadImage(r.Context(), form.Image)
		if err != nil {
			slog.Error("image upload failed", "error", err)
			h.renderForm(w, r, post, true, []string{"The image could not be processed."})
			return
		}
		post.ImageKey = &key
		if oldKey != nil {
			h.deleteImage(r.Context(), *oldKey)
		}
	}

	if err := h.postStore.Update(post); err != nil {
		slog.Error("update post failed", "error", err, "id", post.ID)
		h.renderer.ServerError(w, r)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/posts/%s/", post.ID), http.StatusSeeOther)
}

// DeleteConfirm renders the delete confirmation page.
func (h *Posts) DeleteConfirm(w http.ResponseWriter, r *http.Request) {
	post, ok := h.guardedPost(w, r)
	if !ok {
		return
	}

	h.renderer.Page(w, r, "post_confirm_delete", &render.PageData{
		Title: "Delete post",
		Data:  map[string]any{"Post": post},
	})
}

// Delete removes the post; its comments go with it via the foreign key
// cascade.
func (h *Posts) Delete(w http.ResponseWriter, r *http.Request) {
	post, ok := h.guardedPost(w, r)
	if !ok {
		return
	}

	if err := h.postStore.Delete(post.ID); err != nil {
		slog.Error("delete post failed", "error", err, "id", post.ID)
		h.renderer.ServerError(w, r)
		return
	}

	if post.ImageKey != nil {
		h.deleteImage(r.Context(), *post.ImageKey)
	}

	http.Redirect(w, r, "/profile/", http.StatusSeeOther)
}

// guardedPost loads the post from the URL and applies the authorization
// guard. Unknown posts 404; posts owned by someone else redirect to the
// detail page.
func (h *Posts) guardedPost(w http.ResponseWriter, r *http.Request) (*models.Post, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.renderer.NotFound(w, r)
		return nil, false
	}

	post, err := h.postStore.FindByID(id)
	if err != nil {
		slog.Error("find post failed", "error", err, "id", id)
		h.renderer.ServerError(w, r)
		return nil, false
	}
	if post == nil {
		h.renderer.NotFound(w, r)
		return nil, false
	}

	sess := middleware.SessionFromCtx(r.Context())
	decision := authz.PostMutation(post, sess.UserID)
	if !decision.Allowed {
		http.Redirect(w, r, decision.RedirectTo, http.StatusSeeOther)
		return nil, false
	}

	return post, true
}

// uploadImage converts the uploaded file into WebP variants and stores
// them under a fresh key prefix. Returns the prefix.
func (h *Posts) uploadImage(ctx context.Context, header *multipart.FileHeader) (string, error) {
	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}

	variants, err := imaging.GenerateVariants(data, nil)
	if err != nil {
		return "", err
	}

	key := "posts/" + uuid.New().String()
	for _, v := range variants {
		objectKey := key + "/" + v.Name + ".webp"
		if err := h.storageClient.Upload(ctx, objectKey, v.ContentType, bytes.NewReader(v.Data), int64(len(v.Data))); err != nil {
			return "", err
		}
	}
	return key, nil
}

// deleteImage removes all variants stored under a key prefix. Failures
// are logged, not surfaced: a stale object must not block the request.
func (h *Posts) deleteImage(ctx context.Context, key string) {
	if h.storageClient == nil {
		return
	}
	for _, v := range imaging.DefaultVariants {
		if err := h.storageClient.Delete(ctx, key+"/"+v.Name+".webp"); err != nil {
			slog.Warn("delete image variant failed", "error", err, "key", key, "variant", v.Name)
		}
	}
}
