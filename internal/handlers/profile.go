// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/base64"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"blogium/internal/middleware"
	"blogium/internal/models"
	"blogium/internal/pagination"
	"blogium/internal/render"
	"blogium/internal/session"
	"blogium/internal/storage"
	"blogium/internal/store"
)

// totpIssuer is the issuer name shown in authenticator apps.
const totpIssuer = "Blogium"

// Profile groups the user profile handlers: the public profile pages,
// profile editing, and the optional TOTP security settings. A profile
// viewed by its owner includes drafts and scheduled posts; everyone
// else sees only what the visibility predicate allows.
type Profile struct {
	renderer      *render.Renderer
	userStore     *store.UserStore
	postStore     *store.PostStore
	sessions      *session.Store
	storageClient *storage.Client
	perPage       int
	now           func() time.Time
}

// NewProfile creates a new Profile handler group.
func NewProfile(renderer *render.Renderer, userStore *store.UserStore, postStore *store.PostStore, sessions *session.Store, storageClient *storage.Client, perPage int) *Profile {
	return &Profile{
		renderer:      renderer,
		userStore:     userStore,
		postStore:     postStore,
		sessions:      sessions,
		storageClient: storageClient,
		perPage:       perPage,
		now:           time.Now,
	}
}

// Own redirects the authenticated user to their profile page.
func (h *Profile) Own(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	http.Redirect(w, r, "/profile/"+sess.Username+"/", http.StatusSeeOther)
}

// Show renders a user's profile with their paginated posts.
func (h *Profile) Show(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	user, err := h.userStore.FindByUsername(username)
	if err != nil {
		slog.Error("find user failed", "error", err, "username", username)
		h.renderer.ServerError(w, r)
		return
	}
	if user == nil {
		h.renderer.NotFound(w, r)
		return
	}

	sess := middleware.SessionFromCtx(r.Context())
	isOwner := sess != nil && sess.UserID == user.ID

	var (
		total int
		posts []models.Post
	)
	if isOwner {
		total, err = h.postStore.CountByAuthor(user.ID)
	} else {
		total, err = h.postStore.CountVisibleByAuthor(user.ID, h.now())
	}
	if err != nil {
		slog.Error("count profile posts failed", "error", err, "user", user.ID)
		h.renderer.ServerError(w, r)
		return
	}

	page := pagination.ResolveParam(r.URL.Query().Get("page"), total, h.perPage)
	if isOwner {
		posts, err = h.postStore.ListByAuthor(user.ID, page.Limit, page.Offset)
	} else {
		posts, err = h.postStore.ListVisibleByAuthor(user.ID, h.now(), page.Limit, page.Offset)
	}
	if err != nil {
		slog.Error("list profile posts failed", "error", err, "user", user.ID)
		h.renderer.ServerError(w, r)
		return
	}
	resolveImages(h.storageClient, posts, "card")

	h.renderer.Page(w, r, "profile", &render.PageData{
		Title: user.FullName(),
		Data: map[string]any{
			"Profile": user,
			"Posts":   posts,
			"Page":    page,
			"IsOwner": isOwner,
		},
	})
}

// EditForm renders the profile edit form for the authenticated user.
func (h *Profile) EditForm(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	h.renderer.Page(w, r, "profile_edit", &render.PageData{
		Title: "Edit profile",
		Data:  map[string]any{"User": user},
	})
}

// Edit handles the profile edit submission.
func (h *Profile) Edit(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	firstName := r.FormValue("first_name")
	lastName := r.FormValue("last_name")
	email := r.FormValue("email")

	if msg := validateProfileFields(firstName, lastName, email); msg != "" {
		h.renderer.Page(w, r, "profile_edit", &render.PageData{
			Title:  "Edit profile",
			Errors: []string{msg},
			Data:   map[string]any{"User": user},
		})
		return
	}

	if err := h.userStore.UpdateProfile(user.ID, firstName, lastName, email); err != nil {
		slog.Error("update profile failed", "error", err, "user", user.ID)
		h.renderer.ServerError(w, r)
		return
	}

	// Keep the cached display name in the session current.
	sess := middleware.SessionFromCtx(r.Context())
	user.FirstName = firstName
	user.LastName = lastName
	sess.FullName = user.FullName()
	if err := h.sessions.Update(r.Context(), r, sess); err != nil {
		slog.Warn("session update failed", "error", err)
	}

	http.Redirect(w, r, "/profile/", http.StatusSeeOther)
}

// Security renders the 2FA settings page.
func (h *Profile) Security(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	data := map[string]any{"TOTPEnabled": user.TOTPEnabled}

	// A secret saved but not yet confirmed means setup is in progress:
	// re-show the QR so the user can finish.
	if !user.TOTPEnabled && user.TOTPSecret != nil {
		if qr, err := totpQRCode(user.Username, *user.TOTPSecret); err == nil {
			data["QRCode"] = qr
			data["Secret"] = *user.TOTPSecret
		}
	}

	h.renderer.Page(w, r, "security", &render.PageData{
		Title: "Security",
		Data:  data,
	})
}

// SecuritySetup generates a fresh TOTP secret and re-renders the
// security page with the QR code.
func (h *Profile) SecuritySetup(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	if user.TOTPEnabled {
		http.Redirect(w, r, "/profile/security/", http.StatusSeeOther)
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: user.Username,
	})
	if err != nil {
		slog.Error("totp generate failed", "error", err)
		h.renderer.ServerError(w, r)
		return
	}

	if err := h.userStore.SetTOTPSecret(user.ID, key.Secret()); err != nil {
		slog.Error("save totp secret failed", "error", err, "user", user.ID)
		h.renderer.ServerError(w, r)
		return
	}

	qr, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		slog.Error("qr code generation failed", "error", err)
		h.renderer.ServerError(w, r)
		return
	}

	h.renderer.Page(w, r, "security", &render.PageData{
		Title: "Security",
		Data: map[string]any{
			"TOTPEnabled": false,
			"QRCode":      "data:image/png;base64," + base64.StdEncoding.EncodeToString(qr),
			"Secret":      key.Secret(),
		},
	})
}

// SecurityEnable confirms the setup code and switches 2FA on.
func (h *Profile) SecurityEnable(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	if user.TOTPSecret == nil {
		http.Redirect(w, r, "/profile/security/", http.StatusSeeOther)
		return
	}

	code := r.FormValue("code")
	if !totp.Validate(code, *user.TOTPSecret) {
		data := map[string]any{
			"TOTPEnabled": false,
			"Secret":      *user.TOTPSecret,
		}
		if qr, err := totpQRCode(user.Username, *user.TOTPSecret); err == nil {
			data["QRCode"] = qr
		}
		h.renderer.Page(w, r, "security", &render.PageData{
			Title:  "Security",
			Errors: []string{"Invalid code. Please try again."},
			Data:   data,
		})
		return
	}

	if err := h.userStore.EnableTOTP(user.ID); err != nil {
		slog.Error("enable totp failed", "error", err, "user", user.ID)
		h.renderer.ServerError(w, r)
		return
	}

	http.Redirect(w, r, "/profile/security/", http.StatusSeeOther)
}

// SecurityDisable switches 2FA off and clears the stored secret.
func (h *Profile) SecurityDisable(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	if err := h.userStore.DisableTOTP(user.ID); err != nil {
		slog.Error("disable totp failed", "error", err, "user", user.ID)
		h.renderer.ServerError(w, r)
		return
	}

	http.Redirect(w, r, "/profile/security/", http.StatusSeeOther)
}

// currentUser loads the full user record for the session.
func (h *Profile) currentUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	sess := middleware.SessionFromCtx(r.Context())
	user, err := h.userStore.FindByID(sess.UserID)
	if err != nil || user == nil {
		slog.Error("current user lookup failed", "error", err, "user", sess.UserID)
		h.renderer.ServerError(w, r)
		return nil, false
	}
	return user, true
}

// totpQRCode builds the otpauth QR image for an existing secret.
func totpQRCode(username, secret string) (string, error) {
	url := "otpauth://totp/" + totpIssuer + ":" + username + "?secret=" + secret + "&issuer=" + totpIssuer
	png, err := qrcode.Encode(url, qrcode.Medium, 256)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
