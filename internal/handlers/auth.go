package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pquerna/otp/totp"

	"blogium/internal/middleware"
	"blogium/internal/render"
	"blogium/internal/session"
	"blogium/internal/store"
)

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (duplicate username on registration).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Auth groups the registration, login, and two-factor handlers.
type Auth struct {
	renderer  *render.Renderer
	sessions  *session.Store
	userStore *store.UserStore
}

// NewAuth creates a new Auth handler group.
func NewAuth(renderer *render.Renderer, sessions *session.Store, userStore *store.UserStore) *Auth {
	return &Auth{
		renderer:  renderer,
		sessions:  sessions,
		userStore: userStore,
	}
}

// RegisterPage renders the signup form.
func (a *Auth) RegisterPage(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess.Authenticated() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	a.renderer.Page(w, r, "register", &render.PageData{
		Title: "Sign up",
		Data:  map[string]any{},
	})
}

// RegisterSubmit processes the signup form and creates the account.
func (a *Auth) RegisterSubmit(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	firstName := r.FormValue("first_name")
	lastName := r.FormValue("last_name")
	email := r.FormValue("email")

	redisplay := func(msg string) {
		a.renderer.Page(w, r, "register", &render.PageData{
			Title:  "Sign up",
			Errors: []string{msg},
			Data: map[string]any{
				"Username":  username,
				"FirstName": firstName,
				"LastName":  lastName,
				"Email":     email,
			},
		})
	}

	if msg := validateRegistration(username, password); msg != "" {
		redisplay(msg)
		return
	}
	if password != r.FormValue("password_confirm") {
		redisplay("Passwords do not match.")
		return
	}
	if msg := validateProfileFields(firstName, lastName, email); msg != "" {
		redisplay(msg)
		return
	}

	if _, err := a.userStore.Create(username, password, firstName, lastName, email); err != nil {
		if isUniqueViolation(err) {
			redisplay("That username is already taken.")
			return
		}
		slog.Error("create user failed", "error", err)
		a.renderer.ServerError(w, r)
		return
	}

	http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
}

// LoginPage renders the login form.
func (a *Auth) LoginPage(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess.Authenticated() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	a.renderer.Page(w, r, "login", &render.PageData{
		Title: "Log in",
	})
}

// LoginSubmit processes the login form. Accounts with 2FA enabled get a
// session that is not yet authenticated and are sent to the code page.
func (a *Auth) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	user, err := a.userStore.FindByUsername(username)
	if err != nil {
		slog.Error("login lookup failed", "error", err)
		a.renderer.Page(w, r, "login", &render.PageData{
			Title:  "Log in",
			Errors: []string{"An unexpected error occurred."},
		})
		return
	}

	if user == nil || !a.userStore.CheckPassword(user, password) {
		a.renderer.Page(w, r, "login", &render.PageData{
			Title:  "Log in",
			Errors: []string{"Invalid username or password."},
		})
		return
	}

	_, err = a.sessions.Create(r.Context(), w, &session.Data{
		UserID:    user.ID,
		Username:  user.Username,
		FullName:  user.FullName(),
		TwoFADone: !user.TOTPEnabled,
	})
	if err != nil {
		slog.Error("session create failed", "error", err)
		a.renderer.ServerError(w, r)
		return
	}

	if user.TOTPEnabled {
		http.Redirect(w, r, "/auth/2fa", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// TwoFAVerifyPage renders the 2FA code entry form.
func (a *Auth) TwoFAVerifyPage(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
		return
	}
	if sess.TwoFADone {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	a.renderer.Page(w, r, "2fa_verify", &render.PageData{
		Title: "Two-factor code",
	})
}

// TwoFAVerifySubmit validates the TOTP code and completes the login.
func (a *Auth) TwoFAVerifySubmit(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
		return
	}

	user, err := a.userStore.FindByID(sess.UserID)
	if err != nil || user == nil {
		slog.Error("user lookup for 2fa failed", "error", err)
		a.renderer.ServerError(w, r)
		return
	}
	if user.TOTPSecret == nil || !user.TOTPEnabled {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if !totp.Validate(r.FormValue("code"), *user.TOTPSecret) {
		a.renderer.Page(w, r, "2fa_verify", &render.PageData{
			Title:  "Two-factor code",
			Errors: []string{"Invalid code. Please try again."},
		})
		return
	}

	sess.TwoFADone = true
	if err := a.sessions.Update(r.Context(), r, sess); err != nil {
		slog.Error("session update failed", "error", err)
		a.renderer.ServerError(w, r)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout destroys the session and returns to the feed.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	a.sessions.Destroy(r.Context(), w, r)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
