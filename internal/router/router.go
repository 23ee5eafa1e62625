// Package router sets up all HTTP routes and middleware chains for the
// blog. Public pages are readable anonymously; post, comment, and
// profile mutations sit behind the session gate.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"blogium/internal/handlers"
	"blogium/internal/middleware"
	"blogium/internal/render"
	"blogium/internal/session"
)

// Handlers bundles the handler groups the router wires up.
type Handlers struct {
	Public   *handlers.Public
	Posts    *handlers.Posts
	Comments *handlers.Comments
	Profile  *handlers.Profile
	Auth     *handlers.Auth
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up. loginLimiter throttles the credential
// endpoints; secure marks cookies HTTPS-only.
func New(sessionStore *session.Store, renderer *render.Renderer, h Handlers, loginLimiter *middleware.RateLimiter, secure bool) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.NewCSRF(secure))
	r.Use(middleware.LoadSession(sessionStore))

	r.NotFound(renderer.NotFound)

	// Health check — no auth, no session required.
	r.Get("/health", healthHandler)

	// Public pages.
	r.Get("/", h.Public.Index)
	r.Get("/posts/{id}/", h.Public.PostDetail)
	r.Get("/category/{slug}/", h.Public.CategoryPosts)
	r.Get("/profile/{username}/", h.Profile.Show)

	// Account endpoints. The credential forms are rate limited per IP.
	r.Route("/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(loginLimiter.Middleware)
			r.Get("/register", h.Auth.RegisterPage)
			r.Post("/register", h.Auth.RegisterSubmit)
			r.Get("/login", h.Auth.LoginPage)
			r.Post("/login", h.Auth.LoginSubmit)
		})
		r.Get("/2fa", h.Auth.TwoFAVerifyPage)
		r.Post("/2fa", h.Auth.TwoFAVerifySubmit)
		r.Post("/logout", h.Auth.Logout)
	})

	// Authenticated area. Full paths here share the tree with the public
	// /posts/{id}/ and /profile/{username}/ routes above.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Get("/posts/create/", h.Posts.CreateForm)
		r.Post("/posts/create/", h.Posts.Create)
		r.Get("/posts/{id}/edit/", h.Posts.EditForm)
		r.Post("/posts/{id}/edit/", h.Posts.Update)
		r.Get("/posts/{id}/delete/", h.Posts.DeleteConfirm)
		r.Post("/posts/{id}/delete/", h.Posts.Delete)

		r.Post("/posts/{id}/comment", h.Comments.Add)
		r.Get("/posts/{id}/edit_comment/{comment_id}/", h.Comments.EditForm)
		r.Post("/posts/{id}/edit_comment/{comment_id}/", h.Comments.Edit)
		r.Get("/posts/{id}/delete_comment/{comment_id}/", h.Comments.DeleteConfirm)
		r.Post("/posts/{id}/delete_comment/{comment_id}/", h.Comments.Delete)

		r.Get("/profile/", h.Profile.Own)
		r.Get("/profile/edit/", h.Profile.EditForm)
		r.Post("/profile/edit/", h.Profile.Edit)
		r.Get("/profile/security/", h.Profile.Security)
		r.Post("/profile/security/setup", h.Profile.SecuritySetup)
		r.Post("/profile/security/enable", h.Profile.SecurityEnable)
		r.Post("/profile/security/disable", h.Profile.SecurityDisable)
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
