// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides HTML template rendering for the blog. Every
// page except the auth screens is rendered inside the base layout.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"blogium/internal/markdown"
	"blogium/internal/middleware"
	"blogium/internal/session"
)

//go:embed templates/blog/*.html
var blogFS embed.FS

// PageData holds all data passed to blog templates.
type PageData struct {
	Title     string         // Page title for <title> tag
	Session   *session.Data  // Current user session (nil if unauthenticated)
	CSRFToken string         // CSRF token for forms
	Data      map[string]any // Page-specific data
	Errors    []string       // Validation messages shown above forms
}

// Renderer handles template parsing and execution for blog pages.
type Renderer struct {
	templates map[string]*template.Template
	funcMap   template.FuncMap
}

// standaloneTemplates lists templates that render as full HTML pages
// without the base layout (they have their own <html>, <head>, etc.).
var standaloneTemplates = map[string]bool{
	"login":      true,
	"register":   true,
	"2fa_verify": true,
}

// New creates a Renderer by parsing all blog templates from the embedded
// filesystem. Each page template is paired with the base layout.
func New() (*Renderer, error) {
	r := &Renderer{
		templates: make(map[string]*template.Template),
		funcMap: template.FuncMap{
			// deref safely dereferences a string pointer for use in templates.
			"deref": func(s *string) string {
				if s == nil {
					return ""
				}
				return *s
			},
			// markdown renders user-authored Markdown as HTML.
			"markdown": func(source string) template.HTML {
				out, err := markdown.ToHTML(source)
				if err != nil {
					slog.Error("markdown render failed", "error", err)
					return template.HTML(template.HTMLEscapeString(source))
				}
				return template.HTML(out)
			},
			// date formats a timestamp the way the blog displays dates.
			"date": func(t time.Time) string {
				return t.Format("Jan 2, 2006 15:04")
			},
			// uuidEq compares a *uuid.UUID pointer with a uuid.UUID value.
			"uuidEq": func(ptr *uuid.UUID, val uuid.UUID) bool {
				return ptr != nil && *ptr == val
			},
		},
	}

	entries, err := blogFS.ReadDir("templates/blog")
	if err != nil {
		return nil, fmt.Errorf("read embedded templates: %w", err)
	}

	// Parse each page template paired with the base layout.
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := filepath.Base(e.Name())
		if name == "base.html" {
			continue
		}

		// Strip .html extension for the template name.
		tmplName := name[:len(name)-len(".html")]

		var tmpl *template.Template
		var parseErr error

		if standaloneTemplates[tmplName] {
			tmpl, parseErr = template.New(name).Funcs(r.funcMap).ParseFS(
				blogFS, "templates/blog/"+name,
			)
		} else {
			tmpl, parseErr = template.New("base.html").Funcs(r.funcMap).ParseFS(
				blogFS, "templates/blog/base.html", "templates/blog/"+name,
			)
		}

		if parseErr != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, parseErr)
		}

		r.templates[tmplName] = tmpl
	}

	return r, nil
}

// Page renders a blog page inside the base layout; standalone pages use
// their own root template.
func (rn *Renderer) Page(w http.ResponseWriter, r *http.Request, name string, data *PageData) {
	rn.PageStatus(w, r, name, http.StatusOK, data)
}

// PageStatus is Page with an explicit HTTP status code, used for the
// error pages.
func (rn *Renderer) PageStatus(w http.ResponseWriter, r *http.Request, name string, status int, data *PageData) {
	tmpl, ok := rn.templates[name]
	if !ok {
		http.Error(w, fmt.Sprintf("template %q not found", name), http.StatusInternalServerError)
		return
	}

	if data == nil {
		data = &PageData{}
	}

	// Inject CSRF token from context (set by CSRF middleware).
	data.CSRFToken = middleware.CSRFTokenFromCtx(r.Context())

	// Inject session from context.
	if data.Session == nil {
		data.Session = middleware.SessionFromCtx(r.Context())
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	execName := "base.html"
	if standaloneTemplates[name] {
		execName = name + ".html"
	}

	if err := executeTemplate(w, tmpl, execName, data); err != nil {
		slog.Error("template execution failed", "template", name, "error", err)
	}
}

// NotFound renders the 404 page.
func (rn *Renderer) NotFound(w http.ResponseWriter, r *http.Request) {
	rn.PageStatus(w, r, "404", http.StatusNotFound, &PageData{Title: "Page not found"})
}

// ServerError renders the 500 page.
func (rn *Renderer) ServerError(w http.ResponseWriter, r *http.Request) {
	rn.PageStatus(w, r, "500", http.StatusInternalServerError, &PageData{Title: "Server error"})
}

// executeTemplate wraps template execution with error handling.
func executeTemplate(w io.Writer, tmpl *template.Template, name string, data any) error {
	return tmpl.ExecuteTemplate(w, name, data)
}
