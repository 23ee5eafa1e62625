// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler
// integration tests. Tests are skipped when PostgreSQL or Valkey are
// unavailable.
package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"blogium/internal/database"
	"blogium/internal/middleware"
	"blogium/internal/models"
	"blogium/internal/render"
	"blogium/internal/session"
	"blogium/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "blogium")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "blogium")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, "session:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB            *sql.DB
	Valkey        *redis.Client
	Renderer      *render.Renderer
	Sessions      *session.Store
	UserStore     *store.UserStore
	PostStore     *store.PostStore
	CategoryStore *store.CategoryStore
	LocationStore *store.LocationStore
	CommentStore  *store.CommentStore
	Public        *Public
	Posts         *Posts
	Comments      *Comments
	Profile       *Profile
	Auth          *Auth
}

// newTestEnv creates a complete test environment with all handler
// dependencies. Object storage is left unconfigured.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	vk := testValkeyClient(t)

	renderer, err := render.New()
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	sessions := session.NewStore(vk, false)
	userStore := store.NewUserStore(db)
	postStore := store.NewPostStore(db)
	categoryStore := store.NewCategoryStore(db)
	locationStore := store.NewLocationStore(db)
	commentStore := store.NewCommentStore(db)

	const perPage = 10
	return &testEnv{
		DB:            db,
		Valkey:        vk,
		Renderer:      renderer,
		Sessions:      sessions,
		UserStore:     userStore,
		PostStore:     postStore,
		CategoryStore: categoryStore,
		LocationStore: locationStore,
		CommentStore:  commentStore,
		Public:        NewPublic(renderer, postStore, commentStore, categoryStore, nil, perPage),
		Posts:         NewPosts(renderer, postStore, categoryStore, locationStore, nil),
		Comments:      NewComments(renderer, commentStore, postStore),
		Profile:       NewProfile(renderer, userStore, postStore, sessions, nil, perPage),
		Auth:          NewAuth(renderer, sessions, userStore),
	}
}

// testUser creates a user with a unique username. Deleting the user in
// cleanup cascades to their posts and comments.
func testUser(t *testing.T, env *testEnv) *models.User {
	t.Helper()
	username := "handler-user-" + uuid.NewString()[:8]
	u, err := env.UserStore.Create(username, "password123", "Handler", "Tester", username+"@example.test")
	if err != nil {
		t.Fatalf("create test user: %v", err)
	}
	t.Cleanup(func() { env.DB.Exec("DELETE FROM users WHERE id = $1", u.ID) })
	return u
}

// testCategory creates a category with a unique slug.
func testCategory(t *testing.T, env *testEnv, published bool) *models.Category {
	t.Helper()
	slug := "handler-cat-" + uuid.NewString()[:8]
	c, err := env.CategoryStore.Create(&models.Category{
		Title:       "Handler Category",
		Slug:        slug,
		IsPublished: published,
	})
	if err != nil {
		t.Fatalf("create test category: %v", err)
	}
	t.Cleanup(func() { env.DB.Exec("DELETE FROM categories WHERE id = $1", c.ID) })
	return c
}

// testPost creates a post owned by author. categoryID may be nil.
func testPost(t *testing.T, env *testEnv, author *models.User, categoryID *uuid.UUID, published bool, pubDate time.Time) *models.Post {
	t.Helper()
	p, err := env.PostStore.Create(&models.Post{
		Title:       "Handler Post " + uuid.NewString()[:8],
		Text:        "handler test body",
		PubDate:     pubDate,
		AuthorID:    author.ID,
		CategoryID:  categoryID,
		IsPublished: published,
	})
	if err != nil {
		t.Fatalf("create test post: %v", err)
	}
	return p
}

// sessionFor builds session data for a user with the 2FA gate passed.
func sessionFor(u *models.User) *session.Data {
	return &session.Data{
		UserID:    u.ID,
		Username:  u.Username,
		FullName:  u.FullName(),
		TwoFADone: true,
	}
}

// ctxWithSession adds session data to a context using the middleware key.
func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, middleware.SessionKey, data)
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// withChiURLParams adds chi URL parameters and a session to a request.
func withChiURLParams(r *http.Request, sess *session.Data, pairs ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(pairs); i += 2 {
		rctx.URLParams.Add(pairs[i], pairs[i+1])
	}
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	if sess != nil {
		ctx = context.WithValue(ctx, middleware.SessionKey, sess)
	}
	return r.WithContext(ctx)
}
