package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestPostVisibleAt(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	published := &Category{IsPublished: true}
	hidden := &Category{IsPublished: false}

	tests := []struct {
		name string
		post Post
		want bool
	}{
		{
			name: "published post in published category, pub date passed",
			post: Post{IsPublished: true, Category: published, PubDate: now.Add(-time.Hour)},
			want: true,
		},
		{
			name: "pub date exactly now",
			post: Post{IsPublished: true, Category: published, PubDate: now},
			want: true,
		},
		{
			name: "future pub date",
			post: Post{IsPublished: true, Category: published, PubDate: now.Add(time.Minute)},
			want: false,
		},
		{
			name: "unpublished post",
			post: Post{IsPublished: false, Category: published, PubDate: now.Add(-time.Hour)},
			want: false,
		},
		{
			name: "unpublished category",
			post: Post{IsPublished: true, Category: hidden, PubDate: now.Add(-time.Hour)},
			want: false,
		},
		{
			name: "no category",
			post: Post{IsPublished: true, Category: nil, PubDate: now.Add(-time.Hour)},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.post.VisibleAt(now); got != tt.want {
				t.Errorf("VisibleAt: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPostVisibleAtTimePasses(t *testing.T) {
	// Visibility changes as time passes without any write.
	pub := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	post := Post{IsPublished: true, Category: &Category{IsPublished: true}, PubDate: pub}

	if post.VisibleAt(pub.Add(-time.Second)) {
		t.Error("expected hidden before pub date")
	}
	if !post.VisibleAt(pub.Add(time.Second)) {
		t.Error("expected visible after pub date")
	}
}

func TestPostVisibleTo(t *testing.T) {
	now := time.Now()
	author := uuid.New()
	other := uuid.New()

	draft := Post{IsPublished: false, AuthorID: author, PubDate: now.Add(-time.Hour)}

	if !draft.VisibleTo(author, now) {
		t.Error("author should see their own draft")
	}
	if draft.VisibleTo(other, now) {
		t.Error("non-author should not see a draft")
	}
	if draft.VisibleTo(uuid.Nil, now) {
		t.Error("anonymous viewer should not see a draft")
	}
}

func TestUserFullName(t *testing.T) {
	u := User{Username: "jdoe", FirstName: "Jane", LastName: "Doe"}
	if got := u.FullName(); got != "Jane Doe" {
		t.Errorf("FullName: got %q, want %q", got, "Jane Doe")
	}

	bare := User{Username: "jdoe"}
	if got := bare.FullName(); got != "jdoe" {
		t.Errorf("FullName fallback: got %q, want %q", got, "jdoe")
	}
}
