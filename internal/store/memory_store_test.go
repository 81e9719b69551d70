package store

import (
	"errors"
	"testing"

	"reviewshelf/pkg/domain"
)

func seedPost(t *testing.T, m *MemoryStore, userID int64) domain.Post {
	t.Helper()
	post, err := m.SavePost(domain.Post{
		UserID:      userID,
		Title:       "Dune by Frank Herbert",
		ISBN:        "0441172717",
		Genre:       "Science Fiction",
		Author:      "reader1",
		Rating:      5,
		DateCreated: "3-1-2026",
	})
	if err != nil {
		t.Fatalf("save post: %v", err)
	}
	return post
}

func TestPublishPostIsIdempotent(t *testing.T) {
	m := NewMemoryStore()
	post := seedPost(t, m, 1)

	published, err := m.PublishPost(post.ID, "4-1-2026")
	if err != nil {
		t.Fatalf("first publish: %v", err)
	}
	if !published.Published || published.DatePublished != "4-1-2026" {
		t.Fatalf("publish did not update post: %+v", published)
	}

	if _, err := m.PublishPost(post.ID, "5-1-2026"); err != nil {
		t.Fatalf("second publish: %v", err)
	}
	reviews, err := m.ListReviews()
	if err != nil {
		t.Fatalf("list reviews: %v", err)
	}
	if len(reviews) != 1 {
		t.Fatalf("expected exactly one mirror row, got %d", len(reviews))
	}
	if reviews[0].UserPostID != post.ID {
		t.Fatalf("mirror row references post %d, want %d", reviews[0].UserPostID, post.ID)
	}
	if reviews[0].DatePublished != "5-1-2026" {
		t.Fatalf("re-publish should refresh the mirror, got %q", reviews[0].DatePublished)
	}
}

func TestSavePublishedPostRefreshesMirror(t *testing.T) {
	m := NewMemoryStore()
	post := seedPost(t, m, 1)
	if _, err := m.PublishPost(post.ID, "4-1-2026"); err != nil {
		t.Fatalf("publish: %v", err)
	}

	post, _, _ = m.GetPost(post.ID)
	post.Title = "Dune Messiah by Frank Herbert"
	if _, err := m.SavePost(post); err != nil {
		t.Fatalf("save published post: %v", err)
	}

	reviews, _ := m.ListReviews()
	if len(reviews) != 1 {
		t.Fatalf("expected one mirror row, got %d", len(reviews))
	}
	if reviews[0].Title != "Dune Messiah by Frank Herbert" {
		t.Fatalf("mirror not refreshed: %q", reviews[0].Title)
	}
}

func TestDeletePostRemovesMirrorRow(t *testing.T) {
	m := NewMemoryStore()
	draft := seedPost(t, m, 1)
	published := seedPost(t, m, 1)
	if _, err := m.PublishPost(published.ID, "4-1-2026"); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if err := m.DeletePost(published.ID); err != nil {
		t.Fatalf("delete published post: %v", err)
	}
	if reviews, _ := m.ListReviews(); len(reviews) != 0 {
		t.Fatalf("expected empty feed after delete, got %d rows", len(reviews))
	}

	if err := m.DeletePost(draft.ID); err != nil {
		t.Fatalf("delete draft: %v", err)
	}
	if posts, _ := m.ListPostsByUser(1); len(posts) != 0 {
		t.Fatalf("expected no posts left, got %d", len(posts))
	}

	if err := m.DeletePost(999); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
}

func TestUserLookups(t *testing.T) {
	m := NewMemoryStore()
	local, err := m.SaveUser(domain.User{FirstName: "Alice", LastName: "Smith", Username: "alice", PasswordHash: "x"})
	if err != nil {
		t.Fatalf("save local user: %v", err)
	}
	oauth, err := m.SaveUser(domain.User{FirstName: "Bob", LastName: "Jones", GoogleID: "google-123"})
	if err != nil {
		t.Fatalf("save oauth user: %v", err)
	}

	if u, ok, _ := m.GetUserByUsername("alice"); !ok || u.ID != local.ID {
		t.Fatalf("username lookup failed: %+v ok=%v", u, ok)
	}
	if u, ok, _ := m.GetUserByGoogleID("google-123"); !ok || u.ID != oauth.ID {
		t.Fatalf("google id lookup failed: %+v ok=%v", u, ok)
	}
	if _, ok, _ := m.GetUserByUsername("nobody"); ok {
		t.Fatalf("unexpected hit for unknown username")
	}
	if taken, _ := m.HasUsername("alice"); !taken {
		t.Fatalf("expected alice to be taken")
	}
}

func TestSaveUserRejectsDuplicates(t *testing.T) {
	m := NewMemoryStore()
	if _, err := m.SaveUser(domain.User{Username: "alice", PasswordHash: "x"}); err != nil {
		t.Fatalf("save user: %v", err)
	}
	if _, err := m.SaveUser(domain.User{Username: "alice", PasswordHash: "y"}); !errors.Is(err, ErrDuplicateUser) {
		t.Fatalf("duplicate username: expected ErrDuplicateUser, got %v", err)
	}

	if _, err := m.SaveUser(domain.User{GoogleID: "google-123"}); err != nil {
		t.Fatalf("save oauth user: %v", err)
	}
	if _, err := m.SaveUser(domain.User{GoogleID: "google-123"}); !errors.Is(err, ErrDuplicateUser) {
		t.Fatalf("duplicate google id: expected ErrDuplicateUser, got %v", err)
	}
}
