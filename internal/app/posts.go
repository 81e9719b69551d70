package app

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"reviewshelf/internal/store"
	"reviewshelf/pkg/domain"
)

// Placeholder values applied when form fields arrive empty. This is
// long-standing product behavior, not validation.
const (
	placeholderTitle      = "Untitled"
	placeholderBookAuthor = "Unknown Author"
	placeholderGenre      = "General"
	placeholderAuthor     = "Anonymous"
	placeholderSummary    = "Lorem ipsum dolor sit amet, consectetur adipiscing elit, sed do eiusmod tempor incididunt ut labore et dolore magna aliqua."
	defaultRating         = 5
)

const coverBaseURL = "https://covers.openlibrary.org/b/isbn/"

// PostInput carries the review form fields as submitted.
type PostInput struct {
	Title      string
	BookAuthor string
	Genre      string
	Author     string
	ISBN       string
	Summary    string
	Content    string
	Rating     string
}

// NormalizeISBN strips hyphens and surrounding whitespace.
func NormalizeISBN(raw string) string {
	return strings.ReplaceAll(strings.TrimSpace(raw), "-", "")
}

func validISBN(isbn string) bool {
	return len(isbn) == 10 || len(isbn) == 13
}

// reviewDate renders the site's D-M-YYYY date format (non-padded).
func reviewDate(t time.Time) string {
	return fmt.Sprintf("%d-%d-%d", t.Day(), int(t.Month()), t.Year())
}

// normalizePost applies trimming, the placeholder defaults, and the
// derived fields (composed title, cover link). ErrInvalidISBN is the
// only rejection; everything else falls back to a default.
func normalizePost(in PostInput) (domain.Post, error) {
	isbn := NormalizeISBN(in.ISBN)
	if !validISBN(isbn) {
		return domain.Post{}, ErrInvalidISBN
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = placeholderTitle
	}
	bookAuthor := strings.TrimSpace(in.BookAuthor)
	if bookAuthor == "" {
		bookAuthor = placeholderBookAuthor
	}
	genre := strings.TrimSpace(in.Genre)
	if genre == "" {
		genre = placeholderGenre
	}
	author := strings.TrimSpace(in.Author)
	if author == "" {
		author = placeholderAuthor
	}
	summary := strings.TrimSpace(in.Summary)
	if summary == "" {
		summary = placeholderSummary
	}
	rating, err := strconv.Atoi(strings.TrimSpace(in.Rating))
	if err != nil || rating < 1 || rating > 5 {
		rating = defaultRating
	}
	return domain.Post{
		Title:       title + " by " + bookAuthor,
		ISBN:        isbn,
		CoverLink:   coverBaseURL + isbn + "-M.jpg",
		Genre:       genre,
		Author:      author,
		Summary:     summary,
		Content:     strings.TrimSpace(in.Content),
		Rating:      rating,
		DateCreated: reviewDate(time.Now()),
	}, nil
}

// CreatePost validates the form and creates a draft or, for the publish
// action, a published post with its mirror row.
func (a *App) CreatePost(user domain.User, in PostInput, action domain.PostAction) (domain.Post, error) {
	post, err := normalizePost(in)
	if err != nil {
		return domain.Post{}, err
	}
	post.UserID = user.ID
	switch action {
	case domain.ActionSaveDraft:
	case domain.ActionPublish:
		post.Published = true
		post.DatePublished = post.DateCreated
	default:
		return domain.Post{}, ErrUnknownAction
	}
	saved, err := a.store.SavePost(post)
	if err != nil {
		return domain.Post{}, fmt.Errorf("save post: %w", err)
	}
	return saved, nil
}

// SavePost applies edited form fields to an owned post. A published
// post has its mirror row refreshed in the same write, and its publish
// date moves to today.
func (a *App) SavePost(user domain.User, id int64, in PostInput) (domain.Post, error) {
	existing, err := a.ownedPost(user, id)
	if err != nil {
		return domain.Post{}, err
	}
	post, err := normalizePost(in)
	if err != nil {
		return domain.Post{}, err
	}
	post.ID = existing.ID
	post.UserID = existing.UserID
	post.Published = existing.Published
	if existing.Published {
		post.DatePublished = post.DateCreated
	}
	saved, err := a.store.SavePost(post)
	if err != nil {
		return domain.Post{}, fmt.Errorf("save post: %w", err)
	}
	return saved, nil
}

// PublishPost transitions an owned draft to published. Re-publishing an
// already published post refreshes the mirror row instead of
// duplicating it.
func (a *App) PublishPost(user domain.User, id int64) (domain.Post, error) {
	if _, err := a.ownedPost(user, id); err != nil {
		return domain.Post{}, err
	}
	post, err := a.store.PublishPost(id, reviewDate(time.Now()))
	if err != nil {
		if errors.Is(err, store.ErrPostNotFound) {
			return domain.Post{}, ErrNotFound
		}
		return domain.Post{}, fmt.Errorf("publish post: %w", err)
	}
	return post, nil
}

// DeletePost removes an owned post; the mirror row goes with it when
// the post was published.
func (a *App) DeletePost(user domain.User, id int64) error {
	if _, err := a.ownedPost(user, id); err != nil {
		return err
	}
	if err := a.store.DeletePost(id); err != nil {
		if errors.Is(err, store.ErrPostNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

// GetPost returns an owned post for the edit form.
func (a *App) GetPost(user domain.User, id int64) (domain.Post, error) {
	return a.ownedPost(user, id)
}

// GetReview returns a published review; reviews are public data.
func (a *App) GetReview(id int64) (domain.Review, error) {
	review, ok, err := a.store.GetReview(id)
	if err != nil {
		return domain.Review{}, fmt.Errorf("fetch review: %w", err)
	}
	if !ok {
		return domain.Review{}, ErrNotFound
	}
	return review, nil
}

// MyPosts returns the user's posts split into drafts and published.
func (a *App) MyPosts(user domain.User) (drafts, published []domain.Post, err error) {
	posts, err := a.store.ListPostsByUser(user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("list posts: %w", err)
	}
	drafts = make([]domain.Post, 0, len(posts))
	published = make([]domain.Post, 0, len(posts))
	for _, p := range posts {
		if p.Published {
			published = append(published, p)
		} else {
			drafts = append(drafts, p)
		}
	}
	return drafts, published, nil
}

func (a *App) ownedPost(user domain.User, id int64) (domain.Post, error) {
	post, ok, err := a.store.GetPost(id)
	if err != nil {
		return domain.Post{}, fmt.Errorf("fetch post: %w", err)
	}
	if !ok {
		return domain.Post{}, ErrNotFound
	}
	if post.UserID != user.ID {
		return domain.Post{}, ErrForbidden
	}
	return post, nil
}
