package store

import (
	"errors"

	"reviewshelf/pkg/domain"
)

var (
	// ErrPostNotFound is returned by state transitions targeting a post
	// id that does not exist.
	ErrPostNotFound = errors.New("post not found")

	// ErrDuplicateUser is returned when SaveUser trips a unique index
	// on username or google id. Callers cannot rely on a pre-check
	// alone; two concurrent registrations can both pass it.
	ErrDuplicateUser = errors.New("duplicate user")
)

// Store defines persistence operations for users, draft posts, and the
// published review feed. Lookups report a miss as (zero, false, nil);
// an error means the store itself failed.
type Store interface {
	// users
	SaveUser(u domain.User) (domain.User, error)
	GetUserByUsername(username string) (domain.User, bool, error)
	GetUserByID(id int64) (domain.User, bool, error)
	GetUserByGoogleID(googleID string) (domain.User, bool, error)
	HasUsername(username string) (bool, error)

	// posts
	//
	// SavePost creates the post when its ID is zero and updates it
	// otherwise; when the post is published the mirrored review row is
	// written in the same transaction. PublishPost flips the draft flag
	// and upserts the mirror keyed by user_post_id, so re-publishing
	// never duplicates a review. DeletePost removes the mirror row (if
	// any) together with the draft row.
	SavePost(p domain.Post) (domain.Post, error)
	GetPost(id int64) (domain.Post, bool, error)
	ListPostsByUser(userID int64) ([]domain.Post, error)
	PublishPost(id int64, datePublished string) (domain.Post, error)
	DeletePost(id int64) error

	// reviews
	GetReview(id int64) (domain.Review, bool, error)
	ListReviews() ([]domain.Review, error)
}

// SessionStore persists opaque session tokens.
type SessionStore interface {
	NewSession(userID int64) (string, error)
	GetUserIDByToken(token string) (int64, bool, error)
	DeleteSession(token string) error
}
