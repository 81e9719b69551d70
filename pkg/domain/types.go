package domain

import "time"

// PostAction selects the write operation requested for a post.
type PostAction string

const (
	ActionSaveDraft   PostAction = "saveDraft"
	ActionPublish     PostAction = "publish"
	ActionSaveChanges PostAction = "saveChanges"
)

type User struct {
	ID           int64     `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Username     string    `json:"username,omitempty"`
	GoogleID     string    `json:"-"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Post is a user-owned book review record. A post starts life as a
// draft and may be published, at which point a mirrored Review row
// becomes publicly visible.
type Post struct {
	ID            int64  `json:"id"`
	UserID        int64  `json:"userId"`
	Title         string `json:"title"`
	ISBN          string `json:"isbn"`
	CoverLink     string `json:"coverLink"`
	Genre         string `json:"genre"`
	Author        string `json:"author"`
	Summary       string `json:"summary"`
	Content       string `json:"content"`
	Rating        int    `json:"rating"`
	DateCreated   string `json:"dateCreated"`
	Published     bool   `json:"published"`
	DatePublished string `json:"datePublished,omitempty"`
}

// Review is the public mirror of a published post. UserPostID references
// the originating post; there is exactly one review per published post.
type Review struct {
	ID            int64  `json:"id"`
	UserID        int64  `json:"userId"`
	UserPostID    int64  `json:"userPostId"`
	Title         string `json:"title"`
	ISBN          string `json:"isbn"`
	CoverLink     string `json:"coverLink"`
	Genre         string `json:"genre"`
	Author        string `json:"author"`
	Summary       string `json:"summary"`
	Content       string `json:"content"`
	Rating        int    `json:"rating"`
	DatePublished string `json:"datePublished"`
}
