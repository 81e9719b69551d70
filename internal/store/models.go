package store

import "time"

// GORM models used for persistence. Table names match the site's
// original schema: users, userdrafts, published.

type UserModel struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	FirstName string `gorm:"not null"`
	LastName  string `gorm:"not null"`
	// Username and GoogleID are pointers so that OAuth-only and
	// local-only accounts can each leave the other column NULL without
	// tripping the unique indexes.
	Username     *string `gorm:"uniqueIndex"`
	GoogleID     *string `gorm:"uniqueIndex"`
	PasswordHash string
	CreatedAt    time.Time `gorm:"not null"`
}

func (UserModel) TableName() string { return "users" }

type PostModel struct {
	ID            int64  `gorm:"primaryKey;autoIncrement"`
	UserID        int64  `gorm:"not null;index"`
	Title         string `gorm:"not null"`
	ISBN          string `gorm:"column:isbn;not null"`
	CoverLink     string `gorm:"not null"`
	Genre         string `gorm:"not null"`
	Author        string `gorm:"not null"`
	Summary       string
	Content       string
	Rating        int    `gorm:"not null"`
	DateCreated   string `gorm:"not null"`
	Published     bool   `gorm:"not null"`
	DatePublished string
}

func (PostModel) TableName() string { return "userdrafts" }

type ReviewModel struct {
	ID     int64 `gorm:"primaryKey;autoIncrement"`
	UserID int64 `gorm:"not null;index"`
	// The unique index is what makes publishing idempotent: upserts
	// keyed on user_post_id can never produce a second mirror row.
	UserPostID    int64  `gorm:"not null;uniqueIndex"`
	Title         string `gorm:"not null"`
	ISBN          string `gorm:"column:isbn;not null"`
	CoverLink     string `gorm:"not null"`
	Genre         string `gorm:"not null"`
	Author        string `gorm:"not null"`
	Summary       string
	Content       string
	Rating        int    `gorm:"not null"`
	DatePublished string `gorm:"not null"`
}

func (ReviewModel) TableName() string { return "published" }
