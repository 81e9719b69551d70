package store

import (
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"reviewshelf/pkg/domain"
)

// reviewMirrorColumns are the columns refreshed when an already
// published post is saved or re-published.
var reviewMirrorColumns = []string{
	"title", "isbn", "cover_link", "genre", "author",
	"summary", "content", "rating", "date_published",
}

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(&UserModel{}, &PostModel{}, &ReviewModel{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// SaveUser inserts a new user row. User identity is never mutated after
// creation, so there is no update path.
func (s *GormStore) SaveUser(u domain.User) (domain.User, error) {
	model := userToModel(u)
	if err := s.db.Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.User{}, ErrDuplicateUser
		}
		return domain.User{}, err
	}
	return userFromModel(model), nil
}

// GetUserByUsername looks up a local-credential user.
func (s *GormStore) GetUserByUsername(username string) (domain.User, bool, error) {
	return s.getUser("username = ?", username)
}

// GetUserByID returns a user by surrogate key.
func (s *GormStore) GetUserByID(id int64) (domain.User, bool, error) {
	return s.getUser("id = ?", id)
}

// GetUserByGoogleID looks up a user by external OAuth profile id.
func (s *GormStore) GetUserByGoogleID(googleID string) (domain.User, bool, error) {
	return s.getUser("google_id = ?", googleID)
}

func (s *GormStore) getUser(query string, arg any) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.First(&model, query, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// HasUsername checks whether a username is already registered.
func (s *GormStore) HasUsername(username string) (bool, error) {
	var count int64
	if err := s.db.Model(&UserModel{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// SavePost creates or updates a draft row; when the post is published
// the mirrored review row is refreshed in the same transaction.
func (s *GormStore) SavePost(p domain.Post) (domain.Post, error) {
	model := postToModel(p)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if model.ID == 0 {
			if err := tx.Create(&model).Error; err != nil {
				return err
			}
		} else {
			res := tx.Model(&PostModel{}).Where("id = ?", model.ID).Updates(map[string]any{
				"title":          model.Title,
				"isbn":           model.ISBN,
				"cover_link":     model.CoverLink,
				"genre":          model.Genre,
				"author":         model.Author,
				"summary":        model.Summary,
				"content":        model.Content,
				"rating":         model.Rating,
				"date_created":   model.DateCreated,
				"published":      model.Published,
				"date_published": model.DatePublished,
			})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrPostNotFound
			}
		}
		if !model.Published {
			return nil
		}
		return upsertReview(tx, model)
	})
	if err != nil {
		return domain.Post{}, err
	}
	return postFromModel(model), nil
}

// GetPost retrieves a draft/published post row.
func (s *GormStore) GetPost(id int64) (domain.Post, bool, error) {
	var model PostModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Post{}, false, nil
		}
		return domain.Post{}, false, err
	}
	return postFromModel(model), true, nil
}

// ListPostsByUser returns the user's posts, oldest first.
func (s *GormStore) ListPostsByUser(userID int64) ([]domain.Post, error) {
	var models []PostModel
	if err := s.db.Where("user_id = ?", userID).Order("id ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	posts := make([]domain.Post, 0, len(models))
	for _, m := range models {
		posts = append(posts, postFromModel(m))
	}
	return posts, nil
}

// PublishPost marks the draft published and upserts its mirror row.
// Both writes happen in one transaction; re-publishing an already
// published post refreshes the mirror instead of duplicating it.
func (s *GormStore) PublishPost(id int64, datePublished string) (domain.Post, error) {
	var model PostModel
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&model, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPostNotFound
			}
			return err
		}
		model.Published = true
		model.DatePublished = datePublished
		if err := tx.Model(&PostModel{}).Where("id = ?", id).Updates(map[string]any{
			"published":      true,
			"date_published": datePublished,
		}).Error; err != nil {
			return err
		}
		return upsertReview(tx, model)
	})
	if err != nil {
		return domain.Post{}, err
	}
	return postFromModel(model), nil
}

// DeletePost removes the mirror row (when present) and the draft row.
func (s *GormStore) DeletePost(id int64) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&ReviewModel{}, "user_post_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&PostModel{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrPostNotFound
		}
		return nil
	})
}

// GetReview retrieves a single published review.
func (s *GormStore) GetReview(id int64) (domain.Review, bool, error) {
	var model ReviewModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Review{}, false, nil
		}
		return domain.Review{}, false, err
	}
	return reviewFromModel(model), true, nil
}

// ListReviews returns the whole feed, oldest first.
func (s *GormStore) ListReviews() ([]domain.Review, error) {
	var models []ReviewModel
	if err := s.db.Order("id ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	reviews := make([]domain.Review, 0, len(models))
	for _, m := range models {
		reviews = append(reviews, reviewFromModel(m))
	}
	return reviews, nil
}

func upsertReview(tx *gorm.DB, post PostModel) error {
	review := ReviewModel{
		UserID:        post.UserID,
		UserPostID:    post.ID,
		Title:         post.Title,
		ISBN:          post.ISBN,
		CoverLink:     post.CoverLink,
		Genre:         post.Genre,
		Author:        post.Author,
		Summary:       post.Summary,
		Content:       post.Content,
		Rating:        post.Rating,
		DatePublished: post.DatePublished,
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_post_id"}},
		DoUpdates: clause.AssignmentColumns(reviewMirrorColumns),
	}).Create(&review).Error
}

func userToModel(u domain.User) UserModel {
	return UserModel{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Username:     nullableString(u.Username),
		GoogleID:     nullableString(u.GoogleID),
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
	}
}

func userFromModel(m UserModel) domain.User {
	return domain.User{
		ID:           m.ID,
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		Username:     stringValue(m.Username),
		GoogleID:     stringValue(m.GoogleID),
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
	}
}

func postToModel(p domain.Post) PostModel {
	return PostModel{
		ID:            p.ID,
		UserID:        p.UserID,
		Title:         p.Title,
		ISBN:          p.ISBN,
		CoverLink:     p.CoverLink,
		Genre:         p.Genre,
		Author:        p.Author,
		Summary:       p.Summary,
		Content:       p.Content,
		Rating:        p.Rating,
		DateCreated:   p.DateCreated,
		Published:     p.Published,
		DatePublished: p.DatePublished,
	}
}

func postFromModel(m PostModel) domain.Post {
	return domain.Post{
		ID:            m.ID,
		UserID:        m.UserID,
		Title:         m.Title,
		ISBN:          m.ISBN,
		CoverLink:     m.CoverLink,
		Genre:         m.Genre,
		Author:        m.Author,
		Summary:       m.Summary,
		Content:       m.Content,
		Rating:        m.Rating,
		DateCreated:   m.DateCreated,
		Published:     m.Published,
		DatePublished: m.DatePublished,
	}
}

func reviewFromModel(m ReviewModel) domain.Review {
	return domain.Review{
		ID:            m.ID,
		UserID:        m.UserID,
		UserPostID:    m.UserPostID,
		Title:         m.Title,
		ISBN:          m.ISBN,
		CoverLink:     m.CoverLink,
		Genre:         m.Genre,
		Author:        m.Author,
		Summary:       m.Summary,
		Content:       m.Content,
		Rating:        m.Rating,
		DatePublished: m.DatePublished,
	}
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
