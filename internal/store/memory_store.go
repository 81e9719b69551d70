package store

import (
	"sync"

	"reviewshelf/pkg/domain"
)

// MemoryStore keeps everything in-process. It mirrors GormStore
// semantics closely enough to back handler and app tests without a
// database.
type MemoryStore struct {
	mu           sync.RWMutex
	nextUserID   int64
	nextPostID   int64
	nextReviewID int64
	users        map[int64]domain.User
	username     map[string]int64 // username -> user ID
	google       map[string]int64 // google ID -> user ID
	posts        map[int64]domain.Post
	postOrder    []int64
	reviews      map[int64]domain.Review // keyed by user_post_id
	reviewOrder  []int64                 // user_post_ids in publish order
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[int64]domain.User),
		username: make(map[string]int64),
		google:   make(map[string]int64),
		posts:    make(map[int64]domain.Post),
		reviews:  make(map[int64]domain.Review),
	}
}

// SaveUser registers a user and assigns its ID.
func (m *MemoryStore) SaveUser(u domain.User) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.Username != "" {
		if _, taken := m.username[u.Username]; taken {
			return domain.User{}, ErrDuplicateUser
		}
	}
	if u.GoogleID != "" {
		if _, taken := m.google[u.GoogleID]; taken {
			return domain.User{}, ErrDuplicateUser
		}
	}
	m.nextUserID++
	u.ID = m.nextUserID
	m.users[u.ID] = u
	if u.Username != "" {
		m.username[u.Username] = u.ID
	}
	if u.GoogleID != "" {
		m.google[u.GoogleID] = u.ID
	}
	return u, nil
}

// GetUserByUsername looks up a local-credential user.
func (m *MemoryStore) GetUserByUsername(username string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id, ok := m.username[username]; ok {
		u, exists := m.users[id]
		return u, exists, nil
	}
	return domain.User{}, false, nil
}

// GetUserByID returns a user by surrogate key.
func (m *MemoryStore) GetUserByID(id int64) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	return u, ok, nil
}

// GetUserByGoogleID looks up a user by external profile id.
func (m *MemoryStore) GetUserByGoogleID(googleID string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id, ok := m.google[googleID]; ok {
		u, exists := m.users[id]
		return u, exists, nil
	}
	return domain.User{}, false, nil
}

// HasUsername checks whether a username is taken.
func (m *MemoryStore) HasUsername(username string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.username[username]
	return ok, nil
}

// SavePost creates or updates a post, mirroring when published.
func (m *MemoryStore) SavePost(p domain.Post) (domain.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == 0 {
		m.nextPostID++
		p.ID = m.nextPostID
		m.postOrder = append(m.postOrder, p.ID)
	} else if _, ok := m.posts[p.ID]; !ok {
		return domain.Post{}, ErrPostNotFound
	}
	m.posts[p.ID] = p
	if p.Published {
		m.upsertReview(p)
	}
	return p, nil
}

// GetPost retrieves a post by ID.
func (m *MemoryStore) GetPost(id int64) (domain.Post, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.posts[id]
	return p, ok, nil
}

// ListPostsByUser returns the user's posts in creation order.
func (m *MemoryStore) ListPostsByUser(userID int64) ([]domain.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Post, 0)
	for _, id := range m.postOrder {
		if p, ok := m.posts[id]; ok && p.UserID == userID {
			res = append(res, p)
		}
	}
	return res, nil
}

// PublishPost flips the draft flag and upserts the mirror row.
func (m *MemoryStore) PublishPost(id int64, datePublished string) (domain.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return domain.Post{}, ErrPostNotFound
	}
	p.Published = true
	p.DatePublished = datePublished
	m.posts[id] = p
	m.upsertReview(p)
	return p, nil
}

// DeletePost removes the mirror row (if any) and the post itself.
func (m *MemoryStore) DeletePost(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.posts[id]; !ok {
		return ErrPostNotFound
	}
	delete(m.posts, id)
	m.postOrder = removeID(m.postOrder, id)
	if _, ok := m.reviews[id]; ok {
		delete(m.reviews, id)
		m.reviewOrder = removeID(m.reviewOrder, id)
	}
	return nil
}

// GetReview retrieves a published review by its own ID.
func (m *MemoryStore) GetReview(id int64) (domain.Review, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.reviews {
		if r.ID == id {
			return r, true, nil
		}
	}
	return domain.Review{}, false, nil
}

// ListReviews returns the feed in publish order.
func (m *MemoryStore) ListReviews() ([]domain.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Review, 0, len(m.reviewOrder))
	for _, postID := range m.reviewOrder {
		if r, ok := m.reviews[postID]; ok {
			res = append(res, r)
		}
	}
	return res, nil
}

// upsertReview must be called with the write lock held.
func (m *MemoryStore) upsertReview(p domain.Post) {
	existing, ok := m.reviews[p.ID]
	review := domain.Review{
		UserID:        p.UserID,
		UserPostID:    p.ID,
		Title:         p.Title,
		ISBN:          p.ISBN,
		CoverLink:     p.CoverLink,
		Genre:         p.Genre,
		Author:        p.Author,
		Summary:       p.Summary,
		Content:       p.Content,
		Rating:        p.Rating,
		DatePublished: p.DatePublished,
	}
	if ok {
		review.ID = existing.ID
	} else {
		m.nextReviewID++
		review.ID = m.nextReviewID
		m.reviewOrder = append(m.reviewOrder, p.ID)
	}
	m.reviews[p.ID] = review
}

func removeID(ids []int64, id int64) []int64 {
	filtered := ids[:0]
	for _, item := range ids {
		if item != id {
			filtered = append(filtered, item)
		}
	}
	return filtered
}
