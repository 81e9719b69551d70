package app

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"reviewshelf/pkg/domain"
)

// FeedQuery carries the filter/sort controls from the reviews page.
// At most one criterion is honored per request, in the fixed precedence
// genre filter > rating filter > genre sort > rating sort > date sort.
type FeedQuery struct {
	Genre      string
	Rating     string
	GenreSort  string
	RatingSort string
	DateSort   string
	Clear      string
}

// FeedResult is the payload for the reviews page. Reviews always holds
// the full (possibly sorted) feed; Filtered is set only when a filter
// criterion applied.
type FeedResult struct {
	Reviews   []domain.Review
	Filtered  []domain.Review
	HasFilter bool
}

// Feed materializes the published feed and applies one filter or sort
// criterion. The feed is unpaginated by design.
func (a *App) Feed(q FeedQuery) (FeedResult, error) {
	reviews, err := a.store.ListReviews()
	if err != nil {
		return FeedResult{}, fmt.Errorf("list reviews: %w", err)
	}

	switch {
	case q.Genre != "":
		filtered := make([]domain.Review, 0)
		for _, r := range reviews {
			if r.Genre == q.Genre {
				filtered = append(filtered, r)
			}
		}
		return FeedResult{Reviews: reviews, Filtered: filtered, HasFilter: true}, nil

	case q.Rating != "":
		rating, err := strconv.Atoi(strings.TrimSpace(q.Rating))
		filtered := make([]domain.Review, 0)
		if err == nil {
			for _, r := range reviews {
				if r.Rating == rating {
					filtered = append(filtered, r)
				}
			}
		}
		return FeedResult{Reviews: reviews, Filtered: filtered, HasFilter: true}, nil

	case isSortDir(q.GenreSort):
		sortReviews(reviews, q.GenreSort == "desc", func(a, b domain.Review) bool {
			return a.Genre < b.Genre
		})

	case isSortDir(q.RatingSort):
		sortReviews(reviews, q.RatingSort == "desc", func(a, b domain.Review) bool {
			return a.Rating < b.Rating
		})

	case isSortDir(q.DateSort):
		sortReviews(reviews, q.DateSort == "desc", func(a, b domain.Review) bool {
			return a.DatePublished < b.DatePublished
		})

	case q.Clear != "":
		// Lowest precedence: clear only takes effect when no other
		// criterion was submitted, and yields the plain feed.
	}

	return FeedResult{Reviews: reviews}, nil
}

func isSortDir(v string) bool {
	return v == "asc" || v == "desc"
}

// sortReviews sorts in place, stably, so that rows with equal keys keep
// their feed order and asc/desc are exact reverses of each other.
func sortReviews(reviews []domain.Review, desc bool, less func(a, b domain.Review) bool) {
	sort.SliceStable(reviews, func(i, j int) bool {
		if desc {
			return less(reviews[j], reviews[i])
		}
		return less(reviews[i], reviews[j])
	})
}
