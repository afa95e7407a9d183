package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"board-client/db"
	"board-client/models"
)

const (
	// CategoryScanLimit is how many posts are read to derive categories.
	CategoryScanLimit = 1000

	DefaultCategoryTTL = 5 * time.Minute

	categoryCacheKey = "categories"
)

// ListCategories returns the sentinel followed by every distinct category in
// first-seen order. It never fails: on any error it returns
// models.DefaultCategories.
func (s *PostService) ListCategories(ctx context.Context) []string {
	if cached, ok := s.cachedCategories(ctx); ok {
		return cached
	}

	var env models.PageEnvelope
	endpoint := "/posts?_page=1&_per_page=" + strconv.Itoa(CategoryScanLimit)
	if err := s.api.Request(ctx, endpoint, nil, &env); err != nil {
		s.logger.Printf("category lookup failed, using defaults: %v", err)
		return FallbackCategories()
	}

	categories := DistinctCategories(env.Data)
	if s.cache != nil {
		s.bestEffort("category cache store", func() error {
			return s.cache.Set(ctx, categoryCacheKey, categories, s.categoryTTL)
		})
	}
	return categories
}

// DistinctCategories prepends the sentinel to the distinct, non-empty
// categories of posts in first-seen order.
func DistinctCategories(posts []models.Post) []string {
	categories := []string{models.AllCategories}
	seen := map[string]bool{models.AllCategories: true}
	for _, p := range posts {
		if p.Category == "" || seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		categories = append(categories, p.Category)
	}
	return categories
}

// FallbackCategories returns a fresh copy of the default list.
func FallbackCategories() []string {
	return append([]string(nil), models.DefaultCategories...)
}

func (s *PostService) cachedCategories(ctx context.Context) ([]string, bool) {
	if s.cache == nil {
		return nil, false
	}
	var cached []string
	err := s.cache.Get(ctx, categoryCacheKey, &cached)
	if err != nil {
		if !errors.Is(err, db.ErrCacheMiss) {
			s.logger.Printf("category cache read failed: %v", err)
		}
		return nil, false
	}
	return cached, len(cached) > 0
}

func (s *PostService) invalidateCategories(ctx context.Context) {
	if s.cache == nil {
		return
	}
	s.bestEffort("category cache invalidation", func() error {
		return s.cache.Del(ctx, categoryCacheKey)
	})
}
