package services

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"board-client/models"
	"board-client/validation"
)

// ListPosts returns one page of posts.
//
// Without a search term the backend pages and sorts. With one, the whole
// category-scoped collection is fetched and filtered, sorted newest first and
// paged here, so totals always reflect the search.
func (s *PostService) ListPosts(ctx context.Context, params models.PostListParams) (*models.PostListResponse, error) {
	if err := validation.ValidateListParams(params); err != nil {
		return nil, err
	}
	params = normalizeListParams(params)

	if params.Search == "" {
		return s.listPage(ctx, params)
	}
	return s.searchPosts(ctx, params)
}

func normalizeListParams(params models.PostListParams) models.PostListParams {
	if params.Page == 0 {
		params.Page = models.DefaultPage
	}
	if params.Limit == 0 {
		params.Limit = models.DefaultLimit
	}
	if params.SearchField == "" {
		params.SearchField = models.SearchFieldTitle
	}
	params.Search = strings.TrimSpace(params.Search)
	params.Category = strings.TrimSpace(params.Category)
	if params.Category == models.AllCategories {
		params.Category = ""
	}
	return params
}

func (s *PostService) listPage(ctx context.Context, params models.PostListParams) (*models.PostListResponse, error) {
	query := url.Values{
		"_page":     {strconv.Itoa(params.Page)},
		"_per_page": {strconv.Itoa(params.Limit)},
		"_sort":     {"createdAt"},
		"_order":    {"desc"},
	}
	if params.Category != "" {
		query.Set("category", params.Category)
	}

	var env models.PageEnvelope
	if err := s.api.Request(ctx, "/posts?"+query.Encode(), nil, &env); err != nil {
		return nil, fmt.Errorf("error fetching posts page %d: %w", params.Page, err)
	}

	data := env.Data
	if data == nil {
		data = []models.Post{}
	}
	return &models.PostListResponse{
		Data: data,
		Pagination: models.Pagination{
			Page:       params.Page,
			Limit:      params.Limit,
			Total:      env.Items,
			TotalPages: env.Pages,
		},
	}, nil
}

func (s *PostService) searchPosts(ctx context.Context, params models.PostListParams) (*models.PostListResponse, error) {
	endpoint := "/posts"
	if params.Category != "" {
		endpoint += "?" + url.Values{"category": {params.Category}}.Encode()
	}

	var all []models.Post
	if err := s.api.Request(ctx, endpoint, nil, &all); err != nil {
		return nil, fmt.Errorf("error fetching posts for search: %w", err)
	}

	filtered := FilterPosts(all, params.Search, params.SearchField)
	SortNewestFirst(filtered)
	page, pagination := Paginate(filtered, params.Page, params.Limit)

	return &models.PostListResponse{
		Data:       page,
		Pagination: pagination,
	}, nil
}

// FilterPosts keeps the posts whose field contains term, ignoring case.
func FilterPosts(posts []models.Post, term string, field models.SearchField) []models.Post {
	term = strings.ToLower(strings.TrimSpace(term))
	filtered := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if strings.Contains(strings.ToLower(p.Field(field)), term) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// SortNewestFirst orders posts by createdAt descending. Equal timestamps keep
// their input order.
func SortNewestFirst(posts []models.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
}

// Paginate cuts page number page (1-based) of size limit out of posts. A page
// past the end is empty. limit must be positive.
func Paginate(posts []models.Post, page, limit int) ([]models.Post, models.Pagination) {
	total := len(posts)
	totalPages := (total + limit - 1) / limit

	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return posts[start:end], models.Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}
