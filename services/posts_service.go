// Package services implements the post operations on top of the backend
// transport: the listing pipeline, single-post mutations and the category
// lister.
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"board-client/client"
	"board-client/db"
	"board-client/models"
	"board-client/utils"
	"board-client/validation"
)

// Requester sends one request to the backend. *client.Transport implements it.
type Requester interface {
	Request(ctx context.Context, endpoint string, opts *client.RequestOptions, out interface{}) error
}

// IDSource hands out candidate post ids. *utils.IDGenerator implements it.
type IDSource interface {
	Next() (string, error)
}

// maxIDAttempts bounds how many candidate ids CreatePost tries before giving up.
const maxIDAttempts = 5

// NotFoundError is returned when the backend reports that a post does not
// exist. It unwraps to the underlying 404 *client.HTTPError.
type NotFoundError struct {
	ID  models.ID
	Err *client.HTTPError
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("post %s not found: %v", e.ID, e.Err)
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

type Options struct {
	// Tags stores the client-attribution tag. Nil disables attribution.
	Tags utils.TagStore
	// IDs generates post ids. Required for CreatePost.
	IDs IDSource
	// Cache holds the derived category list. Nil disables caching.
	Cache       db.Cache
	CategoryTTL time.Duration
	Logger      *log.Logger
	Now         func() time.Time
}

type PostService struct {
	api         Requester
	tags        utils.TagStore
	ids         IDSource
	cache       db.Cache
	categoryTTL time.Duration
	logger      *log.Logger
	now         func() time.Time
}

func NewPostService(api Requester, opts Options) *PostService {
	s := &PostService{
		api:         api,
		tags:        opts.Tags,
		ids:         opts.IDs,
		cache:       opts.Cache,
		categoryTTL: opts.CategoryTTL,
		logger:      opts.Logger,
		now:         opts.Now,
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.categoryTTL <= 0 {
		s.categoryTTL = DefaultCategoryTTL
	}
	return s
}

// GetPost fetches a post and bumps its view counter. The counter update is
// best effort: the caller gets the incremented post even if persisting it
// fails.
func (s *PostService) GetPost(ctx context.Context, id models.ID) (*models.Post, error) {
	if err := validation.ValidateID(id); err != nil {
		return nil, err
	}

	var post models.Post
	if err := s.api.Request(ctx, postPath(id), nil, &post); err != nil {
		return nil, notFound(err, id)
	}

	post.Views++
	s.bestEffort("view count update", func() error {
		return s.api.Request(ctx, postPath(id), &client.RequestOptions{
			Method: http.MethodPatch,
			Body:   map[string]int{"views": post.Views},
		}, nil)
	})

	return &post, nil
}

// CreatePost stores a new post with a fresh id, the current time, zero views
// and the client-attribution tag.
func (s *PostService) CreatePost(ctx context.Context, data models.PostCreateData) (*models.Post, error) {
	data = validation.SanitizePostCreate(data)
	if err := validation.ValidatePostCreate(data); err != nil {
		return nil, err
	}

	authorID := s.clientTag(ctx)

	id, err := s.newPostID(ctx)
	if err != nil {
		return nil, err
	}

	post := models.Post{
		ID:        id,
		Title:     data.Title,
		Content:   data.Content,
		Author:    data.Author,
		AuthorID:  authorID,
		Category:  data.Category,
		CreatedAt: s.now().UTC(),
		Views:     0,
		HasFile:   false,
	}

	var created models.Post
	if err := s.api.Request(ctx, "/posts", &client.RequestOptions{
		Method: http.MethodPost,
		Body:   post,
	}, &created); err != nil {
		return nil, fmt.Errorf("error creating post: %w", err)
	}
	if created.ID == "" {
		created = post
	}

	s.invalidateCategories(ctx)
	return &created, nil
}

// UpdatePost applies a partial update. Fields left nil are not sent.
func (s *PostService) UpdatePost(ctx context.Context, id models.ID, data models.PostUpdateData) (*models.Post, error) {
	if err := validation.ValidateID(id); err != nil {
		return nil, err
	}
	data = validation.SanitizePostUpdate(data)
	if err := validation.ValidatePostUpdate(data); err != nil {
		return nil, err
	}

	var updated models.Post
	if err := s.api.Request(ctx, postPath(id), &client.RequestOptions{
		Method: http.MethodPatch,
		Body:   data,
	}, &updated); err != nil {
		return nil, notFound(err, id)
	}

	s.invalidateCategories(ctx)
	return &updated, nil
}

// DeletePost removes a post. Deleting twice fails with *NotFoundError.
func (s *PostService) DeletePost(ctx context.Context, id models.ID) error {
	if err := validation.ValidateID(id); err != nil {
		return err
	}

	if err := s.api.Request(ctx, postPath(id), &client.RequestOptions{Method: http.MethodDelete}, nil); err != nil {
		return notFound(err, id)
	}

	s.invalidateCategories(ctx)
	return nil
}

// clientTag reads the attribution tag, generating and storing one on first
// use. Storage failures are logged; the post is still attributed.
func (s *PostService) clientTag(ctx context.Context) string {
	if s.tags == nil {
		return ""
	}

	tag, err := s.tags.Load(ctx)
	if err == nil {
		return tag
	}
	if !errors.Is(err, utils.ErrTagNotFound) {
		s.logger.Printf("client tag lookup failed: %v", err)
	}

	tag = utils.NewClientTag(s.now())
	s.bestEffort("client tag save", func() error {
		return s.tags.Save(ctx, tag)
	})
	return tag
}

// newPostID draws ids until one is not already used by the collection.
func (s *PostService) newPostID(ctx context.Context) (models.ID, error) {
	if s.ids == nil {
		return "", errors.New("no post id generator configured")
	}

	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		candidate, err := s.ids.Next()
		if err != nil {
			return "", fmt.Errorf("error generating post id: %w", err)
		}

		var existing []models.Post
		query := url.Values{"id": {candidate}}
		if err := s.api.Request(ctx, "/posts?"+query.Encode(), nil, &existing); err != nil {
			return "", fmt.Errorf("error checking post id %s: %w", candidate, err)
		}
		if len(existing) == 0 {
			return models.ID(candidate), nil
		}
	}
	return "", fmt.Errorf("no unused post id after %d attempts", maxIDAttempts)
}

// bestEffort runs fn and logs a failure instead of returning it.
func (s *PostService) bestEffort(op string, fn func() error) {
	if err := fn(); err != nil {
		s.logger.Printf("%s failed: %v", op, err)
	}
}

func notFound(err error, id models.ID) error {
	var httpErr *client.HTTPError
	if errors.As(err, &httpErr) && httpErr.NotFound() {
		return &NotFoundError{ID: id, Err: httpErr}
	}
	return err
}

func postPath(id models.ID) string {
	return "/posts/" + url.PathEscape(string(id))
}
