package controllers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"sync"

	"board-client/client"
	"board-client/models"
)

// User-facing messages stored by the controller after a failed call.
const (
	MsgResourceNotFound = "The requested data could not be found."
	MsgServerError      = "A server error occurred."
	MsgNotFound         = "Data not found."
	MsgUnknown          = "An unknown error occurred."
)

// PostService is the set of operations the controller drives.
// *services.PostService implements it.
type PostService interface {
	ListPosts(ctx context.Context, params models.PostListParams) (*models.PostListResponse, error)
	GetPost(ctx context.Context, id models.ID) (*models.Post, error)
	CreatePost(ctx context.Context, data models.PostCreateData) (*models.Post, error)
	UpdatePost(ctx context.Context, id models.ID, data models.PostUpdateData) (*models.Post, error)
	DeletePost(ctx context.Context, id models.ID) error
	ListCategories(ctx context.Context) []string
}

// PostsController tracks loading and error state for a UI around the post
// operations. Each call overwrites the flags; concurrent calls race and the
// last writer wins.
type PostsController struct {
	service PostService
	logger  *log.Logger

	mu        sync.Mutex
	loading   bool
	lastError string
}

func NewPostsController(service PostService, logger *log.Logger) *PostsController {
	if logger == nil {
		logger = log.Default()
	}
	return &PostsController{service: service, logger: logger}
}

func (c *PostsController) IsLoading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// LastError returns the message recorded by the last failed call, or "".
func (c *PostsController) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastError
}

func (c *PostsController) ClearError() {
	c.mu.Lock()
	c.lastError = ""
	c.mu.Unlock()
}

func (c *PostsController) ListPosts(ctx context.Context, params models.PostListParams) (*models.PostListResponse, error) {
	var resp *models.PostListResponse
	err := c.track(func() (err error) {
		resp, err = c.service.ListPosts(ctx, params)
		return err
	})
	return resp, err
}

func (c *PostsController) GetPost(ctx context.Context, id models.ID) (*models.Post, error) {
	var post *models.Post
	err := c.track(func() (err error) {
		post, err = c.service.GetPost(ctx, id)
		return err
	})
	return post, err
}

func (c *PostsController) CreatePost(ctx context.Context, data models.PostCreateData) (*models.Post, error) {
	var post *models.Post
	err := c.track(func() (err error) {
		post, err = c.service.CreatePost(ctx, data)
		return err
	})
	return post, err
}

func (c *PostsController) UpdatePost(ctx context.Context, id models.ID, data models.PostUpdateData) (*models.Post, error) {
	var post *models.Post
	err := c.track(func() (err error) {
		post, err = c.service.UpdatePost(ctx, id, data)
		return err
	})
	return post, err
}

func (c *PostsController) DeletePost(ctx context.Context, id models.ID) error {
	return c.track(func() error {
		return c.service.DeletePost(ctx, id)
	})
}

// ListCategories never records an error; the service already falls back to
// the default categories.
func (c *PostsController) ListCategories(ctx context.Context) []string {
	return c.service.ListCategories(ctx)
}

// track sets the loading flag around fn and records a classified message if
// fn fails. The original error is returned unchanged.
func (c *PostsController) track(fn func() error) error {
	c.mu.Lock()
	c.loading = true
	c.lastError = ""
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.loading = false
		c.mu.Unlock()
	}()

	err := fn()
	if err != nil {
		c.logger.Printf("API error: %v", err)
		msg := ErrorMessage(err)
		c.mu.Lock()
		c.lastError = msg
		c.mu.Unlock()
	}
	return err
}

// ErrorMessage maps an error to the message shown to the user.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var httpErr *client.HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.Status {
		case http.StatusNotFound:
			return MsgResourceNotFound
		case http.StatusInternalServerError:
			return MsgServerError
		}
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "404"):
		return MsgNotFound
	case msg != "":
		return msg
	default:
		return MsgUnknown
	}
}
