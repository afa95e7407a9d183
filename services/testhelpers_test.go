package services

import (
	"fmt"
	"io"
	"log"
	"testing"
	"time"

	"board-client/client"
	"board-client/internal/backendtest"
	"board-client/models"
	"board-client/utils"
)

var (
	quietLogger = log.New(io.Discard, "", 0)
	baseTime    = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
)

func newTestService(t *testing.T, srv *backendtest.Server, opts Options) *PostService {
	t.Helper()

	tr, err := client.NewTransport(client.Config{
		Context:    client.Direct,
		BackendURL: srv.URL,
		Logger:     quietLogger,
	})
	if err != nil {
		t.Fatalf("NewTransport: %v", err)
	}
	if opts.IDs == nil {
		ids, err := utils.NewIDGenerator()
		if err != nil {
			t.Fatalf("NewIDGenerator: %v", err)
		}
		opts.IDs = ids
	}
	if opts.Logger == nil {
		opts.Logger = quietLogger
	}
	return NewPostService(tr, opts)
}

// seedPosts builds n posts, one hour apart, oldest first.
func seedPosts(n int, category string) []models.Post {
	posts := make([]models.Post, n)
	for i := range posts {
		posts[i] = models.Post{
			ID:        models.ID(fmt.Sprintf("%d", i+1)),
			Title:     fmt.Sprintf("post %d", i+1),
			Content:   fmt.Sprintf("content %d", i+1),
			Author:    "admin",
			Category:  category,
			CreatedAt: baseTime.Add(time.Duration(i) * time.Hour),
		}
	}
	return posts
}

// sequenceIDs returns ids from a fixed list.
type sequenceIDs struct {
	ids []string
	i   int
}

func (s *sequenceIDs) Next() (string, error) {
	if s.i >= len(s.ids) {
		return "", fmt.Errorf("sequence exhausted")
	}
	id := s.ids[s.i]
	s.i++
	return id, nil
}
