package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"board-client/internal/backendtest"
	"board-client/models"
	"board-client/validation"

	"github.com/alicebob/miniredis/v2"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, stderr bytes.Buffer
	err := new(cli).run(context.Background(), args, &out, &stderr)
	return out.String(), err
}

func setupCLI(t *testing.T, posts ...models.Post) (*backendtest.Server, string) {
	t.Helper()
	srv := backendtest.New(t, posts...)
	tagFile := filepath.Join(t.TempDir(), "client_id")
	t.Setenv("BOARD_BACKEND_URL", srv.URL)
	t.Setenv("BOARD_CONTEXT", "direct")
	t.Setenv("BOARD_CLIENT_ID_FILE", tagFile)
	t.Setenv("BOARD_REDIS_URL", "")
	return srv, tagFile
}

func TestCLICreateThenList(t *testing.T) {
	srv, tagFile := setupCLI(t)

	out, err := runCLI(t, "posts", "create", "--title", "Open day", "--content", "Come by", "--author", "kim", "--category", "행사")
	if err != nil {
		t.Fatalf("create: %v\n%s", err, out)
	}
	var created models.Post
	if err := json.Unmarshal([]byte(out), &created); err != nil {
		t.Fatalf("create output is not a post: %v\n%s", err, out)
	}
	if srv.Len() != 1 {
		t.Fatalf("backend holds %d posts", srv.Len())
	}

	tag, err := os.ReadFile(tagFile)
	if err != nil {
		t.Fatalf("client tag was not persisted: %v", err)
	}
	if strings.TrimSpace(string(tag)) != created.AuthorID {
		t.Errorf("persisted tag %q, post carries %q", tag, created.AuthorID)
	}

	out, err = runCLI(t, "posts", "list", "--json")
	if err != nil {
		t.Fatalf("list: %v\n%s", err, out)
	}
	var resp models.PostListResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("list output: %v\n%s", err, out)
	}
	if resp.Pagination.Total != 1 || resp.Data[0].Title != "Open day" {
		t.Errorf("unexpected list %+v", resp)
	}

	out, err = runCLI(t, "posts", "list", "--search", "open")
	if err != nil {
		t.Fatalf("list table: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Open day") || !strings.Contains(out, "page 1/1, 1 posts") {
		t.Errorf("table output:\n%s", out)
	}

	out, err = runCLI(t, "categories")
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if out != "전체\n행사\n" {
		t.Errorf("categories output %q", out)
	}
}

func TestCLIUpdateOnlySendsChangedFlags(t *testing.T) {
	setupCLI(t, models.Post{ID: "1", Title: "old", Content: "body", Author: "lee", Category: "공지", Views: 4})

	out, err := runCLI(t, "posts", "update", "1", "--title", "new")
	if err != nil {
		t.Fatalf("update: %v\n%s", err, out)
	}
	var post models.Post
	if err := json.Unmarshal([]byte(out), &post); err != nil {
		t.Fatalf("update output: %v\n%s", err, out)
	}
	if post.Title != "new" || post.Content != "body" || post.Views != 4 {
		t.Errorf("unexpected post %+v", post)
	}
}

func TestCLIReportsClassifiedErrors(t *testing.T) {
	setupCLI(t)

	_, err := runCLI(t, "posts", "get", "missing")
	if err == nil || err.Error() != "The requested data could not be found." {
		t.Errorf("get missing: got %v", err)
	}

	_, err = runCLI(t, "posts", "delete", "missing")
	if err == nil || err.Error() != "The requested data could not be found." {
		t.Errorf("delete missing: got %v", err)
	}
}

func TestCLIListRejectsZeroFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "limit zero", args: []string{"posts", "list", "--limit", "0"}},
		{name: "page zero", args: []string{"posts", "list", "--page", "0"}},
		{name: "negative limit", args: []string{"posts", "list", "--limit=-5"}},
	}

	srv, _ := setupCLI(t, seedPost("1"))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
			var verr *validation.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
	if n := len(srv.Requests()); n != 0 {
		t.Errorf("rejected flags sent %d requests", n)
	}

	// Omitting the flags still means the defaults.
	out, err := runCLI(t, "posts", "list", "--json")
	if err != nil {
		t.Fatalf("list: %v\n%s", err, out)
	}
	var resp models.PostListResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("list output: %v", err)
	}
	if resp.Pagination.Page != 1 || resp.Pagination.Limit != 10 {
		t.Errorf("pagination = %+v", resp.Pagination)
	}
}

func TestCLIClosesRedisOnFailure(t *testing.T) {
	setupCLI(t)
	mr := miniredis.RunT(t)
	t.Setenv("BOARD_REDIS_URL", "redis://"+mr.Addr())

	if _, err := runCLI(t, "posts", "get", "missing"); err == nil {
		t.Fatal("expected the command to fail")
	}

	deadline := time.Now().Add(2 * time.Second)
	for mr.CurrentConnectionCount() > 0 {
		if time.Now().After(deadline) {
			t.Fatalf("%d Redis connections still open after a failed command", mr.CurrentConnectionCount())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func seedPost(id string) models.Post {
	return models.Post{ID: models.ID(id), Title: "seed", Content: "c", Author: "a", Category: "공지"}
}
