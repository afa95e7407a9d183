package services

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"board-client/client"
	"board-client/models"
)

// handWrittenBackend serves posts whose createdAt values mix RFC 3339 with
// the zone-less forms common in hand-edited json-server data.
func handWrittenBackend(t *testing.T) *httptest.Server {
	t.Helper()
	const list = `[
		{"id":1,"title":"foo older","content":"x","author":"kim","category":"공지","createdAt":"2024-01-15T10:00:00","views":0,"hasFile":false},
		{"id":2,"title":"foo newer","content":"y","author":"lee","category":"행사","createdAt":"2024-01-16T10:00:00.000Z","views":3,"hasFile":false},
		{"id":3,"title":"bar","content":"z","author":"park","category":"교육","createdAt":"last week","views":0,"hasFile":false}
	]`
	const one = `{"id":1,"title":"foo older","content":"x","author":"kim","category":"공지","createdAt":"2024-01-15T10:00:00","views":0,"hasFile":false}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/posts" && r.URL.Query().Get("_page") != "":
			_, _ = io.WriteString(w, `{"data":`+list+`,"first":1,"last":1,"pages":1,"items":3}`)
		case r.Method == http.MethodGet && r.URL.Path == "/posts":
			_, _ = io.WriteString(w, list)
		case r.URL.Path == "/posts/1":
			_, _ = io.WriteString(w, one)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newRawService(t *testing.T, backendURL string) *PostService {
	t.Helper()
	tr, err := client.NewTransport(client.Config{BackendURL: backendURL, Logger: quietLogger})
	if err != nil {
		t.Fatalf("NewTransport: %v", err)
	}
	return NewPostService(tr, Options{Logger: quietLogger})
}

func TestListPostsZonelessTimestamps(t *testing.T) {
	svc := newRawService(t, handWrittenBackend(t).URL)
	ctx := context.Background()

	resp, err := svc.ListPosts(ctx, models.PostListParams{Search: "foo"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(resp.Data) != 2 || resp.Pagination.Total != 2 {
		t.Fatalf("got %d posts, total %d; want 2, 2", len(resp.Data), resp.Pagination.Total)
	}
	if resp.Data[0].ID != "2" || resp.Data[1].ID != "1" {
		t.Errorf("order = %s, %s; want newest first", resp.Data[0].ID, resp.Data[1].ID)
	}
	if want := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC); !resp.Data[1].CreatedAt.Equal(want) {
		t.Errorf("createdAt = %v, want %v", resp.Data[1].CreatedAt, want)
	}

	page, err := svc.ListPosts(ctx, models.PostListParams{})
	if err != nil {
		t.Fatalf("server paging: %v", err)
	}
	if len(page.Data) != 3 || !page.Data[2].CreatedAt.IsZero() {
		t.Errorf("unparseable createdAt should decode as zero, got %+v", page.Data)
	}
}

func TestGetPostZonelessTimestamp(t *testing.T) {
	svc := newRawService(t, handWrittenBackend(t).URL)

	post, err := svc.GetPost(context.Background(), "1")
	if err != nil {
		t.Fatalf("GetPost: %v", err)
	}
	if post.Views != 1 || post.CreatedAt.Year() != 2024 {
		t.Errorf("got %+v", post)
	}
}

func TestListCategoriesZonelessTimestamps(t *testing.T) {
	svc := newRawService(t, handWrittenBackend(t).URL)

	got := svc.ListCategories(context.Background())
	want := []string{models.AllCategories, "공지", "행사", "교육"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got %v, want %v", got, want)
			break
		}
	}
}
