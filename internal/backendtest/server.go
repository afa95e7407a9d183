// Package backendtest runs an in-memory imitation of the json-server posts
// backend for tests. It supports the subset of the contract the client uses:
// _page/_per_page pagination, _sort/_order, equality filters, and
// GET/POST/PATCH/DELETE on /posts and /posts/{id}.
package backendtest

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"board-client/models"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// Server is a running fake backend.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	posts    []models.Post
	failures map[string]int
	requests []*http.Request
}

// New starts a fake backend seeded with posts and closes it when t finishes.
func New(t testing.TB, posts ...models.Post) *Server {
	t.Helper()

	s := &Server{failures: make(map[string]int)}
	s.posts = append(s.posts, posts...)

	r := mux.NewRouter()
	r.Use(s.record)
	r.HandleFunc("/posts", s.list).Methods(http.MethodGet)
	r.HandleFunc("/posts", s.create).Methods(http.MethodPost)
	r.HandleFunc("/posts/{id}", s.get).Methods(http.MethodGet)
	r.HandleFunc("/posts/{id}", s.patch).Methods(http.MethodPatch)
	r.HandleFunc("/posts/{id}", s.remove).Methods(http.MethodDelete)

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// Fail makes every request with the given method answer status until cleared
// with a status of 0.
func (s *Server) Fail(method string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.failures, method)
		return
	}
	s.failures[method] = status
}

// Requests returns a copy of every request received so far.
func (s *Server) Requests() []*http.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*http.Request(nil), s.requests...)
}

// Post returns the stored post with id.
func (s *Server) Post(id models.ID) (models.Post, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.index(id); i >= 0 {
		return s.posts[i], true
	}
	return models.Post{}, false
}

// Len returns the number of stored posts.
func (s *Server) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.posts)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.Clone(r.Context()))
		status := s.failures[r.Method]
		s.mu.Unlock()

		if status != 0 {
			http.Error(w, http.StatusText(status), status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	s.mu.Lock()
	matched := make([]models.Post, 0, len(s.posts))
	for _, p := range s.posts {
		if matches(p, q) {
			matched = append(matched, p)
		}
	}
	s.mu.Unlock()

	sortPosts(matched, q.Get("_sort"), q.Get("_order"))

	if q.Get("_page") == "" {
		respondJSON(w, matched, http.StatusOK)
		return
	}

	page := atoiDefault(q.Get("_page"), 1)
	perPage := atoiDefault(q.Get("_per_page"), 10)
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}

	items := len(matched)
	pages := int(math.Ceil(float64(items) / float64(perPage)))
	start := (page - 1) * perPage
	end := start + perPage
	if start > items {
		start = items
	}
	if end > items {
		end = items
	}

	env := models.PageEnvelope{
		Data:  matched[start:end],
		First: 1,
		Last:  pages,
		Pages: pages,
		Items: items,
	}
	if page > 1 {
		prev := page - 1
		env.Prev = &prev
	}
	if page < pages {
		next := page + 1
		env.Next = &next
	}
	respondJSON(w, env, http.StatusOK)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	post, ok := s.Post(models.ID(mux.Vars(r)["id"]))
	if !ok {
		http.NotFound(w, r)
		return
	}
	respondJSON(w, post, http.StatusOK)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var post models.Post
	if err := json.NewDecoder(r.Body).Decode(&post); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if post.ID == "" {
		post.ID = models.ID(uuid.NewString()[:4])
	}
	if s.index(post.ID) >= 0 {
		http.Error(w, "duplicate id", http.StatusConflict)
		return
	}
	s.posts = append(s.posts, post)
	respondJSON(w, post, http.StatusCreated)
}

func (s *Server) patch(w http.ResponseWriter, r *http.Request) {
	id := models.ID(mux.Vars(r)["id"])

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		http.NotFound(w, r)
		return
	}

	// Decoding into the stored copy only overwrites the keys present.
	post := s.posts[i]
	if err := json.NewDecoder(r.Body).Decode(&post); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	post.ID = id
	s.posts[i] = post
	respondJSON(w, post, http.StatusOK)
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	id := models.ID(mux.Vars(r)["id"])

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		http.NotFound(w, r)
		return
	}
	removed := s.posts[i]
	s.posts = append(s.posts[:i], s.posts[i+1:]...)
	respondJSON(w, removed, http.StatusOK)
}

// index must be called with mu held.
func (s *Server) index(id models.ID) int {
	for i, p := range s.posts {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func matches(p models.Post, q map[string][]string) bool {
	for key, values := range q {
		if strings.HasPrefix(key, "_") || len(values) == 0 {
			continue
		}
		var got string
		switch key {
		case "id":
			got = string(p.ID)
		case "category":
			got = p.Category
		case "author":
			got = p.Author
		case "title":
			got = p.Title
		case "authorId":
			got = p.AuthorID
		default:
			continue
		}
		if got != values[0] {
			return false
		}
	}
	return true
}

func sortPosts(posts []models.Post, field, order string) {
	if field == "" {
		return
	}
	desc := strings.EqualFold(order, "desc")
	if strings.HasPrefix(field, "-") {
		field = field[1:]
		desc = true
	}
	less := func(a, b models.Post) bool {
		switch field {
		case "createdAt":
			return a.CreatedAt.Before(b.CreatedAt)
		case "views":
			return a.Views < b.Views
		case "title":
			return a.Title < b.Title
		}
		return false
	}
	sort.SliceStable(posts, func(i, j int) bool {
		if desc {
			return less(posts[j], posts[i])
		}
		return less(posts[i], posts[j])
	})
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func respondJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
