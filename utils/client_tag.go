package utils

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// ErrTagNotFound is returned by a TagStore that holds no tag yet.
var ErrTagNotFound = errors.New("client tag not found")

// TagStore persists the client-attribution tag. The tag only softly links
// posts to the client that wrote them; it is not an identity.
type TagStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, tag string) error
}

// NewClientTag generates a tag of the form user_<unix millis>_<5 chars>.
func NewClientTag(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:5]
	return fmt.Sprintf("user_%d_%s", now.UnixMilli(), suffix)
}

// FileTagStore keeps the tag in a single file.
type FileTagStore struct {
	Path string
}

// DefaultTagFile returns $XDG_CONFIG_HOME/board/client_id, falling back to the
// user config dir.
func DefaultTagFile() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "board", "client_id"), nil
}

func (s *FileTagStore) Load(_ context.Context) (string, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrTagNotFound
		}
		return "", fmt.Errorf("read client tag file %s: %w", s.Path, err)
	}
	tag := strings.TrimSpace(string(data))
	if tag == "" {
		return "", ErrTagNotFound
	}
	return tag, nil
}

func (s *FileTagStore) Save(_ context.Context, tag string) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return fmt.Errorf("create client tag dir: %w", err)
	}
	if err := os.WriteFile(s.Path, []byte(tag+"\n"), 0o600); err != nil {
		return fmt.Errorf("write client tag file %s: %w", s.Path, err)
	}
	return nil
}

// RedisTagStore keeps the tag under board:client:<name>:user_id with no expiry.
type RedisTagStore struct {
	Client *redis.Client
	Name   string
}

func (s *RedisTagStore) key() string {
	return "board:client:" + s.Name + ":user_id"
}

func (s *RedisTagStore) Load(ctx context.Context) (string, error) {
	tag, err := s.Client.Get(ctx, s.key()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrTagNotFound
		}
		return "", fmt.Errorf("error fetching client tag from Redis: %w", err)
	}
	return tag, nil
}

func (s *RedisTagStore) Save(ctx context.Context, tag string) error {
	if err := s.Client.Set(ctx, s.key(), tag, 0).Err(); err != nil {
		return fmt.Errorf("error storing client tag in Redis: %w", err)
	}
	return nil
}

// MemoryTagStore holds the tag for the life of the process.
type MemoryTagStore struct {
	mu  sync.Mutex
	tag string
}

func (s *MemoryTagStore) Load(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tag == "" {
		return "", ErrTagNotFound
	}
	return s.tag, nil
}

func (s *MemoryTagStore) Save(_ context.Context, tag string) error {
	s.mu.Lock()
	s.tag = tag
	s.mu.Unlock()
	return nil
}
