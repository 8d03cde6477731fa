package historystore

import (
	"context"
	"fmt"
	"strings"

	"github.com/Queun/ai-teach-platform-sub000/internal/port"
)

// Store is a history backend that may hold resources.
type Store interface {
	port.KeyValueStorage
	Close() error
}

type nopCloser struct {
	port.KeyValueStorage
}

func (nopCloser) Close() error { return nil }

// Config selects where session history blobs are kept.
type Config struct {
	Backend       string
	FilePath      string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	KeyPrefix     string
}

// Open builds the backend selected by cfg.Backend.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "memory":
		return nopCloser{NewMemoryStore()}, nil
	case "file":
		if cfg.FilePath == "" {
			return nil, fmt.Errorf("file history backend needs a path")
		}
		return nopCloser{NewFileStore(cfg.FilePath)}, nil
	case "redis":
		s := NewRedisStore(RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.KeyPrefix,
		})
		if err := s.Ping(ctx, 5); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown history backend %q", cfg.Backend)
}
