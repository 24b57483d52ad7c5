// ABOUTME: Durable key-value storage for the session's bearer token
// ABOUTME: One key, absent when unauthenticated; backends are file, memory and redis

package tokenstore

import (
	"context"
	"fmt"
	"io"
)

// Key is the single key under which the bearer token is persisted
const Key = "access_token"

// Store persists the current bearer token.
// Load returns "" and a nil error when no token is stored.
// Close releases any connection the backend holds.
type Store interface {
	io.Closer
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// Backend names accepted by Open
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Options selects and configures a backend for Open
type Options struct {
	Backend   string
	ConfigDir string
	Profile   string
	Redis     RedisConfig
}

// Open builds the Store named by opts.Backend
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case "", BackendFile:
		return NewFileStore(opts.ConfigDir), nil
	case BackendMemory:
		return NewMemoryStore(0), nil
	case BackendRedis:
		rdb, err := ConnectRedis(ctx, opts.Redis)
		if err != nil {
			return nil, err
		}
		return NewRedisStore(rdb, opts.Profile), nil
	default:
		return nil, fmt.Errorf("unknown token store %q (want file, memory or redis)", opts.Backend)
	}
}
