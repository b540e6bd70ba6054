// Package store persists the document text under a key. Backends: memory,
// plain or zstd-compressed files, and redis.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by Load when no value exists for the key.
var ErrNotFound = errors.New("store: key not found")

// Store is a string key-value persistence backend.
type Store interface {
	Load(ctx context.Context, key string) (string, error)
	Save(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// Config selects and configures a backend.
type Config struct {
	Backend string `toml:"backend"`

	// file backend
	Path     string `toml:"path"`
	Compress bool   `toml:"compress"`

	// redis backend
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	Prefix        string `toml:"prefix"`
}

// Open creates the backend named by cfg.Backend.
func Open(cfg Config) (Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", BackendMemory:
		return NewMemory(), nil
	case BackendFile:
		return NewFile(cfg.Path, WithCompression(cfg.Compress))
	case BackendRedis:
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("store: redis backend requires an address")
		}
		return NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, WithPrefix(cfg.Prefix)), nil
	}
	return nil, fmt.Errorf("store: unknown backend '%s'", cfg.Backend)
}

func checkKey(key string) error {
	if key == "" {
		return fmt.Errorf("store: key cannot be empty")
	}
	return nil
}
