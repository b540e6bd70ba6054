package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bethropolis/textforge/internal/logger"
	"github.com/klauspost/compress/zstd"
)

// Ensure File implements Store
var _ Store = (*File)(nil)

// DefaultDir is used when no directory is configured.
var DefaultDir = filepath.Join(".textforge", "store")

// Both are safe for concurrent use.
var (
	zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	zstdDecoder, _ = zstd.NewReader(nil)
)

// File stores each key as one file in a directory, optionally zstd-compressed.
type File struct {
	dir      string
	compress bool
}

// FileOption configures a File store.
type FileOption func(*File)

// WithCompression stores values zstd-compressed (".zst" files).
func WithCompression(on bool) FileOption {
	return func(f *File) {
		f.compress = on
	}
}

// NewFile creates a file store rooted at dir, creating it if needed.
func NewFile(dir string, opts ...FileOption) (*File, error) {
	if dir == "" {
		dir = DefaultDir
	}
	f := &File{dir: dir}
	for _, opt := range opts {
		opt(f)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create directory '%s': %w", dir, err)
	}
	logger.DebugTagf("store", "Store: file backend at %s (compressed: %v)", dir, f.compress)
	return f, nil
}

func (f *File) path(key string) string {
	name := filepath.Base(filepath.Clean(key))
	if f.compress {
		return filepath.Join(f.dir, name+".zst")
	}
	return filepath.Join(f.dir, name+".txt")
}

func (f *File) Load(_ context.Context, key string) (string, error) {
	if err := checkKey(key); err != nil {
		return "", err
	}
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("store: read '%s': %w", key, err)
	}
	if !f.compress {
		return string(data), nil
	}
	out, err := zstdDecoder.DecodeAll(data, nil)
	if err != nil {
		return "", fmt.Errorf("store: decompress '%s': %w", key, err)
	}
	return string(out), nil
}

// Save writes to a temporary file and renames it over the target.
func (f *File) Save(_ context.Context, key, value string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	data := []byte(value)
	if f.compress {
		data = zstdEncoder.EncodeAll(data, nil)
	}

	target := f.path(key)
	tmp, err := os.CreateTemp(f.dir, filepath.Base(target)+".*.tmp")
	if err != nil {
		return fmt.Errorf("store: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("store: write '%s': %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("store: write '%s': %w", key, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("store: replace '%s': %w", key, err)
	}
	return nil
}

func (f *File) Delete(_ context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	err := os.Remove(f.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("store: delete '%s': %w", key, err)
	}
	return nil
}

func (f *File) Close() error { return nil }
