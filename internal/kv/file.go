package kv

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

// File is a Store that persists each key as a file under a directory,
// surviving process restarts. Keys are hex-encoded in file names so
// arbitrary key strings stay filesystem-safe.
type File struct {
	dir string
}

// NewFile creates a file-backed store rooted at dir, creating the directory
// if needed.
func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create kv directory: %w", err)
	}
	return &File{dir: dir}, nil
}

func (f *File) path(key string) string {
	return filepath.Join(f.dir, hex.EncodeToString([]byte(key))+".json")
}

// Get returns the value stored under key, or ErrNotFound.
func (f *File) Get(ctx context.Context, key string) (string, error) {
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("read key %q: %w", key, err)
	}
	return string(data), nil
}

// Set stores value under key. The write goes through a temp file and rename
// so a crash never leaves a half-written value behind.
func (f *File) Set(ctx context.Context, key, value string) error {
	tmp, err := os.CreateTemp(f.dir, "kv-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	if _, err := tmp.WriteString(value); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write key %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), f.path(key)); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("rename temp file for key %q: %w", key, err)
	}
	return nil
}

// Remove deletes the value stored under key.
func (f *File) Remove(ctx context.Context, key string) error {
	if err := os.Remove(f.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove key %q: %w", key, err)
	}
	return nil
}
