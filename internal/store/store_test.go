package store

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/utafrali/storefront/internal/kv"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

var errBackendDown = errors.New("backend down")

// brokenStore fails every operation, simulating an unavailable backend.
type brokenStore struct{}

func (brokenStore) Get(ctx context.Context, key string) (string, error) {
	return "", errBackendDown
}

func (brokenStore) Set(ctx context.Context, key, value string) error {
	return errBackendDown
}

func (brokenStore) Remove(ctx context.Context, key string) error {
	return errBackendDown
}

var _ kv.Store = brokenStore{}
