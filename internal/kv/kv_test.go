package kv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeContract runs the behavior every Store implementation must satisfy.
func storeContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "cart_items", `[{"quantity":2}]`))

	got, err := s.Get(ctx, "cart_items")
	require.NoError(t, err)
	assert.Equal(t, `[{"quantity":2}]`, got)

	// Overwrite.
	require.NoError(t, s.Set(ctx, "cart_items", `[]`))
	got, err = s.Get(ctx, "cart_items")
	require.NoError(t, err)
	assert.Equal(t, `[]`, got)

	// Remove, then removing again is not an error.
	require.NoError(t, s.Remove(ctx, "cart_items"))
	_, err = s.Get(ctx, "cart_items")
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, s.Remove(ctx, "cart_items"))
}

func TestMemory_Contract(t *testing.T) {
	storeContract(t, NewMemory())
}

func TestFile_Contract(t *testing.T) {
	s, err := NewFile(t.TempDir())
	require.NoError(t, err)
	storeContract(t, s)
}

func TestFile_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := NewFile(dir)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "wishlist_items", `[{"id":1}]`))

	// A fresh store over the same directory sees the value.
	reopened, err := NewFile(dir)
	require.NoError(t, err)

	got, err := reopened.Get(ctx, "wishlist_items")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1}]`, got)
}

func TestFile_KeysWithUnsafeCharacters(t *testing.T) {
	s, err := NewFile(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	key := "cart_items:session/with:odd..chars"
	require.NoError(t, s.Set(ctx, key, "v"))

	got, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}
