package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/kv"
)

func sneaker(id int) domain.Product {
	return domain.Product{ID: id, Name: "Runner", Price: 1299}
}

func TestWishlist_AddIsUniqueByID(t *testing.T) {
	ctx := context.Background()
	wl := NewWishlist(ctx, kv.NewMemory(), "wishlist_items:s1", testLogger())

	wl.Add(ctx, sneaker(1))
	wl.Add(ctx, sneaker(1))

	assert.Len(t, wl.Snapshot(), 1)
	assert.Equal(t, 1, wl.Count().Get())
}

func TestWishlist_FirstWriteWins(t *testing.T) {
	ctx := context.Background()
	wl := NewWishlist(ctx, kv.NewMemory(), "wishlist_items:s1", testLogger())

	wl.Add(ctx, domain.Product{ID: 1, Name: "Original", Price: 100})
	wl.Add(ctx, domain.Product{ID: 1, Name: "Updated", Price: 200})

	items := wl.Snapshot()
	require.Len(t, items, 1)
	assert.Equal(t, "Original", items[0].Name)
	assert.Equal(t, 100.0, items[0].Price)
}

func TestWishlist_Remove(t *testing.T) {
	ctx := context.Background()
	wl := NewWishlist(ctx, kv.NewMemory(), "wishlist_items:s1", testLogger())

	wl.Add(ctx, sneaker(1))
	wl.Add(ctx, sneaker(2))
	wl.Remove(ctx, 1)

	items := wl.Snapshot()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].ID)
}

func TestWishlist_RemoveAbsentIsNoop(t *testing.T) {
	ctx := context.Background()
	wl := NewWishlist(ctx, kv.NewMemory(), "wishlist_items:s1", testLogger())

	wl.Add(ctx, sneaker(1))
	wl.Remove(ctx, 99)

	assert.Len(t, wl.Snapshot(), 1)
}

func TestWishlist_ToggleTwiceRestoresState(t *testing.T) {
	ctx := context.Background()
	wl := NewWishlist(ctx, kv.NewMemory(), "wishlist_items:s1", testLogger())
	wl.Add(ctx, sneaker(1))

	before := wl.Snapshot()
	wl.Toggle(ctx, sneaker(2))
	assert.True(t, wl.Contains(2))
	wl.Toggle(ctx, sneaker(2))

	assert.False(t, wl.Contains(2))
	assert.Equal(t, before, wl.Snapshot())
}

func TestWishlist_ContainsChanges(t *testing.T) {
	ctx := context.Background()
	wl := NewWishlist(ctx, kv.NewMemory(), "wishlist_items:s1", testLogger())

	var seen []bool
	wl.ContainsChanges(1).Subscribe(func(v bool) { seen = append(seen, v) })

	wl.Add(ctx, sneaker(1))
	wl.Remove(ctx, 1)

	assert.Equal(t, []bool{false, true, false}, seen)
}

func TestWishlist_PreservesInsertionOrder(t *testing.T) {
	ctx := context.Background()
	wl := NewWishlist(ctx, kv.NewMemory(), "wishlist_items:s1", testLogger())

	wl.Add(ctx, sneaker(3))
	wl.Add(ctx, sneaker(1))
	wl.Add(ctx, sneaker(2))

	items := wl.Snapshot()
	require.Len(t, items, 3)
	assert.Equal(t, []int{3, 1, 2}, []int{items[0].ID, items[1].ID, items[2].ID})
}

func TestWishlist_Clear(t *testing.T) {
	ctx := context.Background()
	wl := NewWishlist(ctx, kv.NewMemory(), "wishlist_items:s1", testLogger())

	wl.Add(ctx, sneaker(1))
	wl.Add(ctx, sneaker(2))
	wl.Clear(ctx)

	assert.Empty(t, wl.Snapshot())
	assert.Equal(t, 0, wl.Count().Get())
}

func TestWishlist_RoundTripThroughStorage(t *testing.T) {
	ctx := context.Background()
	storage := kv.NewMemory()

	wl := NewWishlist(ctx, storage, "wishlist_items:s1", testLogger())
	wl.Add(ctx, sneaker(1))
	wl.Add(ctx, sneaker(2))

	reloaded := NewWishlist(ctx, storage, "wishlist_items:s1", testLogger())
	assert.Equal(t, wl.Snapshot(), reloaded.Snapshot())
	assert.True(t, reloaded.Contains(1))
	assert.Equal(t, 2, reloaded.Count().Get())
}

func TestWishlist_CorruptedPayloadStartsEmpty(t *testing.T) {
	ctx := context.Background()
	storage := kv.NewMemory()
	require.NoError(t, storage.Set(ctx, "wishlist_items:s1", "invalid json"))

	assert.NotPanics(t, func() {
		wl := NewWishlist(ctx, storage, "wishlist_items:s1", testLogger())
		assert.Empty(t, wl.Snapshot())
	})
}

func TestWishlist_BrokenStorageDoesNotBlockMutations(t *testing.T) {
	ctx := context.Background()
	wl := NewWishlist(ctx, brokenStore{}, "wishlist_items:s1", testLogger())

	wl.Add(ctx, sneaker(1))

	assert.True(t, wl.Contains(1))
	assert.Equal(t, 1, wl.Count().Get())
}

func TestRegistry_ScopesStoresBySession(t *testing.T) {
	ctx := context.Background()
	storage := kv.NewMemory()
	reg := NewRegistry(storage, testLogger())

	c1 := reg.Cart(ctx, "s1")
	c2 := reg.Cart(ctx, "s2")
	c1.Add(ctx, shirt(1, "M", "Red"))

	assert.Len(t, c1.Snapshot(), 1)
	assert.Empty(t, c2.Snapshot())

	// Same session ID yields the same store instance.
	assert.Same(t, c1, reg.Cart(ctx, "s1"))
	assert.Same(t, reg.Wishlist(ctx, "s1"), reg.Wishlist(ctx, "s1"))

	// Persisted under the session-scoped key.
	_, err := storage.Get(ctx, "cart_items:s1")
	assert.NoError(t, err)
}
