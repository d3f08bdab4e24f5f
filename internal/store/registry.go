package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/utafrali/storefront/internal/kv"
)

// Storage key prefixes. Cart and wishlist use disjoint keys so the two
// stores never interleave writes to the same record.
const (
	cartKeyPrefix     = "cart_items:"
	wishlistKeyPrefix = "wishlist_items:"
)

// Registry hands out the per-session cart and wishlist stores, creating each
// lazily on first use and reusing it for the rest of the process lifetime.
type Registry struct {
	mu        sync.Mutex
	storage   kv.Store
	logger    *slog.Logger
	carts     map[string]*Cart
	wishlists map[string]*Wishlist
}

// NewRegistry creates a store registry over the given storage backend.
func NewRegistry(storage kv.Store, logger *slog.Logger) *Registry {
	return &Registry{
		storage:   storage,
		logger:    logger,
		carts:     make(map[string]*Cart),
		wishlists: make(map[string]*Wishlist),
	}
}

// Cart returns the cart store for the given session, hydrating it from
// storage on first access.
func (r *Registry) Cart(ctx context.Context, sessionID string) *Cart {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.carts[sessionID]; ok {
		return c
	}
	c := NewCart(ctx, r.storage, cartKeyPrefix+sessionID, r.logger)
	observeCart(sessionID, c)
	r.carts[sessionID] = c
	return c
}

// Wishlist returns the wishlist store for the given session, hydrating it
// from storage on first access.
func (r *Registry) Wishlist(ctx context.Context, sessionID string) *Wishlist {
	r.mu.Lock()
	defer r.mu.Unlock()

	if w, ok := r.wishlists[sessionID]; ok {
		return w
	}
	w := NewWishlist(ctx, r.storage, wishlistKeyPrefix+sessionID, r.logger)
	observeWishlist(sessionID, w)
	r.wishlists[sessionID] = w
	return w
}
