package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/kv"
)

// Wishlist owns the set of products a session has flagged, unique by product
// ID and kept in insertion order. It follows the same local-recovery policy
// as Cart: storage failures are logged and absorbed, in-memory state stays
// authoritative.
type Wishlist struct {
	mu      sync.Mutex
	items   []domain.Product
	storage kv.Store
	key     string
	logger  *slog.Logger

	itemsObs *Observable[[]domain.Product]
	countObs *Observable[int]
}

// NewWishlist creates a wishlist store hydrated from storage under the given
// key. Missing, null, or non-array payloads yield an empty wishlist; only
// genuine parse failures are logged. Construction never fails.
func NewWishlist(ctx context.Context, storage kv.Store, key string, logger *slog.Logger) *Wishlist {
	w := &Wishlist{
		storage: storage,
		key:     key,
		logger:  logger,
		items:   []domain.Product{},
	}
	w.load(ctx)

	w.itemsObs = NewObservable(slices.Clone(w.items))
	w.countObs = NewObservable(len(w.items))
	return w
}

func (w *Wishlist) load(ctx context.Context) {
	raw, err := w.storage.Get(ctx, w.key)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			w.logger.WarnContext(ctx, "failed to read wishlist from storage",
				slog.String("key", w.key),
				slog.String("error", err.Error()),
			)
		}
		return
	}

	var items []domain.Product
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		w.logger.WarnContext(ctx, "corrupted wishlist payload, starting empty",
			slog.String("key", w.key),
			slog.String("error", err.Error()),
		)
		return
	}
	// A persisted JSON null decodes to a nil slice; treat it as empty
	// without logging.
	if items == nil {
		items = []domain.Product{}
	}
	w.items = items
}

// Items returns the observable wishlist snapshot.
func (w *Wishlist) Items() *Observable[[]domain.Product] {
	return w.itemsObs
}

// Count returns the observable number of wishlist entries.
func (w *Wishlist) Count() *Observable[int] {
	return w.countObs
}

// ContainsChanges returns an observable that tracks whether the product with
// the given ID is currently in the wishlist. Each call derives a new
// observable that stays subscribed for the wishlist's lifetime, so it is for
// long-lived consumers only. One-off checks should use Contains.
func (w *Wishlist) ContainsChanges(productID int) *Observable[bool] {
	return Derive(w.itemsObs, func(items []domain.Product) bool {
		return slices.ContainsFunc(items, func(p domain.Product) bool {
			return p.ID == productID
		})
	})
}

// Contains reports whether the product with the given ID is in the wishlist.
func (w *Wishlist) Contains(productID int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.contains(productID)
}

func (w *Wishlist) contains(productID int) bool {
	return slices.ContainsFunc(w.items, func(p domain.Product) bool {
		return p.ID == productID
	})
}

// Snapshot returns a copy of the current entries.
func (w *Wishlist) Snapshot() []domain.Product {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.items)
}

// Add appends product unless an entry with the same ID already exists.
// First write wins: re-adding an existing ID leaves the stored entry (and
// all its field values) untouched. The state is published and persisted
// either way.
func (w *Wishlist) Add(ctx context.Context, product domain.Product) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.contains(product.ID) {
		w.items = append(w.items, product)
	}
	w.publish(ctx)
}

// Remove filters out any entry with the given product ID. Removing an
// absent entry is a no-op, not an error.
func (w *Wishlist) Remove(ctx context.Context, productID int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.items = slices.DeleteFunc(w.items, func(p domain.Product) bool {
		return p.ID == productID
	})
	w.publish(ctx)
}

// Toggle removes product if it is currently in the wishlist, otherwise adds
// it.
func (w *Wishlist) Toggle(ctx context.Context, product domain.Product) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.contains(product.ID) {
		w.items = slices.DeleteFunc(w.items, func(p domain.Product) bool {
			return p.ID == product.ID
		})
	} else {
		w.items = append(w.items, product)
	}
	w.publish(ctx)
}

// Clear empties the wishlist.
func (w *Wishlist) Clear(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.items = []domain.Product{}
	w.publish(ctx)
}

// publish pushes the new snapshot to observers, updates the count, and
// persists. Called with w.mu held.
func (w *Wishlist) publish(ctx context.Context) {
	w.itemsObs.Set(slices.Clone(w.items))
	w.countObs.Set(len(w.items))

	data, err := json.Marshal(w.items)
	if err != nil {
		w.logger.ErrorContext(ctx, "failed to encode wishlist",
			slog.String("key", w.key),
			slog.String("error", err.Error()),
		)
		return
	}
	if err := w.storage.Set(ctx, w.key, string(data)); err != nil {
		w.logger.ErrorContext(ctx, "failed to persist wishlist",
			slog.String("key", w.key),
			slog.String("error", err.Error()),
		)
	}
}
