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

// Cart owns the authoritative cart line items for one session and keeps them
// synchronized with durable storage. Every mutation updates in-memory state,
// publishes the new snapshot to observers, and then persists. Storage
// failures are logged and absorbed, never surfaced to the caller.
//
// Mutators are permissive: quantities may be zero or negative and size/color
// are stored unvalidated. Input validation belongs to the HTTP boundary.
type Cart struct {
	mu      sync.Mutex
	items   []domain.CartItem
	storage kv.Store
	key     string
	logger  *slog.Logger

	itemsObs *Observable[[]domain.CartItem]
	totalObs *Observable[float64]
	countObs *Observable[int]
}

// NewCart creates a cart store hydrated from storage under the given key.
// A missing value yields an empty cart silently; a corrupted payload or a
// failing backend yields an empty cart with a logged warning. Construction
// never fails.
func NewCart(ctx context.Context, storage kv.Store, key string, logger *slog.Logger) *Cart {
	c := &Cart{
		storage: storage,
		key:     key,
		logger:  logger,
		items:   []domain.CartItem{},
	}
	c.load(ctx)

	c.itemsObs = NewObservable(slices.Clone(c.items))
	c.totalObs = NewObservable(domain.CartTotal(c.items))
	c.countObs = NewObservable(domain.CartCount(c.items))
	return c
}

func (c *Cart) load(ctx context.Context) {
	raw, err := c.storage.Get(ctx, c.key)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			c.logger.WarnContext(ctx, "failed to read cart from storage",
				slog.String("key", c.key),
				slog.String("error", err.Error()),
			)
		}
		return
	}

	var items []domain.CartItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		c.logger.WarnContext(ctx, "corrupted cart payload, starting empty",
			slog.String("key", c.key),
			slog.String("error", err.Error()),
		)
		return
	}
	if items == nil {
		items = []domain.CartItem{}
	}
	c.items = items
}

// Items returns the observable cart snapshot. Subscribers receive the
// current snapshot immediately and every subsequent one synchronously with
// the mutation that produced it.
func (c *Cart) Items() *Observable[[]domain.CartItem] {
	return c.itemsObs
}

// Total returns the observable cart total: the sum of price x quantity over
// all lines, recomputed on every change.
func (c *Cart) Total() *Observable[float64] {
	return c.totalObs
}

// Count returns the observable sum of line quantities.
func (c *Cart) Count() *Observable[int] {
	return c.countObs
}

// Snapshot returns a copy of the current line items.
func (c *Cart) Snapshot() []domain.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

// Add merges item into the cart. If a line with the same (product, size,
// color) identity exists its quantity is increased by item.Quantity,
// otherwise item is appended as a new line.
func (c *Cart) Add(ctx context.Context, item domain.CartItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	merged := false
	for i := range c.items {
		if c.items[i].SameLine(item) {
			c.items[i].Quantity += item.Quantity
			merged = true
			break
		}
	}
	if !merged {
		c.items = append(c.items, item)
	}

	c.publish(ctx)
}

// Remove deletes the line matching item's identity. Removing an absent line
// is a no-op, not an error; the resulting (possibly unchanged) state is
// still published and persisted.
func (c *Cart) Remove(ctx context.Context, item domain.CartItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = slices.DeleteFunc(c.items, func(existing domain.CartItem) bool {
		return existing.SameLine(item)
	})

	c.publish(ctx)
}

// UpdateQuantity sets the quantity of the line matching item's identity to
// exactly quantity (an absolute set, not a delta). No-op if no line matches.
func (c *Cart) UpdateQuantity(ctx context.Context, item domain.CartItem, quantity int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].SameLine(item) {
			c.items[i].Quantity = quantity
			c.publish(ctx)
			return
		}
	}
}

// Clear empties the cart.
func (c *Cart) Clear(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = []domain.CartItem{}
	c.publish(ctx)
}

// publish pushes the new snapshot to observers, recomputes the derived
// aggregates, and persists. Called with c.mu held so every observer sees
// snapshots in the same total order.
func (c *Cart) publish(ctx context.Context) {
	snapshot := slices.Clone(c.items)
	c.itemsObs.Set(snapshot)
	c.totalObs.Set(domain.CartTotal(c.items))
	c.countObs.Set(domain.CartCount(c.items))

	data, err := json.Marshal(c.items)
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to encode cart",
			slog.String("key", c.key),
			slog.String("error", err.Error()),
		)
		return
	}
	if err := c.storage.Set(ctx, c.key, string(data)); err != nil {
		c.logger.ErrorContext(ctx, "failed to persist cart",
			slog.String("key", c.key),
			slog.String("error", err.Error()),
		)
	}
}
