package store

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/utafrali/storefront/internal/kv"
)

func TestRegistry_FeedsCartGauges(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(kv.NewMemory(), testLogger())

	cart := reg.Cart(ctx, "gauge-cart")
	assert.Equal(t, 0.0, testutil.ToFloat64(cartItems.WithLabelValues("gauge-cart")))

	cart.Add(ctx, shirt(2, "M", "Black"))
	assert.Equal(t, 2.0, testutil.ToFloat64(cartItems.WithLabelValues("gauge-cart")))
	assert.Equal(t, 1998.0, testutil.ToFloat64(cartValue.WithLabelValues("gauge-cart")))

	cart.Clear(ctx)
	assert.Equal(t, 0.0, testutil.ToFloat64(cartItems.WithLabelValues("gauge-cart")))
	assert.Equal(t, 0.0, testutil.ToFloat64(cartValue.WithLabelValues("gauge-cart")))
}

func TestRegistry_FeedsWishlistGauge(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(kv.NewMemory(), testLogger())

	wl := reg.Wishlist(ctx, "gauge-wishlist")
	wl.Add(ctx, sneaker(1))
	wl.Add(ctx, sneaker(2))
	assert.Equal(t, 2.0, testutil.ToFloat64(wishlistItems.WithLabelValues("gauge-wishlist")))

	wl.Remove(ctx, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(wishlistItems.WithLabelValues("gauge-wishlist")))
}

func TestRegistry_GaugesAreSessionScoped(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(kv.NewMemory(), testLogger())

	reg.Cart(ctx, "gauge-a").Add(ctx, shirt(3, "M", "Black"))
	reg.Cart(ctx, "gauge-b").Add(ctx, shirt(1, "M", "Black"))

	assert.Equal(t, 3.0, testutil.ToFloat64(cartItems.WithLabelValues("gauge-a")))
	assert.Equal(t, 1.0, testutil.ToFloat64(cartItems.WithLabelValues("gauge-b")))
}
