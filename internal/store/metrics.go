package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cartItems = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "storefront_cart_items",
			Help: "Current number of units in the cart, per session",
		},
		[]string{"session"},
	)

	cartValue = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "storefront_cart_value",
			Help: "Current cart total, per session",
		},
		[]string{"session"},
	)

	wishlistItems = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "storefront_wishlist_items",
			Help: "Current number of wishlist entries, per session",
		},
		[]string{"session"},
	)
)

// observeCart feeds the cart gauges for one session from the cart's derived
// observables. The subscriptions live as long as the registry's cart entry,
// which is the process lifetime.
func observeCart(sessionID string, c *Cart) {
	c.Count().Subscribe(func(n int) {
		cartItems.WithLabelValues(sessionID).Set(float64(n))
	})
	c.Total().Subscribe(func(total float64) {
		cartValue.WithLabelValues(sessionID).Set(total)
	})
}

// observeWishlist feeds the wishlist size gauge for one session.
func observeWishlist(sessionID string, w *Wishlist) {
	w.Count().Subscribe(func(n int) {
		wishlistItems.WithLabelValues(sessionID).Set(float64(n))
	})
}
