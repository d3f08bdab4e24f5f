package domain

// CartItem represents a single line in a shopping cart. Two lines are the
// same line when product ID, size, and color all match.
type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
	Size     string  `json:"size"`
	Color    string  `json:"color"`
}

// SameLine reports whether other refers to the same cart line: identical
// product ID, size, and color.
func (i CartItem) SameLine(other CartItem) bool {
	return i.Product.ID == other.Product.ID && i.Size == other.Size && i.Color == other.Color
}

// CartTotal returns the sum of price x quantity over all lines. Quantities
// and prices are used as-is, including zero and negative values.
func CartTotal(items []CartItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Product.Price * float64(item.Quantity)
	}
	return total
}

// CartCount returns the sum of quantities over all lines.
func CartCount(items []CartItem) int {
	var count int
	for _, item := range items {
		count += item.Quantity
	}
	return count
}
