package domain

import "fmt"

// CartLine is one product in the cart together with its quantity.
type CartLine struct {
	ProductID int     `json:"product_id"`
	Title     string  `json:"title"`
	UnitPrice float64 `json:"unit_price"`
	Image     string  `json:"image,omitempty"`
	Quantity  int     `json:"quantity"`
}

// LineTotal returns UnitPrice × Quantity.
func (l CartLine) LineTotal() float64 {
	return l.UnitPrice * float64(l.Quantity)
}

// Cart is the ordered set of cart lines. ProductID is unique within Lines and
// lines keep insertion order. The zero value is an empty cart.
type Cart struct {
	Lines []CartLine `json:"lines"`
}

// NewCart returns an empty cart.
func NewCart() *Cart {
	return &Cart{Lines: []CartLine{}}
}

// Add increments the quantity of the line for p, or appends a new line with
// quantity 1. A product with a negative price is not added and Add returns
// false, matching what Normalize would drop on reload.
func (c *Cart) Add(p Product) bool {
	if p.Price < 0 {
		return false
	}
	for i := range c.Lines {
		if c.Lines[i].ProductID == p.ID {
			c.Lines[i].Quantity++
			return true
		}
	}
	c.Lines = append(c.Lines, CartLine{
		ProductID: p.ID,
		Title:     p.Title,
		UnitPrice: p.Price,
		Image:     p.Image,
		Quantity:  1,
	})
	return true
}

// Remove deletes the whole line for productID. It returns false if no such line exists.
func (c *Cart) Remove(productID int) bool {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return true
		}
	}
	return false
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Lines = []CartLine{}
}

// Total sums UnitPrice × Quantity over all lines.
func (c *Cart) Total() float64 {
	var total float64
	for _, l := range c.Lines {
		total += l.LineTotal()
	}
	return total
}

// Count returns the number of units in the cart (the badge number).
func (c *Cart) Count() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// Clone returns a deep copy safe to hand to readers.
func (c *Cart) Clone() *Cart {
	lines := make([]CartLine, len(c.Lines))
	copy(lines, c.Lines)
	return &Cart{Lines: lines}
}

// Normalize drops lines that violate the cart invariants (non-positive quantity,
// negative price) and merges duplicate product ids. Used when loading persisted carts.
func (c *Cart) Normalize() {
	merged := make([]CartLine, 0, len(c.Lines))
	index := make(map[int]int, len(c.Lines))
	for _, l := range c.Lines {
		if l.Quantity < 1 || l.UnitPrice < 0 {
			continue
		}
		if i, ok := index[l.ProductID]; ok {
			merged[i].Quantity += l.Quantity
			continue
		}
		index[l.ProductID] = len(merged)
		merged = append(merged, l)
	}
	c.Lines = merged
}

// FormatAmount formats a money amount with two decimals.
func FormatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
