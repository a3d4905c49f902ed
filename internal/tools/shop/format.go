package shop

import (
	"fmt"
	"strings"

	"github.com/jaakkos/storefront/internal/api"
	"github.com/jaakkos/storefront/internal/domain"
)

// FormatSession renders a session snapshot. The token itself is never printed.
func FormatSession(s domain.Session) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "State: %s\n", s.State)
	if s.IsAuthenticated() {
		if c, ok := api.ParseClaims(s.Token); ok && c.User != "" {
			fmt.Fprintf(&sb, "Signed in as: %s", c.User)
			if c.Subject != "" {
				fmt.Fprintf(&sb, " (user %s)", c.Subject)
			}
			sb.WriteString("\n")
			if !c.IssuedAt.IsZero() {
				fmt.Fprintf(&sb, "Since: %s\n", c.IssuedAt.Format("2006-01-02 15:04"))
			}
		} else {
			sb.WriteString("Signed in\n")
		}
	}
	if s.Error != "" {
		fmt.Fprintf(&sb, "Error: %s\n", s.Error)
	}
	return sb.String()
}

// FormatProducts renders a product listing, one line per product.
func FormatProducts(products []domain.Product) string {
	if len(products) == 0 {
		return "No products."
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d product(s):\n", len(products))
	for _, p := range products {
		fmt.Fprintf(&sb, "  #%d %s  $%s\n", p.ID, p.Title, domain.FormatAmount(p.Price))
	}
	return sb.String()
}

// FormatProduct renders product details.
func FormatProduct(p domain.Product) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "#%d %s\n", p.ID, p.Title)
	fmt.Fprintf(&sb, "Price: $%s\n", domain.FormatAmount(p.Price))
	if p.Category != "" {
		fmt.Fprintf(&sb, "Category: %s\n", p.Category)
	}
	if p.Rating != nil {
		fmt.Fprintf(&sb, "Rating: %.1f (%d reviews)\n", p.Rating.Rate, p.Rating.Count)
	}
	if p.Description != "" {
		fmt.Fprintf(&sb, "\n%s\n", p.Description)
	}
	return sb.String()
}

// FormatCart renders cart lines, the unit count and the total.
func FormatCart(c *domain.Cart) string {
	if c == nil || len(c.Lines) == 0 {
		return "Your cart is empty."
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Cart (%d item(s)):\n", c.Count())
	for _, l := range c.Lines {
		fmt.Fprintf(&sb, "  #%d %s  %d x $%s = $%s\n",
			l.ProductID, l.Title, l.Quantity, domain.FormatAmount(l.UnitPrice), domain.FormatAmount(l.LineTotal()))
	}
	fmt.Fprintf(&sb, "Total: $%s\n", domain.FormatAmount(c.Total()))
	return sb.String()
}
