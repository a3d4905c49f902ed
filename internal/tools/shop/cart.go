package shop

import (
	"context"
	"fmt"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jaakkos/storefront/internal/app"
	"github.com/jaakkos/storefront/internal/domain"
)

// cartText renders one snapshot of the cart, appending a warning when the
// last durable write failed.
func cartText(cart *app.CartStore) string {
	text := FormatCart(cart.Snapshot())
	if err := cart.LastPersistError(); err != nil {
		text += fmt.Sprintf("\nWarning: cart not saved (%v)\n", err)
	}
	return text
}

// registerCartView registers the cart_view tool.
func registerCartView(s *server.MCPServer, cart *app.CartStore) {
	s.AddTool(
		mcp.NewTool("cart_view",
			mcp.WithDescription("Show the cart: lines, quantities, unit count and total."),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText(cartText(cart)), nil
		},
	)
}

// registerCartAdd registers the cart_add tool. The product is fetched from the
// catalog so title and price come from the store.
func registerCartAdd(s *server.MCPServer, cart *app.CartStore, catalog *app.Catalog, logger *log.Logger) {
	s.AddTool(
		mcp.NewTool("cart_add",
			mcp.WithDescription("Add one unit of a product to the cart. Adding a product already in the cart increases its quantity."),
			mcp.WithNumber("product_id", mcp.Required(), mcp.Description("Product id from list_products")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := requireProductID(req.GetArguments(), "product_id")
			if err != nil {
				return nil, err
			}
			p, err := catalog.Product(ctx, id)
			if err != nil {
				return nil, err
			}
			cart.Add(p)
			logger.Printf("Cart: added product %d", p.ID)
			return mcp.NewToolResultText(fmt.Sprintf("Added %s\n\n%s", p.Title, cartText(cart))), nil
		},
	)
}

// registerCartRemove registers the cart_remove tool.
func registerCartRemove(s *server.MCPServer, cart *app.CartStore, logger *log.Logger) {
	s.AddTool(
		mcp.NewTool("cart_remove",
			mcp.WithDescription("Remove a product line from the cart regardless of its quantity."),
			mcp.WithNumber("product_id", mcp.Required(), mcp.Description("Product id of the cart line")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := requireProductID(req.GetArguments(), "product_id")
			if err != nil {
				return nil, err
			}
			if !hasLine(cart.Snapshot().Lines, id) {
				return mcp.NewToolResultText(fmt.Sprintf("Product %d is not in the cart", id)), nil
			}
			cart.Remove(id)
			logger.Printf("Cart: removed product %d", id)
			return mcp.NewToolResultText(cartText(cart)), nil
		},
	)
}

// registerCartClear registers the cart_clear tool.
func registerCartClear(s *server.MCPServer, cart *app.CartStore, logger *log.Logger) {
	s.AddTool(
		mcp.NewTool("cart_clear",
			mcp.WithDescription("Remove every line from the cart."),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			cart.Clear()
			logger.Printf("Cart: cleared")
			return mcp.NewToolResultText(cartText(cart)), nil
		},
	)
}

// registerCheckout registers the checkout tool. Checkout requires a signed-in
// session and an items-bearing cart; it empties the cart.
func registerCheckout(s *server.MCPServer, session *app.SessionManager, cart *app.CartStore, logger *log.Logger) {
	s.AddTool(
		mcp.NewTool("checkout",
			mcp.WithDescription("Check out the cart. Requires a signed-in session; the cart is emptied."),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			if !session.Snapshot().IsAuthenticated() {
				return nil, fmt.Errorf("sign in before checking out")
			}
			if cart.Snapshot().Count() == 0 {
				return nil, fmt.Errorf("cart is empty")
			}
			done := cart.Checkout()
			logger.Printf("Checkout completed")
			return mcp.NewToolResultText(fmt.Sprintf("Checked out %d item(s), total $%s",
				done.Count(), domain.FormatAmount(done.Total()))), nil
		},
	)
}

func hasLine(lines []domain.CartLine, productID int) bool {
	for _, l := range lines {
		if l.ProductID == productID {
			return true
		}
	}
	return false
}
