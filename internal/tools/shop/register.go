// Package shop exposes the storefront session, catalog and cart as MCP tools.
package shop

import (
	"log"

	"github.com/mark3labs/mcp-go/server"

	"github.com/jaakkos/storefront/internal/app"
)

// Register registers the storefront tools with the mcp-go server.
func Register(s *server.MCPServer, session *app.SessionManager, cart *app.CartStore, catalog *app.Catalog, logger *log.Logger) {
	// Session tools (4)
	registerSessionStatus(s, session)
	registerSignIn(s, session, logger)
	registerSignUp(s, session, logger)
	registerSignOut(s, session, logger)

	// Catalog tools (2)
	registerListProducts(s, catalog)
	registerGetProduct(s, catalog)

	// Cart tools (5)
	registerCartView(s, cart)
	registerCartAdd(s, cart, catalog, logger)
	registerCartRemove(s, cart, logger)
	registerCartClear(s, cart, logger)
	registerCheckout(s, session, cart, logger)
}
