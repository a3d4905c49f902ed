package shop

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jaakkos/storefront/internal/app"
)

// registerListProducts registers the list_products tool.
func registerListProducts(s *server.MCPServer, catalog *app.Catalog) {
	s.AddTool(
		mcp.NewTool("list_products",
			mcp.WithDescription("List the products in the store catalog with their ids and prices."),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			products, err := catalog.Products(ctx)
			if err != nil {
				return nil, err
			}
			return mcp.NewToolResultText(FormatProducts(products)), nil
		},
	)
}

// registerGetProduct registers the get_product tool.
func registerGetProduct(s *server.MCPServer, catalog *app.Catalog) {
	s.AddTool(
		mcp.NewTool("get_product",
			mcp.WithDescription("Show details for one product."),
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
			return mcp.NewToolResultText(FormatProduct(p)), nil
		},
	)
}
