package shop

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jaakkos/storefront/internal/app"
	"github.com/jaakkos/storefront/internal/domain"
	"github.com/jaakkos/storefront/internal/repository/memory"
)

// stubIdentity accepts one username/password pair.
type stubIdentity struct {
	username, password, token string
	registered                []app.Registration
}

func (s *stubIdentity) Login(_ context.Context, u, p string) (string, error) {
	if u == s.username && p == s.password {
		return s.token, nil
	}
	return "", &app.RemoteError{StatusCode: http.StatusUnauthorized}
}

func (s *stubIdentity) Register(_ context.Context, reg app.Registration) error {
	s.registered = append(s.registered, reg)
	s.username, s.password = reg.Username, reg.Password
	return nil
}

// stubCatalog serves a fixed product list.
type stubCatalog struct{ products []domain.Product }

func (s *stubCatalog) Products(context.Context) ([]domain.Product, error) {
	return s.products, nil
}

func (s *stubCatalog) Product(_ context.Context, id int) (domain.Product, error) {
	for _, p := range s.products {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Product{}, &app.RemoteError{StatusCode: http.StatusNotFound}
}

type fixture struct {
	server   *server.MCPServer
	session  *app.SessionManager
	cart     *app.CartStore
	store    *memory.Store
	identity *stubIdentity
}

// testServer creates a MCPServer with all tools registered over in-memory ports.
func testServer(t *testing.T) *fixture {
	t.Helper()
	logger := log.New(io.Discard, "", 0)
	store := memory.New()
	identity := &stubIdentity{username: "mor_2314", password: "83r5^_", token: "tok-1"}
	catalog := &stubCatalog{products: []domain.Product{
		{ID: 1, Title: "Backpack", Price: 109.95, Category: "bags", Rating: &domain.Rating{Rate: 3.9, Count: 120}},
		{ID: 2, Title: "T-Shirt", Price: 22.30},
	}}

	session := app.NewSessionManager(store, identity, logger)
	session.Restore(context.Background())
	cart := app.NewCartStore(store, logger)

	s := server.NewMCPServer("test", "1.0.0")
	Register(s, session, cart, app.NewCatalog(catalog, logger), logger)
	return &fixture{server: s, session: session, cart: cart, store: store, identity: identity}
}

// callTool calls a registered tool via the MCPServer's HandleMessage.
// Returns the parsed CallToolResult or an error.
func callTool(t *testing.T, s *server.MCPServer, name string, args map[string]any) (*mcp.CallToolResult, error) {
	t.Helper()

	reqJSON, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/call",
		"params": map[string]any{
			"name":      name,
			"arguments": args,
		},
	})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	respJSON := s.HandleMessage(context.Background(), reqJSON)

	respBytes, marshalErr := json.Marshal(respJSON)
	if marshalErr != nil {
		t.Fatalf("marshal response: %v", marshalErr)
	}

	var resp struct {
		Result json.RawMessage `json:"result"`
		Error  *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}

	if resp.Error != nil {
		return nil, fmt.Errorf("RPC error %d: %s", resp.Error.Code, resp.Error.Message)
	}

	var result mcp.CallToolResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}

	return &result, nil
}

// resultText extracts the first text content from a CallToolResult.
func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil {
		t.Fatal("result is nil")
	}
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	t.Fatal("no text content in result")
	return ""
}
