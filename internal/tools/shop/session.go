package shop

import (
	"context"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jaakkos/storefront/internal/app"
)

// registerSessionStatus registers the session_status tool.
func registerSessionStatus(s *server.MCPServer, session *app.SessionManager) {
	s.AddTool(
		mcp.NewTool("session_status",
			mcp.WithDescription("Show whether the storefront user is signed in, and the last sign-in error if any."),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText(FormatSession(session.Snapshot())), nil
		},
	)
}

// registerSignIn registers the sign_in tool.
func registerSignIn(s *server.MCPServer, session *app.SessionManager, logger *log.Logger) {
	s.AddTool(
		mcp.NewTool("sign_in",
			mcp.WithDescription("Sign in to the store with a username and password. The session token is stored for later runs."),
			mcp.WithString("username", mcp.Required(), mcp.Description("Account username")),
			mcp.WithString("password", mcp.Required(), mcp.Description("Account password")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := req.GetArguments()
			username, _ := args["username"].(string)
			password, _ := args["password"].(string)

			if err := session.SignIn(ctx, username, password); err != nil {
				return nil, err
			}
			logger.Printf("Signed in as %s", username)
			return mcp.NewToolResultText("Signed in as " + username), nil
		},
	)
}

// registerSignUp registers the sign_up tool.
func registerSignUp(s *server.MCPServer, session *app.SessionManager, logger *log.Logger) {
	s.AddTool(
		mcp.NewTool("sign_up",
			mcp.WithDescription("Create a store account and sign in with it."),
			mcp.WithString("username", mcp.Required(), mcp.Description("New account username")),
			mcp.WithString("email", mcp.Required(), mcp.Description("Email address")),
			mcp.WithString("password", mcp.Required(), mcp.Description("Password, at least 6 characters")),
			mcp.WithString("confirm_password", mcp.Required(), mcp.Description("Must equal password")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := req.GetArguments()
			username, _ := args["username"].(string)
			email, _ := args["email"].(string)
			password, _ := args["password"].(string)
			confirm, _ := args["confirm_password"].(string)

			if err := session.SignUp(ctx, username, password, confirm, email); err != nil {
				return nil, err
			}
			logger.Printf("Signed up as %s", username)
			return mcp.NewToolResultText("Account created; signed in as " + username), nil
		},
	)
}

// registerSignOut registers the sign_out tool.
func registerSignOut(s *server.MCPServer, session *app.SessionManager, logger *log.Logger) {
	s.AddTool(
		mcp.NewTool("sign_out",
			mcp.WithDescription("Sign out and forget the stored session token."),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			session.SignOut(ctx)
			logger.Printf("Signed out")
			return mcp.NewToolResultText("Signed out"), nil
		},
	)
}
