package mcptools

import (
	"context"

	"github.com/dusk-indust/usermgr/internal/session"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewUserMCPServer creates an MCP server with the six user-management tools
// registered against sess.
func NewUserMCPServer(sess *session.Session) *mcp.Server {
	svc := NewUserToolService(sess)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "usermgr",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_users",
		Description: "List every user record in server order. Loads the list on first use; pass refresh to reload it.",
	}, svc.ListUsers)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_users",
		Description: "Find users whose name contains the query, ignoring case.",
	}, svc.SearchUsers)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_user",
		Description: "Fetch one user record, including address and company, straight from the user service.",
	}, svc.GetUser)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_user",
		Description: "Create a user. name, email and phone are required; the server assigns the id.",
	}, svc.CreateUser)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_user",
		Description: "Change fields of an existing user. Field paths: name, email, phone, website, address.street, address.city, company.name.",
	}, svc.UpdateUser)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_user",
		Description: "Delete a user by id.",
	}, svc.DeleteUser)

	return server
}

// RunStdio runs server on the stdio transport, blocking until stdin is
// closed or ctx is cancelled.
func RunStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}
