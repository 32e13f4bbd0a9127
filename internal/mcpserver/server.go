// Package mcpserver builds the MCP server and its transports from the tool
// handlers. No business logic lives here.
package mcpserver

import (
	"context"
	"net/http"

	"success-mcp/internal/apikey"
	"success-mcp/internal/handler"
	"success-mcp/internal/middleware"

	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via ldflags.
var Version = "dev"

const instructions = `Tools for the success.co EOS platform: teams, users, to-dos, rocks, milestones,
issues, headlines, meetings, scorecards, the accountability chart and the V/TO.
Pass leadershipTeam=true instead of a teamId to work on the leadership team.
Use search to find ids and fetch with the returned <type>:<id> to read one resource.`

func New(tools *handler.ToolHandler) *server.MCPServer {
	s := server.NewMCPServer(
		"success-mcp",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)
	s.AddTools(tools.Tools()...)
	return s
}

// HTTPHandler serves s over streamable HTTP. The API key header of each
// request is placed in the tool call context.
func HTTPHandler(s *server.MCPServer) http.Handler {
	return server.NewStreamableHTTPServer(s,
		server.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			return apikey.WithKey(apikey.WithRemote(ctx), r.Header.Get(middleware.APIKeyHeader))
		}),
	)
}

// ServeStdio blocks serving s on stdin/stdout.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}
