package mcpserver

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"success-mcp/internal/apikey"
	"success-mcp/internal/graphql"
	"success-mcp/internal/handler"
	"success-mcp/internal/service"
	"success-mcp/internal/testutil"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerOverInProcessClient(t *testing.T) {
	fake := testutil.NewFakeGraphQL(t)
	keys := apikey.NewResolver("k", apikey.NewFileStore(filepath.Join(t.TempDir(), "api_key")))
	gql := graphql.New(graphql.Options{Endpoint: fake.URL, Key: keys.APIKey, Timeout: 5 * time.Second})
	tools := handler.NewToolHandler(service.New(gql, nil, keys), keys)

	c, err := client.NewInProcessClient(New(tools))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	ctx := context.Background()
	require.NoError(t, c.Start(ctx))
	var init mcp.InitializeRequest
	init.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	init.Params.ClientInfo = mcp.Implementation{Name: "test", Version: "1"}
	info, err := c.Initialize(ctx, init)
	require.NoError(t, err)
	assert.Equal(t, "success-mcp", info.ServerInfo.Name)

	list, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	require.NoError(t, err)
	assert.Len(t, list.Tools, len(tools.Names()))

	var req mcp.CallToolRequest
	req.Params.Name = "getRocks"
	req.Params.Arguments = map[string]any{"leadershipTeam": true}
	res, err := c.CallTool(ctx, req)
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, "Error: Could not find leadership team", handler.Text(res))
	assert.Equal(t, []string{"LeadershipTeam"}, fake.Ops())
}
