// Package mcptools connects to a remote MCP server, discovers its tools and
// exposes them as a name-keyed registry the completion client can invoke.
// The wire protocol stays opaque behind the domain ToolCaller port.
package mcptools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"solagent/internal/domain"
)

const clientName = "solagent"

var _ domain.ToolCaller = (*Registry)(nil)

// Registry holds an open MCP client connection and the tool descriptors it
// advertised at startup.
type Registry struct {
	client *client.Client
	tools  []domain.ToolSpec
}

// Connect opens an SSE transport to the MCP server at addr (host:port),
// performs the initialize handshake and lists the available tools.
func Connect(ctx context.Context, addr, version string) (*Registry, error) {
	c, err := client.NewSSEMCPClient(fmt.Sprintf("http://%s/sse", addr))
	if err != nil {
		return nil, fmt.Errorf("creating MCP client: %w", err)
	}
	if err := c.Start(ctx); err != nil {
		return nil, fmt.Errorf("connecting to MCP server at %s: %w", addr, err)
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: clientName, Version: version}
	if _, err := c.Initialize(ctx, initReq); err != nil {
		return nil, fmt.Errorf("initializing MCP session: %w", err)
	}

	listed, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("listing MCP tools: %w", err)
	}
	specs := make([]domain.ToolSpec, 0, len(listed.Tools))
	for _, t := range listed.Tools {
		specs = append(specs, toolSpec(t))
	}
	return &Registry{client: c, tools: specs}, nil
}

// Tools returns the discovered tool descriptors.
func (r *Registry) Tools() []domain.ToolSpec { return r.tools }

// Call invokes a remote tool and returns its concatenated text content.
func (r *Registry) Call(ctx context.Context, name string, args map[string]any) (string, error) {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	res, err := r.client.CallTool(ctx, req)
	if err != nil {
		return "", fmt.Errorf("calling tool %s: %w", name, err)
	}
	var sb strings.Builder
	for _, content := range res.Content {
		if tc, ok := content.(mcp.TextContent); ok {
			sb.WriteString(tc.Text)
		}
	}
	if res.IsError {
		return "", fmt.Errorf("tool %s failed: %s", name, sb.String())
	}
	return sb.String(), nil
}

// Close shuts down the MCP connection.
func (r *Registry) Close() error { return r.client.Close() }

// toolSpec converts an MCP tool descriptor to the provider-neutral form.
func toolSpec(t mcp.Tool) domain.ToolSpec {
	params := map[string]any{"type": "object"}
	if t.InputSchema.Type != "" {
		params["type"] = t.InputSchema.Type
	}
	if len(t.InputSchema.Properties) > 0 {
		params["properties"] = t.InputSchema.Properties
	}
	if len(t.InputSchema.Required) > 0 {
		params["required"] = t.InputSchema.Required
	}
	return domain.ToolSpec{Name: t.Name, Description: t.Description, Parameters: params}
}
