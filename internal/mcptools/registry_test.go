package mcptools

import (
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
)

func TestToolSpecConversion(t *testing.T) {
	spec := toolSpec(mcp.Tool{
		Name:        "get_balance",
		Description: "Look up an account balance",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"account": map[string]any{"type": "string"},
			},
			Required: []string{"account"},
		},
	})

	assert.Equal(t, "get_balance", spec.Name)
	assert.Equal(t, "Look up an account balance", spec.Description)
	assert.Equal(t, "object", spec.Parameters["type"])
	assert.Equal(t, []string{"account"}, spec.Parameters["required"])
	props := spec.Parameters["properties"].(map[string]any)
	assert.Contains(t, props, "account")
}

func TestToolSpecDefaultsEmptySchema(t *testing.T) {
	spec := toolSpec(mcp.Tool{Name: "ping"})
	assert.Equal(t, map[string]any{"type": "object"}, spec.Parameters)
}
