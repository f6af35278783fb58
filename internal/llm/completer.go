// Package llm wraps an OpenAI-compatible chat completions endpoint behind
// the domain Completer port. A completion may use the bound remote tools
// across several internal turns before producing the final reply; the loop
// is capped so a misbehaving model cannot spin forever.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"solagent/internal/domain"
)

var _ domain.Completer = (*Completer)(nil)

// Completer sends chat completions with the configured system preamble and
// the tools discovered from the MCP server.
type Completer struct {
	api          *openai.Client
	model        string
	preamble     string
	tools        domain.ToolCaller
	maxToolTurns int
}

// Config configures the chat completion client.
type Config struct {
	APIKey       string
	BaseURL      string
	Model        string
	Preamble     string
	MaxToolTurns int
	Timeout      time.Duration
}

// New creates the completer. tools may be nil when no tool server is bound.
func New(cfg Config, tools domain.ToolCaller) (*Completer, error) {
	if cfg.APIKey == "" {
		return nil, &domain.ConfigError{Key: "chat.api_key", Reason: "missing completion API key"}
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o"
	}
	if cfg.MaxToolTurns <= 0 {
		cfg.MaxToolTurns = 20
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}
	apiCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	return &Completer{
		api:          openai.NewClientWithConfig(apiCfg),
		model:        cfg.Model,
		preamble:     cfg.Preamble,
		tools:        tools,
		maxToolTurns: cfg.MaxToolTurns,
	}, nil
}

// Complete sends message with the running history and returns the final
// text reply. Tool-call exchanges happen inside this call and are not part
// of the persisted history.
func (c *Completer) Complete(ctx context.Context, history []domain.Turn, message string) (string, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	if c.preamble != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: c.preamble})
	}
	for _, turn := range history {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: roleOf(turn.Role), Content: turn.Content})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: message})

	toolDefs := c.toolDefinitions()
	for turn := 0; turn < c.maxToolTurns; turn++ {
		resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:    c.model,
			Messages: msgs,
			Tools:    toolDefs,
		})
		if err != nil {
			return "", &domain.CompletionError{Err: err}
		}
		if len(resp.Choices) == 0 {
			return "", &domain.CompletionError{Err: errors.New("service returned no choices")}
		}
		reply := resp.Choices[0].Message
		if len(reply.ToolCalls) == 0 {
			return reply.Content, nil
		}
		msgs = append(msgs, reply)
		for _, call := range reply.ToolCalls {
			msgs = append(msgs, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    c.invoke(ctx, call),
				ToolCallID: call.ID,
			})
		}
	}
	return "", &domain.CompletionError{Err: fmt.Errorf("no final reply after %d tool turns", c.maxToolTurns)}
}

// invoke runs one requested tool call. Failures are reported back to the
// model as the tool result so it can recover or rephrase.
func (c *Completer) invoke(ctx context.Context, call openai.ToolCall) string {
	if c.tools == nil {
		return "error: no tools are available"
	}
	args := map[string]any{}
	if call.Function.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			return fmt.Sprintf("error: invalid tool arguments: %v", err)
		}
	}
	out, err := c.tools.Call(ctx, call.Function.Name, args)
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return out
}

func (c *Completer) toolDefinitions() []openai.Tool {
	if c.tools == nil {
		return nil
	}
	specs := c.tools.Tools()
	defs := make([]openai.Tool, 0, len(specs))
	for _, spec := range specs {
		defs = append(defs, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        spec.Name,
				Description: spec.Description,
				Parameters:  spec.Parameters,
			},
		})
	}
	return defs
}

func roleOf(role domain.Role) string {
	if role == domain.RoleAssistant {
		return openai.ChatMessageRoleAssistant
	}
	return openai.ChatMessageRoleUser
}
