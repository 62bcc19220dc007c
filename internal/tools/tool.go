package tools

import (
	"context"
	"encoding/json"

	"newsquant/internal/adapters/ai"
)

// Handler executes a tool with raw JSON arguments and returns a textual
// result. Handlers may perform network I/O; errors are recovered by the
// dispatcher and fed back to the model as text.
type Handler func(ctx context.Context, args json.RawMessage) (string, error)

// Tool pairs a model-facing schema with its handler.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]interface{} // JSON schema
	Handler     Handler
}

// Definition converts the tool to the model invocation schema.
func (t Tool) Definition() ai.ToolDefinition {
	return ai.ToolDefinition{
		Name:        t.Name,
		Description: t.Description,
		Parameters:  t.Parameters,
	}
}
