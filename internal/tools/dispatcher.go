package tools

import (
	"context"
	"fmt"

	"newsquant/internal/adapters/ai"
	"newsquant/pkg/logger"
)

// Dispatcher routes model-issued tool calls to registered handlers and
// folds the results back into the conversation. Failures inside tool
// execution never escalate past this boundary: an unknown tool, bad
// arguments or a handler error all become a textual tool result, so the
// model can self-correct on its next turn.
type Dispatcher struct {
	registry *Registry
	log      *logger.Logger
}

// NewDispatcher creates a dispatcher over the given registry.
func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		log:      logger.Get().With("component", "tool_dispatcher"),
	}
}

// Dispatch executes the requested calls in the order received and returns
// one tool-result message per call, tagged with the originating call ID.
func (d *Dispatcher) Dispatch(ctx context.Context, calls []ai.ToolCall) []ai.Message {
	results := make([]ai.Message, 0, len(calls))

	for _, call := range calls {
		results = append(results, ai.Message{
			Role:       ai.RoleTool,
			ToolCallID: call.ID,
			Content:    d.execute(ctx, call),
		})
	}

	return results
}

func (d *Dispatcher) execute(ctx context.Context, call ai.ToolCall) string {
	tool, ok := d.registry.Get(call.Name)
	if !ok {
		d.log.Warnw("unknown tool requested", "tool", call.Name)
		return fmt.Sprintf("Error: unknown tool %q. Available tools: %s.", call.Name, d.toolNames())
	}

	result, err := tool.Handler(ctx, []byte(call.Arguments))
	if err != nil {
		d.log.Warnw("tool execution failed", "tool", call.Name, "error", err)
		return fmt.Sprintf("Error executing %s: %v", call.Name, err)
	}

	return result
}

func (d *Dispatcher) toolNames() string {
	names := ""
	for i, def := range d.registry.Definitions() {
		if i > 0 {
			names += ", "
		}
		names += def.Name
	}
	return names
}
