package ai

import "context"

// ChatProvider is the model invocation interface the decision engine
// consumes. Implementations are treated as black boxes; an error means the
// current cycle cannot continue.
type ChatProvider interface {
	// Chat sends a chat completion request with tool calling support.
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// ChatRequest represents a chat completion request.
type ChatRequest struct {
	Messages    []Message
	Tools       []ToolDefinition
	Format      ResponseFormat
	Temperature float64
}

// ResponseFormat constrains the shape of the model's final answer.
type ResponseFormat string

const (
	FormatText       ResponseFormat = "text"
	FormatJSONObject ResponseFormat = "json_object"
)

// Message represents a single message in the conversation.
type Message struct {
	Role       MessageRole
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string // For tool responses
}

// MessageRole defines the role of a message sender.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleTool      MessageRole = "tool"
)

// ToolDefinition describes a tool/function that the model can call.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]interface{} // JSON schema
}

// ToolCall represents a tool invocation request from the model.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string // JSON-encoded arguments
}

// ChatResponse represents the first choice of a chat completion.
type ChatResponse struct {
	Content   string
	ToolCalls []ToolCall
}

// HasToolCalls reports whether the model requested tool execution.
func (r *ChatResponse) HasToolCalls() bool {
	return len(r.ToolCalls) > 0
}
