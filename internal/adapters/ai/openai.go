package ai

import (
	"context"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"golang.org/x/time/rate"

	"newsquant/pkg/errors"
	"newsquant/pkg/logger"
)

// Ensure OpenAIProvider implements ChatProvider
var _ ChatProvider = (*OpenAIProvider)(nil)

// OpenAIProvider implements ChatProvider using the official OpenAI Go SDK.
type OpenAIProvider struct {
	client  openai.Client
	model   shared.ChatModel
	limiter *rate.Limiter
	timeout time.Duration
	log     *logger.Logger
}

// NewOpenAIProvider creates a new OpenAI chat provider.
func NewOpenAIProvider(apiKey, model string, requestsPerMinute float64, timeout time.Duration) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "openai API key is required")
	}
	if model == "" {
		model = openai.ChatModelGPT4o
	}
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
	)

	return &OpenAIProvider{
		client:  client,
		model:   shared.ChatModel(model),
		limiter: rate.NewLimiter(rate.Limit(requestsPerMinute/60.0), 1),
		timeout: timeout,
		log:     logger.Get().With("component", "openai_chat", "model", model),
	}, nil
}

// Chat sends a chat completion request and returns the first choice.
func (p *OpenAIProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "openai rate limiter wait")
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model:    p.model,
		Messages: toOpenAIMessages(req.Messages),
	}

	for _, t := range req.Tools {
		params.Tools = append(params.Tools, openai.ChatCompletionFunctionTool(shared.FunctionDefinitionParam{
			Name:        t.Name,
			Description: openai.String(t.Description),
			Parameters:  shared.FunctionParameters(t.Parameters),
		}))
	}

	if req.Format == FormatJSONObject {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}

	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrExternal, "openai chat completion: %v", err)
	}
	if len(completion.Choices) == 0 {
		return nil, errors.Wrap(errors.ErrExternal, "openai returned no choices")
	}

	choice := completion.Choices[0]
	resp := &ChatResponse{Content: choice.Message.Content}

	for _, tc := range choice.Message.ToolCalls {
		resp.ToolCalls = append(resp.ToolCalls, ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}

	p.log.Debugw("chat completion",
		"tool_calls", len(resp.ToolCalls),
		"tokens_used", completion.Usage.TotalTokens,
	)

	return resp, nil
}

func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))

	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case RoleUser:
			out = append(out, openai.UserMessage(m.Content))
		case RoleTool:
			out = append(out, openai.ToolMessage(m.Content, m.ToolCallID))
		case RoleAssistant:
			out = append(out, toAssistantMessage(m))
		}
	}

	return out
}

func toAssistantMessage(m Message) openai.ChatCompletionMessageParamUnion {
	assistant := openai.ChatCompletionAssistantMessageParam{}
	if m.Content != "" {
		assistant.Content.OfString = openai.String(m.Content)
	}

	for _, tc := range m.ToolCalls {
		assistant.ToolCalls = append(assistant.ToolCalls, openai.ChatCompletionMessageToolCallUnionParam{
			OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
				ID: tc.ID,
				Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
					Name:      tc.Name,
					Arguments: tc.Arguments,
				},
			},
		})
	}

	return openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant}
}
