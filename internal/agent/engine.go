package agent

import (
	"context"

	"github.com/google/uuid"

	"newsquant/internal/adapters/ai"
	"newsquant/internal/portfolio"
	"newsquant/internal/tools"
	"newsquant/pkg/logger"
)

// Engine runs the tool-augmented model conversation. The protocol is two
// fixed rounds: the first completion may request tools, the results are fed
// back, and the second completion is final. If the model asks for tools
// again on the second round the request is ignored and its text is taken
// as-is; there is no recursion and no retry.
type Engine struct {
	provider   ai.ChatProvider
	registry   *tools.Registry
	dispatcher *tools.Dispatcher
	store      *portfolio.Store
	log        *logger.Logger
}

// NewEngine wires the engine over a model provider, a tool registry and the
// portfolio store used for decision-mode context.
func NewEngine(provider ai.ChatProvider, registry *tools.Registry, dispatcher *tools.Dispatcher, store *portfolio.Store) *Engine {
	return &Engine{
		provider:   provider,
		registry:   registry,
		dispatcher: dispatcher,
		store:      store,
		log:        logger.Get().With("component", "decision_engine"),
	}
}

// Report answers a free-form analyst question grounded in the news base and
// live market data. Each call is a fresh conversation.
func (e *Engine) Report(ctx context.Context, query string) (string, error) {
	conversation := []ai.Message{
		{Role: ai.RoleSystem, Content: analystSystemPrompt},
		{Role: ai.RoleUser, Content: query},
	}

	return e.run(ctx, conversation, ai.FormatText)
}

// Decide runs one decision cycle for the given trading pair and returns the
// parsed decision alongside the model's raw final text. The raw text is
// returned even when parsing fails, for diagnostics.
func (e *Engine) Decide(ctx context.Context, symbol string) (*Decision, string, error) {
	cycleID := uuid.New().String()
	log := e.log.With("cycle_id", cycleID, "symbol", symbol)

	current, err := e.store.Load()
	if err != nil {
		return nil, "", err
	}

	conversation := []ai.Message{
		{Role: ai.RoleSystem, Content: traderSystemPrompt},
		{Role: ai.RoleUser, Content: decisionUserPrompt(symbol, current)},
	}

	log.Infow("starting decision cycle", "cash", current.Cash)

	raw, err := e.run(ctx, conversation, ai.FormatJSONObject)
	if err != nil {
		return nil, "", err
	}

	decision, err := ParseDecision(raw)
	if err != nil {
		log.Warnw("decision rejected", "error", err, "raw", raw)
		return nil, raw, err
	}

	log.Infow("decision accepted",
		"action", decision.Action,
		"amount_usdt", decision.AmountUSDT,
		"reason", decision.Reason,
	)

	return decision, raw, nil
}

func (e *Engine) run(ctx context.Context, conversation []ai.Message, format ai.ResponseFormat) (string, error) {
	first, err := e.provider.Chat(ctx, ai.ChatRequest{
		Messages: conversation,
		Tools:    e.registry.Definitions(),
		Format:   format,
	})
	if err != nil {
		return "", err
	}

	if !first.HasToolCalls() {
		return first.Content, nil
	}

	conversation = append(conversation, ai.Message{
		Role:      ai.RoleAssistant,
		Content:   first.Content,
		ToolCalls: first.ToolCalls,
	})
	conversation = append(conversation, e.dispatcher.Dispatch(ctx, first.ToolCalls)...)

	// Final round: no tools offered, so the model must answer in text.
	second, err := e.provider.Chat(ctx, ai.ChatRequest{
		Messages: conversation,
		Format:   format,
	})
	if err != nil {
		return "", err
	}

	if second.HasToolCalls() {
		e.log.Warnw("model requested tools on the final round, taking text as-is",
			"requested", len(second.ToolCalls))
	}

	return second.Content, nil
}
