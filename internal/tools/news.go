package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"newsquant/internal/domain/news"
	"newsquant/pkg/errors"
)

// NewsSearcher is the retrieval contract this tool consumes.
type NewsSearcher interface {
	Search(ctx context.Context, query string, topK int) ([]string, error)
}

var _ NewsSearcher = (*news.Service)(nil)

// NewSearchMarketNews builds the semantic news retrieval tool.
func NewSearchMarketNews(searcher NewsSearcher, defaultTopK int) Tool {
	if defaultTopK <= 0 {
		defaultTopK = 3
	}

	return Tool{
		Name:        "search_market_news",
		Description: "Search the local news knowledge base for the latest market news and headlines relevant to a query.",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search keywords; concise entity terms work best (e.g. 'bitcoin ETF', 'rate cut', 'ethereum upgrade').",
				},
				"top_k": map[string]interface{}{
					"type":        "integer",
					"description": fmt.Sprintf("Number of most relevant news items to return, default %d.", defaultTopK),
				},
			},
			"required": []string{"query"},
		},
		Handler: func(ctx context.Context, args json.RawMessage) (string, error) {
			var params struct {
				Query string `json:"query"`
				TopK  int    `json:"top_k"`
			}
			if err := json.Unmarshal(args, &params); err != nil {
				return "", errors.Wrapf(errors.ErrToolArguments, "%v", err)
			}
			if params.Query == "" {
				return "", errors.Wrap(errors.ErrToolArguments, "query is required")
			}
			if params.TopK <= 0 {
				params.TopK = defaultTopK
			}

			items, err := searcher.Search(ctx, params.Query, params.TopK)
			if err != nil {
				if errors.Is(err, errors.ErrNewsUnavailable) {
					return "The local news knowledge base is not available right now; no news could be retrieved.", nil
				}
				return "", err
			}

			if len(items) == 0 {
				return fmt.Sprintf("No recent news matching %q was found in the knowledge base.", params.Query), nil
			}

			var b strings.Builder
			for _, item := range items {
				b.WriteString("- ")
				b.WriteString(item)
				b.WriteString("\n")
			}
			return strings.TrimRight(b.String(), "\n"), nil
		},
	}
}
