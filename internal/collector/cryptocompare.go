package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"newsquant/internal/domain/news"
	"newsquant/pkg/errors"
	"newsquant/pkg/logger"
)

const (
	defaultFeedURL = "https://min-api.cryptocompare.com/data/v2/news/?lang=EN"
	sourceTag      = "cryptocompare"
)

// Collector fetches the latest crypto headlines and upserts them into the
// news store. Ingestion is idempotent: items are keyed by content hash, so
// repeated runs only add previously unseen news.
type Collector struct {
	service    *news.Service
	httpClient *http.Client
	feedURL    string
	limit      int
	log        *logger.Logger
}

// Config configures the collector.
type Config struct {
	// FeedURL overrides the CryptoCompare endpoint, mainly for tests.
	FeedURL    string
	Limit      int
	HTTPClient *http.Client
}

// New creates a news collector.
func New(service *news.Service, cfg Config) *Collector {
	if cfg.FeedURL == "" {
		cfg.FeedURL = defaultFeedURL
	}
	if cfg.Limit <= 0 {
		cfg.Limit = 20
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Collector{
		service:    service,
		httpClient: cfg.HTTPClient,
		feedURL:    cfg.FeedURL,
		limit:      cfg.Limit,
		log:        logger.Get().With("component", "news_collector"),
	}
}

// Run fetches the latest headlines and stores the new ones. Returns the
// number of newly stored items.
func (c *Collector) Run(ctx context.Context) (int, error) {
	texts, err := c.fetch(ctx)
	if err != nil {
		return 0, err
	}
	if len(texts) == 0 {
		c.log.Info("no news fetched")
		return 0, nil
	}

	inserted, err := c.service.Ingest(ctx, texts, sourceTag)
	if err != nil {
		return inserted, errors.Wrap(err, "ingest news")
	}

	c.log.Infow("news collection complete", "fetched", len(texts), "new", inserted)
	return inserted, nil
}

type feedResponse struct {
	Data []feedArticle `json:"Data"`
}

type feedArticle struct {
	Title       string `json:"title"`
	Body        string `json:"body"`
	PublishedOn int64  `json:"published_on"`
}

func (c *Collector) fetch(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create news request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetch news")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, errors.Newf("news feed returned status %d: %s", resp.StatusCode, string(body))
	}

	var feed feedResponse
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, errors.Wrap(err, "decode news feed")
	}

	articles := feed.Data
	if len(articles) > c.limit {
		articles = articles[:c.limit]
	}

	texts := make([]string, 0, len(articles))
	for _, a := range articles {
		if a.Title == "" {
			continue
		}
		published := time.Unix(a.PublishedOn, 0).UTC().Format("2006-01-02 15:04:05")
		texts = append(texts, fmt.Sprintf("[%s] %s - %s", published, a.Title, a.Body))
	}

	return texts, nil
}
