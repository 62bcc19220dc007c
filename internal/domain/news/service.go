package news

import (
	"context"
	"time"

	"github.com/pgvector/pgvector-go"

	"newsquant/internal/adapters/embeddings"
	"newsquant/pkg/errors"
	"newsquant/pkg/logger"
)

// Service exposes semantic search and idempotent ingestion over the news
// corpus.
type Service struct {
	repo          Repository
	embedder      embeddings.Provider
	minSimilarity float64
	log           *logger.Logger
}

// NewService creates a news service.
func NewService(repo Repository, embedder embeddings.Provider, minSimilarity float64) *Service {
	return &Service{
		repo:          repo,
		embedder:      embedder,
		minSimilarity: minSimilarity,
		log:           logger.Get().With("component", "news_service"),
	}
}

// Search returns up to topK news texts ranked by semantic relevance, most
// relevant first. An empty result is not an error. A store or embedding
// failure is reported as ErrNewsUnavailable so callers can distinguish
// "nothing relevant" from "store unavailable".
func (s *Service) Search(ctx context.Context, query string, topK int) ([]string, error) {
	if query == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "query cannot be empty")
	}
	if topK <= 0 {
		topK = 3
	}

	embedding, err := s.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrNewsUnavailable, "embed query: %v", err)
	}

	items, err := s.repo.SearchSimilar(ctx, pgvector.NewVector(embedding), topK, s.minSimilarity)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrNewsUnavailable, "search store: %v", err)
	}

	texts := make([]string, 0, len(items))
	for _, item := range items {
		texts = append(texts, item.Content)
	}

	s.log.Debugw("news search", "query", query, "results", len(texts))
	return texts, nil
}

// Ingest embeds and stores the given texts, skipping any whose content hash
// is already present. Returns the number of newly stored items.
func (s *Service) Ingest(ctx context.Context, texts []string, source string) (int, error) {
	if len(texts) == 0 {
		return 0, nil
	}

	vectors, err := s.embedder.GenerateBatchEmbeddings(ctx, texts)
	if err != nil {
		return 0, errors.Wrap(err, "embed news batch")
	}

	inserted := 0
	for i, text := range texts {
		item := &Item{
			ID:         ContentHash(text),
			Content:    text,
			Source:     source,
			Embedding:  pgvector.NewVector(vectors[i]),
			IngestedAt: time.Now().UTC(),
		}

		isNew, err := s.repo.Upsert(ctx, item)
		if err != nil {
			return inserted, errors.Wrapf(err, "store news item %s", item.ID)
		}
		if isNew {
			inserted++
		}
	}

	return inserted, nil
}
