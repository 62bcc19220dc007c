package news

import (
	"context"

	"github.com/pgvector/pgvector-go"
)

// Repository is the storage contract for the news corpus.
type Repository interface {
	// Upsert stores an item if its content hash is not already present.
	// Returns true when a new row was inserted.
	Upsert(ctx context.Context, item *Item) (bool, error)

	// SearchSimilar returns up to limit items ranked by cosine similarity to
	// the query embedding, most similar first, filtered by minSimilarity.
	SearchSimilar(ctx context.Context, embedding pgvector.Vector, limit int, minSimilarity float64) ([]Item, error)

	// Count returns the number of stored items.
	Count(ctx context.Context) (int64, error)
}
