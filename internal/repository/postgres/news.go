package postgres

import (
	"context"
	"strconv"

	"github.com/jmoiron/sqlx"
	"github.com/pgvector/pgvector-go"

	"newsquant/internal/domain/news"
)

// Compile-time check
var _ news.Repository = (*NewsRepository)(nil)

// NewsRepository implements news.Repository using sqlx and pgvector
type NewsRepository struct {
	db *sqlx.DB
}

// NewNewsRepository creates a new news repository
func NewNewsRepository(db *sqlx.DB) *NewsRepository {
	return &NewsRepository{db: db}
}

// EnsureSchema creates the news table and vector extension if missing.
func (r *NewsRepository) EnsureSchema(ctx context.Context, dimensions int) error {
	if _, err := r.db.ExecContext(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return err
	}

	if dimensions <= 0 {
		dimensions = 1536
	}

	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS news_items (
			id          TEXT PRIMARY KEY,
			content     TEXT NOT NULL,
			source      TEXT NOT NULL,
			embedding   vector(`+strconv.Itoa(dimensions)+`) NOT NULL,
			ingested_at TIMESTAMPTZ NOT NULL
		)`)
	return err
}

// Upsert inserts an item unless its content hash already exists
func (r *NewsRepository) Upsert(ctx context.Context, item *news.Item) (bool, error) {
	query := `
		INSERT INTO news_items (id, content, source, embedding, ingested_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING`

	result, err := r.db.ExecContext(ctx, query,
		item.ID, item.Content, item.Source, item.Embedding, item.IngestedAt,
	)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

// SearchSimilar performs semantic search using pgvector cosine similarity
func (r *NewsRepository) SearchSimilar(ctx context.Context, embedding pgvector.Vector, limit int, minSimilarity float64) ([]news.Item, error) {
	var items []news.Item

	query := `
		SELECT id, content, source, embedding, ingested_at,
		       1 - (embedding <=> $1) AS similarity
		FROM news_items
		WHERE 1 - (embedding <=> $1) >= $2
		ORDER BY embedding <=> $1
		LIMIT $3`

	err := r.db.SelectContext(ctx, &items, query, embedding, minSimilarity, limit)
	if err != nil {
		return nil, err
	}

	return items, nil
}

// Count returns the number of stored items
func (r *NewsRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM news_items`)
	return count, err
}
