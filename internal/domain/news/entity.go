package news

import (
	"crypto/md5"
	"encoding/hex"
	"time"

	"github.com/pgvector/pgvector-go"
)

// Item is a single stored news snippet. Identity is the md5 hash of the
// content, which makes ingestion idempotent: at most one stored copy per
// distinct text.
type Item struct {
	ID         string          `db:"id"`
	Content    string          `db:"content"`
	Source     string          `db:"source"`
	Embedding  pgvector.Vector `db:"embedding"`
	IngestedAt time.Time       `db:"ingested_at"`

	// Similarity is populated by semantic search results only.
	Similarity float64 `db:"similarity"`
}

// ContentHash derives the identity of a news text.
func ContentHash(text string) string {
	sum := md5.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}
