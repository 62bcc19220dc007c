package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsquant/internal/domain/news"
)

type fakeEmbedder struct{}

func (f *fakeEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	return []float32{0.5, 0.5}, nil
}

func (f *fakeEmbedder) GenerateBatchEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.5, 0.5}
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int { return 2 }

type memRepo struct {
	items map[string]*news.Item
}

func (m *memRepo) Upsert(ctx context.Context, item *news.Item) (bool, error) {
	if _, ok := m.items[item.ID]; ok {
		return false, nil
	}
	m.items[item.ID] = item
	return true, nil
}

func (m *memRepo) SearchSimilar(ctx context.Context, embedding pgvector.Vector, limit int, minSimilarity float64) ([]news.Item, error) {
	return nil, nil
}

func (m *memRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(m.items)), nil
}

const feedPayload = `{
	"Data": [
		{"title": "Bitcoin breaks out", "body": "Spot demand returns.", "published_on": 1756000000},
		{"title": "Exchange outage resolved", "body": "Trading resumed.", "published_on": 1756003600},
		{"title": "", "body": "malformed row, no title", "published_on": 1756007200}
	]
}`

func TestRun_IngestsAndDeduplicates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(feedPayload))
	}))
	defer srv.Close()

	repo := &memRepo{items: make(map[string]*news.Item)}
	svc := news.NewService(repo, &fakeEmbedder{}, 0)
	c := New(svc, Config{FeedURL: srv.URL})

	inserted, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, inserted, "untitled rows are skipped")

	// Same feed again: nothing new.
	inserted, err = c.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, inserted)

	for _, item := range repo.items {
		assert.Equal(t, "cryptocompare", item.Source)
		assert.Equal(t, news.ContentHash(item.Content), item.ID)
	}
}

func TestRun_RespectsLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(feedPayload))
	}))
	defer srv.Close()

	repo := &memRepo{items: make(map[string]*news.Item)}
	svc := news.NewService(repo, &fakeEmbedder{}, 0)
	c := New(svc, Config{FeedURL: srv.URL, Limit: 1})

	inserted, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)
}

func TestRun_UpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	repo := &memRepo{items: make(map[string]*news.Item)}
	svc := news.NewService(repo, &fakeEmbedder{}, 0)
	c := New(svc, Config{FeedURL: srv.URL})

	_, err := c.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}
