package retriever

import (
	"context"
	"fmt"
	"strconv"

	"github.com/tmc/langchaingo/embeddings"

	"policy-chatbot/internal/chromemdb"
	"policy-chatbot/internal/models"
)

// Retriever embeds a question and maps nearest-neighbor hits back to chunk
// text, page number and similarity score. It must use the same embedding
// model the index was built with.
type Retriever struct {
	store    *chromemdb.VectorDBManager
	embedder embeddings.Embedder
	topK     int
}

func NewRetriever(store *chromemdb.VectorDBManager, embedder embeddings.Embedder, topK int) *Retriever {
	return &Retriever{store: store, embedder: embedder, topK: topK}
}

// Ready reports whether an index has been built yet.
func (r *Retriever) Ready() bool {
	return r.store.Count() > 0
}

// Search returns at most topK chunks ordered by descending similarity.
// topK <= 0 falls back to the configured default. An empty index returns an
// empty result.
func (r *Retriever) Search(ctx context.Context, query string, topK int) ([]models.SearchResult, error) {
	if topK <= 0 {
		topK = r.topK
	}
	if !r.Ready() {
		return nil, nil
	}

	queryEmbedding, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	hits, err := r.store.Search(ctx, queryEmbedding, topK)
	if err != nil {
		return nil, err
	}

	results := make([]models.SearchResult, 0, len(hits))
	for _, hit := range hits {
		page, _ := strconv.Atoi(hit.Metadata["page"])
		results = append(results, models.SearchResult{
			Text:    hit.Content,
			Page:    page,
			ChunkID: hit.Metadata["chunk_id"],
			Score:   float64(hit.Similarity),
		})
	}
	return results, nil
}
