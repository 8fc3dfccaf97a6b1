package testutil

import (
	"context"
	"math"
	"strings"
)

// FakeEmbedder maps text onto keyword-count vectors so retrieval tests run
// deterministically without a model server. It satisfies the langchaingo
// embeddings.Embedder interface.
type FakeEmbedder struct {
	vocabulary []string
}

func NewFakeEmbedder(vocabulary ...string) *FakeEmbedder {
	return &FakeEmbedder{vocabulary: vocabulary}
}

func (e *FakeEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	lower := strings.ToLower(text)
	// trailing bias component keeps vectors non-zero for cosine similarity
	vec := make([]float32, len(e.vocabulary)+1)
	for i, word := range e.vocabulary {
		vec[i] = float32(strings.Count(lower, word))
	}
	vec[len(e.vocabulary)] = 0.1
	return normalize(vec), nil
}

func (e *FakeEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.EmbedQuery(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = vec
	}
	return vectors, nil
}

func normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	norm := float32(math.Sqrt(sum))
	if norm == 0 {
		return vec
	}
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}
