package chromemdb

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/philippgille/chromem-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDocs(n int) []chromem.Document {
	docs := make([]chromem.Document, n)
	for i := range docs {
		docs[i] = chromem.Document{
			ID:        fmt.Sprintf("doc-%d", i),
			Content:   fmt.Sprintf("chunk %d", i),
			Embedding: []float32{1, float32(i), 0.5},
			Metadata:  map[string]string{"page": "1", "chunk_id": fmt.Sprintf("p1_c%d", i+1)},
		}
	}
	return docs
}

func TestResetReplacesCollection(t *testing.T) {
	m, err := NewVectorDBManager("", DefaultCollection, true)
	require.NoError(t, err)

	require.NoError(t, m.AddDocuments(context.Background(), testDocs(4)))
	assert.Equal(t, 4, m.Count())

	require.NoError(t, m.Reset())
	assert.Zero(t, m.Count())

	require.NoError(t, m.AddDocuments(context.Background(), testDocs(2)))
	assert.Equal(t, 2, m.Count())
}

// Uploads rebuild the collection while ask handlers keep querying it; both
// must be safe to run at the same time.
func TestConcurrentRebuildAndQuery(t *testing.T) {
	m, err := NewVectorDBManager("", DefaultCollection, true)
	require.NoError(t, err)
	require.NoError(t, m.AddDocuments(context.Background(), testDocs(3)))

	const iterations = 200
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			if err := m.Reset(); err != nil {
				t.Error(err)
				return
			}
			if err := m.AddDocuments(context.Background(), testDocs(3)); err != nil {
				t.Error(err)
				return
			}
		}
	}()

	go func() {
		defer wg.Done()
		query := []float32{1, 0, 0.5}
		for i := 0; i < iterations; i++ {
			_ = m.Count()
			if _, err := m.Search(context.Background(), query, 2); err != nil {
				t.Error(err)
				return
			}
		}
	}()

	wg.Wait()
	assert.Equal(t, 3, m.Count())
}
