package chromemdb

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/philippgille/chromem-go"
)

// DefaultCollection is the single collection holding the active document.
const DefaultCollection = "policy_docs"

const compress = false

// VectorDBManager encapsulates the chromem-go database operations. The
// persistent variant keeps the index and the chunk metadata together in
// chromem's own on-disk format under dbPath. Reset swaps the collection
// pointer, so all access to it goes through the RWMutex: queries may run
// while an upload rebuilds the index.
type VectorDBManager struct {
	db             *chromem.DB
	collectionName string

	mu         sync.RWMutex
	collection *chromem.Collection
}

// NewVectorDBManager initializes a new vector database manager
func NewVectorDBManager(dbPath, collectionName string, inMemory bool) (*VectorDBManager, error) {
	var db *chromem.DB
	var err error
	if inMemory {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(dbPath, compress)
		if err != nil {
			return nil, fmt.Errorf("failed to create database: %v", err)
		}
	}

	m := &VectorDBManager{
		db:             db,
		collectionName: collectionName,
	}
	if err := m.getOrCreateCollection(); err != nil {
		return nil, err
	}
	return m, nil
}

// caller must hold mu for writing (or own the manager exclusively)
func (m *VectorDBManager) getOrCreateCollection() error {
	c, err := m.db.GetOrCreateCollection(m.collectionName, nil, nil)
	if err != nil {
		return fmt.Errorf("failed to create/get collection: %v", err)
	}
	m.collection = c
	return nil
}

func (m *VectorDBManager) coll() *chromem.Collection {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.collection
}

// Reset drops and recreates the collection. Re-ingestion replaces the whole
// index rather than appending to the previous document's chunks.
func (m *VectorDBManager) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.db.DeleteCollection(m.collectionName); err != nil {
		return fmt.Errorf("failed to drop collection: %v", err)
	}
	return m.getOrCreateCollection()
}

// AddDocuments indexes documents carrying precomputed embeddings.
func (m *VectorDBManager) AddDocuments(ctx context.Context, documents []chromem.Document) error {
	if len(documents) == 0 {
		return nil
	}
	if err := m.coll().AddDocuments(ctx, documents, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add documents: %v", err)
	}
	return nil
}

// Count returns the number of indexed chunks.
func (m *VectorDBManager) Count() int {
	return m.coll().Count()
}

// Search performs a nearest-neighbor query with a precomputed embedding.
// topK is clamped to the collection size; an empty collection yields an
// empty result, not an error.
func (m *VectorDBManager) Search(ctx context.Context, queryEmbedding []float32, topK int) ([]chromem.Result, error) {
	if queryEmbedding == nil {
		return nil, fmt.Errorf("query embedding must be provided")
	}

	c := m.coll()
	count := c.Count()
	if count == 0 {
		return nil, nil
	}
	if topK > count {
		topK = count
	}

	results, err := c.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: queryEmbedding,
		NResults:       topK,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %v", err)
	}
	return results, nil
}
