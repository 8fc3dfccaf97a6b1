package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"

	"policy-chatbot/internal/chromemdb"
	"policy-chatbot/internal/config"
	"policy-chatbot/internal/embedding"
	"policy-chatbot/internal/helper"
	"policy-chatbot/internal/parser"
)

// Ingestor runs the upload pipeline: parse -> chunk -> embed -> index.
// A single-writer mutex serializes concurrent uploads racing on the index.
type Ingestor struct {
	cfg      *config.Config
	embedder embeddings.Embedder
	store    *chromemdb.VectorDBManager

	mu sync.Mutex
}

func NewIngestor(cfg *config.Config, embedder embeddings.Embedder, store *chromemdb.VectorDBManager) *Ingestor {
	return &Ingestor{cfg: cfg, embedder: embedder, store: store}
}

// IngestFile indexes the document at path, replacing whatever was indexed
// before. It returns the number of chunks written. A file with no
// extractable text yields zero chunks and leaves the index untouched.
func (in *Ingestor) IngestFile(ctx context.Context, path string) (int, error) {
	in.mu.Lock()
	defer in.mu.Unlock()

	chunks, err := parser.Parse(path, in.cfg)
	if err != nil {
		return 0, fmt.Errorf("parsing document: %w", err)
	}
	if len(chunks) == 0 {
		log.Warn().Str("file", path).Msg("No extractable text, index not updated")
		return 0, nil
	}

	filename := filepath.Base(path)
	chunkEmbeddings, err := embedding.GenerateEmbeddings(ctx, in.embedder, filename, chunks)
	if err != nil {
		return 0, fmt.Errorf("generating embeddings: %w", err)
	}

	docID, err := helper.GenerateUUID()
	if err != nil {
		return 0, err
	}

	docs := make([]chromem.Document, len(chunkEmbeddings))
	for i, ce := range chunkEmbeddings {
		docs[i] = chromem.Document{
			ID:        fmt.Sprintf("%s-p%d-c%d", docID, ce.PageNumber, ce.ChunkID),
			Content:   ce.Content,
			Embedding: ce.Embedding,
			Metadata: map[string]string{
				"source":   ce.SourceFilename,
				"page":     strconv.Itoa(ce.PageNumber),
				"chunk_id": fmt.Sprintf("p%d_c%d", ce.PageNumber, ce.ChunkID),
			},
		}
	}

	if err := in.store.Reset(); err != nil {
		return 0, fmt.Errorf("resetting index: %w", err)
	}
	if err := in.store.AddDocuments(ctx, docs); err != nil {
		return 0, fmt.Errorf("indexing document: %w", err)
	}

	log.Info().Str("file", filename).Int("chunks", len(docs)).Msg("Document ingested")
	return len(docs), nil
}
