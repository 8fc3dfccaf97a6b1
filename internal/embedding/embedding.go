package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"policy-chatbot/internal/config"
	"policy-chatbot/internal/models"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// ChunkEmbedding pairs a chunk with its vector, ready to be indexed.
type ChunkEmbedding struct {
	Content        string
	Embedding      []float32
	SourceFilename string
	PageNumber     int
	ChunkID        int
}

// NewEmbedder creates the embedder selected by the config provider.
func NewEmbedder(llmConfig *config.LLMConfig) (*embeddings.EmbedderImpl, error) {
	switch llmConfig.Provider {
	case "openai":
		return NewOpenAIEmbedder(llmConfig)
	case "ollama", "":
		return NewOllamaEmbedder(llmConfig)
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", llmConfig.Provider)
	}
}

// NewOllamaEmbedder creates an embedder backed by a local ollama server.
func NewOllamaEmbedder(llmConfig *config.LLMConfig) (*embeddings.EmbedderImpl, error) {
	log.Debug().
		Str("base_url", llmConfig.BaseURL).
		Str("embedding_model", llmConfig.Model).
		Msg("Initializing ollama embedder")

	llm, err := ollama.New(
		ollama.WithServerURL(llmConfig.BaseURL),
		ollama.WithModel(llmConfig.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("initializing ollama LLM: %w", err)
	}
	return embeddings.NewEmbedder(llm)
}

// NewOpenAIEmbedder creates an embedder backed by an OpenAI-compatible API.
func NewOpenAIEmbedder(llmConfig *config.LLMConfig) (*embeddings.EmbedderImpl, error) {
	log.Debug().
		Str("base_url", llmConfig.BaseURL).
		Str("embedding_model", llmConfig.Model).
		Msg("Initializing openai embedder")

	llm, err := openai.New(
		openai.WithBaseURL(llmConfig.BaseURL),
		openai.WithToken(strings.TrimPrefix(llmConfig.Key, "Bearer ")),
		openai.WithModel(llmConfig.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("initializing openai LLM: %w", err)
	}
	return embeddings.NewEmbedder(llm)
}

// GenerateEmbeddings computes a vector for every chunk of the given file.
func GenerateEmbeddings(ctx context.Context, embedder embeddings.Embedder, filename string, chunks []models.Chunk) ([]ChunkEmbedding, error) {
	if len(chunks) == 0 {
		log.Info().Str("file", filename).Msg("No chunks generated from content")
		return nil, nil
	}

	var chunkEmbeddings []ChunkEmbedding
	for _, chunk := range chunks {
		vector, err := embedder.EmbedQuery(ctx, chunk.Content)
		if err != nil {
			return nil, fmt.Errorf("embedding chunk p%d_c%d: %w", chunk.PageNumber, chunk.ChunkID, err)
		}
		chunkEmbeddings = append(chunkEmbeddings, ChunkEmbedding{
			Content:        chunk.Content,
			Embedding:      vector,
			SourceFilename: filename,
			PageNumber:     chunk.PageNumber,
			ChunkID:        chunk.ChunkID,
		})
	}

	return chunkEmbeddings, nil
}
