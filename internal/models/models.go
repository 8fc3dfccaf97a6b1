package models

// Chunk represents a parsed chunk with metadata
type Chunk struct {
	Content    string
	PageNumber int
	ChunkID    int
}

// SearchResult is one retrieval hit, mapped back from the vector index.
type SearchResult struct {
	Text    string  `json:"text"`
	Page    int     `json:"page"`
	ChunkID string  `json:"chunk_id"`
	Score   float64 `json:"score"`
}
