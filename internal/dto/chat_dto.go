package dto

import "policy-chatbot/internal/models"

type UploadResponse struct {
	Message string `json:"message"`
	Chunks  int    `json:"chunks"`
}

type IngestRequest struct {
	PDFPath string `json:"pdf_path"`
}

type IngestResponse struct {
	Chunks   int    `json:"chunks"`
	IndexDir string `json:"index_dir"`
}

type AskRequest struct {
	SessionID string `json:"session_id"`
	Question  string `json:"question"`
	TopK      int    `json:"top_k,omitempty"`
	UseLLM    bool   `json:"use_llm"`
}

type AskResponse struct {
	Answer  string                `json:"answer"`
	Results []models.SearchResult `json:"results"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
