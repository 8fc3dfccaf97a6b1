package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policy-chatbot/internal/chatbot"
	"policy-chatbot/internal/chromemdb"
	"policy-chatbot/internal/config"
	"policy-chatbot/internal/dto"
	"policy-chatbot/internal/ingest"
	"policy-chatbot/internal/memory"
	"policy-chatbot/internal/retriever"
	"policy-chatbot/internal/testutil"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := &config.Config{
		Port:     "8000",
		DataDir:  t.TempDir(),
		IndexDir: t.TempDir(),
		RAG:      config.RAGConfig{ChunkSize: 200, ChunkOverlap: 40, TopK: 3},
	}

	store, err := chromemdb.NewVectorDBManager("", chromemdb.DefaultCollection, true)
	require.NoError(t, err)
	embedder := testutil.NewFakeEmbedder("budget", "roads", "tax")

	ingestor := ingest.NewIngestor(cfg, embedder, store)
	ret := retriever.NewRetriever(store, embedder, cfg.RAG.TopK)
	bot := chatbot.NewChatbot(ret, memory.NewConversationMemory(), &cfg.InferLLM)

	return New(cfg, ingestor, bot)
}

func postJSON(t *testing.T, s *Server, path string, body any) *http.Response {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()

	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func ingestFixture(t *testing.T, s *Server) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "policy.txt")
	require.NoError(t, os.WriteFile(path, []byte("Budget is $5M for roads. Tax exemptions apply to charities."), 0o644))

	resp := postJSON(t, s, "/ingest", dto.IngestRequest{PDFPath: path})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[dto.IngestResponse](t, resp)
	require.Greater(t, body.Chunks, 0)
}

func TestAskBeforeIngest(t *testing.T) {
	s := newTestServer(t)

	resp := postJSON(t, s, "/ask", dto.AskRequest{SessionID: "s1", Question: "anything?"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decode[dto.ErrorResponse](t, resp)
	assert.Contains(t, body.Error, "index not found")
}

func TestAskValidation(t *testing.T) {
	s := newTestServer(t)

	resp := postJSON(t, s, "/ask", dto.AskRequest{Question: "no session"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, s, "/ask", dto.AskRequest{SessionID: "s1", Question: "   "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestIngestValidation(t *testing.T) {
	s := newTestServer(t)

	resp := postJSON(t, s, "/ingest", dto.IngestRequest{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, s, "/ingest", dto.IngestRequest{PDFPath: "/does/not/exist.pdf"})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestUploadRejectsNonPDF(t *testing.T) {
	s := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, err = io.Copy(fw, strings.NewReader("plain text"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload_pdf", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decode[dto.ErrorResponse](t, resp)
	assert.Contains(t, body.Error, "only PDF files are supported")
}

func TestUploadRequiresFileField(t *testing.T) {
	s := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload_pdf", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAskExtractiveFlow(t *testing.T) {
	s := newTestServer(t)
	ingestFixture(t, s)

	resp := postJSON(t, s, "/ask", dto.AskRequest{
		SessionID: "s1",
		Question:  "What is the budget for roads?",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[dto.AskResponse](t, resp)
	assert.Contains(t, body.Answer, "$5M for roads")
	require.NotEmpty(t, body.Results)
	assert.Equal(t, 1, body.Results[0].Page)
	assert.LessOrEqual(t, len(body.Results), 3)
}

func TestAskLLMModeWithoutKey(t *testing.T) {
	s := newTestServer(t)
	ingestFixture(t, s)

	resp := postJSON(t, s, "/ask", dto.AskRequest{
		SessionID: "s1",
		Question:  "What is the budget for roads?",
		UseLLM:    true,
	})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	body := decode[dto.ErrorResponse](t, resp)
	assert.Contains(t, body.Error, "LLM_API_KEY")
}
