package server

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"policy-chatbot/internal/chatbot"
	"policy-chatbot/internal/config"
	"policy-chatbot/internal/dto"
	"policy-chatbot/internal/helper"
	"policy-chatbot/internal/ingest"
)

// Server exposes the upload and ask operations over HTTP. Each handler is a
// thin adapter: parse request, call the pipeline, serialize the response.
type Server struct {
	app      *fiber.App
	cfg      *config.Config
	ingestor *ingest.Ingestor
	bot      *chatbot.Chatbot
}

func New(cfg *config.Config, ingestor *ingest.Ingestor, bot *chatbot.Chatbot) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit:    50 * 1024 * 1024, // PDFs
		ErrorHandler: errorHandler,
	})

	s := &Server{
		app:      app,
		cfg:      cfg,
		ingestor: ingestor,
		bot:      bot,
	}

	app.Post("/upload_pdf", s.UploadPDF)
	app.Post("/ingest", s.Ingest)
	app.Post("/ask", s.Ask)

	return s
}

// App exposes the fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	log.Info().Str("port", s.cfg.Port).Msg("Server listening")
	return s.app.Listen(":" + s.cfg.Port)
}

func errorHandler(ctx *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", ctx.Path()).Msg("Request failed")
	} else {
		log.Warn().Err(err).Str("path", ctx.Path()).Msg("Rejected request")
	}
	return ctx.Status(code).JSON(dto.ErrorResponse{Error: err.Error()})
}

// UploadPDF accepts a multipart PDF upload, saves it under the data
// directory and rebuilds the index from it.
func (s *Server) UploadPDF(ctx *fiber.Ctx) error {
	file, err := ctx.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "missing file field in multipart form")
	}
	if !strings.EqualFold(filepath.Ext(file.Filename), ".pdf") {
		return fiber.NewError(fiber.StatusBadRequest, "only PDF files are supported")
	}

	if err := helper.CreateFolder(s.cfg.DataDir); err != nil {
		return err
	}
	savePath := filepath.Join(s.cfg.DataDir, filepath.Base(file.Filename))
	if err := ctx.SaveFile(file, savePath); err != nil {
		return err
	}

	chunks, err := s.ingestor.IngestFile(ctx.Context(), savePath)
	if err != nil {
		return err
	}
	if chunks == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no extractable text in PDF")
	}

	return ctx.JSON(dto.UploadResponse{
		Message: "PDF uploaded and ingested successfully!",
		Chunks:  chunks,
	})
}

// Ingest indexes a document already on the server's filesystem.
func (s *Server) Ingest(ctx *fiber.Ctx) error {
	var req dto.IngestRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.PDFPath == "" {
		return fiber.NewError(fiber.StatusBadRequest, "pdf_path is required")
	}

	chunks, err := s.ingestor.IngestFile(ctx.Context(), req.PDFPath)
	if err != nil {
		return err
	}
	if chunks == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no extractable text in the document")
	}

	return ctx.JSON(dto.IngestResponse{
		Chunks:   chunks,
		IndexDir: s.cfg.IndexDir,
	})
}

// Ask answers a question against the indexed document, extractively or via
// LLM summarization.
func (s *Server) Ask(ctx *fiber.Ctx) error {
	var req dto.AskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.SessionID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "session_id is required")
	}
	if strings.TrimSpace(req.Question) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "question is required")
	}
	if !s.bot.Ready() {
		return fiber.NewError(fiber.StatusBadRequest, "index not found, please upload or ingest a PDF first")
	}

	answer, results, err := s.bot.Answer(ctx.Context(), req.SessionID, req.Question, req.TopK, req.UseLLM)
	if err != nil {
		return err
	}

	return ctx.JSON(dto.AskResponse{Answer: answer, Results: results})
}
