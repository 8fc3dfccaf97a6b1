package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"policy-chatbot/internal/chatbot"
	"policy-chatbot/internal/chromemdb"
	"policy-chatbot/internal/config"
	"policy-chatbot/internal/embedding"
	"policy-chatbot/internal/helper"
	"policy-chatbot/internal/ingest"
	"policy-chatbot/internal/memory"
	"policy-chatbot/internal/retriever"
	"policy-chatbot/internal/server"
)

const configFilePath = "./config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	cfg, err := config.Load(configFilePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}
	log.Debug().Interface("config", cfg.Redacted()).Msg("Loaded config")

	if err := helper.CreateFolder(cfg.IndexDir); err != nil {
		log.Fatal().Err(err).Msg("Error creating index folder")
	}

	store, err := chromemdb.NewVectorDBManager(cfg.IndexDir, chromemdb.DefaultCollection, false)
	if err != nil {
		log.Fatal().Err(err).Msg("Error creating vector database manager")
	}
	if n := store.Count(); n > 0 {
		log.Info().Int("chunks", n).Msg("Loaded existing index")
	}

	embedder, err := embedding.NewEmbedder(&cfg.EmbedLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	ingestor := ingest.NewIngestor(cfg, embedder, store)
	ret := retriever.NewRetriever(store, embedder, cfg.RAG.TopK)
	bot := chatbot.NewChatbot(ret, memory.NewConversationMemory(), &cfg.InferLLM)

	srv := server.New(cfg, ingestor, bot)
	if err := srv.Run(); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}
