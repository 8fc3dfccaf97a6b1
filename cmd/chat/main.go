package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"policy-chatbot/internal/chatbot"
	"policy-chatbot/internal/chromemdb"
	"policy-chatbot/internal/config"
	"policy-chatbot/internal/embedding"
	"policy-chatbot/internal/memory"
	"policy-chatbot/internal/retriever"
)

const configFilePath = "./config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	session := flag.String("session", "default", "Session ID (memory is per-session)")
	topK := flag.Int("top_k", 0, "Number of passages to return (0 uses the configured default)")
	useLLM := flag.Bool("llm", false, "Use LLM for summarization")
	flag.Parse()

	cfg, err := config.Load(configFilePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	store, err := chromemdb.NewVectorDBManager(cfg.IndexDir, chromemdb.DefaultCollection, false)
	if err != nil {
		log.Fatal().Err(err).Msg("Error opening vector database")
	}

	embedder, err := embedding.NewEmbedder(&cfg.EmbedLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	ret := retriever.NewRetriever(store, embedder, cfg.RAG.TopK)
	if !ret.Ready() {
		fmt.Println("No index found. Ingest a PDF through the server first.")
		os.Exit(1)
	}
	bot := chatbot.NewChatbot(ret, memory.NewConversationMemory(), &cfg.InferLLM)

	fmt.Println("Policy Chatbot. Type /exit to quit.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			break
		}
		q := strings.TrimSpace(scanner.Text())
		if q == "" {
			continue
		}
		switch strings.ToLower(q) {
		case "/exit", "exit", "quit":
			return
		}

		answer, _, err := bot.Answer(context.Background(), *session, q, *topK, *useLLM)
		if err != nil {
			fmt.Printf("error: %v\n\n", err)
			continue
		}
		fmt.Printf("\n%s\n\n", answer)
	}
}
