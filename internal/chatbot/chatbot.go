package chatbot

import (
	"context"
	"fmt"
	"strings"

	"policy-chatbot/internal/config"
	"policy-chatbot/internal/llm"
	"policy-chatbot/internal/memory"
	"policy-chatbot/internal/models"
	"policy-chatbot/internal/retriever"
)

const snippetMaxRunes = 300

// AnswerGenerator turns a question and its retrieval results into an answer.
type AnswerGenerator interface {
	Generate(ctx context.Context, question string, results []models.SearchResult) (string, error)
}

// ExtractiveGenerator returns raw snippets with page numbers (default).
// Its output only ever contains verbatim chunk text.
type ExtractiveGenerator struct{}

func (ExtractiveGenerator) Generate(_ context.Context, question string, results []models.SearchResult) (string, error) {
	if len(results) == 0 {
		return models.NoResultsAnswer, nil
	}

	lines := []string{fmt.Sprintf("Q: %s", question), "", "Top matches:"}
	for _, r := range results {
		snippet := strings.ReplaceAll(strings.TrimSpace(r.Text), "\n", " ")
		if runes := []rune(snippet); len(runes) > snippetMaxRunes {
			snippet = string(runes[:snippetMaxRunes]) + "…"
		}
		lines = append(lines, fmt.Sprintf("- (page %d, score %.3f) %s", r.Page, r.Score, snippet))
	}
	return strings.Join(lines, "\n"), nil
}

// LLMGenerator summarizes retrieved results into a natural answer and
// appends a sources footer.
type LLMGenerator struct {
	cfg *config.LLMConfig
}

func NewLLMGenerator(cfg *config.LLMConfig) *LLMGenerator {
	return &LLMGenerator{cfg: cfg}
}

func (g *LLMGenerator) Generate(ctx context.Context, question string, results []models.SearchResult) (string, error) {
	if len(results) == 0 {
		return models.NoResultsAnswer, nil
	}

	summary, err := llm.Summarize(ctx, g.cfg, question, results)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Q: %s\n\n%s\n\n---\nSources:", question, summary)
	for _, r := range results {
		fmt.Fprintf(&sb, "\n- Page %d, score %.3f", r.Page, r.Score)
	}
	return sb.String(), nil
}

// Chatbot wires memory, retrieval and answer generation together. It is
// shared by the HTTP layer and the CLI chat loop.
type Chatbot struct {
	retriever *retriever.Retriever
	memory    *memory.ConversationMemory
	llmCfg    *config.LLMConfig
}

func NewChatbot(r *retriever.Retriever, m *memory.ConversationMemory, llmCfg *config.LLMConfig) *Chatbot {
	return &Chatbot{retriever: r, memory: m, llmCfg: llmCfg}
}

// Ready reports whether a document has been indexed yet.
func (b *Chatbot) Ready() bool {
	return b.retriever.Ready()
}

// Answer contextualizes the question with session memory, retrieves the
// nearest chunks, generates the answer in the requested mode and records
// the turn.
func (b *Chatbot) Answer(ctx context.Context, sessionID, question string, topK int, useLLM bool) (string, []models.SearchResult, error) {
	qCtx := b.memory.Contextualize(sessionID, question)

	results, err := b.retriever.Search(ctx, qCtx, topK)
	if err != nil {
		return "", nil, err
	}

	var generator AnswerGenerator = ExtractiveGenerator{}
	if useLLM {
		generator = NewLLMGenerator(b.llmCfg)
	}

	answer, err := generator.Generate(ctx, question, results)
	if err != nil {
		return "", nil, err
	}

	b.memory.Update(sessionID, question, answer, b.memory.InferTopic(question))
	return answer, results, nil
}
