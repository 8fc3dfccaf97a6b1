package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"

	"policy-chatbot/internal/config"
	"policy-chatbot/internal/models"
)

// GenerateContent performs a single synchronous chat completion against an
// OpenAI-compatible endpoint. No retry or fallback: failures surface to the
// caller.
func GenerateContent(ctx context.Context, llmConfig *config.LLMConfig, messages []llms.MessageContent) (*llms.ContentResponse, error) {
	if llmConfig.Key == "" {
		return nil, fmt.Errorf("LLM_API_KEY is not set, cannot use LLM mode")
	}

	log.Debug().
		Str("base_url", llmConfig.BaseURL).
		Str("model", llmConfig.Model).
		Msg("Generating content")

	client, err := openai.New(
		openai.WithBaseURL(llmConfig.BaseURL),
		openai.WithToken(strings.TrimPrefix(llmConfig.Key, "Bearer ")),
		openai.WithModel(llmConfig.Model),
	)
	if err != nil {
		return nil, err
	}

	return client.GenerateContent(ctx, messages,
		llms.WithMaxTokens(512),
		llms.WithTemperature(0.7),
	)
}

// Summarize asks the model to answer the question from the retrieved
// snippets, citing page numbers.
func Summarize(ctx context.Context, llmConfig *config.LLMConfig, question string, results []models.SearchResult) (string, error) {
	prompt := buildPrompt(question, results)

	messages := []llms.MessageContent{
		{
			Role:  schema.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextContent{Text: models.SystemPrompt}},
		},
		{
			Role:  schema.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextContent{Text: prompt}},
		},
	}

	res, err := GenerateContent(ctx, llmConfig, messages)
	if err != nil {
		return "", err
	}
	if len(res.Choices) == 0 {
		return "", fmt.Errorf("LLM returned no choices")
	}
	return res.Choices[0].Content, nil
}

func buildPrompt(question string, results []models.SearchResult) string {
	snippets := make([]string, 0, len(results))
	for _, r := range results {
		snippets = append(snippets, fmt.Sprintf("(Page %d) %s", r.Page, r.Text))
	}
	return fmt.Sprintf(models.SummaryPromptTemplate, strings.Join(snippets, "\n\n"), question)
}
