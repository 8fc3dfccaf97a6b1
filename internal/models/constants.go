package models

const (
	SystemPrompt = "You are a helpful assistant."

	// NoResultsAnswer is returned when retrieval comes back empty.
	NoResultsAnswer = "No relevant information found in the document."
)

var (
	SummaryPromptTemplate = `You are a financial policy assistant.
Use the context below to answer the user's question.
Always cite page numbers when relevant.

Context:
%s

Question: %s
Answer:
`
)
