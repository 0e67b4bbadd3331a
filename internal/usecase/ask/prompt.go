package ask

import (
	"strings"

	"github.com/kailas-cloud/ragquery/internal/domain"
)

const systemPrompt = "You answer users questions."

const answerInstruction = "You are an assistant that can answer user questions given provided context. " +
	"Provide a conversational answer. " +
	"If you don't know the answer, or no documents are provided, " +
	"say 'I do not have enough context to answer the question.'"

// buildUserPrompt assembles the augmented prompt: the instruction, the
// verbatim question, then every retrieved document in rank order. With
// no documents the context section is empty and the instruction tells
// the model to say it cannot answer.
func buildUserPrompt(question string, docs []domain.Document) string {
	var b strings.Builder
	b.WriteString(answerInstruction)
	b.WriteString("User question: ")
	b.WriteString(question)
	b.WriteString("\n\nRetrieved documents to use as context:\n\n ")
	for _, doc := range docs {
		b.WriteString("Document: \n\n")
		b.WriteString(doc.Content)
		b.WriteString("\n\n")
	}
	return b.String()
}
