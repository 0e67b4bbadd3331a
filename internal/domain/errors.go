package domain

import "errors"

var (
	// ErrEmbeddingProvider signals an embedding provider failure.
	ErrEmbeddingProvider = errors.New("embedding provider error")
	// ErrChatProvider signals a chat completion provider failure.
	ErrChatProvider = errors.New("chat provider error")
	// ErrVectorStore signals a vector store failure.
	ErrVectorStore = errors.New("vector store error")
	// ErrMissingContent signals a retrieved record without a content field.
	ErrMissingContent = errors.New("missing content field")
)
