package ask

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/ragquery/internal/domain"
)

// --- Mocks ---

type mockEmbedder struct {
	vec      []float32
	err      error
	lastText string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.lastText = text
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec}, nil
}

type mockRetriever struct {
	docs      []domain.Document
	err       error
	lastVec   []float32
	lastLimit int
	called    bool
}

func (m *mockRetriever) Find(_ context.Context, vector []float32, limit int) ([]domain.Document, error) {
	m.called = true
	m.lastVec = vector
	m.lastLimit = limit
	return m.docs, m.err
}

type mockCompleter struct {
	answer     string
	err        error
	lastSystem string
	lastUser   string
	called     bool
}

func (m *mockCompleter) Complete(_ context.Context, system, user string) (domain.ChatResult, error) {
	m.called = true
	m.lastSystem = system
	m.lastUser = user
	if m.err != nil {
		return domain.ChatResult{}, m.err
	}
	return domain.ChatResult{Content: m.answer}, nil
}

func docs(contents ...string) []domain.Document {
	out := make([]domain.Document, len(contents))
	for i, c := range contents {
		out[i] = domain.Document{Content: c}
	}
	return out
}

// --- Tests ---

func TestAsk_PipesStagesInOrder(t *testing.T) {
	embed := &mockEmbedder{vec: []float32{0.1, 0.2, 0.3}}
	retrieve := &mockRetriever{docs: docs("alpha", "beta")}
	complete := &mockCompleter{answer: "the answer"}
	svc := New(embed, retrieve, complete, 5)

	res, err := svc.Ask(context.Background(), "what is alpha?")
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}

	if embed.lastText != "what is alpha?" {
		t.Errorf("embedder got %q", embed.lastText)
	}
	if retrieve.lastLimit != 5 {
		t.Errorf("retrieve limit = %d, expected 5", retrieve.lastLimit)
	}
	if len(retrieve.lastVec) != 3 || retrieve.lastVec[0] != 0.1 {
		t.Errorf("retriever got vector %v", retrieve.lastVec)
	}
	if complete.lastSystem != "You answer users questions." {
		t.Errorf("system prompt = %q", complete.lastSystem)
	}
	if res.Answer != "the answer" {
		t.Errorf("answer = %q", res.Answer)
	}
	if len(res.Documents) != 2 {
		t.Errorf("expected 2 documents in result, got %d", len(res.Documents))
	}
}

func TestAsk_EmbedErrorStopsPipeline(t *testing.T) {
	boom := errors.New("provider down")
	embed := &mockEmbedder{err: boom}
	retrieve := &mockRetriever{}
	complete := &mockCompleter{}
	svc := New(embed, retrieve, complete, 5)

	_, err := svc.Ask(context.Background(), "q")
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped embed error, got %v", err)
	}
	if retrieve.called {
		t.Error("retriever must not be called after embed failure")
	}
	if complete.called {
		t.Error("completer must not be called after embed failure")
	}
}

func TestAsk_RetrieveErrorStopsPipeline(t *testing.T) {
	boom := errors.New("store down")
	embed := &mockEmbedder{vec: []float32{0.1}}
	retrieve := &mockRetriever{err: boom}
	complete := &mockCompleter{}
	svc := New(embed, retrieve, complete, 5)

	_, err := svc.Ask(context.Background(), "q")
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped retrieve error, got %v", err)
	}
	if complete.called {
		t.Error("completer must not be called after retrieve failure")
	}
}

func TestAsk_CompleteErrorPropagates(t *testing.T) {
	boom := errors.New("chat down")
	svc := New(
		&mockEmbedder{vec: []float32{0.1}},
		&mockRetriever{docs: docs("a")},
		&mockCompleter{err: boom},
		5,
	)

	_, err := svc.Ask(context.Background(), "q")
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped complete error, got %v", err)
	}
}

func TestAsk_ZeroDocumentsStillCompletes(t *testing.T) {
	embed := &mockEmbedder{vec: []float32{0.1}}
	retrieve := &mockRetriever{docs: nil}
	complete := &mockCompleter{answer: "I do not have enough context to answer the question."}
	svc := New(embed, retrieve, complete, 5)

	res, err := svc.Ask(context.Background(), "q")
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if !complete.called {
		t.Fatal("completer must still run with zero documents")
	}
	if !strings.Contains(complete.lastUser, "q") {
		t.Error("prompt must contain the question even without documents")
	}
	if len(res.Documents) != 0 {
		t.Errorf("expected no documents, got %d", len(res.Documents))
	}
}

func TestBuildUserPrompt_DocumentBlocksInOrder(t *testing.T) {
	prompt := buildUserPrompt("what?", docs("A", "B"))

	first := strings.Index(prompt, "Document: \n\nA")
	second := strings.Index(prompt, "Document: \n\nB")
	if first < 0 {
		t.Fatal("prompt missing block for document A")
	}
	if second < 0 {
		t.Fatal("prompt missing block for document B")
	}
	if second < first {
		t.Error("document blocks out of order")
	}
	if !strings.Contains(prompt, "User question: what?") {
		t.Error("prompt missing verbatim question")
	}
}

func TestBuildUserPrompt_EmptyDocuments(t *testing.T) {
	prompt := buildUserPrompt("anything", nil)

	if !strings.Contains(prompt, "User question: anything") {
		t.Error("prompt missing question")
	}
	if strings.Contains(prompt, "Document: ") {
		t.Error("prompt must not contain document blocks")
	}
	if !strings.HasSuffix(prompt, "Retrieved documents to use as context:\n\n ") {
		t.Errorf("unexpected prompt tail: %q", prompt[len(prompt)-60:])
	}
}
