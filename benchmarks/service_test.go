package benchmarks

import (
	"context"
	"testing"

	"github.com/randalmurphal/blockmentor/pkg/blockmentor"
	"github.com/randalmurphal/blockmentor/pkg/blockmentor/cache"
	"github.com/randalmurphal/blockmentor/pkg/blockmentor/llm"
	"github.com/randalmurphal/blockmentor/pkg/blockmentor/retrieval"
)

const reply = `{"algorithm": "1. Move forward", "response": "What are you drawing?"}`

// BenchmarkDescribe_CacheHit measures a describe answered from the cache.
func BenchmarkDescribe_CacheHit(b *testing.B) {
	svc := blockmentor.New(
		blockmentor.WithReasoningLLM(llm.NewMockClient(reply), "mock"),
		blockmentor.WithCache(cache.NewMemoryStore()),
	)
	defer svc.Close()
	code := string(buildProject(50))
	ctx := context.Background()
	if _, err := svc.Describe(ctx, code); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = svc.Describe(ctx, code)
	}
}

// BenchmarkDescribe_NoCache measures conversion, prompt building and a
// mock model call.
func BenchmarkDescribe_NoCache(b *testing.B) {
	svc := blockmentor.New(blockmentor.WithReasoningLLM(llm.NewMockClient(reply), "mock"))
	code := string(buildProject(50))
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = svc.Describe(ctx, code)
	}
}

// BenchmarkChat measures prompt assembly for a ten turn conversation.
func BenchmarkChat(b *testing.B) {
	svc := blockmentor.New(
		blockmentor.WithChatLLM(llm.NewMockClient("Try a repeat block."), "mock"),
		blockmentor.WithRetriever(retrieval.Static("Repeat runs its body a number of times.")),
	)
	var history []blockmentor.Message
	for i := 0; i < 5; i++ {
		history = append(history,
			blockmentor.Message{Role: "user", Content: "How do I draw a square?"},
			blockmentor.Message{Role: "code", Content: "What have you tried so far?"},
		)
	}
	req := blockmentor.ChatRequest{Query: "I used four forward blocks", Mentor: "code", Messages: history}
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = svc.Chat(ctx, req)
	}
}
