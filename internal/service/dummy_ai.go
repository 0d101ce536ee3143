package service

import (
	"context"
	"strings"
)

type dummyLLM struct{}

// GenerateResponse echoes the first context line so the full pipeline can be
// exercised without credentials.
func (d dummyLLM) GenerateResponse(_ context.Context, _ string, prompt string) (string, error) {
	ctxText, _, _ := strings.Cut(strings.TrimPrefix(prompt, "Blog Context:\n"), "\n")
	return "[offline assistant] The post says: " + strings.TrimSpace(ctxText), nil
}

// NewDummyLLM returns an LLM that never calls the network.
func NewDummyLLM() LLM {
	return dummyLLM{}
}
