package service

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiLLM talks to the Gemini API with an API key.
type GeminiLLM struct {
	client    *genai.Client
	modelName string
}

// NewGeminiLLM creates a Gemini API client for modelName.
func NewGeminiLLM(ctx context.Context, apiKey, modelName string) (*GeminiLLM, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiLLM{client: client, modelName: modelName}, nil
}

func (g *GeminiLLM) GenerateResponse(ctx context.Context, system, prompt string) (string, error) {
	result, err := g.client.Models.GenerateContent(
		ctx,
		g.modelName,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: system}}},
			Temperature:       genai.Ptr[float32](answerTemperature),
		},
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}

	text := result.Text()
	if text == "" {
		return "", fmt.Errorf("no response generated")
	}
	return text, nil
}
