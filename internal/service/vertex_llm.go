package service

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/option"
)

// LLM defines the interface for language model interactions
type LLM interface {
	// GenerateResponse answers prompt under the given system instruction.
	GenerateResponse(ctx context.Context, system, prompt string) (string, error)
}

// answerTemperature keeps grounded answers close to deterministic.
const answerTemperature = 0.2

// VertexLLM implements the LLM interface using Google's Vertex AI
type VertexLLM struct {
	client    *genai.Client
	modelName string
}

// NewVertexLLM creates a new Vertex AI LLM client
func NewVertexLLM(ctx context.Context, projectID, location, modelName, credentialsFile string) (*VertexLLM, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := genai.NewClient(ctx, projectID, location, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vertex AI client: %w", err)
	}

	return &VertexLLM{
		client:    client,
		modelName: modelName,
	}, nil
}

// GenerateResponse generates a response using the Vertex AI model.
// A fresh GenerativeModel handle is built per call so concurrent requests never
// share a mutable system instruction.
func (l *VertexLLM) GenerateResponse(ctx context.Context, system, prompt string) (string, error) {
	model := l.client.GenerativeModel(l.modelName)
	model.SetTemperature(answerTemperature)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no response generated")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("unexpected response type")
	}
	return sb.String(), nil
}

// Close closes the Vertex AI client
func (l *VertexLLM) Close() error {
	return l.client.Close()
}
