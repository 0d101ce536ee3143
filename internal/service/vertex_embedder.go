package service

import (
	"context"
	"fmt"

	aiplatform "cloud.google.com/go/aiplatform/apiv1"
	"cloud.google.com/go/aiplatform/apiv1/aiplatformpb"
	"google.golang.org/api/option"
	"google.golang.org/protobuf/types/known/structpb"
)

// vertexMaxInstances is the per-request instance limit of the text embedding models.
const vertexMaxInstances = 250

// VertexConfig selects the Vertex AI project, region and model.
type VertexConfig struct {
	ProjectID       string
	Location        string
	Model           string // e.g. "text-embedding-005"
	CredentialsFile string // optional; falls back to application default credentials
}

// VertexEmbedder uses a Vertex AI text-embedding model to generate embeddings
type VertexEmbedder struct {
	client    *aiplatform.PredictionClient
	modelName string
}

// NewVertexEmbedder creates a new embedder against the regional prediction endpoint.
func NewVertexEmbedder(ctx context.Context, cfg VertexConfig) (*VertexEmbedder, error) {
	location := cfg.Location
	if location == "" {
		location = "us-central1"
	}

	opts := []option.ClientOption{
		option.WithEndpoint(fmt.Sprintf("%s-aiplatform.googleapis.com:443", location)),
	}
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := aiplatform.NewPredictionClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vertex AI client: %w", err)
	}

	modelName := fmt.Sprintf("projects/%s/locations/%s/publishers/google/models/%s", cfg.ProjectID, location, cfg.Model)

	return &VertexEmbedder{
		client:    client,
		modelName: modelName,
	}, nil
}

// Embed generates an embedding vector for a single input text
func (v *VertexEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := v.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch encodes texts with task_type = "SEMANTIC_SIMILARITY" so documents
// and queries live in the same space. Large inputs are sent in several requests.
func (v *VertexEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += vertexMaxInstances {
		end := min(start+vertexMaxInstances, len(texts))
		vecs, err := v.predict(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vecs...)
	}
	return out, nil
}

func (v *VertexEmbedder) predict(ctx context.Context, texts []string) ([][]float32, error) {
	instances := make([]*structpb.Value, len(texts))
	for i, text := range texts {
		instance, err := structpb.NewStruct(map[string]interface{}{
			"content":   text,
			"task_type": "SEMANTIC_SIMILARITY",
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create instance: %w", err)
		}
		instances[i] = structpb.NewStructValue(instance)
	}

	resp, err := v.client.Predict(ctx, &aiplatformpb.PredictRequest{
		Endpoint:  v.modelName,
		Instances: instances,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction: %w", err)
	}
	if len(resp.Predictions) != len(texts) {
		return nil, fmt.Errorf("expected %d predictions, got %d", len(texts), len(resp.Predictions))
	}

	out := make([][]float32, len(resp.Predictions))
	for i, p := range resp.Predictions {
		embeddings := p.GetStructValue().GetFields()["embeddings"].GetStructValue()
		values := embeddings.GetFields()["values"].GetListValue().GetValues()
		if len(values) == 0 {
			return nil, fmt.Errorf("prediction %d has no embedding values", i)
		}

		vec := make([]float32, len(values))
		for j, val := range values {
			vec[j] = float32(val.GetNumberValue())
		}
		out[i] = vec
	}
	return out, nil
}

// Close releases the Vertex AI client resources
func (v *VertexEmbedder) Close() error {
	return v.client.Close()
}
