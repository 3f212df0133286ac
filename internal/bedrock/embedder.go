package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

const (
	DefaultEmbeddingModel     = "amazon.titan-embed-text-v2:0"
	DefaultEmbeddingDimension = 1024
)

// InvokeModelAPI is the part of the Bedrock runtime client used for embeddings.
type InvokeModelAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// EmbedderConfig configures the Titan text embedder.
type EmbedderConfig struct {
	Model     string
	Dimension int
	Normalize bool
}

// Embedder produces Titan text embeddings.
type Embedder struct {
	api       InvokeModelAPI
	model     string
	dimension int
	normalize bool
}

func NewEmbedder(api InvokeModelAPI, cfg EmbedderConfig) *Embedder {
	if cfg.Model == "" {
		cfg.Model = DefaultEmbeddingModel
	}
	if cfg.Dimension <= 0 {
		cfg.Dimension = DefaultEmbeddingDimension
	}
	return &Embedder{api: api, model: cfg.Model, dimension: cfg.Dimension, normalize: cfg.Normalize}
}

// Name returns the identifier of this embedder implementation.
func (e *Embedder) Name() string { return "bedrock" }

// Dimension returns the dimensionality of the produced embedding vectors.
func (e *Embedder) Dimension() int { return e.dimension }

// Embed returns an embedding vector for the given text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(struct {
		InputText  string `json:"inputText"`
		Dimensions int    `json:"dimensions"`
		Normalize  bool   `json:"normalize"`
	}{text, e.dimension, e.normalize})
	if err != nil {
		return nil, err
	}
	out, err := e.api.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(e.model),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return nil, classify(err)
	}
	var resp struct {
		Embedding []float32 `json:"embedding"`
	}
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return nil, fmt.Errorf("decode embedding: %w", err)
	}
	if len(resp.Embedding) == 0 {
		return nil, errors.New("no embedding returned")
	}
	return resp.Embedding, nil
}
