package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"ragchat/internal/domain"
)

const (
	RetrievalToolName = "get_amazon_bedrock_information"
	CosineToolName    = "cosine"

	// DefaultTopK is how many documents the retrieval tool returns.
	DefaultTopK = 4
)

// Retrieval looks up Amazon Bedrock FAQs in a vector collection.
type Retrieval struct {
	collection domain.Collection
	topK       int
}

// NewRetrieval creates the retrieval tool. A non-positive topK uses DefaultTopK.
func NewRetrieval(collection domain.Collection, topK int) *Retrieval {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Retrieval{collection: collection, topK: topK}
}

func (t *Retrieval) Spec() domain.ToolSpec {
	return domain.ToolSpec{
		Name:        RetrievalToolName,
		Description: "Retrieve information about Amazon Bedrock, a managed service for hosting generative AI models.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "The retrieval-augmented generation query used to look up information in a repository of FAQs about Amazon Bedrock.",
				},
			},
			"required": []any{"query"},
		},
	}
}

func (t *Retrieval) Invoke(ctx context.Context, input json.RawMessage) (domain.ToolResultContent, error) {
	args, err := decodeInput(input)
	if err != nil {
		return domain.ToolResultContent{}, err
	}
	query, ok := args["query"].(string)
	if !ok {
		return domain.ToolResultContent{}, fmt.Errorf("%w: %s requires string field \"query\"", domain.ErrInvalidToolInput, RetrievalToolName)
	}
	slog.DebugContext(ctx, "Retrieval query", "collection", t.collection.Name(), "query", query)

	docs, err := t.collection.Query(ctx, query, t.topK)
	if err != nil {
		return domain.ToolResultContent{}, fmt.Errorf("query collection %s: %w", t.collection.Name(), err)
	}
	texts := make([]string, 0, len(docs))
	for _, d := range docs {
		texts = append(texts, d.Content)
	}
	content := strings.Join(texts, "\n\n")
	slog.DebugContext(ctx, "Retrieved content", "documents", len(docs), "bytes", len(content))
	return domain.ToolResultContent{Text: content}, nil
}

// Cosine computes the cosine of a number.
type Cosine struct{}

func NewCosine() Cosine { return Cosine{} }

func (Cosine) Spec() domain.ToolSpec {
	return domain.ToolSpec{
		Name:        CosineToolName,
		Description: "Calculate the cosine of x.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"x": map[string]any{
					"type":        "number",
					"description": "The number to pass to the function.",
				},
			},
			"required": []any{"x"},
		},
	}
}

func (Cosine) Invoke(_ context.Context, input json.RawMessage) (domain.ToolResultContent, error) {
	args, err := decodeInput(input)
	if err != nil {
		return domain.ToolResultContent{}, err
	}
	x, ok := args["x"].(float64)
	if !ok {
		return domain.ToolResultContent{}, fmt.Errorf("%w: %s requires number field \"x\"", domain.ErrInvalidToolInput, CosineToolName)
	}
	return domain.ToolResultContent{JSON: map[string]any{"result": math.Cos(x)}}, nil
}
