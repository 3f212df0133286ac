package domain

import (
	"context"
	"encoding/json"
)

// Role tags a message with its author.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single entry of the chat shown to the user.
type Message struct {
	Role Role
	Text string
}

// ToolUse is a model request to run a named tool. ID correlates the
// request with its ToolResult and must be passed back unchanged.
type ToolUse struct {
	ID    string
	Name  string
	Input json.RawMessage
}

// ToolResultContent holds either text or a JSON object. JSON wins when set.
type ToolResultContent struct {
	Text string
	JSON map[string]any
}

// ToolResult carries the output of a tool back to the model.
type ToolResult struct {
	ToolUseID string
	Content   []ToolResultContent
}

// ContentBlock is one element of a model message. Exactly one field is set.
type ContentBlock struct {
	Text       string
	ToolUse    *ToolUse
	ToolResult *ToolResult
}

// ModelMessage is a message in the shape exchanged with the chat model.
type ModelMessage struct {
	Role    Role
	Content []ContentBlock
}

// FirstText returns the text of the first text block, or "" if none.
func (m ModelMessage) FirstText() string {
	for _, b := range m.Content {
		if b.ToolUse == nil && b.ToolResult == nil {
			return b.Text
		}
	}
	return ""
}

// ToolSpec declares a tool the model may call.
type ToolSpec struct {
	Name        string
	Description string
	InputSchema map[string]any
}

// InferenceConfig holds sampling parameters for a model call.
type InferenceConfig struct {
	MaxTokens     int32
	Temperature   float32
	TopP          float32
	StopSequences []string
}

// ConverseRequest is a single call to the chat model.
type ConverseRequest struct {
	ModelID   string
	Messages  []ModelMessage
	Inference InferenceConfig
	Tools     []ToolSpec
}

// ConverseResponse is the model's reply to a ConverseRequest.
type ConverseResponse struct {
	Message    ModelMessage
	StopReason string
}

// Document is a row stored in a vector collection.
type Document struct {
	ID        string
	Content   string
	Metadata  map[string]string
	Embedding []float32
}

// RetrievedDocument is a document returned by a similarity query.
// Rank starts at 1 for the closest match.
type RetrievedDocument struct {
	ID         string
	Content    string
	Metadata   map[string]string
	Similarity float32
	Rank       int
}

// ChatModel is a hosted LLM that accepts an ordered message history.
type ChatModel interface {
	Converse(ctx context.Context, req ConverseRequest) (*ConverseResponse, error)
}

// Embedder converts free text into a numeric vector representation.
type Embedder interface {
	Name() string
	Dimension() int
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Collection is a named similarity index.
type Collection interface {
	Name() string
	Count() int
	Add(ctx context.Context, docs []Document) error
	Query(ctx context.Context, text string, topK int) ([]RetrievedDocument, error)
}

// VectorStore opens collections by name.
type VectorStore interface {
	// Collection returns an existing collection or ErrCollectionNotFound.
	Collection(name string) (Collection, error)
	GetOrCreateCollection(name string) (Collection, error)
}
