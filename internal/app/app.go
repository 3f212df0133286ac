package app

import (
	"context"
	"fmt"
	"time"

	"ragchat/internal/bedrock"
	"ragchat/internal/config"
	"ragchat/internal/domain"
	"ragchat/internal/embedding/openai"
	"ragchat/internal/service"
	"ragchat/internal/tools"
	"ragchat/internal/vectorstore"
)

// InvokeModelAPI is implemented by the Bedrock runtime client.
type InvokeModelAPI = bedrock.InvokeModelAPI

// NewEmbedder builds the configured embedder.
func NewEmbedder(cfg *config.AppConfig, runtime InvokeModelAPI) (domain.Embedder, error) {
	switch cfg.Embedder.Type {
	case "bedrock", "":
		bc := cfg.Embedder.Bedrock
		if bc == nil {
			bc = &config.BedrockEmbedderConfig{Normalize: true}
		}
		return bedrock.NewEmbedder(runtime, bedrock.EmbedderConfig{
			Model:     bc.Model,
			Dimension: bc.Dimension,
			Normalize: bc.Normalize,
		}), nil
	case "openai":
		if cfg.Embedder.OpenAI == nil {
			return nil, fmt.Errorf("openai embedder config missing")
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:   cfg.Embedder.OpenAI.BaseURL,
			APIKeyEnv: cfg.Embedder.OpenAI.APIKeyEnv,
			Model:     cfg.Embedder.OpenAI.Model,
			Timeout:   time.Duration(cfg.Embedder.OpenAI.TimeoutSecs) * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("openai embedder init failed: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Embedder.Type)
	}
}

// OpenStore opens the configured vector store.
func OpenStore(cfg *config.AppConfig, emb domain.Embedder) (domain.VectorStore, error) {
	return vectorstore.Open(vectorstore.Config{
		Type:     cfg.VectorStore.Type,
		Path:     cfg.VectorStore.Path,
		Compress: cfg.VectorStore.Compress,
	}, emb)
}

// NewOrchestrator wires the tools over the retrieval collection and the chat model.
func NewOrchestrator(cfg *config.AppConfig, model domain.ChatModel, collection domain.Collection) (*service.Orchestrator, error) {
	policy, err := service.ParseUnknownToolPolicy(cfg.Chat.UnknownToolPolicy)
	if err != nil {
		return nil, err
	}
	registry, err := tools.NewRegistry(
		tools.NewRetrieval(collection, cfg.VectorStore.TopK),
		tools.NewCosine(),
	)
	if err != nil {
		return nil, err
	}
	return service.NewOrchestrator(model, registry, service.Options{
		Settings: service.Settings{
			ModelID: cfg.Chat.ModelID,
			Inference: domain.InferenceConfig{
				MaxTokens:     cfg.Chat.MaxTokens,
				Temperature:   cfg.Chat.Temperature,
				TopP:          cfg.Chat.TopP,
				StopSequences: cfg.Chat.StopSequences,
			},
		},
		MaxMessages:       cfg.Chat.MaxMessages,
		UnknownToolPolicy: policy,
		ToolMarker:        cfg.Chat.ToolMarker,
	}), nil
}

// Runtime builds the Bedrock runtime client for the configured region.
func Runtime(ctx context.Context, cfg *config.AppConfig) (*bedrock.ChatClient, InvokeModelAPI, error) {
	client, err := bedrock.NewRuntimeClient(ctx, cfg.AWS.Region)
	if err != nil {
		return nil, nil, err
	}
	return bedrock.NewChatClient(client), client, nil
}
