package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragchat/internal/config"
	"ragchat/internal/conversation"
	"ragchat/internal/domain"
)

type noRuntime struct{}

func (noRuntime) InvokeModel(context.Context, *bedrockruntime.InvokeModelInput, ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	return nil, errors.New("offline")
}

type scriptedModel struct{ reply string }

func (m scriptedModel) Converse(_ context.Context, req domain.ConverseRequest) (*domain.ConverseResponse, error) {
	return &domain.ConverseResponse{Message: domain.ModelMessage{
		Role:    domain.RoleAssistant,
		Content: []domain.ContentBlock{{Text: m.reply + " " + req.ModelID}},
	}}, nil
}

func loadDefaults(t *testing.T) *config.AppConfig {
	t.Helper()
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	return cfg
}

func TestNewEmbedder(t *testing.T) {
	cfg := loadDefaults(t)

	emb, err := NewEmbedder(cfg, noRuntime{})
	require.NoError(t, err)
	assert.Equal(t, "bedrock", emb.Name())
	assert.Equal(t, 1024, emb.Dimension())

	cfg.Embedder.Type = "openai"
	cfg.Embedder.OpenAI = nil
	_, err = NewEmbedder(cfg, noRuntime{})
	assert.Error(t, err)

	cfg.Embedder.Type = "tfidf"
	_, err = NewEmbedder(cfg, noRuntime{})
	assert.Error(t, err)
}

func TestWiredOrchestrator(t *testing.T) {
	cfg := loadDefaults(t)
	cfg.VectorStore.Type = "memory"
	emb, err := NewEmbedder(cfg, noRuntime{})
	require.NoError(t, err)
	store, err := OpenStore(cfg, emb)
	require.NoError(t, err)
	col, err := store.GetOrCreateCollection(cfg.VectorStore.Collection)
	require.NoError(t, err)

	o, err := NewOrchestrator(cfg, scriptedModel{reply: "hi from"}, col)
	require.NoError(t, err)

	out := o.Chat(context.Background(), conversation.NewHistory(), "hello")
	assert.Equal(t, "hi from "+config.DefaultModelID, out)

	cfg.Chat.UnknownToolPolicy = "explode"
	_, err = NewOrchestrator(cfg, scriptedModel{}, col)
	assert.Error(t, err)
}
