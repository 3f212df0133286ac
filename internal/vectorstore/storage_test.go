package vectorstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragchat/internal/vectorstore/chromem"
	"ragchat/internal/vectorstore/memory"
)

type nopEmbedder struct{}

func (nopEmbedder) Name() string   { return "nop" }
func (nopEmbedder) Dimension() int { return 2 }
func (nopEmbedder) Embed(context.Context, string) ([]float32, error) {
	return []float32{1, 0}, nil
}

func TestOpen(t *testing.T) {
	st, err := Open(Config{Type: "memory"}, nopEmbedder{})
	require.NoError(t, err)
	assert.IsType(t, &memory.Storage{}, st)

	st, err = Open(Config{Path: t.TempDir()}, nopEmbedder{})
	require.NoError(t, err)
	assert.IsType(t, &chromem.Storage{}, st)

	_, err = Open(Config{Type: "qdrant"}, nopEmbedder{})
	assert.Error(t, err)
}
