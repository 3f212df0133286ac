package chromem

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragchat/internal/domain"
)

type axisEmbedder struct{}

func (axisEmbedder) Name() string   { return "axis" }
func (axisEmbedder) Dimension() int { return 2 }
func (axisEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if text == "first" {
		return []float32{1, 0}, nil
	}
	return []float32{0, 1}, nil
}

func TestPersistentRoundTrip(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	st, err := NewStorage(Config{Path: dir}, axisEmbedder{})
	require.NoError(t, err)

	_, err = st.Collection("bedrock_faqs_collection")
	require.ErrorIs(t, err, domain.ErrCollectionNotFound)

	col, err := st.GetOrCreateCollection("bedrock_faqs_collection")
	require.NoError(t, err)
	require.NoError(t, col.Add(ctx, []domain.Document{
		{ID: "1", Content: "about the first axis", Embedding: []float32{1, 0}, Metadata: map[string]string{"topic": "x"}},
		{ID: "2", Content: "about the second axis", Embedding: []float32{0, 1}},
	}))
	assert.Equal(t, 2, col.Count())

	reopened, err := NewStorage(Config{Path: dir}, axisEmbedder{})
	require.NoError(t, err)
	col, err = reopened.Collection("bedrock_faqs_collection")
	require.NoError(t, err)
	assert.Equal(t, "bedrock_faqs_collection", col.Name())
	assert.Equal(t, 2, col.Count())

	res, err := col.Query(ctx, "first", 4)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "1", res[0].ID)
	assert.Equal(t, 1, res[0].Rank)
	assert.Equal(t, "x", res[0].Metadata["topic"])
	assert.Equal(t, "2", res[1].ID)
}

func TestQueryEmptyCollection(t *testing.T) {
	st, err := NewStorage(Config{Path: t.TempDir()}, axisEmbedder{})
	require.NoError(t, err)
	col, err := st.GetOrCreateCollection("empty")
	require.NoError(t, err)

	res, err := col.Query(context.Background(), "first", 4)

	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestNewStorageRequiresPath(t *testing.T) {
	_, err := NewStorage(Config{}, axisEmbedder{})
	assert.Error(t, err)
}
