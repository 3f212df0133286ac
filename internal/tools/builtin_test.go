package tools

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragchat/internal/domain"
)

type fakeCollection struct {
	docs      []domain.RetrievedDocument
	err       error
	lastQuery string
	lastTopK  int
}

func (c *fakeCollection) Name() string { return "fake" }
func (c *fakeCollection) Count() int   { return len(c.docs) }
func (c *fakeCollection) Add(context.Context, []domain.Document) error {
	return nil
}
func (c *fakeCollection) Query(_ context.Context, text string, topK int) ([]domain.RetrievedDocument, error) {
	c.lastQuery = text
	c.lastTopK = topK
	return c.docs, c.err
}

func TestRetrievalJoinsDocuments(t *testing.T) {
	col := &fakeCollection{docs: []domain.RetrievedDocument{
		{Content: "A", Rank: 1}, {Content: "B", Rank: 2}, {Content: "C", Rank: 3}, {Content: "D", Rank: 4},
	}}
	tool := NewRetrieval(col, 0)

	out, err := tool.Invoke(context.Background(), json.RawMessage(`{"query":"what is bedrock"}`))

	require.NoError(t, err)
	assert.Equal(t, "A\n\nB\n\nC\n\nD", out.Text)
	assert.Nil(t, out.JSON)
	assert.Equal(t, "what is bedrock", col.lastQuery)
	assert.Equal(t, DefaultTopK, col.lastTopK)
}

func TestRetrievalMissingQuery(t *testing.T) {
	tool := NewRetrieval(&fakeCollection{}, 4)

	for _, in := range []string{`{}`, `{"query":3}`, ``, `null`, `[1]`} {
		_, err := tool.Invoke(context.Background(), json.RawMessage(in))
		assert.ErrorIs(t, err, domain.ErrInvalidToolInput, "input %q", in)
	}
}

func TestRetrievalPropagatesStoreError(t *testing.T) {
	boom := errors.New("boom")
	tool := NewRetrieval(&fakeCollection{err: boom}, 4)

	_, err := tool.Invoke(context.Background(), json.RawMessage(`{"query":"q"}`))

	assert.ErrorIs(t, err, boom)
}

func TestCosineOfZero(t *testing.T) {
	out, err := NewCosine().Invoke(context.Background(), json.RawMessage(`{"x":0}`))

	require.NoError(t, err)
	assert.Equal(t, map[string]any{"result": 1.0}, out.JSON)
}

func TestCosineMissingX(t *testing.T) {
	_, err := NewCosine().Invoke(context.Background(), json.RawMessage(`{"y":1}`))
	assert.ErrorIs(t, err, domain.ErrInvalidToolInput)
}

func TestRegistry(t *testing.T) {
	reg, err := NewRegistry(NewRetrieval(&fakeCollection{}, 4), NewCosine())
	require.NoError(t, err)

	specs := reg.Specs()
	require.Len(t, specs, 2)
	assert.Equal(t, RetrievalToolName, specs[0].Name)
	assert.Equal(t, CosineToolName, specs[1].Name)

	_, ok := reg.Lookup("cosine")
	assert.True(t, ok)
	_, ok = reg.Lookup("Cosine")
	assert.False(t, ok)

	_, err = NewRegistry(NewCosine(), NewCosine())
	assert.Error(t, err)
}
