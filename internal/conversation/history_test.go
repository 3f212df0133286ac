package conversation

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragchat/internal/domain"
)

func fill(h *History, n int) {
	for i := 0; i < n; i++ {
		role := domain.RoleUser
		if i%2 == 1 {
			role = domain.RoleAssistant
		}
		h.Append(domain.Message{Role: role, Text: fmt.Sprintf("m%d", i)})
	}
}

func TestAppendPairsTwice(t *testing.T) {
	h := NewHistory()
	for i := 0; i < 2; i++ {
		h.Append(domain.Message{Role: domain.RoleUser, Text: "q"})
		h.Append(domain.Message{Role: domain.RoleAssistant, Text: "a"})
	}
	assert.Equal(t, 4, h.Len())
}

func TestTruncateKeepsLengthWithinMax(t *testing.T) {
	for limit := 1; limit <= 6; limit++ {
		for n := 0; n <= 14; n++ {
			h := NewHistory()
			fill(h, n)
			h.Truncate(limit)
			assert.LessOrEqual(t, h.Len(), limit, "n=%d limit=%d", n, limit)
		}
	}
}

func TestTruncateRemovesFromFront(t *testing.T) {
	h := NewHistory()
	fill(h, 21)

	removed := h.Truncate(20)

	require.Equal(t, 2, removed)
	msgs := h.Messages()
	require.Len(t, msgs, 19)
	assert.Equal(t, "m2", msgs[0].Text)
	assert.Equal(t, "m20", msgs[len(msgs)-1].Text)
}

func TestTruncateNoopUnderMax(t *testing.T) {
	h := NewHistory()
	fill(h, 5)
	assert.Equal(t, 0, h.Truncate(20))
	assert.Equal(t, 5, h.Len())
}

func TestTruncateClampsToLength(t *testing.T) {
	h := NewHistory()
	fill(h, 5)
	assert.Equal(t, 5, h.Truncate(1))
	assert.Equal(t, 0, h.Len())
}

func TestMessagesReturnsCopy(t *testing.T) {
	h := NewHistory()
	fill(h, 1)
	msgs := h.Messages()
	msgs[0].Text = "changed"
	assert.Equal(t, "m0", h.Messages()[0].Text)
}

func TestToModelMessages(t *testing.T) {
	h := NewHistory()
	h.Append(domain.Message{Role: domain.RoleUser, Text: "hello"})

	out := h.ToModelMessages()

	require.Len(t, out, 1)
	assert.Equal(t, domain.RoleUser, out[0].Role)
	assert.Equal(t, "hello", out[0].FirstText())
}
