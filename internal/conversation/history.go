package conversation

import "ragchat/internal/domain"

// DefaultMaxMessages is the history cap used when none is configured.
const DefaultMaxMessages = 20

// History is the ordered chat of one session. It is not safe for
// concurrent use; a session has a single owner per turn.
type History struct {
	messages []domain.Message
}

// NewHistory returns an empty history.
func NewHistory() *History { return &History{} }

// Append adds a message at the end.
func (h *History) Append(msg domain.Message) {
	h.messages = append(h.messages, msg)
}

// Len returns the number of messages.
func (h *History) Len() int { return len(h.messages) }

// Messages returns a copy of the messages in conversation order.
func (h *History) Messages() []domain.Message {
	out := make([]domain.Message, len(h.messages))
	copy(out, h.messages)
	return out
}

// Truncate drops (len-limit)*2 messages from the front when the history is
// longer than limit, and returns how many were removed. The doubling keeps
// user/assistant pairs together when the history alternates strictly.
func (h *History) Truncate(limit int) int {
	n := len(h.messages)
	if limit < 0 || n <= limit {
		return 0
	}
	drop := (n - limit) * 2
	if drop > n {
		drop = n
	}
	h.messages = append([]domain.Message(nil), h.messages[drop:]...)
	return drop
}

// ToModelMessages converts the history into text-only model messages.
func (h *History) ToModelMessages() []domain.ModelMessage {
	out := make([]domain.ModelMessage, 0, len(h.messages))
	for _, m := range h.messages {
		out = append(out, domain.ModelMessage{
			Role:    m.Role,
			Content: []domain.ContentBlock{{Text: m.Text}},
		})
	}
	return out
}
