package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragchat/internal/conversation"
	"ragchat/internal/domain"
)

type echoChat struct{ calls int }

func (c *echoChat) Chat(_ context.Context, h *conversation.History, text string) string {
	c.calls++
	h.Append(domain.Message{Role: domain.RoleUser, Text: text})
	return "echo: " + text
}

func typeText(m tea.Model, s string) tea.Model {
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return m
}

func TestTurnAppendsReply(t *testing.T) {
	chat := &echoChat{}
	h := conversation.NewHistory()
	var m tea.Model = New(context.Background(), chat, h)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	m = typeText(m, "hello")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, m.(Model).busy)
	assert.Contains(t, m.View(), "Thinking...")

	// Input is locked while the turn runs.
	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)

	reply := m.(Model).ask("hello")()
	m, _ = m.Update(reply)

	assert.False(t, m.(Model).busy)
	assert.Equal(t, 1, chat.calls)
	msgs := h.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, domain.RoleAssistant, msgs[1].Role)
	assert.Equal(t, "echo: hello", msgs[1].Text)
	assert.Contains(t, m.View(), "echo: hello")
}

func TestEmptyInputIgnored(t *testing.T) {
	var m tea.Model = New(context.Background(), &echoChat{}, conversation.NewHistory())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
}

func TestWelcomeMessage(t *testing.T) {
	m := New(context.Background(), &echoChat{}, conversation.NewHistory())
	assert.Contains(t, welcomeMessages, m.welcome)
	assert.Contains(t, m.renderHistory(""), m.welcome)
}

func TestQuitKeys(t *testing.T) {
	m := New(context.Background(), &echoChat{}, conversation.NewHistory())
	for _, k := range []tea.KeyType{tea.KeyCtrlC, tea.KeyCtrlD, tea.KeyEsc} {
		_, cmd := m.Update(tea.KeyMsg{Type: k})
		require.NotNil(t, cmd)
		assert.Equal(t, tea.Quit(), cmd())
	}
}
