package tui

import (
	"context"
	"math/rand"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"ragchat/internal/conversation"
	"ragchat/internal/domain"
)

// ChatPort is the TUI-facing subset of the chat orchestrator.
type ChatPort interface {
	Chat(ctx context.Context, history *conversation.History, newText string) string
}

var welcomeMessages = []string{
	"Hello there! How can I assist you today?",
	"Hi there! Is there anything I can help you with?",
	"Do you need help?",
}

// replyMsg carries the answer of a finished turn.
type replyMsg struct{ text string }

// Model is the Bubble Tea model for the chat application.
type Model struct {
	ctx      context.Context
	chat     ChatPort
	history  *conversation.History
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	welcome  string
	busy     bool
	ready    bool
}

// New creates a chat model for one session. The welcome message is picked once.
func New(ctx context.Context, chat ChatPort, history *conversation.History) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Chat with your bot here"
	ti.Focus()
	ti.CharLimit = 0
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{
		ctx:      ctx,
		chat:     chat,
		history:  history,
		input:    ti,
		viewport: viewport.New(0, 0),
		spinner:  sp,
		welcome:  welcomeMessages[rand.Intn(len(welcomeMessages))],
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, hh := historyBoxStyle.GetFrameSize()
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 2 + 1 + ih + 1 // title + subtitle, status, input box, spacer
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, msg.Height-reserved-hh)
		if !m.busy {
			m.refresh()
		}
		return m, nil
	case replyMsg:
		m.history.Append(domain.Message{Role: domain.RoleAssistant, Text: msg.text})
		m.busy = false
		m.refresh()
		return m, nil
	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			text := strings.TrimSpace(m.input.Value())
			if text == "" || m.busy {
				return m, nil
			}
			m.input.Reset()
			m.busy = true
			// The orchestrator appends the user message; show it right away.
			m.viewport.SetContent(m.renderHistory(text))
			m.viewport.GotoBottom()
			return m, tea.Batch(m.spinner.Tick, m.ask(text))
		case "pgup", "pgdown", "up", "down":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	if m.busy {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// ask runs one turn off the UI loop. Input stays locked until the reply
// arrives, so the history has a single writer at a time.
func (m Model) ask(text string) tea.Cmd {
	ctx, chat, history := m.ctx, m.chat, m.history
	return func() tea.Msg {
		return replyMsg{text: chat.Chat(ctx, history, text)}
	}
}

// View renders the TUI layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	title := titleStyle.Render("RAG Chatbot")
	subtitle := subtitleStyle.Render("Powered by Amazon Bedrock with Anthropic Claude v3")
	body := historyBoxStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	status := statusStyle.Render("Enter to send, Esc to quit")
	if m.busy {
		status = statusStyle.Render(m.spinner.View() + " Thinking...")
	}
	return title + "\n" + subtitle + "\n" + body + "\n" + input + "\n" + status
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderHistory(""))
	m.viewport.GotoBottom()
}

// renderHistory draws the welcome line, the history and an optional pending
// user message.
func (m Model) renderHistory(pending string) string {
	var b strings.Builder
	b.WriteString(renderMessage(domain.RoleAssistant, m.welcome))
	for _, msg := range m.history.Messages() {
		b.WriteString("\n")
		b.WriteString(renderMessage(msg.Role, msg.Text))
	}
	if pending != "" {
		b.WriteString("\n")
		b.WriteString(renderMessage(domain.RoleUser, pending))
	}
	return b.String()
}

func renderMessage(role domain.Role, text string) string {
	style := assistantStyle
	if role == domain.RoleUser {
		style = userStyle
	}
	return style.Render(string(role)+":") + " " + text + "\n"
}

var (
	titleStyle      = lipgloss.NewStyle().Bold(true)
	subtitleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	userStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	historyBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)
