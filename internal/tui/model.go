package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ChatPort is the TUI-facing subset of the agent.
type ChatPort interface {
	Send(ctx context.Context, line string) (string, error)
}

// Model is the Bubble Tea model for the chat application.
type Model struct {
	chat       ChatPort
	input      textinput.Model
	viewport   viewport.Model
	transcript []string
	status     string
	ready      bool
}

// New creates a new chat TUI model.
func New(chat ChatPort, status string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a message and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{chat: chat, input: ti, viewport: vp, status: status}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, th := transcriptBoxStyle.GetFrameSize()
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 1 + 1 + ih + 1 // header, status, input frame, spacer
		vh := msg.Height - reserved - th
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = vh
		m.viewport.SetContent(m.renderTranscript())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			line := strings.TrimSpace(m.input.Value())
			if line == "" {
				break
			}
			if line == "quit" || line == "exit" {
				return m, tea.Quit
			}
			m.input.Reset()
			m.transcript = append(m.transcript, userStyle.Render("You: ")+line)
			// One turn at a time; the send blocks until the reply is in.
			reply, err := m.chat.Send(context.Background(), line)
			if err != nil {
				m.status = "Error: " + err.Error()
			} else {
				m.transcript = append(m.transcript, assistantStyle.Render("Assistant: ")+reply)
				m.status = "Ready."
			}
			m.viewport.SetContent(m.renderTranscript())
			m.viewport.GotoBottom()
			return m, nil
		case "up":
			m.viewport.LineUp(1)
			return m, nil
		case "down":
			m.viewport.LineDown(1)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the TUI layout and the conversation transcript.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("solagent")
	transcript := transcriptBoxStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	return header + "\n" + transcript + "\n" + input + "\n" + status
}

func (m Model) renderTranscript() string {
	if len(m.transcript) == 0 {
		return "No messages yet."
	}
	return strings.Join(m.transcript, "\n\n")
}

var (
	transcriptBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	userStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	assistantStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
)
