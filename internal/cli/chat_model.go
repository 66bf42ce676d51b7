package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"teamassist/internal/adapter/dashboard"
	"teamassist/internal/domain"
	"teamassist/internal/port"
)

// Asker is the chat-facing subset of the ask use case.
type Asker interface {
	Ask(ctx context.Context, user domain.User, question string) string
}

type chatTurn struct {
	question string
	answer   string
	pending  bool
}

type answerMsg struct{ answer string }

// corpusMsg reports a background corpus rebuild.
type corpusMsg struct {
	chunks int
	err    error
}

type chatModel struct {
	ctx        context.Context
	asker      Asker
	dashboards port.DashboardProvider
	user       domain.User
	assistant  string
	mode       string

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	turns    []chatTurn
	waiting  bool
	ready    bool
	status   string
	width    int
}

var (
	chatHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#764ba2"))
	chatMutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	chatUserStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#667eea"))
	chatBotStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#11998e"))
	chatStatusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	chatBoxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func newChatModel(ctx context.Context, asker Asker, dashboards port.DashboardProvider, user domain.User, assistant string, demo bool) chatModel {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about your team, /dashboard, /quit"
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	mode := "documents"
	if demo {
		mode = "demo mode"
	}

	return chatModel{
		ctx:        ctx,
		asker:      asker,
		dashboards: dashboards,
		user:       user,
		assistant:  assistant,
		mode:       mode,
		input:      ti,
		viewport:   viewport.New(0, 0),
		spinner:    sp,
		status:     fmt.Sprintf("Signed in as %s (%s)", user.Name, user.Role),
	}
}

func (m chatModel) Init() tea.Cmd { return textinput.Blink }

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		_, fh := chatBoxStyle.GetFrameSize()
		m.viewport.Width = max(20, msg.Width-2)
		m.viewport.Height = max(3, msg.Height-4-2*fh)
		m.input.Width = max(10, msg.Width-6)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		if msg.Type == tea.KeyEnter {
			return m.submit()
		}

	case answerMsg:
		if n := len(m.turns); n > 0 {
			m.turns[n-1].answer = msg.answer
			m.turns[n-1].pending = false
		}
		m.waiting = false
		m.refresh()
		return m, nil

	case corpusMsg:
		if msg.err != nil {
			m.status = "Reload failed, still using the previous documents: " + msg.err.Error()
		} else {
			m.status = fmt.Sprintf("Documents reloaded: %d chunks", msg.chunks)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refresh()
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m chatModel) submit() (tea.Model, tea.Cmd) {
	q := strings.TrimSpace(m.input.Value())
	if q == "" || m.waiting {
		return m, nil
	}
	m.input.SetValue("")

	switch strings.ToLower(q) {
	case "/quit", "/exit":
		return m, tea.Quit
	case "/dashboard":
		m.turns = append(m.turns, chatTurn{question: q, answer: m.renderDashboard()})
		m.refresh()
		return m, nil
	}

	m.turns = append(m.turns, chatTurn{question: q, pending: true})
	m.waiting = true
	m.refresh()
	return m, tea.Batch(m.spinner.Tick, m.askCmd(q))
}

func (m chatModel) askCmd(question string) tea.Cmd {
	ctx, asker, user := m.ctx, m.asker, m.user
	return func() tea.Msg {
		return answerMsg{answer: asker.Ask(ctx, user, question)}
	}
}

func (m chatModel) renderDashboard() string {
	if m.dashboards == nil {
		return "No dashboards configured."
	}
	d, err := m.dashboards.Dashboard(m.user)
	if err != nil {
		return "Dashboard unavailable: " + err.Error()
	}
	return dashboard.Render(d, max(30, m.viewport.Width-2))
}

func (m *chatModel) refresh() {
	m.viewport.SetContent(m.renderTurns())
	m.viewport.GotoBottom()
}

func (m chatModel) renderTurns() string {
	if len(m.turns) == 0 {
		return chatMutedStyle.Render(fmt.Sprintf("Hi %s! Ask %s anything about your team.", m.user.FirstName(), m.assistant))
	}
	wrap := lipgloss.NewStyle().Width(max(20, m.viewport.Width-2))
	var b strings.Builder
	for _, t := range m.turns {
		b.WriteString(chatUserStyle.Render("You: "))
		b.WriteString(wrap.Render(t.question))
		b.WriteString("\n")
		b.WriteString(chatBotStyle.Render(m.assistant + ": "))
		if t.pending {
			b.WriteString(m.spinner.View() + " thinking...")
		} else {
			b.WriteString(wrap.Render(t.answer))
		}
		b.WriteString("\n\n")
	}
	return b.String()
}

func (m chatModel) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := chatHeaderStyle.Render(m.assistant) + " " + chatMutedStyle.Render("("+m.mode+")")
	return header + "\n" +
		chatBoxStyle.Render(m.viewport.View()) + "\n" +
		chatBoxStyle.Render(m.input.View()) + "\n" +
		chatStatusStyle.Render(m.status)
}
