package tui

import (
	"context"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-go-golems/chatter/pkg/widget"
	"github.com/rs/zerolog/log"
)

const (
	defaultWidth  = 80
	defaultHeight = 24

	// title line and footer (status, input row, help)
	chromeHeight = 4
)

// outcomeMsg carries a finished exchange back into the update loop.
type outcomeMsg struct {
	outcome widget.Outcome
}

// Model is the full-screen chat UI. It owns the widget bindings and drives a
// widget.Controller from the Bubble Tea update loop; network I/O runs in
// commands and its result is applied when the outcome message arrives.
type Model struct {
	ctx context.Context
	ctl *widget.Controller

	list    *messageView
	input   textinput.Model
	send    *button
	clear   *button
	loading *indicator
	spin    spinner.Model

	confirming bool
	confirmed  bool

	title   string
	welcome string
	status  string
	copyFn  func(string) error

	width  int
	height int
}

var (
	_ tea.Model        = (*Model)(nil)
	_ widget.Confirmer = (*Model)(nil)
)

type ModelOption func(*Model)

func WithTitle(title string) ModelOption {
	return func(m *Model) {
		m.title = title
	}
}

// WithWelcome seeds the conversation with a bot message. It is the message
// kept when the history is cleared.
func WithWelcome(welcome string) ModelOption {
	return func(m *Model) {
		m.welcome = welcome
	}
}

// WithContext sets the context network requests run under.
func WithContext(ctx context.Context) ModelOption {
	return func(m *Model) {
		m.ctx = ctx
	}
}

func WithClipboard(fn func(string) error) ModelOption {
	return func(m *Model) {
		m.copyFn = fn
	}
}

func NewModel(backend widget.Backend, options ...ModelOption) *Model {
	ti := textinput.New()
	ti.Placeholder = "Type your message..."
	ti.Prompt = "> "
	ti.CharLimit = 0

	sp := spinner.New()
	sp.Spinner = spinner.Line
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)

	m := &Model{
		ctx:     context.Background(),
		list:    newMessageView("dark"),
		input:   ti,
		send:    &button{label: widget.DefaultSendLabel},
		clear:   &button{label: "Clear ^L"},
		loading: &indicator{},
		spin:    sp,
		title:   "Chat",
		copyFn:  clipboard.WriteAll,
		width:   defaultWidth,
		height:  defaultHeight,
	}
	for _, opt := range options {
		opt(m)
	}

	m.ctl = widget.New(widget.Bindings{
		Messages:  m.list,
		Input:     inputField{m: m},
		Send:      m.send,
		Clear:     m.clear,
		Loading:   m.loading,
		Confirmer: m,
	}, backend)

	if m.welcome != "" {
		m.list.Append(widget.Message{Content: m.welcome})
	}
	m.layout()

	return m
}

// Confirm reports the answer given in the inline confirmation prompt.
func (m *Model) Confirm(prompt string) bool {
	log.Debug().Str("prompt", prompt).Bool("answer", m.confirmed).Msg("clear confirmation")
	return m.confirmed
}

func (m *Model) Messages() []widget.Message {
	return m.list.Messages()
}

func (m *Model) State() widget.State {
	return m.ctl.State()
}

func (m *Model) Init() tea.Cmd {
	m.ctl.Init()
	return textinput.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case outcomeMsg:
		m.ctl.Complete(msg.outcome)
		return m, nil

	case spinner.TickMsg:
		if !m.loading.visible {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.confirming {
			return m, m.answerConfirm(msg.String())
		}
		return m, m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c", "esc":
		return tea.Quit
	case "ctrl+l":
		m.confirming = true
		return nil
	case "ctrl+y":
		m.copyLastReply()
		return nil
	case "pgup", "pgdown", "up", "down":
		var cmd tea.Cmd
		m.list.vp, cmd = m.list.vp.Update(msg)
		return cmd
	}

	ex, handled := m.ctl.HandleKey(msg.String())
	if handled {
		if ex == nil {
			return nil
		}
		m.status = ""
		return tea.Batch(m.run(ex), m.spin.Tick)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) answerConfirm(key string) tea.Cmd {
	switch key {
	case "y", "Y":
		m.confirming = false
		m.confirmed = true
		ex := m.ctl.ClearHistory()
		m.confirmed = false
		if ex == nil {
			return nil
		}
		return m.run(ex)
	case "n", "N", "esc", "enter":
		m.confirming = false
		m.confirmed = false
		_ = m.ctl.ClearHistory()
		m.status = "clear cancelled"
	case "ctrl+c":
		return tea.Quit
	}
	return nil
}

func (m *Model) run(ex *widget.Exchange) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return outcomeMsg{outcome: ex.Do(ctx)}
	}
}

func (m *Model) copyLastReply() {
	msgs := m.list.Messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].IsUser {
			continue
		}
		if err := m.copyFn(msgs[i].Content); err != nil {
			log.Warn().Err(err).Str("component", "tui").Msg("failed to copy to clipboard")
			m.status = "copy failed: " + err.Error()
			return
		}
		m.status = "copied last reply"
		return
	}
	m.status = "nothing to copy"
}

func (m *Model) layout() {
	m.list.resize(m.width, m.height-chromeHeight)
	w := m.width - lipgloss.Width(m.send.View()) - lipgloss.Width(m.clear.View()) - len(m.input.Prompt) - 2
	if w < 10 {
		w = 10
	}
	m.input.Width = w
}

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")
	b.WriteString(m.list.vp.View())
	b.WriteString("\n")

	switch {
	case m.confirming:
		b.WriteString(confirmStyle.Render(widget.ClearConfirmPrompt + " [y/N]"))
	case m.loading.visible:
		b.WriteString(m.spin.View() + " " + statusStyle.Render("waiting for reply"))
	default:
		b.WriteString(statusStyle.Render(m.status))
	}
	b.WriteString("\n")

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Center, m.input.View(), m.send.View(), m.clear.View()))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter send • ctrl+l clear • ctrl+y copy reply • pgup/pgdown scroll • esc quit"))

	return b.String()
}
