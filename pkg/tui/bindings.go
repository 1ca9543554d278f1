package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-go-golems/chatter/pkg/widget"
	"github.com/rs/zerolog/log"
)

// messageView renders the conversation into a scrollable viewport. Bot
// messages go through glamour since backends commonly answer in markdown.
type messageView struct {
	msgs     []widget.Message
	rendered []string

	vp       viewport.Model
	width    int
	style    string
	renderer *glamour.TermRenderer
}

var _ widget.MessageList = (*messageView)(nil)

func newMessageView(style string) *messageView {
	v := &messageView{
		vp:    viewport.New(defaultWidth, defaultHeight),
		style: style,
	}
	v.resize(defaultWidth, defaultHeight)
	return v
}

func (v *messageView) Append(msg widget.Message) {
	v.msgs = append(v.msgs, msg)
	v.rendered = append(v.rendered, v.render(msg))
	v.refresh()
}

func (v *messageView) Messages() []widget.Message {
	out := make([]widget.Message, len(v.msgs))
	copy(out, v.msgs)
	return out
}

func (v *messageView) Reset(msgs []widget.Message) {
	v.msgs = append(v.msgs[:0:0], msgs...)
	v.rerender()
}

func (v *messageView) ScrollToBottom() {
	v.vp.GotoBottom()
}

func (v *messageView) resize(width, height int) {
	if height < 1 {
		height = 1
	}
	v.vp.Width = width
	v.vp.Height = height
	if width == v.width && v.renderer != nil {
		return
	}
	v.width = width

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(v.style),
		glamour.WithWordWrap(v.bubbleWidth()-4),
	)
	if err != nil {
		log.Warn().Err(err).Str("component", "tui").Msg("markdown renderer unavailable, rendering plain text")
		r = nil
	}
	v.renderer = r
	v.rerender()
}

func (v *messageView) bubbleWidth() int {
	w := v.width * 3 / 4
	if w < 20 {
		w = 20
	}
	return w
}

func (v *messageView) rerender() {
	v.rendered = v.rendered[:0]
	for _, m := range v.msgs {
		v.rendered = append(v.rendered, v.render(m))
	}
	v.refresh()
}

func (v *messageView) refresh() {
	v.vp.SetContent(strings.Join(v.rendered, "\n"))
}

func (v *messageView) render(m widget.Message) string {
	if m.IsUser {
		bubble := userBubbleStyle.MaxWidth(v.bubbleWidth()).Render(m.Content)
		return lipgloss.PlaceHorizontal(v.width, lipgloss.Right, bubble)
	}

	content := m.Content
	if v.renderer != nil {
		out, err := v.renderer.Render(m.Content)
		if err == nil {
			content = strings.Trim(out, "\n")
		} else {
			log.Debug().Err(err).Str("component", "tui").Msg("markdown render failed")
		}
	}
	return botBubbleStyle.Render(content)
}

// inputField exposes the model's textinput as a widget binding.
type inputField struct {
	m *Model
}

func (f inputField) Value() string     { return f.m.input.Value() }
func (f inputField) SetValue(v string) { f.m.input.SetValue(v) }
func (f inputField) Focus()            { f.m.input.Focus() }

type button struct {
	label    string
	disabled bool
}

func (b *button) SetEnabled(enabled bool) { b.disabled = !enabled }
func (b *button) Label() string           { return b.label }
func (b *button) SetLabel(label string)   { b.label = label }

func (b *button) View() string {
	if b.disabled {
		return disabledButtonStyle.Render(b.label)
	}
	return buttonStyle.Render(b.label)
}

type indicator struct {
	visible bool
}

func (i *indicator) SetVisible(visible bool) { i.visible = visible }
