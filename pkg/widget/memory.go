package widget

// In-memory bindings. Front-ends without a retained element tree (line mode,
// tests) build on these and observe changes through the On* hooks.

type MemoryList struct {
	msgs []Message

	OnAppend func(Message)
	OnReset  func([]Message)
}

var _ MessageList = (*MemoryList)(nil)

func (l *MemoryList) Append(msg Message) {
	l.msgs = append(l.msgs, msg)
	if l.OnAppend != nil {
		l.OnAppend(msg)
	}
}

func (l *MemoryList) Messages() []Message {
	out := make([]Message, len(l.msgs))
	copy(out, l.msgs)
	return out
}

func (l *MemoryList) Reset(msgs []Message) {
	l.msgs = append(l.msgs[:0:0], msgs...)
	if l.OnReset != nil {
		l.OnReset(l.Messages())
	}
}

func (l *MemoryList) ScrollToBottom() {}

type MemoryInput struct {
	value   string
	focused bool
}

var _ InputField = (*MemoryInput)(nil)

func (i *MemoryInput) Value() string     { return i.value }
func (i *MemoryInput) SetValue(v string) { i.value = v }
func (i *MemoryInput) Focus()            { i.focused = true }
func (i *MemoryInput) Focused() bool     { return i.focused }

// MemoryButton starts enabled with the default send label.
type MemoryButton struct {
	disabled bool
	label    string
}

var (
	_ SendControl  = (*MemoryButton)(nil)
	_ ClearControl = (*MemoryButton)(nil)
)

func NewMemoryButton(label string) *MemoryButton {
	return &MemoryButton{label: label}
}

func (b *MemoryButton) SetEnabled(enabled bool) { b.disabled = !enabled }
func (b *MemoryButton) Enabled() bool           { return !b.disabled }
func (b *MemoryButton) Label() string           { return b.label }
func (b *MemoryButton) SetLabel(label string)   { b.label = label }

type MemoryIndicator struct {
	visible bool

	OnChange func(visible bool)
}

var _ LoadingIndicator = (*MemoryIndicator)(nil)

func (i *MemoryIndicator) SetVisible(visible bool) {
	changed := i.visible != visible
	i.visible = visible
	if changed && i.OnChange != nil {
		i.OnChange(visible)
	}
}

func (i *MemoryIndicator) Visible() bool { return i.visible }
