package widget

import (
	"context"

	"github.com/go-go-golems/chatter/pkg/chatapi"
)

// Message is one rendered chat bubble.
type Message struct {
	Content string
	IsUser  bool
}

func (m Message) Role() string {
	if m.IsUser {
		return "user"
	}
	return "bot"
}

// MessageList is the container the conversation is rendered into.
type MessageList interface {
	Append(msg Message)
	Messages() []Message
	Reset(msgs []Message)
	ScrollToBottom()
}

type InputField interface {
	Value() string
	SetValue(v string)
	Focus()
}

type SendControl interface {
	SetEnabled(enabled bool)
	Label() string
	SetLabel(label string)
}

type ClearControl interface {
	SetEnabled(enabled bool)
}

type LoadingIndicator interface {
	SetVisible(visible bool)
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool {
	return f(prompt)
}

// Bindings are resolved once and never change for the lifetime of a
// Controller. Any of them may be nil.
type Bindings struct {
	Messages  MessageList
	Input     InputField
	Send      SendControl
	Clear     ClearControl
	Loading   LoadingIndicator
	Confirmer Confirmer
}

// Backend is the network side of the widget.
type Backend interface {
	Chat(ctx context.Context, message string) (chatapi.ChatResponse, error)
	ClearHistory(ctx context.Context) (any, error)
}

var _ Backend = (*chatapi.Client)(nil)
