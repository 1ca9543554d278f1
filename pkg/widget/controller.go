package widget

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	EmptyResponseText   = "Sorry, I received an empty response."
	SendErrorPrefix     = "Sorry, I couldn't connect to the server. Error: "
	ClearedText         = "🔄 Chat history has been cleared. You can start a fresh conversation!"
	ClearErrorPrefix    = "❌ Failed to clear chat history: "
	ClearConfirmPrompt  = "Are you sure you want to clear the chat history?"
	DefaultSendLabel    = "Send"
	DefaultSendingLabel = "Sending..."
)

// State is the in-flight state of the send control.
type State int

const (
	StateIdle State = iota
	StateSending
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Controller mediates between user input, the rendered message list and the
// chat backend.
//
// A Controller is not safe for concurrent use. All methods except
// Exchange.Do must be called from the goroutine that owns the bindings (the UI
// loop). Exchange.Do only performs network I/O and may run anywhere.
type Controller struct {
	b       Bindings
	backend Backend

	sendingLabel string
	logger       zerolog.Logger

	state        State
	clearing     bool
	restoreLabel string
	initialized  bool
}

type Option func(*Controller)

// WithSendingLabel sets the label shown on the send control while a request
// is in flight.
func WithSendingLabel(label string) Option {
	return func(c *Controller) {
		c.sendingLabel = label
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

func New(b Bindings, backend Backend, options ...Option) *Controller {
	c := &Controller{
		b:            b,
		backend:      backend,
		sendingLabel: DefaultSendingLabel,
		logger:       log.With().Str("component", "widget").Logger(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Init logs which bindings are present and focuses the input. Calling it more
// than once has no further effect.
func (c *Controller) Init() {
	if c.initialized {
		return
	}
	c.initialized = true

	if c.b.Input != nil {
		c.b.Input.Focus()
	}

	c.logger.Info().
		Bool("messages", c.b.Messages != nil).
		Bool("input", c.b.Input != nil).
		Bool("send", c.b.Send != nil).
		Bool("clear", c.b.Clear != nil).
		Bool("loading", c.b.Loading != nil).
		Bool("confirmer", c.b.Confirmer != nil).
		Msg("chat interface initialized")
}

func (c *Controller) State() State {
	return c.state
}

// AppendMessage renders a message and scrolls the list to it.
func (c *Controller) AppendMessage(content string, isUser bool) {
	if c.b.Messages == nil {
		c.logger.Error().Msg("message list binding not found")
		return
	}
	c.b.Messages.Append(Message{Content: content, IsUser: isUser})
	c.b.Messages.ScrollToBottom()
	c.logger.Debug().Bool("is_user", isUser).Int("length", len(content)).Msg("message added")
}

// HandleKey reacts to a key pressed while the input has focus. The boolean
// result reports whether the key's default action must be suppressed.
func (c *Controller) HandleKey(key string) (*Exchange, bool) {
	if key != "enter" {
		return nil, false
	}
	return c.SendMessage(), true
}

// SendMessage renders the input as a user message, clears the input and
// enters the sending state. It returns the pending /chat request, or nil if
// there is nothing to send.
func (c *Controller) SendMessage() *Exchange {
	if c.b.Input == nil || c.b.Send == nil || c.b.Loading == nil {
		c.logger.Error().Msg("required elements not found")
		return nil
	}
	if c.state == StateSending {
		c.logger.Warn().Msg("send already in flight")
		return nil
	}

	text := strings.TrimSpace(c.b.Input.Value())
	if text == "" {
		c.logger.Debug().Msg("empty message, not sending")
		return nil
	}

	c.AppendMessage(text, true)
	c.b.Input.SetValue("")

	c.restoreLabel = c.b.Send.Label()
	c.state = StateSending
	c.project()

	backend := c.backend
	return &Exchange{
		kind: exchangeSend,
		text: text,
		run: func(ctx context.Context) Outcome {
			if backend == nil {
				return Outcome{kind: exchangeSend, Err: errNoBackend}
			}
			resp, err := backend.Chat(ctx, text)
			if err != nil {
				return Outcome{kind: exchangeSend, Err: err}
			}
			return Outcome{kind: exchangeSend, Reply: resp.Response}
		},
	}
}

// ClearHistory asks for confirmation and returns the pending /clear-history
// request. A declined confirmation returns nil and changes nothing.
func (c *Controller) ClearHistory() *Exchange {
	if c.b.Confirmer == nil {
		c.logger.Error().Msg("confirmer binding not found")
		return nil
	}
	if c.clearing {
		c.logger.Warn().Msg("clear already in flight")
		return nil
	}
	if !c.b.Confirmer.Confirm(ClearConfirmPrompt) {
		c.logger.Debug().Msg("clear history declined")
		return nil
	}

	c.logger.Info().Msg("clearing chat history")
	c.clearing = true
	if c.b.Clear != nil {
		c.b.Clear.SetEnabled(false)
	}

	backend := c.backend
	return &Exchange{
		kind: exchangeClear,
		run: func(ctx context.Context) Outcome {
			if backend == nil {
				return Outcome{kind: exchangeClear, Err: errNoBackend}
			}
			data, err := backend.ClearHistory(ctx)
			if err != nil {
				return Outcome{kind: exchangeClear, Err: err}
			}
			return Outcome{kind: exchangeClear, Data: data}
		},
	}
}

// Complete applies the result of an exchange to the bindings.
func (c *Controller) Complete(o Outcome) {
	switch o.kind {
	case exchangeSend:
		c.completeSend(o)
	case exchangeClear:
		c.completeClear(o)
	default:
		c.logger.Error().Msg("outcome from unknown exchange")
	}
}

// Run performs the exchange synchronously and applies its outcome. A nil
// exchange is a no-op.
func (c *Controller) Run(ctx context.Context, e *Exchange) {
	if e == nil {
		return
	}
	c.Complete(e.Do(ctx))
}

func (c *Controller) completeSend(o Outcome) {
	defer c.release()

	if o.Err != nil {
		c.logger.Error().Err(o.Err).Msg("chat request failed")
		c.AppendMessage(SendErrorPrefix+o.Err.Error(), false)
		return
	}
	if o.Reply == "" {
		c.AppendMessage(EmptyResponseText, false)
		return
	}
	c.AppendMessage(o.Reply, false)
}

func (c *Controller) completeClear(o Outcome) {
	c.clearing = false
	if c.b.Clear != nil {
		c.b.Clear.SetEnabled(true)
	}

	if o.Err != nil {
		c.logger.Error().Err(o.Err).Msg("failed to clear history")
		c.AppendMessage(ClearErrorPrefix+o.Err.Error(), false)
		return
	}

	c.logger.Info().Interface("response", o.Data).Msg("history cleared")
	if c.b.Messages != nil {
		var keep []Message
		if welcome, ok := welcomeMessage(c.b.Messages.Messages()); ok {
			keep = append(keep, welcome)
		}
		c.b.Messages.Reset(keep)
	}
	c.AppendMessage(ClearedText, false)
}

// release leaves the sending state and gives focus back to the input.
func (c *Controller) release() {
	c.state = StateIdle
	c.project()
	if c.b.Input != nil {
		c.b.Input.Focus()
	}
}

// project renders the current state onto the send control and the loading
// indicator.
func (c *Controller) project() {
	sending := c.state == StateSending
	if c.b.Send != nil {
		c.b.Send.SetEnabled(!sending)
		if sending {
			c.b.Send.SetLabel(c.sendingLabel)
		} else {
			c.b.Send.SetLabel(c.restoreLabel)
		}
	}
	if c.b.Loading != nil {
		c.b.Loading.SetVisible(sending)
	}
}

func welcomeMessage(msgs []Message) (Message, bool) {
	for _, m := range msgs {
		if !m.IsUser {
			return m, true
		}
	}
	return Message{}, false
}
