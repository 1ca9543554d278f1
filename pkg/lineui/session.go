package lineui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/go-go-golems/chatter/pkg/chatapi"
	"github.com/go-go-golems/chatter/pkg/widget"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	input "github.com/tcnksm/go-input"
)

// HistorySource returns the server-side history shown by /history.
type HistorySource interface {
	History(ctx context.Context) (chatapi.HistoryResponse, error)
}

// Session is a line-oriented chat front-end. Every line read is treated as the
// input field's content followed by Enter; lines starting with "/" are
// commands.
type Session struct {
	r   *bufio.Reader
	out io.Writer
	ui  *input.UI

	ctl     *widget.Controller
	list    *widget.MemoryList
	input   *widget.MemoryInput
	history HistorySource

	prompt  string
	welcome string
}

type Option func(*Session)

// WithPrompt prints prompt before every line is read.
func WithPrompt(prompt string) Option {
	return func(s *Session) {
		s.prompt = prompt
	}
}

func WithWelcome(welcome string) Option {
	return func(s *Session) {
		s.welcome = welcome
	}
}

func WithHistory(h HistorySource) Option {
	return func(s *Session) {
		s.history = h
	}
}

func NewSession(in io.Reader, out io.Writer, backend widget.Backend, options ...Option) *Session {
	// go-input wraps its reader in a bufio.Reader of the default size, which
	// returns this one unchanged, so both share one buffer.
	r := bufio.NewReader(in)
	s := &Session{
		r:     r,
		out:   out,
		ui:    &input.UI{Reader: r, Writer: out},
		list:  &widget.MemoryList{},
		input: &widget.MemoryInput{},
	}
	for _, opt := range options {
		opt(s)
	}

	s.list.OnAppend = s.printMessage
	s.list.OnReset = func(msgs []widget.Message) {
		s.printf("--- history cleared ---\n")
		for _, m := range msgs {
			s.printMessage(m)
		}
	}
	loading := &widget.MemoryIndicator{
		OnChange: func(visible bool) {
			if visible {
				s.printf("...\n")
			}
		},
	}

	s.ctl = widget.New(widget.Bindings{
		Messages:  s.list,
		Input:     s.input,
		Send:      widget.NewMemoryButton(widget.DefaultSendLabel),
		Clear:     widget.NewMemoryButton("Clear"),
		Loading:   loading,
		Confirmer: widget.ConfirmFunc(s.confirm),
	}, backend)

	return s
}

func (s *Session) Messages() []widget.Message {
	return s.list.Messages()
}

// Run reads lines until EOF, /quit or ctx is done.
func (s *Session) Run(ctx context.Context) error {
	s.ctl.Init()
	if s.welcome != "" {
		s.ctl.AppendMessage(s.welcome, false)
	}

	for {
		if ctx.Err() != nil {
			return nil
		}
		if s.prompt != "" {
			s.printf("%s", s.prompt)
		}

		line, err := s.r.ReadString('\n')
		if err != nil && err != io.EOF {
			return errors.Wrap(err, "failed to read input")
		}
		eof := err == io.EOF
		line = strings.TrimRight(line, "\r\n")

		if strings.HasPrefix(strings.TrimSpace(line), "/") {
			quit, err := s.command(ctx, strings.TrimSpace(line))
			if err != nil {
				return err
			}
			if quit {
				return nil
			}
		} else if line != "" {
			s.input.SetValue(line)
			ex, _ := s.ctl.HandleKey("enter")
			s.ctl.Run(ctx, ex)
		}

		if eof {
			return nil
		}
	}
}

func (s *Session) command(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit":
		return true, nil
	case "/clear":
		s.ctl.Run(ctx, s.ctl.ClearHistory())
	case "/history":
		if s.history == nil {
			s.printf("history is not available\n")
			return false, nil
		}
		h, err := s.history.History(ctx)
		if err != nil {
			log.Error().Err(err).Msg("failed to fetch history")
			s.printf("failed to fetch history: %s\n", err)
			return false, nil
		}
		PrintHistory(s.out, h)
	case "/help":
		s.printf("commands: /clear /history /quit\n")
	default:
		s.printf("unknown command %s, try /help\n", fields[0])
	}
	return false, nil
}

func (s *Session) confirm(prompt string) bool {
	ok, err := Confirm(s.ui, prompt)
	if err != nil {
		log.Warn().Err(err).Msg("confirmation aborted")
		return false
	}
	return ok
}

func (s *Session) printMessage(m widget.Message) {
	who := "Bot"
	if m.IsUser {
		who = "You"
	}
	s.printf("%s: %s\n", who, m.Content)
}

func (s *Session) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.out, format, args...)
}

// Confirm asks a y/N question through go-input. Anything but y/yes declines.
func Confirm(ui *input.UI, prompt string) (bool, error) {
	answer, err := ui.Ask(prompt+" [y/N]", &input.Options{
		Default:     "n",
		HideDefault: true,
		HideOrder:   true,
		Loop:        true,
		ValidateFunc: func(answer string) error {
			switch strings.ToLower(strings.TrimSpace(answer)) {
			case "y", "yes", "n", "no", "":
				return nil
			default:
				return errors.Errorf("please enter 'y' or 'n'")
			}
		},
	})
	if err != nil {
		return false, errors.Wrap(err, "failed to get user input")
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// PrintHistory writes the server-side history in a readable form.
func PrintHistory(w io.Writer, h chatapi.HistoryResponse) {
	if h.Count == 0 && len(h.History) == 0 {
		_, _ = fmt.Fprintln(w, "no history")
		return
	}
	for i, item := range h.History {
		_, _ = fmt.Fprintf(w, "#%d %s\n  You: %s\n  Bot: %s\n", i+1, item.Timestamp, item.UserMessage, item.AIResponse)
	}
	_, _ = fmt.Fprintf(w, "%d exchange(s)\n", h.Count)
}
