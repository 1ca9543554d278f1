package chatrunner

import (
	"context"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-go-golems/chatter/pkg/chatapi"
	"github.com/go-go-golems/chatter/pkg/lineui"
	"github.com/go-go-golems/chatter/pkg/tui"
	"github.com/go-go-golems/chatter/pkg/widget"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// RunMode defines how the chat session is presented.
type RunMode string

const (
	// RunModeAuto picks RunModeChat when stdin and stdout are terminals and
	// RunModePlain otherwise.
	RunModeAuto  RunMode = "auto"
	RunModeChat  RunMode = "chat"
	RunModePlain RunMode = "plain"
)

// Backend is what a session needs from the chat server.
type Backend interface {
	widget.Backend
	lineui.HistorySource
}

var _ Backend = (*chatapi.Client)(nil)

// ChatSession holds the validated configuration and runs the chat.
// It's typically created by the ChatBuilder.
type ChatSession struct {
	ctx            context.Context
	backend        Backend
	mode           RunMode
	title          string
	welcome        string
	in             io.Reader
	out            io.Writer
	prompt         string
	programOptions []tea.ProgramOption
}

func (cs *ChatSession) Mode() RunMode {
	return cs.mode
}

// Run executes the chat session based on its configured mode.
func (cs *ChatSession) Run() error {
	switch cs.mode {
	case RunModeChat:
		return cs.runChatInternal()
	case RunModePlain:
		return cs.runPlainInternal()
	default:
		return errors.Errorf("unknown run mode: %v", cs.mode)
	}
}

func (cs *ChatSession) runPlainInternal() error {
	log.Debug().Str("component", "chatrunner").Msg("starting line session")
	opts := []lineui.Option{
		lineui.WithWelcome(cs.welcome),
		lineui.WithHistory(cs.backend),
	}
	if cs.prompt != "" {
		opts = append(opts, lineui.WithPrompt(cs.prompt))
	}
	session := lineui.NewSession(cs.in, cs.out, cs.backend, opts...)
	return session.Run(cs.ctx)
}

// runChatInternal runs the full-screen UI until the user quits or the
// session context is done.
func (cs *ChatSession) runChatInternal() error {
	eg, childCtx := errgroup.WithContext(cs.ctx)
	childCtx, cancel := context.WithCancel(childCtx)
	defer cancel()

	model := tui.NewModel(cs.backend,
		tui.WithTitle(cs.title),
		tui.WithWelcome(cs.welcome),
		tui.WithContext(childCtx),
	)
	var opts []tea.ProgramOption
	if cs.in != io.Reader(os.Stdin) {
		opts = append(opts, tea.WithInput(cs.in))
	}
	if cs.out != io.Writer(os.Stdout) {
		opts = append(opts, tea.WithOutput(cs.out))
	}
	opts = append(opts, cs.programOptions...)
	p := tea.NewProgram(model, opts...)

	eg.Go(func() error {
		defer cancel()
		log.Debug().Str("component", "chatrunner").Msg("Starting Bubble Tea program")
		_, runErr := p.Run()
		log.Debug().Err(runErr).Str("component", "chatrunner").Msg("Bubble Tea program finished")
		return errors.Wrap(runErr, "chat ui failed")
	})

	// Quit the program when the session context is cancelled from outside.
	eg.Go(func() error {
		<-childCtx.Done()
		p.Quit()
		return nil
	})

	err := eg.Wait()
	if errors.Is(err, context.Canceled) && cs.ctx.Err() == context.Canceled {
		return nil
	}
	return err
}

// --- ChatBuilder ---

// ChatBuilder provides a fluent API for configuring and running a chat session.
type ChatBuilder struct {
	err            error
	ctx            context.Context
	backend        Backend
	mode           RunMode
	title          string
	welcome        string
	in             io.Reader
	out            io.Writer
	programOptions []tea.ProgramOption
	isTerminal     func(io.Reader, io.Writer) bool
}

// NewChatBuilder creates a new builder with default settings.
func NewChatBuilder() *ChatBuilder {
	return &ChatBuilder{
		ctx:            context.Background(),
		mode:           RunModeAuto,
		title:          "Chat",
		in:             os.Stdin,
		out:            os.Stdout,
		programOptions: []tea.ProgramOption{tea.WithAltScreen()},
		isTerminal:     IsTerminal,
	}
}

// WithContext sets the context for the chat session.
func (b *ChatBuilder) WithContext(ctx context.Context) *ChatBuilder {
	if b.err != nil {
		return b
	}
	if ctx == nil {
		b.err = errors.New("context cannot be nil")
		return b
	}
	b.ctx = ctx
	return b
}

// WithBackend sets the chat backend. (Required)
func (b *ChatBuilder) WithBackend(backend Backend) *ChatBuilder {
	if b.err != nil {
		return b
	}
	if backend == nil {
		b.err = errors.New("backend cannot be nil")
		return b
	}
	b.backend = backend
	return b
}

// WithMode sets the presentation mode (auto, chat, plain).
func (b *ChatBuilder) WithMode(mode RunMode) *ChatBuilder {
	if b.err != nil {
		return b
	}
	switch mode {
	case RunModeAuto, RunModeChat, RunModePlain:
		b.mode = mode
	default:
		b.err = errors.Errorf("invalid run mode: %s", mode)
	}
	return b
}

func (b *ChatBuilder) WithTitle(title string) *ChatBuilder {
	if b.err != nil {
		return b
	}
	b.title = title
	return b
}

// WithWelcome sets the bot message shown first and kept across clears.
func (b *ChatBuilder) WithWelcome(welcome string) *ChatBuilder {
	if b.err != nil {
		return b
	}
	b.welcome = welcome
	return b
}

// WithIO sets where the session reads input and writes output.
// Defaults to os.Stdin and os.Stdout.
func (b *ChatBuilder) WithIO(in io.Reader, out io.Writer) *ChatBuilder {
	if b.err != nil {
		return b
	}
	if in == nil || out == nil {
		b.err = errors.New("input and output cannot be nil")
		return b
	}
	b.in = in
	b.out = out
	return b
}

// WithProgramOptions adds options for configuring the bubbletea program.
func (b *ChatBuilder) WithProgramOptions(opts ...tea.ProgramOption) *ChatBuilder {
	if b.err != nil {
		return b
	}
	b.programOptions = append(b.programOptions, opts...)
	return b
}

// Build validates the builder configuration and resolves the run mode.
func (b *ChatBuilder) Build() (*ChatSession, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.backend == nil {
		return nil, errors.New("backend is required (use WithBackend)")
	}

	terminal := b.isTerminal(b.in, b.out)
	mode := b.mode
	if mode == RunModeAuto {
		mode = RunModePlain
		if terminal {
			mode = RunModeChat
		}
	}

	session := &ChatSession{
		ctx:            b.ctx,
		backend:        b.backend,
		mode:           mode,
		title:          b.title,
		welcome:        b.welcome,
		in:             b.in,
		out:            b.out,
		programOptions: b.programOptions,
	}
	// Only prompt when a person is typing.
	if mode == RunModePlain && isFileTerminal(b.in) {
		session.prompt = "> "
	}
	return session, nil
}

// IsTerminal reports whether both ends are terminals.
func IsTerminal(in io.Reader, out io.Writer) bool {
	return isFileTerminal(in) && isFileTerminal(out)
}

func isFileTerminal(v any) bool {
	f, ok := v.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
