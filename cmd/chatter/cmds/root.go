package cmds

import (
	"io"
	"time"

	"github.com/go-go-golems/chatter/pkg/chatapi"
	"github.com/go-go-golems/chatter/pkg/config"
	"github.com/go-go-golems/chatter/pkg/logging"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type rootFlags struct {
	configPath string
	baseURL    string
	timeout    time.Duration
	logLevel   string
	logFormat  string
	logFile    string
}

// NewRootCommand builds the chatter command tree. Running it without a
// subcommand starts a chat.
func NewRootCommand() *cobra.Command {
	f := &rootFlags{}

	chatCmd := newChatCommand(f)
	rootCmd := &cobra.Command{
		Use:           "chatter",
		Short:         "chatter is a terminal client for a /chat backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          chatCmd.RunE,
	}
	rootCmd.Flags().AddFlagSet(chatCmd.Flags())

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&f.configPath, "config", "", "Path to the config file (default $HOME/.chatter/config.yaml)")
	pf.StringVar(&f.baseURL, "base-url", "", "Base URL of the chat backend")
	pf.DurationVar(&f.timeout, "timeout", 0, "Request timeout, 0 for none")
	pf.StringVar(&f.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	pf.StringVar(&f.logFormat, "log-format", "", "Log format (console, json)")
	pf.StringVar(&f.logFile, "log-file", "", "Write logs to this file")

	rootCmd.AddCommand(chatCmd, newHealthCommand(f))
	return rootCmd
}

// settings loads the config file and applies the flags that were set on cmd.
func (f *rootFlags) settings(cmd *cobra.Command) (*config.Settings, error) {
	s, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("base-url") {
		s.BaseURL = f.baseURL
	}
	if flags.Changed("timeout") {
		s.Timeout = f.timeout
	}
	if flags.Changed("log-level") {
		s.Log.Level = f.logLevel
	}
	if flags.Changed("log-format") {
		s.Log.Format = f.logFormat
	}
	if flags.Changed("log-file") {
		s.Log.File = f.logFile
	}

	if err := s.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid settings")
	}
	return s, nil
}

// setup resolves settings, initializes logging and builds the backend client.
// quiet decides, from the resolved settings, whether console logging must be
// silenced.
func (f *rootFlags) setup(cmd *cobra.Command, quiet func(*config.Settings) bool) (*config.Settings, *chatapi.Client, io.Closer, error) {
	s, err := f.settings(cmd)
	if err != nil {
		return nil, nil, nil, err
	}

	closer, err := logging.Init(s.Log, quiet != nil && quiet(s))
	if err != nil {
		return nil, nil, nil, err
	}

	client, err := chatapi.NewClient(s.BaseURL, chatapi.WithTimeout(s.Timeout))
	if err != nil {
		_ = closer.Close()
		return nil, nil, nil, errors.Wrap(err, "failed to create chat client")
	}
	return s, client, closer, nil
}
