package cmds

import (
	"os"

	"github.com/go-go-golems/chatter/pkg/chatrunner"
	"github.com/go-go-golems/chatter/pkg/config"
	"github.com/spf13/cobra"
)

type chatFlags struct {
	plain   bool
	welcome string
	title   string
}

func newChatCommand(rf *rootFlags) *cobra.Command {
	f := &chatFlags{}
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start an interactive chat session against the backend.

The full-screen UI is used when both stdin and stdout are terminals. Otherwise,
or with --plain, every input line is sent as a message; /clear, /history and
/quit are available as commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := chatrunner.RunModeAuto
			s, client, closer, err := rf.setup(cmd, func(s *config.Settings) bool {
				if f.plain || s.Plain {
					mode = chatrunner.RunModePlain
				}
				// the full-screen UI owns the terminal
				return mode == chatrunner.RunModeAuto && chatrunner.IsTerminal(os.Stdin, os.Stdout)
			})
			if err != nil {
				return err
			}
			defer func() {
				_ = closer.Close()
			}()

			if cmd.Flags().Changed("welcome") {
				s.Welcome = f.welcome
			}

			session, err := chatrunner.NewChatBuilder().
				WithContext(cmd.Context()).
				WithBackend(client).
				WithMode(mode).
				WithTitle(f.title + " · " + client.BaseURL()).
				WithWelcome(s.Welcome).
				Build()
			if err != nil {
				return err
			}
			return session.Run()
		},
	}

	cmd.Flags().BoolVar(&f.plain, "plain", false, "Use the line-oriented interface even on a terminal")
	cmd.Flags().StringVar(&f.welcome, "welcome", "", "Welcome message shown at the start of the session")
	cmd.Flags().StringVar(&f.title, "title", "Chat", "Title shown in the full-screen interface")
	return cmd
}
