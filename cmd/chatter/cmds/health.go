package cmds

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newHealthCommand(rf *rootFlags) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check that the chat backend is up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, closer, err := rf.setup(cmd, nil)
			if err != nil {
				return err
			}
			defer func() {
				_ = closer.Close()
			}()

			h, err := client.Health(cmd.Context())
			if err != nil {
				return errors.Wrapf(err, "backend %s is not healthy", client.BaseURL())
			}

			out := cmd.OutOrStdout()
			if asJSON {
				b, err := json.MarshalIndent(h, "", "  ")
				if err != nil {
					return errors.Wrap(err, "failed to encode health")
				}
				_, err = fmt.Fprintln(out, string(b))
				return err
			}
			_, err = fmt.Fprintf(out, "%s: %s (%d companies loaded)\n", client.BaseURL(), h.Status, h.CompaniesLoaded)
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw health response")
	return cmd
}
