package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-go-golems/chatter/cmd/chatter/cmds"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cmds.NewRootCommand().ExecuteContext(ctx)
	stop()
	cobra.CheckErr(err)
}
