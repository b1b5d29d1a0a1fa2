package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var immediate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a digest cycle every scheduler interval until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			application, _, err := ctx.application(runCtx)
			if err != nil {
				return err
			}
			defer application.Close()

			return application.Serve(runCtx, immediate)
		},
	}
	cmd.Flags().BoolVar(&immediate, "now", false, "Run the first cycle immediately instead of after one interval")
	return cmd
}
