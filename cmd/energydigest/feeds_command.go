package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newFeedsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "feeds",
		Short: "Fetch every configured feed and print a health report",
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			application, _, err := ctx.application(runCtx)
			if err != nil {
				return err
			}
			defer application.Close()

			health, articles, err := application.CheckFeeds(runCtx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderHealthTable(health, shouldColorize(out)))
			fmt.Fprintf(out, "%d healthy / %d failed / %d total, %d recent articles\n",
				len(health.Healthy()), len(health.Failed()), len(health.Results), len(articles))
			if failed := len(health.Failed()); failed > 0 {
				return fmt.Errorf("%d feed(s) failing, replace them", failed)
			}
			return nil
		},
	}
}
