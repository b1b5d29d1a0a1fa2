package main

import (
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"EnergyDigest/internal/usecase"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Fetch feeds, build the digest, deliver it and mark articles sent",
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			application, logger, err := ctx.application(runCtx)
			if err != nil {
				return err
			}
			defer application.Close()

			report, err := application.Run(runCtx)
			if err != nil {
				logger.Error("digest cycle failed", "run_id", report.RunID, "error", err)
				return err
			}
			printSummary(cmd.OutOrStdout(), report)
			return nil
		},
	}
}

func newPreviewCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "preview",
		Short: "Show which unsent articles would go into the digest, without sending",
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			application, _, err := ctx.application(runCtx)
			if err != nil {
				return err
			}
			defer application.Close()

			report, err := application.Preview(runCtx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderDigestTable(report.Digest, shouldColorize(out)))
			printSummary(out, report)

			total, unsent, err := application.StoreStats(runCtx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "database: %d articles stored, %d unsent\n", total, unsent)
			return nil
		},
	}
}

func printSummary(w io.Writer, report usecase.Report) {
	stats := report.Filter
	fmt.Fprintf(w, "run %s: fetched %d, new %d, reviewed %d, unique %d, classified %d, scored %d, kept %d, in digest %d, delivered %t, marked %d\n",
		report.RunID,
		report.Fetched,
		report.Saved,
		report.Reviewed,
		stats.Unique,
		stats.Classified,
		stats.Scoring.Scored,
		stats.Scoring.Kept,
		report.Digest.Total(),
		report.Delivered,
		report.Marked,
	)
}
