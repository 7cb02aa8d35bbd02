package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"filesort/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var follow bool
	var match string

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the run log",
		Long: `Print the last entries of the run log. --match keeps entries that contain
the text, such as a run id or a file name. --follow keeps printing new entries
until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.Logging.RunLog == "" {
				return errors.New("the run log is disabled; set logging.run_log")
			}
			out := cmd.OutOrStdout()

			result, err := logs.Tail(cmd.Context(), cfg.Logging.RunLog, logs.TailOptions{Offset: -1, Limit: limit, Match: match})
			if err != nil {
				return err
			}
			printRecords(out, result.Records)
			if !follow {
				return nil
			}

			followCtx, stop := signal.NotifyContext(cmd.Context(), cancelSignals...)
			defer stop()
			offset := result.Offset
			for {
				result, err := logs.Tail(followCtx, cfg.Logging.RunLog, logs.TailOptions{
					Offset: offset,
					Follow: true,
					Wait:   time.Second,
					Match:  match,
				})
				if errors.Is(err, context.Canceled) {
					return nil
				}
				if err != nil {
					return err
				}
				printRecords(out, result.Records)
				offset = result.Offset
			}
		},
	}
	cmd.Flags().IntVarP(&limit, "lines", "n", 20, "Number of entries to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new entries")
	cmd.Flags().StringVar(&match, "match", "", "Only show entries containing this text")
	return cmd
}

func printRecords(out io.Writer, records []logs.Record) {
	for _, record := range records {
		for _, line := range record.Lines() {
			fmt.Fprintln(out, line)
		}
	}
}
