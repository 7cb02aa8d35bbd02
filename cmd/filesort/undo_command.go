package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"filesort/internal/logging"
	"filesort/internal/organizer"
)

func newUndoCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "undo <run-id>",
		Short: "Move the files of a previous run back where they were",
		Long: `Reverse the moves recorded for a run, newest first. A file is left in
the organized folder when its original location is occupied again or when the
organized copy no longer exists. The run id may be abbreviated.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ctx.openJournal()
			if err != nil {
				return err
			}
			defer store.Close()

			logger, closeLog, err := logging.NewFromConfig(cfg, false)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer func() {
				_ = closeLog()
			}()

			result, err := organizer.Undo(cmd.Context(), store, args[0], logger)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run %s: restored %s", shortID(result.Run.ID), pluralFiles(result.Restored))
			if result.Skipped > 0 {
				fmt.Fprintf(out, ", left %s in place", pluralFiles(result.Skipped))
			}
			if result.Already > 0 {
				fmt.Fprintf(out, ", %d already restored", result.Already)
			}
			fmt.Fprintln(out)
			return nil
		},
	}
}
