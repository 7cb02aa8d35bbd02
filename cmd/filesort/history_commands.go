package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"filesort/internal/category"
	"filesort/internal/journal"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List previous organization runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openJournal()
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			fmt.Fprintln(out, renderRunsTable(runs))
			return nil
		},
	}
	historyCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show (0 for all)")

	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	return historyCmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the moves made by one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openJournal()
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.FindRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			moves, err := store.Moves(cmd.Context(), run.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printKeyValues(out, runDetails(run))
			if len(moves) == 0 {
				fmt.Fprintln(out, "\nNo files were moved")
				return nil
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, renderMovesTable(moves))
			return nil
		},
	}
}

func runDetails(run journal.Run) [][2]string {
	finished := "-"
	if run.Finished() {
		finished = fmt.Sprintf("%s (%s)", formatTimestamp(run.FinishedAt), formatDuration(run.Duration()))
	}
	details := [][2]string{
		{"Run", run.ID},
		{"Directory", run.SourceDir},
		{"Destination", run.DestinationRoot},
		{"Provider", run.Provider},
		{"State", run.State},
		{"Started", formatTimestamp(run.StartedAt)},
		{"Finished", finished},
		{"Files", fmt.Sprintf("%d processed of %d, %d moved, %d skipped", run.Processed, run.Total, run.Moved, run.Skipped)},
	}
	if run.ErrorMessage != "" {
		details = append(details, [2]string{"Error", run.ErrorMessage})
	}
	return details
}

func renderRunsTable(runs []journal.Run) string {
	headers := []string{"Run", "Started", "Directory", "Provider", "State", "Moved", "Skipped", "Total"}
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			shortID(run.ID),
			formatRelative(run.StartedAt),
			run.SourceDir,
			run.Provider,
			run.State,
			strconv.Itoa(run.Moved),
			strconv.Itoa(run.Skipped),
			strconv.Itoa(run.Total),
		})
	}
	return renderTable(headers, rows, []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight})
}

func renderMovesTable(moves []journal.Move) string {
	headers := []string{"#", "File", "Category", "Destination", "Undone"}
	rows := make([][]string, 0, len(moves))
	for i, move := range moves {
		undone := "-"
		if move.Undone() {
			undone = formatTimestamp(move.UndoneAt)
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			filepath.Base(move.SourcePath),
			categoryLabel(category.Category(move.Category)),
			move.DestinationPath,
			undone,
		})
	}
	return renderTable(headers, rows, []columnAlignment{alignRight})
}
