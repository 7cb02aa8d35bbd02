package organizer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"filesort/internal/fileutil"
	"filesort/internal/journal"
	"filesort/internal/logging"
	"filesort/internal/services"
)

// UndoStore is the journal surface needed to reverse a run.
type UndoStore interface {
	FindRun(ctx context.Context, idOrPrefix string) (journal.Run, error)
	Moves(ctx context.Context, runID string) ([]journal.Move, error)
	MarkUndone(ctx context.Context, moveID int64, at time.Time) error
}

// UndoResult reports what an undo pass did.
type UndoResult struct {
	Run      journal.Run
	Restored int
	Skipped  int
	// Already counts moves that an earlier undo reversed.
	Already int
}

// Undo moves every file of a journaled run back to where it was found, newest
// move first. A file whose original location is occupied again, or whose
// organized copy is gone, is left alone and counted as skipped.
func Undo(ctx context.Context, store UndoStore, idOrPrefix string, logger *slog.Logger) (UndoResult, error) {
	logger = logging.NewComponentLogger(logger, "undo")
	run, err := store.FindRun(ctx, idOrPrefix)
	if err != nil {
		return UndoResult{}, err
	}
	result := UndoResult{Run: run}
	ctx = services.WithRunID(ctx, run.ID)
	logger = logging.WithContext(ctx, logger)

	moves, err := store.Moves(ctx, run.ID)
	if err != nil {
		return result, services.Wrap(services.ErrValidation, "undo", "load moves", "", err)
	}

	for i := len(moves) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		move := moves[i]
		if move.Undone() {
			result.Already++
			continue
		}
		fileLogger := logger.With(logging.String(logging.FieldFile, filepath.Base(move.SourcePath)))
		if err := restore(move); err != nil {
			result.Skipped++
			logging.WarnWithContext(fileLogger, "restore skipped", "undo_restore_skipped",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "move the file back manually if still needed"),
				logging.String(logging.FieldImpact, "file stays in the organized folder"),
			)
			continue
		}
		result.Restored++
		if err := store.MarkUndone(ctx, move.ID, time.Now()); err != nil {
			logging.WarnWithContext(fileLogger, "journal undo mark failed", "journal_write_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "a repeated undo will report this file as skipped"),
			)
		}
		fileLogger.Info("file restored", logging.String("destination", move.SourcePath))
	}

	logger.Info("undo finished",
		logging.Int("restored", result.Restored),
		logging.Int("skipped", result.Skipped),
		logging.Int("already_undone", result.Already),
	)
	return result, nil
}

func restore(move journal.Move) error {
	if !fileutil.Exists(move.DestinationPath) {
		return fmt.Errorf("organized file %s no longer exists", move.DestinationPath)
	}
	if fileutil.Exists(move.SourcePath) {
		return fmt.Errorf("original location %s is occupied", move.SourcePath)
	}
	if err := os.MkdirAll(filepath.Dir(move.SourcePath), 0o755); err != nil {
		return fmt.Errorf("recreate source directory: %w", err)
	}
	return fileutil.MoveFile(move.DestinationPath, move.SourcePath)
}
