package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"filesort/internal/services"
)

const moveColumns = "id, run_id, source_path, destination_path, category, moved_at, undone_at"

// RecordMove appends a move to its run and returns the stored row ID.
func (s *Store) RecordMove(ctx context.Context, move Move) (int64, error) {
	if move.MovedAt.IsZero() {
		move.MovedAt = time.Now()
	}
	res, err := s.execWithRetry(ctx,
		`INSERT INTO moves (run_id, source_path, destination_path, category, moved_at) VALUES (?, ?, ?, ?, ?)`,
		move.RunID,
		move.SourcePath,
		move.DestinationPath,
		move.Category,
		formatTime(move.MovedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("insert move: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// Moves returns a run's moves in the order they happened.
func (s *Store) Moves(ctx context.Context, runID string) ([]Move, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+moveColumns+` FROM moves WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("list moves: %w", err)
	}
	defer rows.Close()

	var moves []Move
	for rows.Next() {
		var (
			move      Move
			movedRaw  sql.NullString
			undoneRaw sql.NullString
		)
		if err := rows.Scan(
			&move.ID,
			&move.RunID,
			&move.SourcePath,
			&move.DestinationPath,
			&move.Category,
			&movedRaw,
			&undoneRaw,
		); err != nil {
			return nil, fmt.Errorf("scan move: %w", err)
		}
		move.MovedAt = parseTime(movedRaw)
		move.UndoneAt = parseTime(undoneRaw)
		moves = append(moves, move)
	}
	return moves, rows.Err()
}

// MarkUndone stamps a move as reversed.
func (s *Store) MarkUndone(ctx context.Context, moveID int64, at time.Time) error {
	if at.IsZero() {
		at = time.Now()
	}
	res, err := s.execWithRetry(ctx,
		`UPDATE moves SET undone_at = ? WHERE id = ? AND undone_at IS NULL`,
		formatTime(at), moveID,
	)
	if err != nil {
		return fmt.Errorf("mark move undone: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return services.Wrap(services.ErrNotFound, "journal", "mark undone", fmt.Sprintf("pending move %d", moveID), nil)
	}
	return nil
}
