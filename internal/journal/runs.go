package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"filesort/internal/services"
)

const runColumns = "id, source_dir, destination_root, provider, state, total, processed, moved, skipped, error_message, started_at, finished_at"

// BeginRun records a newly started run.
func (s *Store) BeginRun(ctx context.Context, run Run) error {
	if strings.TrimSpace(run.ID) == "" {
		return errors.New("begin run: id required")
	}
	_, err := s.execWithRetry(ctx,
		`INSERT INTO runs (`+runColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.SourceDir,
		run.DestinationRoot,
		run.Provider,
		run.State,
		run.Total,
		run.Processed,
		run.Moved,
		run.Skipped,
		nullableString(run.ErrorMessage),
		formatTime(run.StartedAt),
		formatTime(run.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// FinishRun stores the terminal state and counters of a run.
func (s *Store) FinishRun(ctx context.Context, run Run) error {
	res, err := s.execWithRetry(ctx,
		`UPDATE runs SET state = ?, total = ?, processed = ?, moved = ?, skipped = ?,
            error_message = ?, finished_at = ? WHERE id = ?`,
		run.State,
		run.Total,
		run.Processed,
		run.Moved,
		run.Skipped,
		nullableString(run.ErrorMessage),
		formatTime(run.FinishedAt),
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return services.Wrap(services.ErrNotFound, "journal", "finish run", fmt.Sprintf("run %s", run.ID), nil)
	}
	return nil
}

// ListRuns returns the most recent runs first. A limit <= 0 returns all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	ctx = ensureContext(ctx)
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// FindRun resolves a full run ID or an unambiguous prefix of one.
func (s *Store) FindRun(ctx context.Context, idOrPrefix string) (Run, error) {
	ctx = ensureContext(ctx)
	idOrPrefix = strings.TrimSpace(idOrPrefix)
	if idOrPrefix == "" {
		return Run{}, services.Wrap(services.ErrValidation, "journal", "find run", "run id required", nil)
	}
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(idOrPrefix)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ? OR id LIKE ? ESCAPE '\' ORDER BY id LIMIT 2`,
		idOrPrefix, escaped+"%",
	)
	if err != nil {
		return Run{}, fmt.Errorf("find run: %w", err)
	}
	defer rows.Close()

	var matches []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return Run{}, err
		}
		if run.ID == idOrPrefix {
			return run, nil
		}
		matches = append(matches, run)
	}
	if err := rows.Err(); err != nil {
		return Run{}, err
	}
	switch len(matches) {
	case 0:
		return Run{}, services.Wrap(services.ErrNotFound, "journal", "find run", fmt.Sprintf("no run matches %q", idOrPrefix), nil)
	case 1:
		return matches[0], nil
	default:
		return Run{}, services.Wrap(services.ErrValidation, "journal", "find run", fmt.Sprintf("run id prefix %q is ambiguous", idOrPrefix), nil)
	}
}

func scanRun(row interface{ Scan(dest ...any) error }) (Run, error) {
	var (
		run         Run
		errorMsg    sql.NullString
		startedRaw  sql.NullString
		finishedRaw sql.NullString
	)
	if err := row.Scan(
		&run.ID,
		&run.SourceDir,
		&run.DestinationRoot,
		&run.Provider,
		&run.State,
		&run.Total,
		&run.Processed,
		&run.Moved,
		&run.Skipped,
		&errorMsg,
		&startedRaw,
		&finishedRaw,
	); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.ErrorMessage = errorMsg.String
	run.StartedAt = parseTime(startedRaw)
	run.FinishedAt = parseTime(finishedRaw)
	return run, nil
}
