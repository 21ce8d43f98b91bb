package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Flowcraft/internal/domain"
)

// RunRepo — репозиторий истории запусков и их журналов событий.
type RunRepo struct {
	pool *pgxpool.Pool
}

// NewRunRepo создаёт новый RunRepo.
func NewRunRepo(pool *pgxpool.Pool) *RunRepo {
	return &RunRepo{pool: pool}
}

// Save сохраняет завершённый запуск вместе с событиями в одной транзакции.
// Повторное сохранение того же запуска ничего не меняет.
func (r *RunRepo) Save(ctx context.Context, run *domain.RunRecord) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		INSERT INTO runs (id, workflow_id, status, started_at, finished_at, error)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`,
		run.ID,
		run.WorkflowID,
		run.Status,
		run.StartedAt,
		run.FinishedAt,
		nullString(run.Error),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	// Повторная доставка run.finished: запуск уже в архиве
	if tag.RowsAffected() == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for i, e := range run.Events {
		details, err := marshalDetails(e.Details)
		if err != nil {
			return err
		}
		batch.Queue(`
			INSERT INTO run_events (run_id, seq, id, node_id, node_name, status, message, details, timestamp)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, run.ID, i, e.ID, e.NodeID, e.NodeName, e.Status, e.Message, details, e.Timestamp)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert run events: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// GetByID возвращает запуск с событиями.
func (r *RunRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.RunRecord, error) {
	query := `
		SELECT id, workflow_id, status, started_at, finished_at, error
		FROM runs
		WHERE id = $1
	`
	run, err := r.scanRun(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}

	events, err := r.listEvents(ctx, id)
	if err != nil {
		return nil, err
	}
	run.Events = events
	return run, nil
}

// ListByWorkflow возвращает запуски workflow без событий, новые первыми.
func (r *RunRepo) ListByWorkflow(ctx context.Context, workflowID uuid.UUID, limit int) ([]domain.RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, workflow_id, status, started_at, finished_at, error
		FROM runs
		WHERE workflow_id = $1
		ORDER BY started_at DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, workflowID, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]domain.RunRecord, 0)
	for rows.Next() {
		run, err := r.scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

func (r *RunRepo) listEvents(ctx context.Context, runID uuid.UUID) ([]domain.Event, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, node_id, node_name, status, message, details, timestamp
		FROM run_events
		WHERE run_id = $1
		ORDER BY seq
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("list run events: %w", err)
	}
	defer rows.Close()

	events := make([]domain.Event, 0)
	for rows.Next() {
		var e domain.Event
		var details []byte
		if err := rows.Scan(
			&e.ID,
			&e.NodeID,
			&e.NodeName,
			&e.Status,
			&e.Message,
			&details,
			&e.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("scan run event: %w", err)
		}
		if details != nil {
			if err := json.Unmarshal(details, &e.Details); err != nil {
				return nil, fmt.Errorf("unmarshal details: %w", err)
			}
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// scanRun сканирует строку в RunRecord.
func (r *RunRepo) scanRun(row pgx.Row) (*domain.RunRecord, error) {
	var run domain.RunRecord
	var runError *string

	err := row.Scan(
		&run.ID,
		&run.WorkflowID,
		&run.Status,
		&run.StartedAt,
		&run.FinishedAt,
		&runError,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}

	if runError != nil {
		run.Error = *runError
	}
	return &run, nil
}

// marshalDetails сериализует details события; nil остаётся NULL.
func marshalDetails(details any) ([]byte, error) {
	if details == nil {
		return nil, nil
	}
	b, err := json.Marshal(details)
	if err != nil {
		return nil, fmt.Errorf("marshal event details: %w", err)
	}
	return b, nil
}
