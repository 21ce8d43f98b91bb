package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Flowcraft/internal/domain"
)

// pgUniqueViolation — код ошибки PostgreSQL при нарушении уникальности.
const pgUniqueViolation = "23505"

// WorkflowRepo — репозиторий сохранённых графов.
// Документ графа хранится в JSONB как есть, включая статусы и outputs узлов.
type WorkflowRepo struct {
	pool *pgxpool.Pool
}

// NewWorkflowRepo создаёт новый WorkflowRepo.
func NewWorkflowRepo(pool *pgxpool.Pool) *WorkflowRepo {
	return &WorkflowRepo{pool: pool}
}

// Create сохраняет новый workflow.
// Возвращает ErrAlreadyExists, если имя занято.
func (r *WorkflowRepo) Create(ctx context.Context, wf *domain.Workflow) error {
	doc, err := json.Marshal(wf.Document)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	query := `
		INSERT INTO workflows (id, name, document, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = r.pool.Exec(ctx, query,
		wf.ID,
		wf.Name,
		doc,
		wf.CreatedAt,
		wf.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: workflow %q", ErrAlreadyExists, wf.Name)
	}
	if err != nil {
		return fmt.Errorf("insert workflow: %w", err)
	}
	return nil
}

// GetByID возвращает workflow по ID.
func (r *WorkflowRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Workflow, error) {
	query := `
		SELECT id, name, document, created_at, updated_at
		FROM workflows
		WHERE id = $1
	`
	return r.scanWorkflow(r.pool.QueryRow(ctx, query, id))
}

// GetByName возвращает workflow по имени.
func (r *WorkflowRepo) GetByName(ctx context.Context, name string) (*domain.Workflow, error) {
	query := `
		SELECT id, name, document, created_at, updated_at
		FROM workflows
		WHERE name = $1
	`
	return r.scanWorkflow(r.pool.QueryRow(ctx, query, name))
}

// List возвращает все workflows, новые первыми.
func (r *WorkflowRepo) List(ctx context.Context) ([]domain.Workflow, error) {
	query := `
		SELECT id, name, document, created_at, updated_at
		FROM workflows
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}
	defer rows.Close()

	var workflows []domain.Workflow
	for rows.Next() {
		wf, err := r.scanWorkflow(rows)
		if err != nil {
			return nil, err
		}
		workflows = append(workflows, *wf)
	}
	return workflows, rows.Err()
}

// Update заменяет имя и документ workflow.
func (r *WorkflowRepo) Update(ctx context.Context, wf *domain.Workflow) error {
	doc, err := json.Marshal(wf.Document)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	query := `
		UPDATE workflows
		SET name = $2, document = $3, updated_at = $4
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query, wf.ID, wf.Name, doc, wf.UpdatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: workflow %q", ErrAlreadyExists, wf.Name)
	}
	if err != nil {
		return fmt.Errorf("update workflow: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete удаляет workflow (каскадно удалит runs и события).
func (r *WorkflowRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM workflows WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete workflow: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// scanWorkflow сканирует строку в Workflow.
func (r *WorkflowRepo) scanWorkflow(row pgx.Row) (*domain.Workflow, error) {
	var wf domain.Workflow
	var doc []byte

	err := row.Scan(
		&wf.ID,
		&wf.Name,
		&doc,
		&wf.CreatedAt,
		&wf.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan workflow: %w", err)
	}

	if err := json.Unmarshal(doc, &wf.Document); err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}
	return &wf, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
