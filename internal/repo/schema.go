package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema — таблицы workflows, runs и run_events.
const schema = `
CREATE TABLE IF NOT EXISTS workflows (
	id         UUID PRIMARY KEY,
	name       TEXT NOT NULL UNIQUE,
	document   JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS runs (
	id          UUID PRIMARY KEY,
	workflow_id UUID REFERENCES workflows(id) ON DELETE CASCADE,
	status      TEXT NOT NULL,
	started_at  TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ,
	error       TEXT
);

CREATE INDEX IF NOT EXISTS runs_workflow_id_idx ON runs (workflow_id, started_at DESC);

CREATE TABLE IF NOT EXISTS run_events (
	run_id    UUID NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	seq       INT NOT NULL,
	id        TEXT NOT NULL,
	node_id   TEXT NOT NULL,
	node_name TEXT NOT NULL,
	status    TEXT NOT NULL,
	message   TEXT NOT NULL,
	details   JSONB,
	timestamp TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (run_id, seq)
);
`

// CreateSchema создаёт таблицы, если их нет.
func CreateSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}
