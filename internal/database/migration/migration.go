// Package migration creates the policytrack schema. Every step is idempotent, so the
// whole list runs on each start.
package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_documents",
		SQL: `CREATE TABLE IF NOT EXISTS documents (
  id                 UUID        PRIMARY KEY,
  name               TEXT        NOT NULL,
  short_code         TEXT        NOT NULL DEFAULT '',
  current_version_id UUID,
  created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_document_versions",
		SQL: `CREATE TABLE IF NOT EXISTS document_versions (
  id           UUID        PRIMARY KEY,
  document_id  UUID        NOT NULL REFERENCES documents (id) ON DELETE CASCADE,
  content_ref  TEXT        NOT NULL UNIQUE,
  filename     TEXT        NOT NULL,
  content_type TEXT        NOT NULL,
  uploaded_by  TEXT        NOT NULL,
  notes        TEXT        NOT NULL DEFAULT '',
  size         BIGINT      NOT NULL CHECK (size >= 0),
  status       TEXT        NOT NULL CHECK (status IN ('pending', 'published')),
  comparison   JSONB,
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_documents_updated_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_updated_at ON documents (updated_at DESC);`,
	},
	{
		Name: "create_index_document_versions_document",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_document_versions_document ON document_versions (document_id, created_at);`,
	},
	{
		Name: "create_index_document_versions_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_document_versions_created_at ON document_versions (created_at);`,
	},
	{
		// at most one version per document may wait for review
		Name: "create_index_document_versions_one_pending",
		SQL: `CREATE UNIQUE INDEX IF NOT EXISTS document_versions_one_pending_idx
  ON document_versions (document_id) WHERE status = 'pending';`,
	},
}

// EnsureMigrated applies every schema step in order and stops at the first failure.
func EnsureMigrated(ctx context.Context, db *sql.DB, log zerolog.Logger) error {
	start := time.Now()
	log = log.With().Str("component", "database").Logger()
	log.Info().Int("steps", len(steps)).Msg("db migration starting")

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error().Err(err).
				Str("migration_step", step.Name).
				Int64("duration_ms", time.Since(start).Milliseconds()).
				Msg("db migration failed")
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}
		log.Debug().
			Str("migration_step", step.Name).
			Int64("step_duration_ms", time.Since(stepStart).Milliseconds()).
			Msg("db migration step applied")
	}

	log.Info().Int64("duration_ms", time.Since(start).Milliseconds()).Msg("db migration complete")
	return nil
}
