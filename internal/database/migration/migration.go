package migration

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
  id            TEXT        PRIMARY KEY,
  password_hash TEXT        NOT NULL,
  about         TEXT        NOT NULL DEFAULT '',
  email         TEXT        NOT NULL DEFAULT '',
  first_name    TEXT        NOT NULL DEFAULT '',
  last_name     TEXT        NOT NULL DEFAULT '',
  date_of_birth TIMESTAMPTZ,
  karma         INTEGER     NOT NULL DEFAULT 1,
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_sessions",
		SQL: `CREATE TABLE IF NOT EXISTS sessions (
  id         UUID        PRIMARY KEY,
  user_id    TEXT        NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  expires_at TIMESTAMPTZ NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_sequence_item_id",
		SQL:  `CREATE SEQUENCE IF NOT EXISTS item_id_seq;`,
	},
	{
		Name: "create_table_news_items",
		SQL: `CREATE TABLE IF NOT EXISTS news_items (
  id           BIGINT      PRIMARY KEY DEFAULT nextval('item_id_seq'),
  kind         TEXT        NOT NULL DEFAULT 'story' CHECK (kind IN ('story', 'job')),
  title        TEXT        NOT NULL,
  url          TEXT        NOT NULL DEFAULT '',
  text         TEXT        NOT NULL DEFAULT '',
  submitter_id TEXT        NOT NULL REFERENCES users (id),
  upvote_count INTEGER     NOT NULL DEFAULT 0 CHECK (upvote_count >= 0),
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_comments",
		SQL: `CREATE TABLE IF NOT EXISTS comments (
  id           BIGINT      PRIMARY KEY DEFAULT nextval('item_id_seq'),
  news_item_id BIGINT      NOT NULL REFERENCES news_items (id) ON DELETE CASCADE,
  parent_id    BIGINT      NOT NULL,
  submitter_id TEXT        NOT NULL REFERENCES users (id),
  text         TEXT        NOT NULL,
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_news_item_upvotes",
		SQL: `CREATE TABLE IF NOT EXISTS news_item_upvotes (
  news_item_id BIGINT      NOT NULL REFERENCES news_items (id) ON DELETE CASCADE,
  user_id      TEXT        NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
  PRIMARY KEY (news_item_id, user_id)
);`,
	},
	{
		Name: "create_table_news_item_hides",
		SQL: `CREATE TABLE IF NOT EXISTS news_item_hides (
  news_item_id BIGINT      NOT NULL REFERENCES news_items (id) ON DELETE CASCADE,
  user_id      TEXT        NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
  PRIMARY KEY (news_item_id, user_id)
);`,
	},
	{
		Name: "create_index_news_items_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_news_items_created_at ON news_items (created_at);`,
	},
	{
		Name: "create_index_news_items_submitter",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_news_items_submitter ON news_items (submitter_id);`,
	},
	{
		Name: "create_index_comments_parent",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_comments_parent ON comments (parent_id);`,
	},
	{
		Name: "create_index_upvotes_user",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_news_item_upvotes_user ON news_item_upvotes (user_id);`,
	},
	{
		Name: "create_index_hides_user",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_news_item_hides_user ON news_item_hides (user_id);`,
	},
	{
		Name: "create_index_sessions_expires_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions (expires_at);`,
	},
}

const createLedger = `CREATE TABLE IF NOT EXISTS schema_migrations (
  name       TEXT        PRIMARY KEY,
  applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

// EnsureMigrated applies every step not yet recorded in schema_migrations.
// Each step runs in its own transaction together with its ledger row.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *slog.Logger, dbHost string) error {
	start := time.Now()
	log = log.With(slog.String("component", "database"), slog.String("db_host", dbHost))

	log.Info("db_migration_check", slog.String("status", "starting"))

	if _, err := db.ExecContext(ctx, createLedger); err != nil {
		log.Error("db_migration_failed",
			slog.String("status", "error"),
			slog.String("error_message", err.Error()),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return fmt.Errorf("create migration ledger: %w", err)
	}

	applied, err := appliedSteps(ctx, db)
	if err != nil {
		return fmt.Errorf("read migration ledger: %w", err)
	}

	pending := 0
	for _, step := range steps {
		if applied[step.Name] {
			continue
		}
		pending++
		stepStart := time.Now()
		if err := applyStep(ctx, db, step); err != nil {
			log.Error("db_migration_failed",
				slog.String("status", "error"),
				slog.String("migration_step", step.Name),
				slog.String("error_message", err.Error()),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
				slog.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}
		log.Info("db_migration_step",
			slog.String("status", "success"),
			slog.String("migration_step", step.Name),
			slog.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
		)
	}

	if pending == 0 {
		log.Info("db_migration_skip",
			slog.String("status", "success"),
			slog.String("msg", "schema up to date"),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil
	}

	log.Info("db_migration_success",
		slog.String("status", "success"),
		slog.Int("applied_steps", pending),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return nil
}

func appliedSteps(ctx context.Context, db *sql.DB) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, `SELECT name FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out[name] = true
	}
	return out, rows.Err()
}

func applyStep(ctx context.Context, db *sql.DB, step migrationStep) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, step.SQL); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (name) VALUES ($1)`, step.Name); err != nil {
		return err
	}
	return tx.Commit()
}
