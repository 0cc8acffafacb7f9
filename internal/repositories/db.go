package repositories

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"tasktracker/internal/config"
	"tasktracker/internal/errs"
)

// Open connects to the configured database and applies pending migrations.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	driver := strings.ToLower(cfg.Driver)
	dsn := cfg.DSN
	if driver == "sqlite" {
		dsn = sqliteDSN(dsn)
	}
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, errs.Wrapf(err, "open %s database", driver)
	}

	// every :memory: connection is its own database
	if driver == "sqlite" && strings.Contains(dsn, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errs.Wrapf(err, "ping %s database", driver)
	}
	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// sqliteDSN makes every pooled connection enforce foreign keys.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_pragma=foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}

type migration struct {
	version  int
	postgres string
	sqlite   string
}

var migrations = []migration{
	{
		version: 1,
		postgres: `
CREATE TABLE IF NOT EXISTS users (
	id BIGSERIAL PRIMARY KEY,
	first_name TEXT NOT NULL,
	last_name TEXT NOT NULL DEFAULT '',
	email TEXT,
	phone TEXT,
	telegram_chat_id BIGINT,
	notify_telegram BOOLEAN NOT NULL DEFAULT FALSE,
	is_admin BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS projects (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	start_date TIMESTAMPTZ,
	end_date TIMESTAMPTZ,
	owner_id BIGINT NOT NULL,
	risk_level TEXT NOT NULL DEFAULT 'GREEN',
	budget DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS tasks (
	id BIGSERIAL PRIMARY KEY,
	project_id BIGINT REFERENCES projects(id) ON DELETE SET NULL,
	creator_id BIGINT NOT NULL DEFAULT 0,
	assignee_id BIGINT NOT NULL,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	due_at TIMESTAMPTZ,
	status TEXT NOT NULL DEFAULT 'PENDING',
	comments TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_tasks_assignee ON tasks(assignee_id);
CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id);
CREATE TABLE IF NOT EXISTS notifications (
	id BIGSERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL,
	message TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	is_read BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, created_at);
CREATE TABLE IF NOT EXISTS costs (
	id BIGSERIAL PRIMARY KEY,
	reference_kind TEXT NOT NULL,
	reference_id BIGINT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	amount DOUBLE PRECISION NOT NULL,
	cost_type TEXT NOT NULL,
	recorded_at TIMESTAMPTZ NOT NULL,
	recorded_by BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_costs_reference ON costs(reference_kind, reference_id);`,
		sqlite: `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	first_name TEXT NOT NULL,
	last_name TEXT NOT NULL DEFAULT '',
	email TEXT,
	phone TEXT,
	telegram_chat_id INTEGER,
	notify_telegram BOOLEAN NOT NULL DEFAULT 0,
	is_admin BOOLEAN NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS projects (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	start_date DATETIME,
	end_date DATETIME,
	owner_id INTEGER NOT NULL,
	risk_level TEXT NOT NULL DEFAULT 'GREEN',
	budget REAL NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS tasks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	project_id INTEGER REFERENCES projects(id) ON DELETE SET NULL,
	creator_id INTEGER NOT NULL DEFAULT 0,
	assignee_id INTEGER NOT NULL,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	due_at DATETIME,
	status TEXT NOT NULL DEFAULT 'PENDING',
	comments TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_tasks_assignee ON tasks(assignee_id);
CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id);
CREATE TABLE IF NOT EXISTS notifications (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	message TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	is_read BOOLEAN NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, created_at);
CREATE TABLE IF NOT EXISTS costs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	reference_kind TEXT NOT NULL,
	reference_id INTEGER NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	amount REAL NOT NULL,
	cost_type TEXT NOT NULL,
	recorded_at DATETIME NOT NULL,
	recorded_by INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_costs_reference ON costs(reference_kind, reference_id);`,
	},
}

// Migrate applies every migration newer than the recorded schema version.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return errs.Wrap(err, "create schema_version")
	}

	var current int
	if err := db.GetContext(ctx, &current, `SELECT COALESCE(MAX(version), 0) FROM schema_version`); err != nil {
		return errs.Wrap(err, "read schema version")
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		script := m.postgres
		if db.DriverName() == "sqlite" {
			script = m.sqlite
		}

		tx, err := db.BeginTxx(ctx, nil)
		if err != nil {
			return errs.Wrapf(err, "begin migration %d", m.version)
		}
		for _, stmt := range splitStatements(script) {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				_ = tx.Rollback()
				return errs.Wrapf(err, "apply migration %d", m.version)
			}
		}
		if _, err := tx.ExecContext(ctx,
			db.Rebind(`INSERT INTO schema_version (version) VALUES (?)`), m.version); err != nil {
			_ = tx.Rollback()
			return errs.Wrapf(err, "record migration %d", m.version)
		}
		if err := tx.Commit(); err != nil {
			return errs.Wrapf(err, "commit migration %d", m.version)
		}
	}
	return nil
}

func splitStatements(script string) []string {
	var out []string
	for _, stmt := range strings.Split(script, ";") {
		if s := strings.TrimSpace(stmt); s != "" {
			out = append(out, s)
		}
	}
	return out
}
