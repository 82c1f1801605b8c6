// Package sqlstore is the SQL implementation of the storage port. It
// runs on SQLite for the default single-user setup and on Postgres when
// the catalog is deployed as a service; all queries are written
// portably and rebound per driver.
package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS categories (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    icon TEXT NOT NULL DEFAULT 'folder.fill',
    color_name TEXT NOT NULL DEFAULT 'blue',
    parent_id TEXT REFERENCES categories(id) ON DELETE CASCADE,
    sort_order INTEGER NOT NULL DEFAULT 0,
    category_type TEXT
);

CREATE TABLE IF NOT EXISTS videos (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    instructor TEXT,
    description TEXT,
    source_type TEXT NOT NULL,
    source_url TEXT,
    local_path TEXT,
    thumbnail_path TEXT,
    duration REAL,
    category_id TEXT REFERENCES categories(id) ON DELETE SET NULL,
    progress_status TEXT NOT NULL DEFAULT 'not-seen',
    is_favorite BOOLEAN NOT NULL DEFAULT FALSE,
    notes TEXT,
    last_watched TIMESTAMP,
    date_added TIMESTAMP NOT NULL,
    gi_type TEXT NOT NULL DEFAULT 'both',
    level TEXT NOT NULL DEFAULT 'beginner',
    video_type TEXT NOT NULL DEFAULT 'instructional'
);

CREATE TABLE IF NOT EXISTS tags (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    color_name TEXT NOT NULL DEFAULT 'blue'
);

CREATE TABLE IF NOT EXISTS video_tags (
    video_id TEXT NOT NULL REFERENCES videos(id) ON DELETE CASCADE,
    tag_id TEXT NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
    PRIMARY KEY(video_id, tag_id)
);

CREATE TABLE IF NOT EXISTS timestamps (
    id TEXT PRIMARY KEY,
    video_id TEXT NOT NULL REFERENCES videos(id) ON DELETE CASCADE,
    time REAL NOT NULL,
    label TEXT NOT NULL DEFAULT ''
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_videos_local_path ON videos(local_path);
CREATE INDEX IF NOT EXISTS idx_videos_category ON videos(category_id);
CREATE INDEX IF NOT EXISTS idx_categories_parent ON categories(parent_id);
CREATE INDEX IF NOT EXISTS idx_timestamps_video ON timestamps(video_id);
`

const outboxSQLite = `
CREATE TABLE IF NOT EXISTS outbox (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    event_id TEXT NOT NULL,
    event_type TEXT NOT NULL,
    aggregate_id TEXT NOT NULL,
    payload TEXT NOT NULL,
    occurred_at TIMESTAMP NOT NULL,
    processed_at TIMESTAMP
);
`

const outboxPostgres = `
CREATE TABLE IF NOT EXISTS outbox (
    id BIGSERIAL PRIMARY KEY,
    event_id TEXT NOT NULL,
    event_type TEXT NOT NULL,
    aggregate_id TEXT NOT NULL,
    payload TEXT NOT NULL,
    occurred_at TIMESTAMP NOT NULL,
    processed_at TIMESTAMP
);
`

// Connect opens the database for dsn and applies the schema. A
// postgres:// dsn selects the pgx driver; anything else is treated as a
// SQLite file path.
func Connect(ctx context.Context, dsn string) (*sqlx.DB, error) {
	driver := "sqlite3"
	outbox := outboxSQLite
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		driver = "pgx"
		outbox = outboxPostgres
	} else if !strings.Contains(dsn, "_foreign_keys") {
		// Cascade and nullify rules live in the schema; SQLite only
		// honors them with foreign keys switched on.
		if strings.Contains(dsn, "?") {
			dsn += "&_foreign_keys=on"
		} else {
			dsn += "?_foreign_keys=on"
		}
	}

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}

	if driver == "pgx" {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(time.Hour)
		db.SetConnMaxIdleTime(5 * time.Minute)
	} else {
		// SQLite serializes writers; one connection avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	}

	// One statement per Exec: the pgx driver does not accept
	// multi-statement strings over the extended protocol.
	for _, stmt := range strings.Split(schema+outbox, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}
	return db, nil
}
