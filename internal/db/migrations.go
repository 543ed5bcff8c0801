package db

import (
	"database/sql"
	"fmt"
)

// Base schema - uses Snowflake IDs (no AUTOINCREMENT)
const baseSchema = `
CREATE TABLE IF NOT EXISTS folders (
  id INTEGER PRIMARY KEY,
  owner_id TEXT NOT NULL,
  name TEXT NOT NULL COLLATE NOCASE,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_folders_owner_name ON folders(owner_id, name);

CREATE TABLE IF NOT EXISTS feeds (
  id INTEGER PRIMARY KEY,
  owner_id TEXT NOT NULL,
  folder_id INTEGER,
  title TEXT NOT NULL,
  url TEXT NOT NULL,
  site_url TEXT,
  description TEXT,
  etag TEXT,
  last_modified TEXT,
  last_fetched_at TEXT,
  last_fetch_status TEXT,
  last_error_code TEXT,
  last_error_message TEXT,
  last_error_at TEXT,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL,
  FOREIGN KEY (folder_id) REFERENCES folders(id) ON DELETE SET NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_feeds_owner_url ON feeds(owner_id, url);
CREATE INDEX IF NOT EXISTS idx_feeds_folder_id ON feeds(folder_id);

CREATE TABLE IF NOT EXISTS feed_items (
  id INTEGER PRIMARY KEY,
  feed_id INTEGER NOT NULL,
  guid TEXT,
  fingerprint TEXT,
  title TEXT,
  url TEXT,
  content TEXT,
  author TEXT,
  published_at TEXT,
  read_at TEXT,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL,
  FOREIGN KEY (feed_id) REFERENCES feeds(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_feed_items_feed_id ON feed_items(feed_id);
CREATE UNIQUE INDEX IF NOT EXISTS idx_feed_items_feed_guid
  ON feed_items(feed_id, guid) WHERE guid IS NOT NULL;
CREATE UNIQUE INDEX IF NOT EXISTS idx_feed_items_feed_fingerprint
  ON feed_items(feed_id, fingerprint) WHERE fingerprint IS NOT NULL;

CREATE TABLE IF NOT EXISTS feed_folders (
  owner_id TEXT NOT NULL,
  feed_id INTEGER NOT NULL,
  folder_id INTEGER NOT NULL,
  created_at TEXT NOT NULL,
  PRIMARY KEY (feed_id, folder_id),
  FOREIGN KEY (feed_id) REFERENCES feeds(id) ON DELETE CASCADE,
  FOREIGN KEY (folder_id) REFERENCES folders(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_feed_folders_folder_id ON feed_folders(folder_id);
`

func Migrate(db *sql.DB) error {
	if _, err := db.Exec(baseSchema); err != nil {
		return fmt.Errorf("migrate base schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

func runMigrations(db *sql.DB) error {
	// Migration 1: Add custom_title column to feeds if not exists
	var count int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM pragma_table_info('feeds') WHERE name = 'custom_title'
	`).Scan(&count)
	if err != nil {
		return fmt.Errorf("check custom_title column: %w", err)
	}

	if count == 0 {
		if _, err := db.Exec(`ALTER TABLE feeds ADD COLUMN custom_title TEXT`); err != nil {
			return fmt.Errorf("add custom_title column: %w", err)
		}
	}

	// Migration 2: Unread listing index on (feed_id, read_at)
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_feed_items_feed_read ON feed_items(feed_id, read_at)`); err != nil {
		return fmt.Errorf("create idx_feed_items_feed_read: %w", err)
	}

	// Migration 3: Retention ordering index on (feed_id, published_at)
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_feed_items_feed_published ON feed_items(feed_id, published_at)`); err != nil {
		return fmt.Errorf("create idx_feed_items_feed_published: %w", err)
	}

	return nil
}
