// Package db persists the lyric corpus in SQLite.
package db

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS sources (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	uid TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	artist TEXT,
	title TEXT,
	url TEXT,
	added_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	last_processed_line INTEGER NOT NULL DEFAULT 0,
	completed INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS lines (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	source_id INTEGER NOT NULL REFERENCES sources(id) ON DELETE CASCADE,
	seq INTEGER NOT NULL,
	text TEXT NOT NULL,
	words TEXT NOT NULL DEFAULT '',
	section TEXT NOT NULL,
	ordinal INTEGER NOT NULL DEFAULT 0,
	position INTEGER NOT NULL DEFAULT 0,
	syllables INTEGER NOT NULL DEFAULT 0,
	rhyme_key TEXT NOT NULL DEFAULT '',
	themes TEXT NOT NULL DEFAULT '',
	UNIQUE(source_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_lines_rhyme_key ON lines(rhyme_key);

CREATE TABLE IF NOT EXISTS vocabulary (
	word TEXT PRIMARY KEY,
	count INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS rhyme_words (
	word TEXT NOT NULL,
	source TEXT NOT NULL,
	rhyme_key TEXT NOT NULL,
	syllables INTEGER NOT NULL DEFAULT 0,
	pron_source TEXT NOT NULL DEFAULT '',
	frequency INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (word, source)
);

CREATE INDEX IF NOT EXISTS idx_rhyme_words_key ON rhyme_words(rhyme_key);

CREATE TABLE IF NOT EXISTS theme_counts (
	theme TEXT PRIMARY KEY,
	count INTEGER NOT NULL DEFAULT 0
);
`

// InitDB creates the schema on the given connection. It is idempotent.
func InitDB(db *sql.DB) error {
	stmts := strings.Split(schemaSQL, ";")
	for _, s := range stmts {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// Open opens (creating if needed) the SQLite database at path and applies
// the schema. ":memory:" is limited to one connection so every query sees
// the same database.
func Open(path string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	if path == ":memory:" {
		conn.SetMaxOpenConns(1)
	}
	if err := InitDB(conn); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}
