package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

var pragmas = []struct {
	name      string
	statement string
}{
	{name: "WAL", statement: `PRAGMA journal_mode = WAL;`},
	{name: "foreign keys", statement: `PRAGMA foreign_keys = ON;`},
	{name: "busy timeout", statement: `PRAGMA busy_timeout = 5000;`},
}

// Open opens the mapping store. The API and the sync job share one file,
// so writers wait on the busy timeout instead of failing.
func Open(sqlitePath string) (*sql.DB, error) {
	dir := filepath.Dir(sqlitePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}

	db, err := sql.Open("sqlite", sqlitePath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma.statement); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set sqlite %s: %w", pragma.name, err)
		}
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return db, nil
}
