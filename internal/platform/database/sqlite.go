package database

import (
	"database/sql"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"visitr/internal/platform/config"
)

// sqliteDSN strips the file: scheme the sqlite3 driver does not need and
// turns on foreign keys.
func sqliteDSN(url string) string {
	dsn := strings.TrimPrefix(url, "file:")
	if dsn == ":memory:" {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_foreign_keys=on&_busy_timeout=5000"
}

func NewSQLite(cfg config.SQLiteConfig) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", sqliteDSN(cfg.URL))
	if err != nil {
		return nil, err
	}

	maxConns := cfg.MaxConnections
	if maxConns <= 0 {
		maxConns = 1
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
