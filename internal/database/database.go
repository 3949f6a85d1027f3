// Package database opens the shared Postgres pool the stores run on.
package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Rendering a feed fans out into per-post vote and history queries, so a
// roomy idle pool beats reopening connections on every read.
const (
	maxOpenConns    = 30
	maxIdleConns    = 10
	connMaxLifetime = 30 * time.Minute
)

func New(connStr string) (*sql.DB, error) {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}
