// Package postgres owns schema bootstrap for the Postgres-backed stores.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS credentials (
		hash       TEXT PRIMARY KEY,
		issuer     TEXT    NOT NULL,
		subject    TEXT    NOT NULL,
		issued_at  BIGINT  NOT NULL,
		expires_at BIGINT,
		revoked    BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS credential_issuers (
		issuer TEXT PRIMARY KEY
	)`,
	`CREATE TABLE IF NOT EXISTS audit_events (
		store      TEXT   NOT NULL,
		event_id   BIGINT NOT NULL,
		actor      TEXT   NOT NULL,
		entity_key TEXT   NOT NULL,
		event_type TEXT   NOT NULL,
		ts         BIGINT NOT NULL,
		PRIMARY KEY (store, event_id)
	)`,
	`CREATE INDEX IF NOT EXISTS audit_events_actor_idx ON audit_events (store, actor)`,
}

// EnsureSchema creates the tables the Postgres-backed stores expect. Schema
// changes are additive only; existing tables are left untouched.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
