package audit

import (
	"context"
	"database/sql"
	"fmt"

	"trustgraph/pkg/domain"
	txcontext "trustgraph/pkg/platform/tx"
)

// PostgresLog persists one component's trail in the audit_events table.
// Each log is scoped by its store name; event ids stay monotonic per store
// by serializing appends on a per-store advisory lock.
//
// Schema:
//
//	CREATE TABLE IF NOT EXISTS audit_events (
//	    store      TEXT   NOT NULL,
//	    event_id   BIGINT NOT NULL,
//	    actor      TEXT   NOT NULL,
//	    entity_key TEXT   NOT NULL,
//	    event_type TEXT   NOT NULL,
//	    ts         BIGINT NOT NULL,
//	    PRIMARY KEY (store, event_id)
//	);
type PostgresLog struct {
	db    *sql.DB
	store string
}

func NewPostgresLog(db *sql.DB, store string) *PostgresLog {
	return &PostgresLog{db: db, store: store}
}

// Append writes one event. When the context carries an enclosing transaction
// the append joins it, so the event commits or rolls back together with the
// operation's other writes; otherwise the append runs in its own transaction.
func (l *PostgresLog) Append(ctx context.Context, event Event) (Event, error) {
	if tx, ok := txcontext.From(ctx); ok {
		return l.appendIn(ctx, tx, event)
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return Event{}, fmt.Errorf("begin append tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	appended, err := l.appendIn(ctx, tx, event)
	if err != nil {
		return Event{}, err
	}
	if err := tx.Commit(); err != nil {
		return Event{}, fmt.Errorf("commit append tx: %w", err)
	}
	return appended, nil
}

func (l *PostgresLog) appendIn(ctx context.Context, tx *sql.Tx, event Event) (Event, error) {
	// Serialize appends per store so MAX(event_id)+1 cannot race.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, l.store); err != nil {
		return Event{}, fmt.Errorf("acquire append lock: %w", err)
	}

	var next uint64
	err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(event_id), 0) + 1 FROM audit_events WHERE store = $1`, l.store,
	).Scan(&next)
	if err != nil {
		return Event{}, fmt.Errorf("next event id: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO audit_events (store, event_id, actor, entity_key, event_type, ts)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		l.store, next, string(event.Actor), event.EntityKey, string(event.Type), event.Timestamp,
	)
	if err != nil {
		return Event{}, fmt.Errorf("insert audit event: %w", err)
	}
	event.ID = next
	return event, nil
}

func (l *PostgresLog) List(ctx context.Context, filter Filter, limit, offset uint64) ([]Event, error) {
	out := []Event{}
	if limit == 0 {
		return out, nil
	}
	rows, err := l.db.QueryContext(ctx, `
		SELECT event_id, actor, entity_key, event_type, ts
		FROM audit_events
		WHERE store = $1 AND event_id > $2 AND event_id <= $3
		ORDER BY event_id`,
		l.store, offset, offset+limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			e         Event
			actor     string
			eventType string
		)
		if err := rows.Scan(&e.ID, &actor, &e.EntityKey, &eventType, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Actor = domain.Account(actor)
		e.Type = EventType(eventType)
		if filter.Matches(e) {
			out = append(out, e)
		}
	}
	return out, rows.Err()
}

func (l *PostgresLog) Count(ctx context.Context) (uint64, error) {
	var count uint64
	err := l.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM audit_events WHERE store = $1`, l.store,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count audit events: %w", err)
	}
	return count, nil
}
