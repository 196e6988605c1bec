package credential

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"trustgraph/pkg/domain"
	"trustgraph/pkg/platform/sentinel"
	txcontext "trustgraph/pkg/platform/tx"
)

// PostgresStore persists credential records and the issuer set.
//
// Schema:
//
//	CREATE TABLE IF NOT EXISTS credentials (
//	    hash       TEXT PRIMARY KEY,
//	    issuer     TEXT   NOT NULL,
//	    subject    TEXT   NOT NULL,
//	    issued_at  BIGINT NOT NULL,
//	    expires_at BIGINT,
//	    revoked    BOOLEAN NOT NULL DEFAULT FALSE
//	);
//	CREATE TABLE IF NOT EXISTS credential_issuers (
//	    issuer TEXT PRIMARY KEY
//	);
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// execer joins an enclosing transaction when one is carried in the context,
// so a service-level operation stays all-or-nothing across tables.
func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func (s *PostgresStore) Create(ctx context.Context, record Record) error {
	var expiresAt sql.NullInt64
	if record.ExpiresAt != nil {
		expiresAt = sql.NullInt64{Int64: int64(*record.ExpiresAt), Valid: true}
	}
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO credentials (hash, issuer, subject, issued_at, expires_at, revoked)
		VALUES ($1, $2, $3, $4, $5, FALSE)`,
		record.Hash, string(record.Issuer), string(record.Subject), record.IssuedAt, expiresAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("credential hash already issued: %w", sentinel.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("insert credential: %w", err)
	}
	return nil
}

func (s *PostgresStore) Find(ctx context.Context, hash string) (Record, error) {
	var (
		record    Record
		issuer    string
		subject   string
		expiresAt sql.NullInt64
	)
	err := s.execer(ctx).QueryRowContext(ctx, `
		SELECT hash, issuer, subject, issued_at, expires_at, revoked
		FROM credentials WHERE hash = $1`, hash,
	).Scan(&record.Hash, &issuer, &subject, &record.IssuedAt, &expiresAt, &record.Revoked)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("credential not found: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return Record{}, fmt.Errorf("find credential: %w", err)
	}
	record.Issuer = domain.Account(issuer)
	record.Subject = domain.Account(subject)
	if expiresAt.Valid {
		v := uint64(expiresAt.Int64)
		record.ExpiresAt = &v
	}
	return record, nil
}

func (s *PostgresStore) MarkRevoked(ctx context.Context, hash string) error {
	res, err := s.execer(ctx).ExecContext(ctx,
		`UPDATE credentials SET revoked = TRUE WHERE hash = $1 AND NOT revoked`, hash)
	if err != nil {
		return fmt.Errorf("revoke credential: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("revoke credential: %w", err)
	}
	if affected == 1 {
		return nil
	}
	// Distinguish missing from already revoked.
	if _, err := s.Find(ctx, hash); err != nil {
		return err
	}
	return fmt.Errorf("credential already revoked: %w", sentinel.ErrInvalidState)
}

func (s *PostgresStore) Count(ctx context.Context) (uint64, error) {
	var count uint64
	if err := s.execer(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM credentials`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count credentials: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) Authorize(ctx context.Context, issuer domain.Account) error {
	_, err := s.execer(ctx).ExecContext(ctx,
		`INSERT INTO credential_issuers (issuer) VALUES ($1)`, string(issuer))
	if isUniqueViolation(err) {
		return fmt.Errorf("issuer already authorized: %w", sentinel.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("authorize issuer: %w", err)
	}
	return nil
}

func (s *PostgresStore) Deauthorize(ctx context.Context, issuer domain.Account) error {
	res, err := s.execer(ctx).ExecContext(ctx,
		`DELETE FROM credential_issuers WHERE issuer = $1`, string(issuer))
	if err != nil {
		return fmt.Errorf("deauthorize issuer: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deauthorize issuer: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("issuer not authorized: %w", sentinel.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) IsAuthorized(ctx context.Context, issuer domain.Account) (bool, error) {
	var exists bool
	err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM credential_issuers WHERE issuer = $1)`, string(issuer)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check issuer authorization: %w", err)
	}
	return exists, nil
}
