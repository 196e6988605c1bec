package credential

import (
	"context"

	"trustgraph/pkg/domain"
)

// Store persists credential records and the issuer-authorization set.
//
// Sentinel contract: ErrConflict when a hash or authorization already exists,
// ErrNotFound when absent, ErrInvalidState when a record cannot make the
// requested transition (already revoked).
type Store interface {
	Create(ctx context.Context, record Record) error
	Find(ctx context.Context, hash string) (Record, error)
	// MarkRevoked flips Revoked exactly once; a second call fails.
	MarkRevoked(ctx context.Context, hash string) error
	Count(ctx context.Context) (uint64, error)

	Authorize(ctx context.Context, issuer domain.Account) error
	Deauthorize(ctx context.Context, issuer domain.Account) error
	IsAuthorized(ctx context.Context, issuer domain.Account) (bool, error)
}
