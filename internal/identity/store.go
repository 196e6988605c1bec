package identity

import (
	"context"

	"trustgraph/pkg/domain"
)

// Store persists identity records and enforces the bijection atomically.
// Implementations return sentinel errors: ErrConflict when either side of a
// binding is taken, ErrNotFound when the subject has no record.
type Store interface {
	Create(ctx context.Context, record Record) error
	FindBySubject(ctx context.Context, subject domain.Account) (Record, error)
	FindByIdentifier(ctx context.Context, identifier string) (Record, error)
	// Relink changes a subject's identifier, moving the reverse mapping in
	// the same atomic step and preserving RegisteredAt.
	Relink(ctx context.Context, subject domain.Account, newIdentifier string, at uint64) (Record, error)
	// Delete removes both directions of the binding.
	Delete(ctx context.Context, subject domain.Account) (Record, error)
	Count(ctx context.Context) (uint64, error)
}
