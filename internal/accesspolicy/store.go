package accesspolicy

import (
	"context"

	"trustgraph/pkg/domain"
)

// Store persists policies by id plus the bounded per-(verifier,
// credentialType) index used to enumerate candidates during evaluation.
//
// Sentinel contract: ErrNotFound when a policy id is absent.
type Store interface {
	// Upsert stores or overwrites the policy keyed by its id.
	Upsert(ctx context.Context, policy Policy) error
	Find(ctx context.Context, policyID string) (Policy, error)
	// AppendIndex adds the policy id to the pair's index unless it is
	// already present. Returns false when the index is at capacity and the
	// id was dropped.
	AppendIndex(ctx context.Context, verifier domain.Account, credentialType, policyID string) (bool, error)
	// ListByIndex resolves the pair's indexed policies in insertion order.
	ListByIndex(ctx context.Context, verifier domain.Account, credentialType string) ([]Policy, error)
	Count(ctx context.Context) (uint64, error)
}
