package identity

import (
	"trustgraph/pkg/domain"
)

// Record binds a subject account to its portable identifier.
//
// Invariants:
//   - subject↔identifier is a bijection: at most one identifier per account,
//     at most one account per identifier
//   - RegisteredAt is immutable after registration; Update preserves it
//   - LastUpdatedAt moves on every successful mutation
type Record struct {
	Subject       domain.Account
	Identifier    string
	RegisteredAt  uint64
	LastUpdatedAt uint64
}
