package credential

import (
	"trustgraph/pkg/domain"
)

// Record is one issued credential, keyed by its content hash.
//
// Invariants:
//   - a hash is consumed for the lifetime of the store on issue; revocation
//     does not free it
//   - Revoked moves false→true exactly once and never back
//   - validity is derived at read time, never persisted
type Record struct {
	Hash     string
	Issuer   domain.Account
	Subject  domain.Account
	IssuedAt uint64
	// ExpiresAt is nil when the credential never expires.
	ExpiresAt *uint64
	Revoked   bool
}

// IsValid computes the query-time validity predicate. The expiry boundary is
// inclusive: a credential expiring exactly at now is still valid.
func (r Record) IsValid(now uint64) bool {
	if r.Revoked {
		return false
	}
	return r.ExpiresAt == nil || now <= *r.ExpiresAt
}
