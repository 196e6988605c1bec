package accesspolicy

import (
	"trustgraph/pkg/domain"
)

// IndexCapacity bounds each per-(verifier, credentialType) policy index.
// Once full, later policy ids are silently dropped from the index: the
// earliest 100 win. This is a deliberate bounded-memory tradeoff, not an
// error condition, and it is not a sliding window.
const IndexCapacity = 100

// Policy grants or denies one verifier visibility into one credential type,
// optionally scoped to a single subject. A nil Subject is a wildcard.
type Policy struct {
	ID             string
	Verifier       domain.Account
	CredentialType string
	Subject        *domain.Account
	Allowed        bool
}

// MatchesSubject reports whether the policy applies to the given subject.
func (p Policy) MatchesSubject(subject domain.Account) bool {
	return p.Subject == nil || *p.Subject == subject
}
