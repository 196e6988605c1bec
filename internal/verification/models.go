package verification

import (
	"trustgraph/pkg/domain"
)

// Record is one submitted proof. A proof references a credential by hash and
// names the verifier allowed to confirm it.
//
// State machine: Submitted → Verified, terminal. There is no rejection or
// expiry state for proofs; the single transition is made once, by the
// verifier recorded at submission.
type Record struct {
	ProofHash      string
	Verifier       domain.Account
	Subject        domain.Account
	CredentialHash string
	SubmittedAt    uint64
	Verified       bool
}
