package accesspolicy

import (
	"context"

	"trustgraph/pkg/domain"
)

// CredentialFacts is the slice of a credential record access evaluation
// needs: who issued it and whom it is about.
type CredentialFacts struct {
	Issuer  domain.Account
	Subject domain.Account
}

// ProofFacts is the slice of a verification record access evaluation needs.
type ProofFacts struct {
	Verifier       domain.Account
	Subject        domain.Account
	CredentialHash string
	Verified       bool
}

// CredentialOracle and VerificationOracle are the injected cross-store
// references. Both must be configured before CheckAccess can run; a check
// against an unset oracle fails with MisconfiguredDependency.
type CredentialOracle interface {
	Facts(ctx context.Context, credentialHash string) (CredentialFacts, error)
}

type VerificationOracle interface {
	Proof(ctx context.Context, proofHash string) (ProofFacts, error)
}
