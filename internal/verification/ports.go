package verification

import (
	"context"

	"trustgraph/pkg/domain"
)

// CredentialFacts is the slice of a credential record this store needs when
// admitting a proof.
type CredentialFacts struct {
	Issuer  domain.Account
	Subject domain.Account
}

// CredentialOracle is the injected capability reference to the credential
// store backing proof admission. It is resolved once at configuration time;
// submissions fail with MisconfiguredDependency until it is set.
//
// Contract identifies the credential store itself. Trust in that contract is
// decided by this hub's own trusted-issuer list, independent of whatever
// per-issuer authorization the credential store maintains internally.
type CredentialOracle interface {
	Contract() domain.Account
	Facts(ctx context.Context, credentialHash string) (CredentialFacts, error)
	IsValid(ctx context.Context, credentialHash string) (bool, error)
}
