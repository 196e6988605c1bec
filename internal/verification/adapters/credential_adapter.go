// Package adapters bridges the verification hub's oracle ports onto concrete
// services, keeping the hub decoupled from the credential package.
package adapters

import (
	"context"

	"trustgraph/internal/credential"
	"trustgraph/internal/verification"
	"trustgraph/pkg/domain"
)

// CredentialStoreAdapter exposes a credential service as the hub's
// CredentialOracle. The contract account identifies the credential store on
// the hub's trust list.
type CredentialStoreAdapter struct {
	contract domain.Account
	service  *credential.Service
}

func NewCredentialStoreAdapter(contract domain.Account, service *credential.Service) *CredentialStoreAdapter {
	return &CredentialStoreAdapter{contract: contract, service: service}
}

func (a *CredentialStoreAdapter) Contract() domain.Account {
	return a.contract
}

func (a *CredentialStoreAdapter) Facts(ctx context.Context, credentialHash string) (verification.CredentialFacts, error) {
	record, err := a.service.Details(ctx, credentialHash)
	if err != nil {
		return verification.CredentialFacts{}, err
	}
	return verification.CredentialFacts{
		Issuer:  record.Issuer,
		Subject: record.Subject,
	}, nil
}

func (a *CredentialStoreAdapter) IsValid(ctx context.Context, credentialHash string) (bool, error) {
	return a.service.IsValid(ctx, credentialHash)
}
