// Package adapters bridges the access policy store's oracle ports onto the
// credential and verification services.
package adapters

import (
	"context"

	"trustgraph/internal/accesspolicy"
	"trustgraph/internal/credential"
	"trustgraph/internal/verification"
)

// CredentialAdapter exposes a credential service as the policy store's
// CredentialOracle.
type CredentialAdapter struct {
	service *credential.Service
}

func NewCredentialAdapter(service *credential.Service) *CredentialAdapter {
	return &CredentialAdapter{service: service}
}

func (a *CredentialAdapter) Facts(ctx context.Context, credentialHash string) (accesspolicy.CredentialFacts, error) {
	record, err := a.service.Details(ctx, credentialHash)
	if err != nil {
		return accesspolicy.CredentialFacts{}, err
	}
	return accesspolicy.CredentialFacts{
		Issuer:  record.Issuer,
		Subject: record.Subject,
	}, nil
}

// VerificationAdapter exposes a verification service as the policy store's
// VerificationOracle.
type VerificationAdapter struct {
	service *verification.Service
}

func NewVerificationAdapter(service *verification.Service) *VerificationAdapter {
	return &VerificationAdapter{service: service}
}

func (a *VerificationAdapter) Proof(ctx context.Context, proofHash string) (accesspolicy.ProofFacts, error) {
	record, err := a.service.Details(ctx, proofHash)
	if err != nil {
		return accesspolicy.ProofFacts{}, err
	}
	return accesspolicy.ProofFacts{
		Verifier:       record.Verifier,
		Subject:        record.Subject,
		CredentialHash: record.CredentialHash,
		Verified:       record.Verified,
	}, nil
}
