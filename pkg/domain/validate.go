package domain

import (
	"strings"

	dErrors "trustgraph/pkg/domain-errors"
)

const (
	// MaxIdentifierLen bounds portable identifier strings.
	MaxIdentifierLen = 256
	// MaxHashLen bounds content-addressed commitments (credential and
	// proof hashes) and policy identifiers.
	MaxHashLen = 64
)

// ValidateIdentifier enforces the portable identifier format: non-empty, at
// most 256 characters, and carrying a scheme separator (e.g. "did:web:...").
func ValidateIdentifier(identifier string) error {
	if identifier == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "identifier must not be empty")
	}
	if len(identifier) > MaxIdentifierLen {
		return dErrors.New(dErrors.CodeInvalidInput, "identifier exceeds 256 characters")
	}
	if !strings.Contains(identifier, ":") {
		return dErrors.New(dErrors.CodeInvalidInput, "identifier must contain a scheme separator")
	}
	return nil
}

// ValidateHash enforces the 1..64 character bound shared by credential
// hashes, proof hashes, and policy identifiers.
func ValidateHash(hash, field string) error {
	if hash == "" {
		return dErrors.New(dErrors.CodeInvalidInput, field+" must not be empty")
	}
	if len(hash) > MaxHashLen {
		return dErrors.New(dErrors.CodeInvalidInput, field+" exceeds 64 characters")
	}
	return nil
}
