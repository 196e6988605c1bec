package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	dErrors "trustgraph/pkg/domain-errors"
)

func TestValidateIdentifier(t *testing.T) {
	assert.NoError(t, ValidateIdentifier("did:example:123"))

	err := ValidateIdentifier("")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	err = ValidateIdentifier("no-method-separator")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	long := "did:example:" + strings.Repeat("a", MaxIdentifierLen)
	err = ValidateIdentifier(long)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestValidateHash(t *testing.T) {
	assert.NoError(t, ValidateHash(strings.Repeat("ab", 32), "credential hash"))
	assert.NoError(t, ValidateHash("x", "credential hash"))

	err := ValidateHash("", "credential hash")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	err = ValidateHash(strings.Repeat("a", MaxHashLen+1), "credential hash")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestRequireAccount(t *testing.T) {
	assert.NoError(t, RequireAccount("alice", "subject"))

	err := RequireAccount(ZeroAccount, "subject")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeZeroAddress))
}

func TestAccountIsZero(t *testing.T) {
	assert.True(t, ZeroAccount.IsZero())
	assert.False(t, Account("alice").IsZero())
}
