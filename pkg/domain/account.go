package domain

import (
	dErrors "trustgraph/pkg/domain-errors"
)

// Account is the opaque caller principal every store authorizes against. The
// system never inspects its shape; only the zero value is special.
type Account string

// ZeroAccount is the null principal. Operations that require a real account
// reject it with CodeZeroAddress.
const ZeroAccount Account = ""

// IsZero reports whether the account is the null principal.
func (a Account) IsZero() bool {
	return a == ZeroAccount
}

// RequireAccount rejects the null principal where a real account is needed.
func RequireAccount(a Account, field string) error {
	if a.IsZero() {
		return dErrors.New(dErrors.CodeZeroAddress, field+" must not be the zero account")
	}
	return nil
}
