// Package lifecycle holds the mutable administrative state every store owns:
// the administrator account and the pause flag. All access goes through the
// owning store's operations; nothing here is ambient or global.
package lifecycle

import (
	"sync"

	"trustgraph/pkg/domain"
	dErrors "trustgraph/pkg/domain-errors"
)

// State is initialized once at deployment with the store's administrator and
// mutated only through the owning store's admin operations.
type State struct {
	mu     sync.RWMutex
	admin  domain.Account
	paused bool
}

func New(admin domain.Account) *State {
	return &State{admin: admin}
}

// Admin returns the current administrator account.
func (s *State) Admin() domain.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.admin
}

// Paused reports whether mutations are currently refused.
func (s *State) Paused() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.paused
}

// RequireAdmin rejects callers other than the current administrator.
func (s *State) RequireAdmin(caller domain.Account) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if caller != s.admin {
		return dErrors.New(dErrors.CodeNotAuthorized, "caller is not the store administrator")
	}
	return nil
}

// RequireActive rejects mutations while the store is paused.
func (s *State) RequireActive() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.paused {
		return dErrors.New(dErrors.CodePaused, "store is paused")
	}
	return nil
}

// SetPaused flips the pause flag. Administrator only.
func (s *State) SetPaused(caller domain.Account, paused bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if caller != s.admin {
		return dErrors.New(dErrors.CodeNotAuthorized, "caller is not the store administrator")
	}
	s.paused = paused
	return nil
}

// TransferAdmin rotates the administrator. Only the current administrator may
// rotate, and never to the zero account.
func (s *State) TransferAdmin(caller, newAdmin domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if caller != s.admin {
		return dErrors.New(dErrors.CodeNotAuthorized, "caller is not the store administrator")
	}
	if newAdmin.IsZero() {
		return dErrors.New(dErrors.CodeZeroAddress, "new administrator must not be the zero account")
	}
	s.admin = newAdmin
	return nil
}
