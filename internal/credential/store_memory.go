package credential

import (
	"context"
	"fmt"
	"sync"

	"trustgraph/pkg/domain"
	"trustgraph/pkg/platform/sentinel"
)

// InMemoryStore holds credential records and the issuer set. Records are
// never deleted; a consumed hash stays consumed.
type InMemoryStore struct {
	mu          sync.RWMutex
	credentials map[string]Record
	issuers     map[domain.Account]struct{}
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		credentials: make(map[string]Record),
		issuers:     make(map[domain.Account]struct{}),
	}
}

func (s *InMemoryStore) Create(_ context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.credentials[record.Hash]; ok {
		return fmt.Errorf("credential hash already issued: %w", sentinel.ErrConflict)
	}
	s.credentials[record.Hash] = record
	return nil
}

func (s *InMemoryStore) Find(_ context.Context, hash string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if record, ok := s.credentials[hash]; ok {
		return record, nil
	}
	return Record{}, fmt.Errorf("credential not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryStore) MarkRevoked(_ context.Context, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.credentials[hash]
	if !ok {
		return fmt.Errorf("credential not found: %w", sentinel.ErrNotFound)
	}
	if record.Revoked {
		return fmt.Errorf("credential already revoked: %w", sentinel.ErrInvalidState)
	}
	record.Revoked = true
	s.credentials[hash] = record
	return nil
}

func (s *InMemoryStore) Count(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.credentials)), nil
}

func (s *InMemoryStore) Authorize(_ context.Context, issuer domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.issuers[issuer]; ok {
		return fmt.Errorf("issuer already authorized: %w", sentinel.ErrConflict)
	}
	s.issuers[issuer] = struct{}{}
	return nil
}

func (s *InMemoryStore) Deauthorize(_ context.Context, issuer domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.issuers[issuer]; !ok {
		return fmt.Errorf("issuer not authorized: %w", sentinel.ErrNotFound)
	}
	delete(s.issuers, issuer)
	return nil
}

func (s *InMemoryStore) IsAuthorized(_ context.Context, issuer domain.Account) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.issuers[issuer]
	return ok, nil
}
