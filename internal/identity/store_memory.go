package identity

import (
	"context"
	"fmt"
	"sync"

	"trustgraph/pkg/domain"
	"trustgraph/pkg/platform/sentinel"
)

// InMemoryStore keeps both directions of the bijection under one lock so
// register, relink, and delete are atomic across the forward and reverse maps.
type InMemoryStore struct {
	mu        sync.RWMutex
	bySubject map[domain.Account]Record
	byIdent   map[string]domain.Account
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		bySubject: make(map[domain.Account]Record),
		byIdent:   make(map[string]domain.Account),
	}
}

func (s *InMemoryStore) Create(_ context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bySubject[record.Subject]; ok {
		return fmt.Errorf("account already registered: %w", sentinel.ErrConflict)
	}
	if _, ok := s.byIdent[record.Identifier]; ok {
		return fmt.Errorf("identifier already bound: %w", sentinel.ErrConflict)
	}
	s.bySubject[record.Subject] = record
	s.byIdent[record.Identifier] = record.Subject
	return nil
}

func (s *InMemoryStore) FindBySubject(_ context.Context, subject domain.Account) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if record, ok := s.bySubject[subject]; ok {
		return record, nil
	}
	return Record{}, fmt.Errorf("account not registered: %w", sentinel.ErrNotFound)
}

func (s *InMemoryStore) FindByIdentifier(_ context.Context, identifier string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	subject, ok := s.byIdent[identifier]
	if !ok {
		return Record{}, fmt.Errorf("identifier not bound: %w", sentinel.ErrNotFound)
	}
	return s.bySubject[subject], nil
}

func (s *InMemoryStore) Relink(_ context.Context, subject domain.Account, newIdentifier string, at uint64) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.bySubject[subject]
	if !ok {
		return Record{}, fmt.Errorf("account not registered: %w", sentinel.ErrNotFound)
	}
	if bound, ok := s.byIdent[newIdentifier]; ok && bound != subject {
		return Record{}, fmt.Errorf("identifier already bound: %w", sentinel.ErrConflict)
	}
	delete(s.byIdent, record.Identifier)
	record.Identifier = newIdentifier
	record.LastUpdatedAt = at
	s.bySubject[subject] = record
	s.byIdent[newIdentifier] = subject
	return record, nil
}

func (s *InMemoryStore) Delete(_ context.Context, subject domain.Account) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.bySubject[subject]
	if !ok {
		return Record{}, fmt.Errorf("account not registered: %w", sentinel.ErrNotFound)
	}
	delete(s.bySubject, subject)
	delete(s.byIdent, record.Identifier)
	return record, nil
}

func (s *InMemoryStore) Count(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.bySubject)), nil
}
