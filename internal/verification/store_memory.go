package verification

import (
	"context"
	"fmt"
	"sync"

	"trustgraph/pkg/platform/sentinel"
)

// InMemoryStore holds verification records. Records are never deleted.
type InMemoryStore struct {
	mu     sync.RWMutex
	proofs map[string]Record
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{proofs: make(map[string]Record)}
}

func (s *InMemoryStore) Create(_ context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.proofs[record.ProofHash]; ok {
		return fmt.Errorf("proof hash already submitted: %w", sentinel.ErrConflict)
	}
	s.proofs[record.ProofHash] = record
	return nil
}

func (s *InMemoryStore) Find(_ context.Context, proofHash string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if record, ok := s.proofs[proofHash]; ok {
		return record, nil
	}
	return Record{}, fmt.Errorf("proof not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryStore) MarkVerified(_ context.Context, proofHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.proofs[proofHash]
	if !ok {
		return fmt.Errorf("proof not found: %w", sentinel.ErrNotFound)
	}
	if record.Verified {
		return fmt.Errorf("proof already verified: %w", sentinel.ErrInvalidState)
	}
	record.Verified = true
	s.proofs[proofHash] = record
	return nil
}

func (s *InMemoryStore) Count(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.proofs)), nil
}
