package accesspolicy

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"trustgraph/pkg/domain"
	"trustgraph/pkg/platform/sentinel"
)

type indexKey struct {
	verifier       domain.Account
	credentialType string
}

// InMemoryStore holds policies and the bounded indexes under one lock.
type InMemoryStore struct {
	mu       sync.RWMutex
	policies map[string]Policy
	index    map[indexKey][]string
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		policies: make(map[string]Policy),
		index:    make(map[indexKey][]string),
	}
}

func (s *InMemoryStore) Upsert(_ context.Context, policy Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policies[policy.ID] = policy
	return nil
}

func (s *InMemoryStore) Find(_ context.Context, policyID string) (Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if policy, ok := s.policies[policyID]; ok {
		return policy, nil
	}
	return Policy{}, fmt.Errorf("policy not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryStore) AppendIndex(_ context.Context, verifier domain.Account, credentialType, policyID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := indexKey{verifier: verifier, credentialType: credentialType}
	ids := s.index[key]
	if slices.Contains(ids, policyID) {
		return true, nil
	}
	if len(ids) >= IndexCapacity {
		return false, nil
	}
	s.index[key] = append(ids, policyID)
	return true, nil
}

func (s *InMemoryStore) ListByIndex(_ context.Context, verifier domain.Account, credentialType string) ([]Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key := indexKey{verifier: verifier, credentialType: credentialType}
	out := make([]Policy, 0, len(s.index[key]))
	for _, id := range s.index[key] {
		if policy, ok := s.policies[id]; ok {
			out = append(out, policy)
		}
	}
	return out, nil
}

func (s *InMemoryStore) Count(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.policies)), nil
}
