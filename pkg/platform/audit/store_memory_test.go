package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
)

type InMemoryLogSuite struct {
	suite.Suite
	ctx context.Context
	log *InMemoryLog
}

func TestInMemoryLogSuite(t *testing.T) {
	suite.Run(t, new(InMemoryLogSuite))
}

func (s *InMemoryLogSuite) SetupTest() {
	s.ctx = context.Background()
	s.log = NewInMemoryLog()
}

func (s *InMemoryLogSuite) append(actor, key string, typ EventType) Event {
	e, err := s.log.Append(s.ctx, Event{Actor: account(actor), EntityKey: key, Type: typ, Timestamp: 1})
	s.Require().NoError(err)
	return e
}

func (s *InMemoryLogSuite) TestAppendAssignsMonotonicIDs() {
	first := s.append("alice", "did:ex:1", EventRegistered)
	second := s.append("alice", "did:ex:1", EventUpdated)
	third := s.append("bob", "did:ex:2", EventRegistered)

	s.Equal(uint64(1), first.ID)
	s.Equal(uint64(2), second.ID)
	s.Equal(uint64(3), third.ID)

	count, err := s.log.Count(s.ctx)
	s.NoError(err)
	s.Equal(uint64(3), count)
}

func (s *InMemoryLogSuite) TestListPaginationWindow() {
	for i := 0; i < 5; i++ {
		s.append("alice", "did:ex:1", EventUpdated)
	}

	s.Run("first page", func() {
		events, err := s.log.List(s.ctx, Filter{}, 2, 0)
		s.NoError(err)
		s.Require().Len(events, 2)
		s.Equal(uint64(1), events[0].ID)
		s.Equal(uint64(2), events[1].ID)
	})

	s.Run("window shifts with offset", func() {
		events, err := s.log.List(s.ctx, Filter{}, 1, 1)
		s.NoError(err)
		s.Require().Len(events, 1)
		s.Equal(uint64(2), events[0].ID)
	})

	s.Run("window past the end is clamped", func() {
		events, err := s.log.List(s.ctx, Filter{}, 10, 3)
		s.NoError(err)
		s.Require().Len(events, 2)
		s.Equal(uint64(4), events[0].ID)
		s.Equal(uint64(5), events[1].ID)
	})

	s.Run("offset beyond the log is empty not an error", func() {
		events, err := s.log.List(s.ctx, Filter{}, 10, 100)
		s.NoError(err)
		s.Empty(events)
	})

	s.Run("zero limit yields an empty page", func() {
		events, err := s.log.List(s.ctx, Filter{}, 0, 0)
		s.NoError(err)
		s.Empty(events)
	})
}

func (s *InMemoryLogSuite) TestListFiltersInsideTheWindow() {
	// The window is an id range, not a post-filter page: events in the
	// window that fail the filter are skipped, not replaced.
	s.append("alice", "did:ex:1", EventRegistered) // id 1
	s.append("bob", "did:ex:2", EventRegistered)   // id 2
	s.append("alice", "did:ex:1", EventUpdated)    // id 3

	events, err := s.log.List(s.ctx, Filter{Actor: account("alice")}, 2, 0)
	s.NoError(err)
	s.Require().Len(events, 1)
	s.Equal(uint64(1), events[0].ID)

	events, err = s.log.List(s.ctx, Filter{Actor: account("alice")}, 2, 1)
	s.NoError(err)
	s.Require().Len(events, 1)
	s.Equal(uint64(3), events[0].ID)
}

func (s *InMemoryLogSuite) TestFilterByEntityKey() {
	s.append("alice", "did:ex:1", EventRegistered)
	s.append("alice", "did:ex:9", EventUpdated)

	events, err := s.log.List(s.ctx, Filter{EntityKey: "did:ex:9"}, 10, 0)
	s.NoError(err)
	s.Require().Len(events, 1)
	s.Equal(EventUpdated, events[0].Type)
}
