package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"trustgraph/pkg/domain"
	dErrors "trustgraph/pkg/domain-errors"
	"trustgraph/pkg/platform/audit"
	"trustgraph/pkg/platform/clock"
)

type IdentityServiceSuite struct {
	suite.Suite
	ctx     context.Context
	clock   *clock.Manual
	log     *audit.InMemoryLog
	service *Service
}

func TestIdentityServiceSuite(t *testing.T) {
	suite.Run(t, new(IdentityServiceSuite))
}

func (s *IdentityServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = clock.NewManual(1000)
	s.log = audit.NewInMemoryLog()
	s.service = NewService(NewInMemoryStore(), s.log, s.clock, "admin")
}

// =============================================================================
// Register / Resolve
// =============================================================================

func (s *IdentityServiceSuite) TestRegister() {
	s.Run("register then resolve both directions", func() {
		rec, err := s.service.Register(s.ctx, "alice", "did:example:alice")
		s.Require().NoError(err)
		s.Equal(uint64(1000), rec.RegisteredAt)
		s.Equal(uint64(1000), rec.LastUpdatedAt)

		identifier, err := s.service.Resolve(s.ctx, "alice")
		s.NoError(err)
		s.Equal("did:example:alice", identifier)

		account, err := s.service.ResolveReverse(s.ctx, "did:example:alice")
		s.NoError(err)
		s.Equal(domain.Account("alice"), account)
	})

	s.Run("zero account rejected", func() {
		_, err := s.service.Register(s.ctx, domain.ZeroAccount, "did:example:x")
		s.True(dErrors.HasCode(err, dErrors.CodeZeroAddress))
	})

	s.Run("malformed identifier rejected", func() {
		_, err := s.service.Register(s.ctx, "bob", "not-an-identifier")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *IdentityServiceSuite) TestBijection() {
	_, err := s.service.Register(s.ctx, "alice", "did:example:alice")
	s.Require().NoError(err)

	s.Run("account may hold only one identifier", func() {
		_, err := s.service.Register(s.ctx, "alice", "did:example:other")
		s.True(dErrors.HasCode(err, dErrors.CodeAlreadyExists))
	})

	s.Run("identifier may be bound to only one account", func() {
		_, err := s.service.Register(s.ctx, "bob", "did:example:alice")
		s.True(dErrors.HasCode(err, dErrors.CodeAlreadyExists))
	})

	s.Run("update may not steal another account's identifier", func() {
		_, err := s.service.Register(s.ctx, "bob", "did:example:bob")
		s.Require().NoError(err)
		_, err = s.service.Update(s.ctx, "bob", "did:example:alice")
		s.True(dErrors.HasCode(err, dErrors.CodeAlreadyExists))
	})
}

func (s *IdentityServiceSuite) TestUpdate() {
	_, err := s.service.Register(s.ctx, "alice", "did:example:alice")
	s.Require().NoError(err)
	s.clock.Advance(10)

	s.Run("relink preserves the registration time", func() {
		rec, err := s.service.Update(s.ctx, "alice", "did:example:alice2")
		s.Require().NoError(err)
		s.Equal(uint64(1000), rec.RegisteredAt)
		s.Equal(uint64(1010), rec.LastUpdatedAt)
	})

	s.Run("old identifier is freed for reuse", func() {
		_, err := s.service.Register(s.ctx, "bob", "did:example:alice")
		s.NoError(err)
	})

	s.Run("unregistered account not found", func() {
		_, err := s.service.Update(s.ctx, "nobody", "did:example:new")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *IdentityServiceSuite) TestDeactivate() {
	_, err := s.service.Register(s.ctx, "alice", "did:example:alice")
	s.Require().NoError(err)
	s.Require().NoError(s.service.Deactivate(s.ctx, "alice"))

	s.Run("both directions removed", func() {
		_, err := s.service.Resolve(s.ctx, "alice")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		_, err = s.service.ResolveReverse(s.ctx, "did:example:alice")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("account and identifier are reusable after removal", func() {
		_, err := s.service.Register(s.ctx, "alice", "did:example:alice")
		s.NoError(err)
	})

	s.Run("double deactivate not found", func() {
		s.Require().NoError(s.service.Deactivate(s.ctx, "alice"))
		err := s.service.Deactivate(s.ctx, "alice")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *IdentityServiceSuite) TestRegistrationCount() {
	count, err := s.service.RegistrationCount(s.ctx)
	s.Require().NoError(err)
	s.Zero(count)

	_, err = s.service.Register(s.ctx, "alice", "did:example:alice")
	s.Require().NoError(err)
	_, err = s.service.Register(s.ctx, "bob", "did:example:bob")
	s.Require().NoError(err)
	s.Require().NoError(s.service.Deactivate(s.ctx, "bob"))

	count, err = s.service.RegistrationCount(s.ctx)
	s.NoError(err)
	s.Equal(uint64(1), count)
}

// =============================================================================
// Pause and admin
// =============================================================================

func (s *IdentityServiceSuite) TestPauseGatesMutations() {
	s.Require().NoError(s.service.SetPaused(s.ctx, "admin", true))

	_, err := s.service.Register(s.ctx, "alice", "did:example:alice")
	s.True(dErrors.HasCode(err, dErrors.CodePaused))
	_, err = s.service.Update(s.ctx, "alice", "did:example:alice2")
	s.True(dErrors.HasCode(err, dErrors.CodePaused))
	err = s.service.Deactivate(s.ctx, "alice")
	s.True(dErrors.HasCode(err, dErrors.CodePaused))

	s.Require().NoError(s.service.SetPaused(s.ctx, "admin", false))
	_, err = s.service.Register(s.ctx, "alice", "did:example:alice")
	s.NoError(err)
}

func (s *IdentityServiceSuite) TestReadsSurvivePause() {
	_, err := s.service.Register(s.ctx, "alice", "did:example:alice")
	s.Require().NoError(err)
	s.Require().NoError(s.service.SetPaused(s.ctx, "admin", true))

	identifier, err := s.service.Resolve(s.ctx, "alice")
	s.NoError(err)
	s.Equal("did:example:alice", identifier)
}

func (s *IdentityServiceSuite) TestOnlyAdminMayPause() {
	err := s.service.SetPaused(s.ctx, "mallory", true)
	s.True(dErrors.HasCode(err, dErrors.CodeNotAuthorized))
}

func (s *IdentityServiceSuite) TestTransferAdmin() {
	s.Require().NoError(s.service.TransferAdmin(s.ctx, "admin", "ops"))
	s.True(dErrors.HasCode(s.service.SetPaused(s.ctx, "admin", true), dErrors.CodeNotAuthorized))
	s.NoError(s.service.SetPaused(s.ctx, "ops", true))
}

// =============================================================================
// Audit trail
// =============================================================================

func (s *IdentityServiceSuite) TestEventsAreScopedToTheAccount() {
	_, err := s.service.Register(s.ctx, "alice", "did:example:alice")
	s.Require().NoError(err)
	_, err = s.service.Register(s.ctx, "bob", "did:example:bob")
	s.Require().NoError(err)
	_, err = s.service.Update(s.ctx, "alice", "did:example:alice2")
	s.Require().NoError(err)

	events, err := s.service.Events(s.ctx, "alice", 10, 0)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal(audit.EventRegistered, events[0].Type)
	s.Equal(audit.EventUpdated, events[1].Type)
	s.Equal("did:example:alice2", events[1].EntityKey)
}
