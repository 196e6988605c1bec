package accesspolicy_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"trustgraph/internal/accesspolicy"
	"trustgraph/mocks/accesspolicymock"
	"trustgraph/pkg/domain"
	dErrors "trustgraph/pkg/domain-errors"
	"trustgraph/pkg/platform/audit"
	"trustgraph/pkg/platform/clock"
)

type AccessPolicySuite struct {
	suite.Suite
	ctx          context.Context
	ctrl         *gomock.Controller
	credentials  *accesspolicymock.MockCredentialOracle
	verification *accesspolicymock.MockVerificationOracle
	clock        *clock.Manual
	service      *accesspolicy.Service
}

func TestAccessPolicySuite(t *testing.T) {
	suite.Run(t, new(AccessPolicySuite))
}

func (s *AccessPolicySuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.credentials = accesspolicymock.NewMockCredentialOracle(s.ctrl)
	s.verification = accesspolicymock.NewMockVerificationOracle(s.ctrl)
	s.clock = clock.NewManual(1000)
	s.service = accesspolicy.NewService(
		accesspolicy.NewInMemoryStore(),
		audit.NewInMemoryLog(),
		s.clock,
		"admin",
		accesspolicy.WithOracles(s.credentials, s.verification),
	)
}

// expectProof wires both oracles to resolve proof-1 to a credential about
// the given subject.
func (s *AccessPolicySuite) expectProof(subject domain.Account) {
	s.verification.EXPECT().Proof(gomock.Any(), "proof-1").
		Return(accesspolicy.ProofFacts{
			Verifier:       "verifier",
			Subject:        subject,
			CredentialHash: "cred-1",
			Verified:       true,
		}, nil).AnyTimes()
	s.credentials.EXPECT().Facts(gomock.Any(), "cred-1").
		Return(accesspolicy.CredentialFacts{Issuer: "issuer", Subject: subject}, nil).AnyTimes()
}

func (s *AccessPolicySuite) setPolicy(id string, subject *domain.Account, allowed bool) {
	s.Require().NoError(s.service.SetPolicy(s.ctx, "verifier", accesspolicy.Policy{
		ID:             id,
		Verifier:       "verifier",
		CredentialType: "age-over-18",
		Subject:        subject,
		Allowed:        allowed,
	}))
}

// =============================================================================
// SetPolicy
// =============================================================================

func (s *AccessPolicySuite) TestSetPolicyAuthorization() {
	policy := accesspolicy.Policy{
		ID: "pol-1", Verifier: "verifier", CredentialType: "age-over-18", Allowed: true,
	}

	s.Run("verifier may set its own policy", func() {
		s.NoError(s.service.SetPolicy(s.ctx, "verifier", policy))
	})
	s.Run("admin may set any policy", func() {
		s.NoError(s.service.SetPolicy(s.ctx, "admin", policy))
	})
	s.Run("anyone else hard-aborts", func() {
		err := s.service.SetPolicy(s.ctx, "mallory", policy)
		s.True(dErrors.HasCode(err, dErrors.CodeNotAuthorized))
	})
}

func (s *AccessPolicySuite) TestSetPolicyPausedHardAborts() {
	// Pause is a hard abort, not a silent no-op: the caller gets an error
	// and nothing is stored or logged.
	s.Require().NoError(s.service.SetPaused(s.ctx, "admin", true))

	err := s.service.SetPolicy(s.ctx, "verifier", accesspolicy.Policy{
		ID: "pol-1", Verifier: "verifier", CredentialType: "age-over-18", Allowed: true,
	})
	s.True(dErrors.HasCode(err, dErrors.CodePaused))

	count, err := s.service.PolicyCount(s.ctx)
	s.NoError(err)
	s.Zero(count)

	events, err := s.service.VerifierEvents(s.ctx, "verifier", "age-over-18", 10, 0)
	s.NoError(err)
	s.Empty(events)
}

func (s *AccessPolicySuite) TestSetPolicyValidation() {
	s.Run("empty id", func() {
		err := s.service.SetPolicy(s.ctx, "verifier", accesspolicy.Policy{
			Verifier: "verifier", CredentialType: "age-over-18",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
	s.Run("empty credential type", func() {
		err := s.service.SetPolicy(s.ctx, "verifier", accesspolicy.Policy{
			ID: "pol-1", Verifier: "verifier",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *AccessPolicySuite) TestSetPolicyUpsertsByID() {
	s.setPolicy("pol-1", nil, false)
	s.setPolicy("pol-1", nil, true)

	policy, err := s.service.PolicyDetails(s.ctx, "pol-1")
	s.Require().NoError(err)
	s.True(policy.Allowed)

	count, err := s.service.PolicyCount(s.ctx)
	s.NoError(err)
	s.Equal(uint64(1), count)
}

// =============================================================================
// CheckAccess
// =============================================================================

func (s *AccessPolicySuite) TestCheckAccessAnyMatchAllows() {
	// A deny policy stored before an allow policy must not shadow it:
	// evaluation is any-match-allows, not first-match.
	s.expectProof("alice")
	s.setPolicy("pol-deny", nil, false)
	s.setPolicy("pol-allow", nil, true)

	allowed, err := s.service.CheckAccess(s.ctx, "verifier", "proof-1", "age-over-18")
	s.NoError(err)
	s.True(allowed)
}

func (s *AccessPolicySuite) TestCheckAccessDefaultDeny() {
	s.expectProof("alice")

	s.Run("no policies at all", func() {
		allowed, err := s.service.CheckAccess(s.ctx, "verifier", "proof-1", "age-over-18")
		s.NoError(err)
		s.False(allowed)
	})

	s.Run("only deny policies", func() {
		s.setPolicy("pol-deny", nil, false)
		allowed, err := s.service.CheckAccess(s.ctx, "verifier", "proof-1", "age-over-18")
		s.NoError(err)
		s.False(allowed)
	})

	s.Run("allow policy for a different credential type", func() {
		s.Require().NoError(s.service.SetPolicy(s.ctx, "verifier", accesspolicy.Policy{
			ID: "pol-other", Verifier: "verifier", CredentialType: "kyc-tier", Allowed: true,
		}))
		allowed, err := s.service.CheckAccess(s.ctx, "verifier", "proof-1", "age-over-18")
		s.NoError(err)
		s.False(allowed)
	})
}

func (s *AccessPolicySuite) TestCheckAccessSubjectScope() {
	s.expectProof("alice")

	s.Run("subject-scoped policy matches its subject", func() {
		alice := domain.Account("alice")
		s.setPolicy("pol-alice", &alice, true)
		allowed, err := s.service.CheckAccess(s.ctx, "verifier", "proof-1", "age-over-18")
		s.NoError(err)
		s.True(allowed)
	})

	s.Run("subject-scoped policy ignores other subjects", func() {
		svc := s.newServiceWithOracles()
		bob := domain.Account("bob")
		s.Require().NoError(svc.SetPolicy(s.ctx, "verifier", accesspolicy.Policy{
			ID: "pol-bob", Verifier: "verifier", CredentialType: "age-over-18",
			Subject: &bob, Allowed: true,
		}))
		allowed, err := svc.CheckAccess(s.ctx, "verifier", "proof-1", "age-over-18")
		s.NoError(err)
		s.False(allowed)
	})
}

func (s *AccessPolicySuite) newServiceWithOracles() *accesspolicy.Service {
	return accesspolicy.NewService(
		accesspolicy.NewInMemoryStore(),
		audit.NewInMemoryLog(),
		s.clock,
		"admin",
		accesspolicy.WithOracles(s.credentials, s.verification),
	)
}

func (s *AccessPolicySuite) TestCheckAccessResolutionFailures() {
	s.Run("unknown proof", func() {
		s.verification.EXPECT().Proof(gomock.Any(), "no-such-proof").
			Return(accesspolicy.ProofFacts{}, errors.New("not found"))
		_, err := s.service.CheckAccess(s.ctx, "verifier", "no-such-proof", "age-over-18")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("proof resolves but its credential does not", func() {
		s.verification.EXPECT().Proof(gomock.Any(), "proof-dangling").
			Return(accesspolicy.ProofFacts{CredentialHash: "gone"}, nil)
		s.credentials.EXPECT().Facts(gomock.Any(), "gone").
			Return(accesspolicy.CredentialFacts{}, errors.New("not found"))
		_, err := s.service.CheckAccess(s.ctx, "verifier", "proof-dangling", "age-over-18")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *AccessPolicySuite) TestCheckAccessWithoutOracles() {
	svc := accesspolicy.NewService(
		accesspolicy.NewInMemoryStore(), audit.NewInMemoryLog(), s.clock, "admin")
	_, err := svc.CheckAccess(s.ctx, "verifier", "proof-1", "age-over-18")
	s.True(dErrors.HasCode(err, dErrors.CodeMisconfiguredDependency))
}

// =============================================================================
// Bounded index
// =============================================================================

func (s *AccessPolicySuite) TestIndexCapacityFirstHundredWins() {
	s.expectProof("alice")

	// Fill the (verifier, age-over-18) index with deny policies.
	for i := 0; i < accesspolicy.IndexCapacity; i++ {
		s.setPolicy(fmt.Sprintf("pol-%03d", i), nil, false)
	}

	// The 101st policy allows, but the index is full: it is stored and
	// retrievable by id, yet invisible to evaluation for this pair.
	s.setPolicy("pol-overflow", nil, true)

	policy, err := s.service.PolicyDetails(s.ctx, "pol-overflow")
	s.Require().NoError(err)
	s.True(policy.Allowed)

	allowed, err := s.service.CheckAccess(s.ctx, "verifier", "proof-1", "age-over-18")
	s.NoError(err)
	s.False(allowed)

	s.Run("other pairs are unaffected", func() {
		s.Require().NoError(s.service.SetPolicy(s.ctx, "verifier", accesspolicy.Policy{
			ID: "pol-other-type", Verifier: "verifier", CredentialType: "kyc-tier", Allowed: true,
		}))
		allowed, err := s.service.CheckAccess(s.ctx, "verifier", "proof-1", "kyc-tier")
		s.NoError(err)
		s.True(allowed)
	})
}

func (s *AccessPolicySuite) TestIndexDeduplicatesOnUpsert() {
	s.expectProof("alice")
	for i := 0; i < accesspolicy.IndexCapacity; i++ {
		// Re-setting the same id must not consume index slots.
		s.setPolicy("pol-1", nil, false)
	}
	s.setPolicy("pol-2", nil, true)

	allowed, err := s.service.CheckAccess(s.ctx, "verifier", "proof-1", "age-over-18")
	s.NoError(err)
	s.True(allowed)
}

// =============================================================================
// Trail
// =============================================================================

func (s *AccessPolicySuite) TestVerifierEventsPagination() {
	s.setPolicy("pol-1", nil, true)
	s.setPolicy("pol-2", nil, false)
	s.setPolicy("pol-3", nil, true)

	s.Run("first page", func() {
		events, err := s.service.VerifierEvents(s.ctx, "verifier", "age-over-18", 2, 0)
		s.Require().NoError(err)
		s.Require().Len(events, 2)
		s.Equal(uint64(1), events[0].ID)
		s.Equal(uint64(2), events[1].ID)
		s.Equal(audit.EventPolicySet, events[0].Type)
	})

	s.Run("offset shifts the id window", func() {
		events, err := s.service.VerifierEvents(s.ctx, "verifier", "age-over-18", 1, 1)
		s.Require().NoError(err)
		s.Require().Len(events, 1)
		s.Equal(uint64(2), events[0].ID)
	})

	s.Run("other credential types are filtered out", func() {
		events, err := s.service.VerifierEvents(s.ctx, "verifier", "kyc-tier", 10, 0)
		s.Require().NoError(err)
		s.Empty(events)
	})
}
