package accesspolicy

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"trustgraph/internal/platform/metrics"
	"trustgraph/pkg/domain"
	dErrors "trustgraph/pkg/domain-errors"
	"trustgraph/pkg/platform/audit"
	"trustgraph/pkg/platform/clock"
	"trustgraph/pkg/platform/lifecycle"
	"trustgraph/pkg/platform/sentinel"
)

// StoreName scopes this component's audit trail.
const StoreName = "accesspolicy"

// Service is the Access Policy Store: it gates which verifiers may learn
// which credential facts about which subjects, cross-referencing the
// verification and credential stores at evaluation time.
//
// Evaluation is any-match-allows: access is granted when any matching policy
// allows it, regardless of insertion order. First-match evaluation would
// silently deny when an allow-policy lands after a deny-policy for the same
// triple, so it is deliberately not implemented.
type Service struct {
	state   *lifecycle.State
	store   Store
	log     audit.Log
	clock   clock.Clock
	logger  *slog.Logger
	metrics *metrics.Metrics
	mirror  *audit.Mirror
	tracer  trace.Tracer

	mu           sync.RWMutex
	credentials  CredentialOracle
	verification VerificationOracle
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithMirror(mirror *audit.Mirror) Option {
	return func(s *Service) { s.mirror = mirror }
}

// WithOracles injects both cross-store references at configuration time.
func WithOracles(credentials CredentialOracle, verification VerificationOracle) Option {
	return func(s *Service) {
		s.credentials = credentials
		s.verification = verification
	}
}

func NewService(store Store, log audit.Log, clk clock.Clock, admin domain.Account, opts ...Option) *Service {
	s := &Service{
		state:  lifecycle.New(admin),
		store:  store,
		log:    log,
		clock:  clk,
		logger: slog.Default(),
		tracer: otel.Tracer("trustgraph/accesspolicy"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetOracles wires the cross-store references after construction.
// Administrator only.
func (s *Service) SetOracles(caller domain.Account, credentials CredentialOracle, verification VerificationOracle) error {
	if err := s.state.RequireAdmin(caller); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credentials = credentials
	s.verification = verification
	return nil
}

// SetPolicy stores or overwrites a policy. The caller must be the policy's
// verifier or the store administrator. Pause and authorization both
// hard-abort: a rejected call writes nothing and emits nothing.
func (s *Service) SetPolicy(ctx context.Context, caller domain.Account, policy Policy) error {
	if err := s.state.RequireActive(); err != nil {
		return err
	}
	if caller != policy.Verifier && caller != s.state.Admin() {
		return dErrors.New(dErrors.CodeNotAuthorized, "caller is neither the policy verifier nor the administrator")
	}
	if err := domain.ValidateHash(policy.ID, "policy id"); err != nil {
		return err
	}
	if err := domain.RequireAccount(policy.Verifier, "verifier"); err != nil {
		return err
	}
	if policy.CredentialType == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "credential type must not be empty")
	}

	if err := s.store.Upsert(ctx, policy); err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "store policy", err)
	}
	indexed, err := s.store.AppendIndex(ctx, policy.Verifier, policy.CredentialType, policy.ID)
	if err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "index policy", err)
	}
	if !indexed {
		// Capacity reached: the policy exists by id but stays invisible to
		// evaluation for this pair. Deliberate first-100-wins behavior.
		s.logger.WarnContext(ctx, "policy index at capacity, id dropped from index",
			"policy_id", policy.ID,
			"verifier", string(policy.Verifier),
			"credential_type", policy.CredentialType,
		)
	}

	if err := s.appendEvent(ctx, policy.Verifier, policy.CredentialType, audit.EventPolicySet, s.clock.Now()); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.PoliciesSet.Inc()
	}
	return nil
}

// CheckAccess decides whether the calling verifier may learn the named
// credential-type fact behind a proof. Both oracles must be configured; the
// proof and its credential must resolve; then any matching policy that
// allows wins.
func (s *Service) CheckAccess(ctx context.Context, caller domain.Account, proofHash, credentialType string) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "CheckAccess",
		trace.WithAttributes(
			attribute.String("proof_hash", proofHash),
			attribute.String("credential_type", credentialType),
		))
	defer span.End()

	allowed, err := s.checkAccess(ctx, caller, proofHash, credentialType)
	if s.metrics != nil {
		switch {
		case err != nil:
			s.metrics.AccessChecks.WithLabelValues("error").Inc()
		case allowed:
			s.metrics.AccessChecks.WithLabelValues("allowed").Inc()
		default:
			s.metrics.AccessChecks.WithLabelValues("denied").Inc()
		}
	}
	return allowed, err
}

func (s *Service) checkAccess(ctx context.Context, caller domain.Account, proofHash, credentialType string) (bool, error) {
	s.mu.RLock()
	credentials, verification := s.credentials, s.verification
	s.mu.RUnlock()
	if credentials == nil || verification == nil {
		return false, dErrors.New(dErrors.CodeMisconfiguredDependency, "credential and verification stores must be configured")
	}

	proof, err := verification.Proof(ctx, proofHash)
	if err != nil {
		return false, dErrors.Wrap(dErrors.CodeNotFound, "referenced proof could not be resolved", err)
	}
	if _, err := credentials.Facts(ctx, proof.CredentialHash); err != nil {
		return false, dErrors.Wrap(dErrors.CodeNotFound, "referenced credential could not be resolved", err)
	}

	candidates, err := s.store.ListByIndex(ctx, caller, credentialType)
	if err != nil {
		return false, dErrors.Wrap(dErrors.CodeInternal, "list candidate policies", err)
	}
	for _, policy := range candidates {
		if policy.Verifier == caller && policy.CredentialType == credentialType &&
			policy.MatchesSubject(proof.Subject) && policy.Allowed {
			return true, nil
		}
	}
	return false, nil
}

// PolicyDetails returns the stored policy for an id.
func (s *Service) PolicyDetails(ctx context.Context, policyID string) (Policy, error) {
	policy, err := s.store.Find(ctx, policyID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Policy{}, dErrors.Wrap(dErrors.CodeNotFound, "policy not found", err)
		}
		return Policy{}, dErrors.Wrap(dErrors.CodeInternal, "find policy", err)
	}
	return policy, nil
}

// VerifierEvents pages through policy events for one (verifier,
// credentialType) pair.
func (s *Service) VerifierEvents(ctx context.Context, verifier domain.Account, credentialType string, limit, offset uint64) ([]audit.Event, error) {
	return s.log.List(ctx, audit.Filter{Actor: verifier, EntityKey: credentialType}, limit, offset)
}

// PolicyCount returns the number of stored policies.
func (s *Service) PolicyCount(ctx context.Context) (uint64, error) {
	return s.store.Count(ctx)
}

// SetPaused gates all mutating operations. Administrator only.
func (s *Service) SetPaused(ctx context.Context, caller domain.Account, paused bool) error {
	if err := s.state.SetPaused(caller, paused); err != nil {
		return err
	}
	return s.appendEvent(ctx, caller, "", audit.EventPausedSet, s.clock.Now())
}

// TransferAdmin rotates the store administrator.
func (s *Service) TransferAdmin(ctx context.Context, caller, newAdmin domain.Account) error {
	if err := s.state.TransferAdmin(caller, newAdmin); err != nil {
		return err
	}
	return s.appendEvent(ctx, caller, string(newAdmin), audit.EventAdminTransferred, s.clock.Now())
}

func (s *Service) appendEvent(ctx context.Context, actor domain.Account, entityKey string, eventType audit.EventType, at uint64) error {
	event, err := s.log.Append(ctx, audit.Event{
		Actor:     actor,
		EntityKey: entityKey,
		Type:      eventType,
		Timestamp: at,
	})
	if err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "append audit event", err)
	}
	if s.mirror != nil {
		s.mirror.Emit(StoreName, event)
	}
	return nil
}
