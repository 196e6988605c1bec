package verification

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
const StoreName = "verification"

// Service is the Verification Store (the hub): it admits proofs against a
// credential oracle and records the Submitted→Verified state machine.
//
// Trust is two-layered: the oracle's contract identity must be on this hub's
// own trusted-issuer list, and the referenced credential must pass the
// oracle's validity check. A failure on either side rejects the submission
// with nothing written.
type Service struct {
	state   *lifecycle.State
	store   Store
	log     audit.Log
	clock   clock.Clock
	logger  *slog.Logger
	metrics *metrics.Metrics
	mirror  *audit.Mirror
	tracer  trace.Tracer

	mu      sync.RWMutex
	oracle  CredentialOracle
	trusted map[domain.Account]struct{}
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

// WithCredentialOracle injects the credential store reference at
// configuration time.
func WithCredentialOracle(oracle CredentialOracle) Option {
	return func(s *Service) { s.oracle = oracle }
}

func NewService(store Store, log audit.Log, clk clock.Clock, admin domain.Account, opts ...Option) *Service {
	s := &Service{
		state:   lifecycle.New(admin),
		store:   store,
		log:     log,
		clock:   clk,
		logger:  slog.Default(),
		tracer:  otel.Tracer("trustgraph/verification"),
		trusted: make(map[domain.Account]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetCredentialOracle wires the credential store after construction.
// Administrator only.
func (s *Service) SetCredentialOracle(caller domain.Account, oracle CredentialOracle) error {
	if err := s.state.RequireAdmin(caller); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.oracle = oracle
	return nil
}

// SetTrustedIssuerContract adds an issuer contract to this hub's trust list.
// Administrator only; fails when already trusted.
func (s *Service) SetTrustedIssuerContract(ctx context.Context, caller, issuer domain.Account) error {
	if err := s.state.RequireAdmin(caller); err != nil {
		return err
	}
	if err := domain.RequireAccount(issuer, "issuer contract"); err != nil {
		return err
	}
	s.mu.Lock()
	if _, ok := s.trusted[issuer]; ok {
		s.mu.Unlock()
		return dErrors.New(dErrors.CodeAlreadyExists, "issuer contract already trusted")
	}
	s.trusted[issuer] = struct{}{}
	s.mu.Unlock()
	return s.appendEvent(ctx, issuer, "", audit.EventIssuerTrusted, s.clock.Now())
}

// RemoveTrustedIssuerContract drops an issuer contract from the trust list.
// Administrator only; fails when not present.
func (s *Service) RemoveTrustedIssuerContract(ctx context.Context, caller, issuer domain.Account) error {
	if err := s.state.RequireAdmin(caller); err != nil {
		return err
	}
	s.mu.Lock()
	if _, ok := s.trusted[issuer]; !ok {
		s.mu.Unlock()
		return dErrors.New(dErrors.CodeNotFound, "issuer contract not trusted")
	}
	delete(s.trusted, issuer)
	s.mu.Unlock()
	return s.appendEvent(ctx, issuer, "", audit.EventIssuerUntrusted, s.clock.Now())
}

// IsTrustedIssuerContract reports trust-list membership.
func (s *Service) IsTrustedIssuerContract(issuer domain.Account) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.trusted[issuer]
	return ok
}

// SubmitProof admits a proof referencing a credential. Check order: pause,
// duplicate proof hash, oracle configuration, hub-level contract trust,
// credential validity. Nothing is written until every check passes.
func (s *Service) SubmitProof(ctx context.Context, submitter domain.Account, proofHash, credentialHash string, verifier domain.Account) (Record, error) {
	ctx, span := s.tracer.Start(ctx, "SubmitProof",
		trace.WithAttributes(attribute.String("proof_hash", proofHash)))
	defer span.End()

	if err := s.state.RequireActive(); err != nil {
		return Record{}, err
	}
	if err := domain.ValidateHash(proofHash, "proof hash"); err != nil {
		return Record{}, err
	}
	if err := domain.ValidateHash(credentialHash, "credential hash"); err != nil {
		return Record{}, err
	}
	if err := domain.RequireAccount(verifier, "verifier"); err != nil {
		return Record{}, err
	}
	if _, err := s.store.Find(ctx, proofHash); err == nil {
		return Record{}, dErrors.New(dErrors.CodeAlreadyExists, "proof hash already submitted")
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return Record{}, dErrors.Wrap(dErrors.CodeInternal, "check proof hash", err)
	}

	s.mu.RLock()
	oracle := s.oracle
	s.mu.RUnlock()
	if oracle == nil {
		return Record{}, dErrors.New(dErrors.CodeMisconfiguredDependency, "credential store not configured")
	}
	if !s.IsTrustedIssuerContract(oracle.Contract()) {
		return Record{}, dErrors.New(dErrors.CodeNotTrusted, "issuer contract is not trusted by this hub")
	}

	facts, err := oracle.Facts(ctx, credentialHash)
	if err != nil {
		return Record{}, dErrors.Wrap(dErrors.CodeInvalidCredential, "referenced credential could not be resolved", err)
	}
	valid, err := oracle.IsValid(ctx, credentialHash)
	if err != nil {
		return Record{}, dErrors.Wrap(dErrors.CodeInvalidCredential, "credential validity check failed", err)
	}
	if !valid {
		return Record{}, dErrors.New(dErrors.CodeInvalidCredential, "referenced credential is not valid")
	}

	now := s.clock.Now()
	record := Record{
		ProofHash:      proofHash,
		Verifier:       verifier,
		Subject:        facts.Subject,
		CredentialHash: credentialHash,
		SubmittedAt:    now,
	}
	if err := s.store.Create(ctx, record); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return Record{}, dErrors.Wrap(dErrors.CodeAlreadyExists, "proof hash already submitted", err)
		}
		return Record{}, dErrors.Wrap(dErrors.CodeInternal, "create verification record", err)
	}

	if err := s.appendEvent(ctx, submitter, proofHash, audit.EventSubmitted, now); err != nil {
		return Record{}, err
	}
	if s.metrics != nil {
		s.metrics.ProofsSubmitted.Inc()
	}
	return record, nil
}

// MarkVerified makes the proof's single Submitted→Verified transition. Only
// the verifier recorded at submission may make it, and only once.
func (s *Service) MarkVerified(ctx context.Context, caller domain.Account, proofHash string) error {
	if err := s.state.RequireActive(); err != nil {
		return err
	}
	record, err := s.store.Find(ctx, proofHash)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(dErrors.CodeNotFound, "proof not found", err)
		}
		return dErrors.Wrap(dErrors.CodeInternal, "find verification record", err)
	}
	if record.Verifier != caller {
		return dErrors.New(dErrors.CodeNotAuthorized, "caller is not the proof's verifier")
	}
	if err := s.store.MarkVerified(ctx, proofHash); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrInvalidState):
			return dErrors.Wrap(dErrors.CodeAlreadyVerified, "proof already verified", err)
		case errors.Is(err, sentinel.ErrNotFound):
			return dErrors.Wrap(dErrors.CodeNotFound, "proof not found", err)
		default:
			return dErrors.Wrap(dErrors.CodeInternal, "mark proof verified", err)
		}
	}

	if err := s.appendEvent(ctx, caller, proofHash, audit.EventVerified, s.clock.Now()); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.ProofsVerified.Inc()
	}
	return nil
}

// Details returns the stored verification record for a proof hash.
func (s *Service) Details(ctx context.Context, proofHash string) (Record, error) {
	record, err := s.store.Find(ctx, proofHash)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Record{}, dErrors.Wrap(dErrors.CodeNotFound, "proof not found", err)
		}
		return Record{}, dErrors.Wrap(dErrors.CodeInternal, "find verification record", err)
	}
	return record, nil
}

// ProofCount returns the number of submitted proofs.
func (s *Service) ProofCount(ctx context.Context) (uint64, error) {
	return s.store.Count(ctx)
}

// Events pages through this store's audit trail for one account.
func (s *Service) Events(ctx context.Context, account domain.Account, limit, offset uint64) ([]audit.Event, error) {
	return s.log.List(ctx, audit.Filter{Actor: account}, limit, offset)
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
