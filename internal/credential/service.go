package credential

import (
	"context"
	"errors"
	"log/slog"

	"trustgraph/internal/platform/metrics"
	"trustgraph/pkg/domain"
	dErrors "trustgraph/pkg/domain-errors"
	"trustgraph/pkg/platform/audit"
	"trustgraph/pkg/platform/clock"
	"trustgraph/pkg/platform/lifecycle"
	"trustgraph/pkg/platform/sentinel"
	"trustgraph/pkg/platform/tx"
)

// StoreName scopes this component's audit trail.
const StoreName = "credential"

// Service is the Credential Store: issuer authorization and the credential
// lifecycle (issued, revoked, expired-at-read-time).
type Service struct {
	state   *lifecycle.State
	store   Store
	log     audit.Log
	clock   clock.Clock
	runner  tx.Runner
	logger  *slog.Logger
	metrics *metrics.Metrics
	mirror  *audit.Mirror
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

// WithTxRunner sets the atomic unit each mutation's writes run in. SQL-backed
// deployments pass a runner over the shared database so the record write and
// its audit event commit or roll back together.
func WithTxRunner(r tx.Runner) Option {
	return func(s *Service) { s.runner = r }
}

func NewService(store Store, log audit.Log, clk clock.Clock, admin domain.Account, opts ...Option) *Service {
	s := &Service{
		state:  lifecycle.New(admin),
		store:  store,
		log:    log,
		clock:  clk,
		runner: tx.Passthrough{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AuthorizeIssuer adds an issuer to the authorized set. Administrator only;
// fails when already present.
func (s *Service) AuthorizeIssuer(ctx context.Context, caller, issuer domain.Account) error {
	if err := s.state.RequireAdmin(caller); err != nil {
		return err
	}
	if err := domain.RequireAccount(issuer, "issuer"); err != nil {
		return err
	}
	return s.transact(ctx, func(ctx context.Context) (audit.Event, error) {
		if err := s.store.Authorize(ctx, issuer); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return audit.Event{}, dErrors.Wrap(dErrors.CodeAlreadyExists, "issuer already authorized", err)
			}
			return audit.Event{}, dErrors.Wrap(dErrors.CodeInternal, "authorize issuer", err)
		}
		return s.appendEvent(ctx, issuer, "", audit.EventIssuerAuthorized, s.clock.Now())
	})
}

// RevokeIssuerAuthorization removes an issuer from the authorized set.
// Administrator only; fails when not present.
func (s *Service) RevokeIssuerAuthorization(ctx context.Context, caller, issuer domain.Account) error {
	if err := s.state.RequireAdmin(caller); err != nil {
		return err
	}
	return s.transact(ctx, func(ctx context.Context) (audit.Event, error) {
		if err := s.store.Deauthorize(ctx, issuer); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return audit.Event{}, dErrors.Wrap(dErrors.CodeNotFound, "issuer not authorized", err)
			}
			return audit.Event{}, dErrors.Wrap(dErrors.CodeInternal, "deauthorize issuer", err)
		}
		return s.appendEvent(ctx, issuer, "", audit.EventIssuerRevoked, s.clock.Now())
	})
}

// Issue records a credential under its content hash. The hash is consumed
// permanently: once issued it can never be issued again, revoked or not.
func (s *Service) Issue(ctx context.Context, issuer domain.Account, hash string, subject domain.Account, expiresAt *uint64) (Record, error) {
	if err := s.state.RequireActive(); err != nil {
		return Record{}, err
	}
	authorized, err := s.store.IsAuthorized(ctx, issuer)
	if err != nil {
		return Record{}, dErrors.Wrap(dErrors.CodeInternal, "check issuer authorization", err)
	}
	if !authorized {
		return Record{}, dErrors.New(dErrors.CodeNotAuthorized, "issuer is not authorized")
	}
	if err := domain.ValidateHash(hash, "credential hash"); err != nil {
		return Record{}, err
	}
	if err := domain.RequireAccount(subject, "subject"); err != nil {
		return Record{}, err
	}

	now := s.clock.Now()
	record := Record{
		Hash:      hash,
		Issuer:    issuer,
		Subject:   subject,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
	}
	err = s.transact(ctx, func(ctx context.Context) (audit.Event, error) {
		if err := s.store.Create(ctx, record); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return audit.Event{}, dErrors.Wrap(dErrors.CodeAlreadyExists, "credential hash already issued", err)
			}
			return audit.Event{}, dErrors.Wrap(dErrors.CodeInternal, "create credential record", err)
		}
		return s.appendEvent(ctx, issuer, hash, audit.EventIssued, now)
	})
	if err != nil {
		return Record{}, err
	}
	if s.metrics != nil {
		s.metrics.CredentialsIssued.Inc()
	}
	return record, nil
}

// Revoke flips a credential to revoked, exactly once, by its original issuer.
// Revocation is irreversible and a second call is rejected, not a no-op.
func (s *Service) Revoke(ctx context.Context, issuer domain.Account, hash string) error {
	if err := s.state.RequireActive(); err != nil {
		return err
	}
	record, err := s.store.Find(ctx, hash)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(dErrors.CodeNotFound, "credential not found", err)
		}
		return dErrors.Wrap(dErrors.CodeInternal, "find credential record", err)
	}
	if record.Issuer != issuer {
		return dErrors.New(dErrors.CodeNotAuthorized, "caller is not the credential's issuer")
	}
	err = s.transact(ctx, func(ctx context.Context) (audit.Event, error) {
		if err := s.store.MarkRevoked(ctx, hash); err != nil {
			switch {
			case errors.Is(err, sentinel.ErrInvalidState):
				return audit.Event{}, dErrors.Wrap(dErrors.CodeAlreadyExists, "credential already revoked", err)
			case errors.Is(err, sentinel.ErrNotFound):
				return audit.Event{}, dErrors.Wrap(dErrors.CodeNotFound, "credential not found", err)
			default:
				return audit.Event{}, dErrors.Wrap(dErrors.CodeInternal, "revoke credential record", err)
			}
		}
		return s.appendEvent(ctx, issuer, hash, audit.EventRevoked, s.clock.Now())
	})
	if err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.CredentialsRevoked.Inc()
	}
	return nil
}

// IsValid evaluates the validity predicate at the current logical time.
// Read-only; never persists the derived state.
func (s *Service) IsValid(ctx context.Context, hash string) (bool, error) {
	record, err := s.store.Find(ctx, hash)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, dErrors.Wrap(dErrors.CodeNotFound, "credential not found", err)
		}
		return false, dErrors.Wrap(dErrors.CodeInternal, "find credential record", err)
	}
	return record.IsValid(s.clock.Now()), nil
}

// Details returns the stored record for a hash.
func (s *Service) Details(ctx context.Context, hash string) (Record, error) {
	record, err := s.store.Find(ctx, hash)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Record{}, dErrors.Wrap(dErrors.CodeNotFound, "credential not found", err)
		}
		return Record{}, dErrors.Wrap(dErrors.CodeInternal, "find credential record", err)
	}
	return record, nil
}

// IsIssuerAuthorized reports membership in the authorized-issuer set.
func (s *Service) IsIssuerAuthorized(ctx context.Context, issuer domain.Account) (bool, error) {
	authorized, err := s.store.IsAuthorized(ctx, issuer)
	if err != nil {
		return false, dErrors.Wrap(dErrors.CodeInternal, "check issuer authorization", err)
	}
	return authorized, nil
}

// CredentialCount returns the number of issued credentials, revoked included.
func (s *Service) CredentialCount(ctx context.Context) (uint64, error) {
	return s.store.Count(ctx)
}

// Events pages through this store's audit trail for one issuer.
func (s *Service) Events(ctx context.Context, issuer domain.Account, limit, offset uint64) ([]audit.Event, error) {
	return s.log.List(ctx, audit.Filter{Actor: issuer}, limit, offset)
}

// SetPaused gates all mutating operations. Administrator only.
func (s *Service) SetPaused(ctx context.Context, caller domain.Account, paused bool) error {
	if err := s.state.SetPaused(caller, paused); err != nil {
		return err
	}
	return s.transact(ctx, func(ctx context.Context) (audit.Event, error) {
		return s.appendEvent(ctx, caller, "", audit.EventPausedSet, s.clock.Now())
	})
}

// TransferAdmin rotates the store administrator.
func (s *Service) TransferAdmin(ctx context.Context, caller, newAdmin domain.Account) error {
	if err := s.state.TransferAdmin(caller, newAdmin); err != nil {
		return err
	}
	return s.transact(ctx, func(ctx context.Context) (audit.Event, error) {
		return s.appendEvent(ctx, caller, string(newAdmin), audit.EventAdminTransferred, s.clock.Now())
	})
}

// transact runs a mutation's writes as one atomic unit and mirrors the audit
// event only after the unit has committed, so an event for a rolled-back
// write never leaves the process.
func (s *Service) transact(ctx context.Context, fn func(ctx context.Context) (audit.Event, error)) error {
	var event audit.Event
	err := s.runner.Run(ctx, func(ctx context.Context) error {
		var err error
		event, err = fn(ctx)
		return err
	})
	if err != nil {
		var coded *dErrors.Error
		if errors.As(err, &coded) {
			return err
		}
		return dErrors.Wrap(dErrors.CodeInternal, "commit operation", err)
	}
	if s.mirror != nil {
		s.mirror.Emit(StoreName, event)
	}
	return nil
}

func (s *Service) appendEvent(ctx context.Context, actor domain.Account, entityKey string, eventType audit.EventType, at uint64) (audit.Event, error) {
	event, err := s.log.Append(ctx, audit.Event{
		Actor:     actor,
		EntityKey: entityKey,
		Type:      eventType,
		Timestamp: at,
	})
	if err != nil {
		return audit.Event{}, dErrors.Wrap(dErrors.CodeInternal, "append audit event", err)
	}
	return event, nil
}
