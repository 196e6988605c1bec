package identity

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
)

// StoreName scopes this component's audit trail.
const StoreName = "identity"

// Service is the Identity Store: the public operation surface over the
// subject↔identifier bijection. Every mutation is one atomic unit; the pause
// flag gates all of them.
type Service struct {
	state   *lifecycle.State
	store   Store
	log     audit.Log
	clock   clock.Clock
	logger  *slog.Logger
	metrics *metrics.Metrics
	cache   *ResolveCache
	mirror  *audit.Mirror
}

// Option configures optional collaborators.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithCache(cache *ResolveCache) Option {
	return func(s *Service) { s.cache = cache }
}

func WithMirror(mirror *audit.Mirror) Option {
	return func(s *Service) { s.mirror = mirror }
}

func NewService(store Store, log audit.Log, clk clock.Clock, admin domain.Account, opts ...Option) *Service {
	s := &Service{
		state:  lifecycle.New(admin),
		store:  store,
		log:    log,
		clock:  clk,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register binds an identifier to an account. Fails when the account already
// holds an identifier or the identifier is bound elsewhere.
func (s *Service) Register(ctx context.Context, account domain.Account, identifier string) (Record, error) {
	if err := s.state.RequireActive(); err != nil {
		return Record{}, err
	}
	if err := domain.RequireAccount(account, "account"); err != nil {
		return Record{}, err
	}
	if err := domain.ValidateIdentifier(identifier); err != nil {
		return Record{}, err
	}

	now := s.clock.Now()
	record := Record{
		Subject:       account,
		Identifier:    identifier,
		RegisteredAt:  now,
		LastUpdatedAt: now,
	}
	if err := s.store.Create(ctx, record); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return Record{}, dErrors.Wrap(dErrors.CodeAlreadyExists, "account or identifier already registered", err)
		}
		return Record{}, dErrors.Wrap(dErrors.CodeInternal, "create identity record", err)
	}

	if err := s.appendEvent(ctx, account, identifier, audit.EventRegistered, now); err != nil {
		return Record{}, err
	}
	if s.metrics != nil {
		s.metrics.RegistrationsActive.Inc()
	}
	return record, nil
}

// Update relinks the account to a new identifier, preserving RegisteredAt.
func (s *Service) Update(ctx context.Context, account domain.Account, newIdentifier string) (Record, error) {
	if err := s.state.RequireActive(); err != nil {
		return Record{}, err
	}
	if err := domain.ValidateIdentifier(newIdentifier); err != nil {
		return Record{}, err
	}

	now := s.clock.Now()
	record, err := s.store.Relink(ctx, account, newIdentifier, now)
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return Record{}, dErrors.Wrap(dErrors.CodeNotFound, "account not registered", err)
		case errors.Is(err, sentinel.ErrConflict):
			return Record{}, dErrors.Wrap(dErrors.CodeAlreadyExists, "identifier already bound to another account", err)
		default:
			return Record{}, dErrors.Wrap(dErrors.CodeInternal, "relink identity record", err)
		}
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, account)
	}
	if err := s.appendEvent(ctx, account, newIdentifier, audit.EventUpdated, now); err != nil {
		return Record{}, err
	}
	return record, nil
}

// Deactivate removes both directions of the binding and decrements the
// running registration count.
func (s *Service) Deactivate(ctx context.Context, account domain.Account) error {
	if err := s.state.RequireActive(); err != nil {
		return err
	}

	record, err := s.store.Delete(ctx, account)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(dErrors.CodeNotFound, "account not registered", err)
		}
		return dErrors.Wrap(dErrors.CodeInternal, "delete identity record", err)
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, account)
	}
	if err := s.appendEvent(ctx, account, record.Identifier, audit.EventDeactivated, s.clock.Now()); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.RegistrationsActive.Dec()
	}
	return nil
}

// Resolve returns the identifier bound to the account.
func (s *Service) Resolve(ctx context.Context, account domain.Account) (string, error) {
	if s.cache != nil {
		if identifier, ok := s.cache.Get(ctx, account); ok {
			return identifier, nil
		}
	}
	record, err := s.store.FindBySubject(ctx, account)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", dErrors.Wrap(dErrors.CodeNotFound, "account not registered", err)
		}
		return "", dErrors.Wrap(dErrors.CodeInternal, "find identity record", err)
	}
	if s.cache != nil {
		s.cache.Set(ctx, account, record.Identifier)
	}
	return record.Identifier, nil
}

// ResolveReverse returns the account an identifier is bound to.
func (s *Service) ResolveReverse(ctx context.Context, identifier string) (domain.Account, error) {
	record, err := s.store.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return domain.ZeroAccount, dErrors.Wrap(dErrors.CodeNotFound, "identifier not bound", err)
		}
		return domain.ZeroAccount, dErrors.Wrap(dErrors.CodeInternal, "find identity record", err)
	}
	return record.Subject, nil
}

// RegistrationCount returns the number of currently registered identities.
func (s *Service) RegistrationCount(ctx context.Context) (uint64, error) {
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
