//go:build integration

package credential_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"trustgraph/internal/credential"
	"trustgraph/internal/platform/postgres"
	dErrors "trustgraph/pkg/domain-errors"
	"trustgraph/pkg/platform/audit"
	"trustgraph/pkg/platform/clock"
	"trustgraph/pkg/platform/sentinel"
	"trustgraph/pkg/platform/tx"
	"trustgraph/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	ctx     context.Context
	pg      *containers.PostgresContainer
	clock   *clock.Manual
	service *credential.Service
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.pg = containers.NewPostgresContainer(s.T())
	s.Require().NoError(postgres.EnsureSchema(s.ctx, s.pg.DB))
}

func (s *PostgresStoreSuite) SetupTest() {
	s.pg.Exec(s.T(), "TRUNCATE credentials, credential_issuers, audit_events")
	s.clock = clock.NewManual(1000)
	s.service = credential.NewService(
		credential.NewPostgresStore(s.pg.DB),
		audit.NewPostgresLog(s.pg.DB, credential.StoreName),
		s.clock,
		"admin",
		credential.WithTxRunner(tx.NewSQLRunner(s.pg.DB)),
	)
	s.Require().NoError(s.service.AuthorizeIssuer(s.ctx, "admin", "issuer"))
}

func (s *PostgresStoreSuite) TestIssueAndFind() {
	expiresAt := uint64(2000)
	rec, err := s.service.Issue(s.ctx, "issuer", "hash-1", "alice", &expiresAt)
	s.Require().NoError(err)
	s.Equal(uint64(1000), rec.IssuedAt)

	found, err := s.service.Details(s.ctx, "hash-1")
	s.Require().NoError(err)
	s.Equal(rec, found)
}

func (s *PostgresStoreSuite) TestUniqueViolationMapsToConflict() {
	_, err := s.service.Issue(s.ctx, "issuer", "hash-1", "alice", nil)
	s.Require().NoError(err)

	_, err = s.service.Issue(s.ctx, "issuer", "hash-1", "bob", nil)
	s.True(dErrors.HasCode(err, dErrors.CodeAlreadyExists))
}

func (s *PostgresStoreSuite) TestRevokeIsOneWay() {
	_, err := s.service.Issue(s.ctx, "issuer", "hash-1", "alice", nil)
	s.Require().NoError(err)

	s.Require().NoError(s.service.Revoke(s.ctx, "issuer", "hash-1"))
	err = s.service.Revoke(s.ctx, "issuer", "hash-1")
	s.True(dErrors.HasCode(err, dErrors.CodeAlreadyExists))

	valid, err := s.service.IsValid(s.ctx, "hash-1")
	s.NoError(err)
	s.False(valid)
}

func (s *PostgresStoreSuite) TestIssuerSetPersists() {
	s.Require().NoError(s.service.AuthorizeIssuer(s.ctx, "admin", "issuer2"))
	authorized, err := s.service.IsIssuerAuthorized(s.ctx, "issuer2")
	s.Require().NoError(err)
	s.True(authorized)

	s.Require().NoError(s.service.RevokeIssuerAuthorization(s.ctx, "admin", "issuer2"))
	authorized, err = s.service.IsIssuerAuthorized(s.ctx, "issuer2")
	s.Require().NoError(err)
	s.False(authorized)
}

func (s *PostgresStoreSuite) TestFailedUnitRollsBackRecordAndEvent() {
	store := credential.NewPostgresStore(s.pg.DB)
	log := audit.NewPostgresLog(s.pg.DB, credential.StoreName)
	runner := tx.NewSQLRunner(s.pg.DB)

	err := runner.Run(s.ctx, func(ctx context.Context) error {
		if err := store.Create(ctx, credential.Record{
			Hash: "hash-rollback", Issuer: "issuer", Subject: "alice", IssuedAt: 1000,
		}); err != nil {
			return err
		}
		if _, err := log.Append(ctx, audit.Event{
			Actor: "issuer", EntityKey: "hash-rollback", Type: audit.EventIssued, Timestamp: 1000,
		}); err != nil {
			return err
		}
		return errors.New("abort the unit")
	})
	s.Require().Error(err)

	_, err = store.Find(s.ctx, "hash-rollback")
	s.ErrorIs(err, sentinel.ErrNotFound)

	count, err := log.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(uint64(1), count) // only the issuer authorization from SetupTest
}

func (s *PostgresStoreSuite) TestRecordAndEventCommitTogether() {
	_, err := s.service.Issue(s.ctx, "issuer", "hash-1", "alice", nil)
	s.Require().NoError(err)

	var records, events uint64
	s.Require().NoError(s.pg.DB.QueryRowContext(s.ctx,
		"SELECT COUNT(*) FROM credentials").Scan(&records))
	s.Require().NoError(s.pg.DB.QueryRowContext(s.ctx,
		"SELECT COUNT(*) FROM audit_events WHERE store = $1 AND event_type = $2",
		credential.StoreName, string(audit.EventIssued)).Scan(&events))
	s.Equal(uint64(1), records)
	s.Equal(uint64(1), events)
}

func (s *PostgresStoreSuite) TestAuditTrailSharesTheTable() {
	_, err := s.service.Issue(s.ctx, "issuer", "hash-1", "alice", nil)
	s.Require().NoError(err)
	s.Require().NoError(s.service.Revoke(s.ctx, "issuer", "hash-1"))

	events, err := s.service.Events(s.ctx, "issuer", 10, 0)
	s.Require().NoError(err)
	s.Require().Len(events, 3)
	s.Equal(uint64(1), events[0].ID)
	s.Equal(audit.EventIssued, events[1].Type)
	s.Equal(audit.EventRevoked, events[2].Type)
}
