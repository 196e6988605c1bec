package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"trustgraph/pkg/domain"
	dErrors "trustgraph/pkg/domain-errors"
)

type LifecycleSuite struct {
	suite.Suite
	state *State
}

func TestLifecycleSuite(t *testing.T) {
	suite.Run(t, new(LifecycleSuite))
}

func (s *LifecycleSuite) SetupTest() {
	s.state = New("admin")
}

func (s *LifecycleSuite) TestRequireAdmin() {
	s.Run("admin passes", func() {
		s.NoError(s.state.RequireAdmin("admin"))
	})
	s.Run("other caller rejected", func() {
		err := s.state.RequireAdmin("mallory")
		s.True(dErrors.HasCode(err, dErrors.CodeNotAuthorized))
	})
}

func (s *LifecycleSuite) TestPause() {
	s.Run("active by default", func() {
		s.False(s.state.Paused())
		s.NoError(s.state.RequireActive())
	})
	s.Run("only admin may pause", func() {
		err := s.state.SetPaused("mallory", true)
		s.True(dErrors.HasCode(err, dErrors.CodeNotAuthorized))
		s.False(s.state.Paused())
	})
	s.Run("paused store refuses mutations", func() {
		s.Require().NoError(s.state.SetPaused("admin", true))
		err := s.state.RequireActive()
		s.True(dErrors.HasCode(err, dErrors.CodePaused))
	})
	s.Run("unpause restores service", func() {
		s.Require().NoError(s.state.SetPaused("admin", true))
		s.Require().NoError(s.state.SetPaused("admin", false))
		s.NoError(s.state.RequireActive())
	})
}

func (s *LifecycleSuite) TestTransferAdmin() {
	s.Run("only admin may transfer", func() {
		err := s.state.TransferAdmin("mallory", "mallory")
		s.True(dErrors.HasCode(err, dErrors.CodeNotAuthorized))
	})
	s.Run("zero account rejected", func() {
		err := s.state.TransferAdmin("admin", domain.ZeroAccount)
		s.True(dErrors.HasCode(err, dErrors.CodeZeroAddress))
		s.Equal(domain.Account("admin"), s.state.Admin())
	})
	s.Run("transfer rotates the role", func() {
		s.Require().NoError(s.state.TransferAdmin("admin", "ops"))
		s.Equal(domain.Account("ops"), s.state.Admin())

		// Old admin is just a regular caller now.
		err := s.state.SetPaused("admin", true)
		s.True(dErrors.HasCode(err, dErrors.CodeNotAuthorized))
		s.NoError(s.state.SetPaused("ops", true))
	})
}
