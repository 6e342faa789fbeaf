package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"domverify/internal/core"
	"domverify/internal/types"
)

// ClearPackage resets every verification status of packageName and drops its
// selections for all users. The package stays registered.
func (s *Service) ClearPackage(ctx context.Context, packageName string) types.StatusCode {
	defer s.Connection.ScheduleWriteSettings()

	code, changes := s.clearPackage(ctx, packageName)
	s.observe(OpClearPackage, code)
	s.broadcastChanges(changes)
	return code
}

func (s *Service) clearPackage(ctx context.Context, packageName string) (types.StatusCode, []core.StatusChange) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.states.Get(packageName); !ok {
		return types.ErrorUnknownPackage, nil
	}
	changes := s.states.ClearPackage(packageName)
	removed := s.selections.ClearPackage(packageName)
	log.Ctx(ctx).Debug().
		Str("package", packageName).
		Int("statuses", len(changes)).
		Int("selections", removed).
		Msg("package cleared")
	return types.StatusOK, changes
}

// ClearUser drops every selection record of userID.
func (s *Service) ClearUser(ctx context.Context, userID int) {
	defer s.Connection.ScheduleWriteSettings()

	s.mu.Lock()
	removed := s.selections.ClearUser(userID)
	s.mu.Unlock()

	log.Ctx(ctx).Debug().Int("user", userID).Int("selections", removed).Msg("user cleared")
	s.observe(OpClearUser, types.StatusOK)
}

// ClearDomainVerificationState resets the verification statuses of
// packageNames, or of every package when packageNames is nil.
func (s *Service) ClearDomainVerificationState(ctx context.Context, packageNames []string) {
	defer s.Connection.ScheduleWriteSettings()

	s.mu.Lock()
	if packageNames == nil {
		packageNames = s.registry.Packages()
	}
	changes := s.states.ClearState(packageNames)
	s.mu.Unlock()

	log.Ctx(ctx).Debug().Int("packages", len(packageNames)).Int("statuses", len(changes)).Msg("verification state cleared")
	s.observe(OpClearState, types.StatusOK)
	s.broadcastChanges(changes)
}

// ClearUserStates drops the selection records of packageNames under userID.
// Nil packageNames addresses every package and UserAll every user.
func (s *Service) ClearUserStates(ctx context.Context, packageNames []string, userID int) {
	defer s.Connection.ScheduleWriteSettings()

	s.mu.Lock()
	if packageNames == nil {
		packageNames = s.registry.Packages()
	}
	users := []int{userID}
	if userID == types.UserAll {
		users = s.selections.Users()
	}
	removed := 0
	for _, user := range users {
		removed += s.selections.ClearUserStates(packageNames, user)
	}
	s.mu.Unlock()

	log.Ctx(ctx).Debug().Int("user", userID).Int("selections", removed).Msg("user states cleared")
	s.observe(OpClearUserStates, types.StatusOK)
}
