package app

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"domverify/internal/types"
)

func TestMutatorsScheduleExactlyOneWrite(t *testing.T) {
	domains := []string{"example.com"}
	tests := []struct {
		name   string
		mutate func(t *testing.T, service *Service)
	}{
		{"clearPackage", func(t *testing.T, s *Service) {
			s.ClearPackage(t.Context(), testPkg)
		}},
		{"clearUser", func(t *testing.T, s *Service) {
			s.ClearUser(t.Context(), testUserID)
		}},
		{"clearState", func(t *testing.T, s *Service) {
			s.ClearDomainVerificationState(t.Context(), []string{testPkg})
		}},
		{"clearUserStates", func(t *testing.T, s *Service) {
			s.ClearUserStates(t.Context(), []string{testPkg}, testUserID)
		}},
		{"removePackage", func(t *testing.T, s *Service) {
			s.RemovePackage(t.Context(), testPkg)
		}},
		{"setStatus", func(t *testing.T, s *Service) {
			_, err := s.SetDomainVerificationStatus(t.Context(), testUUID, domains, types.VerificationStatusSuccess)
			require.NoError(t, err)
		}},
		{"setStatusInternalPackageName", func(t *testing.T, s *Service) {
			_, err := s.SetDomainVerificationStatusInternal(t.Context(), testPkg, types.VerificationStatusApproved, domains)
			require.NoError(t, err)
		}},
		{"setStatusInternalUid", func(t *testing.T, s *Service) {
			_, err := s.SetDomainVerificationStatusAsUID(t.Context(), types.SystemUID, testUUID, domains, types.VerificationStatusFailure)
			require.NoError(t, err)
		}},
		{"setLinkHandlingAllowedUserId", func(t *testing.T, s *Service) {
			_, err := s.SetDomainVerificationLinkHandlingAllowed(t.Context(), testPkg, false, testUserID)
			require.NoError(t, err)
		}},
		{"setLinkHandlingAllowedInternal", func(t *testing.T, s *Service) {
			_, err := s.SetDomainVerificationLinkHandlingAllowedInternal(t.Context(), testPkg, false, types.UserAll)
			require.NoError(t, err)
		}},
		{"setUserStateUserId", func(t *testing.T, s *Service) {
			_, err := s.SetDomainVerificationUserSelection(t.Context(), testUUID, domains, true, testUserID)
			require.NoError(t, err)
		}},
		{"setUserStateInternal", func(t *testing.T, s *Service) {
			_, err := s.SetDomainVerificationUserSelectionInternal(t.Context(), types.UserAll, testPkg, true, nil)
			require.NoError(t, err)
		}},
		{"setLegacyUserState", func(t *testing.T, s *Service) {
			_, err := s.SetLegacyUserState(t.Context(), testPkg, testUserID, types.LegacyStateNever)
			require.NoError(t, err)
		}},
		{"noopClearOfUnknownPackage", func(t *testing.T, s *Service) {
			s.ClearPackage(t.Context(), "com.test.missing")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			env.proxy.verifiers[types.SystemUID] = true
			env.install(t, packageState(testPkg, testUUID, false, "example.com"))
			require.Zero(t, env.connection.writeCount(), "adding a package must not schedule a write")

			tt.mutate(t, env.service)
			require.Equal(t, 1, env.connection.writeCount())
		})
	}
}

func TestRejectedCallsScheduleNoWrite(t *testing.T) {
	env := newTestEnv()
	env.install(t, packageState(testPkg, testUUID, false, "example.com"))
	env.connection.setCaller(10099, 0)

	_, err := env.service.SetDomainVerificationStatus(t.Context(), testUUID, []string{"example.com"}, types.VerificationStatusSuccess)
	require.Error(t, err)
	_, err = env.service.SetDomainVerificationUserSelection(t.Context(), testUUID, []string{"example.com"}, true, 0)
	require.Error(t, err)
	require.Zero(t, env.connection.writeCount())
}

func TestWriteScheduledOutsideLock(t *testing.T) {
	env := newTestEnv()
	env.install(t, packageState(testPkg, testUUID, false, "example.com"))

	var lockedDuringWrite []bool
	env.connection.onSchedule = func() {
		free := env.service.mu.TryLock()
		if free {
			env.service.mu.Unlock()
		}
		lockedDuringWrite = append(lockedDuringWrite, !free)
	}

	_, err := env.service.SetDomainVerificationUserSelection(t.Context(), testUUID, []string{"example.com"}, true, 0)
	require.NoError(t, err)
	env.service.ClearUser(t.Context(), 0)
	env.service.ClearPackage(t.Context(), testPkg)
	require.Equal(t, []bool{false, false, false}, lockedDuringWrite)
}

func TestUserNotExists(t *testing.T) {
	env := newTestEnv()
	env.install(t, packageState(testPkg, testUUID, false, "example.com"))

	code, err := env.service.SetDomainVerificationUserSelection(t.Context(), testUUID, []string{"example.com"}, true, 99)
	require.NoError(t, err)
	require.Equal(t, types.ErrorUserNotExists, code)

	code, err = env.service.SetDomainVerificationLinkHandlingAllowed(t.Context(), testPkg, false, 99)
	require.NoError(t, err)
	require.Equal(t, types.ErrorUserNotExists, code)
	require.Equal(t, 2, env.connection.writeCount())
	require.Equal(t, []types.StatusCode{types.ErrorUserNotExists}, env.metrics.mutations[OpSetUserSelection])
}

func TestConcurrentTakeoverIsLinearizable(t *testing.T) {
	env := newTestEnv()
	const contenders = 8
	ids := make([]uuid.UUID, contenders)
	for i := range ids {
		ids[i] = uuid.New()
		env.install(t, packageState(fmt.Sprintf("com.test.app%d", i), ids[i], false, "example.com"))
	}

	group, ctx := errgroup.WithContext(t.Context())
	for _, id := range ids {
		group.Go(func() error {
			for range 20 {
				code, err := env.service.SetDomainVerificationUserSelection(ctx, id, []string{"example.com"}, true, 0)
				if err != nil {
					return err
				}
				if code != types.StatusOK {
					return fmt.Errorf("unexpected status %s", code)
				}
			}
			return nil
		})
		group.Go(func() error {
			for range 20 {
				owners, err := env.service.GetOwnersForDomain(ctx, "example.com", 0)
				if err != nil {
					return err
				}
				if len(owners) > 1 {
					return fmt.Errorf("observed %d owners at once", len(owners))
				}
			}
			return nil
		})
	}
	require.NoError(t, group.Wait())

	owners, err := env.service.GetOwnersForDomain(t.Context(), "example.com", 0)
	require.NoError(t, err)
	require.Len(t, owners, 1)

	selected := 0
	for _, entry := range env.service.ExportSettings().Packages {
		for _, user := range entry.Users {
			if user.UserID == 0 && len(user.Selected) > 0 {
				selected++
			}
		}
	}
	require.Equal(t, 1, selected)
}
