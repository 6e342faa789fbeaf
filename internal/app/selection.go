package app

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"domverify/internal/core"
	"domverify/internal/policies"
	"domverify/internal/ports"
	"domverify/internal/types"
)

// SetDomainVerificationLinkHandlingAllowed toggles whether packageName may
// open links at all for userID.
func (s *Service) SetDomainVerificationLinkHandlingAllowed(ctx context.Context, packageName string, allowed bool, userID int) (types.StatusCode, error) {
	if err := s.enforceUserPermission(types.PermissionUpdateUserSelection, userID); err != nil {
		return 0, err
	}
	return s.setLinkHandling(ctx, packageName, allowed, userID, false), nil
}

// SetDomainVerificationLinkHandlingAllowedInternal is the platform variant; it
// accepts UserAll.
func (s *Service) SetDomainVerificationLinkHandlingAllowedInternal(ctx context.Context, packageName string, allowed bool, userID int) (types.StatusCode, error) {
	if err := s.enforceInternal(); err != nil {
		return 0, err
	}
	return s.setLinkHandling(ctx, packageName, allowed, userID, true), nil
}

func (s *Service) setLinkHandling(ctx context.Context, packageName string, allowed bool, userID int, internal bool) types.StatusCode {
	defer s.Connection.ScheduleWriteSettings()

	code := s.applyLinkHandling(ctx, s.Connection.Snapshot(), packageName, allowed, userID, internal)
	s.observe(OpSetLinkHandling, code)
	return code
}

func (s *Service) applyLinkHandling(ctx context.Context, snapshot ports.PackageStateProvider, packageName string, allowed bool, userID int, internal bool) types.StatusCode {
	if userID != types.UserAll && !s.Connection.DoesUserExist(userID) {
		return types.ErrorUserNotExists
	}
	if userID == types.UserAll && !internal {
		return types.ErrorUserNotExists
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	visibleAs := userID
	if userID == types.UserAll {
		visibleAs = s.Connection.CallingUserID()
	}
	if _, ok := s.states.Get(packageName); !ok || !s.visible(snapshot, packageName, visibleAs) {
		return types.ErrorUnknownPackage
	}
	for _, user := range s.targetUsers(snapshot, packageName, userID) {
		s.selections.SetLinkHandlingAllowed(packageName, allowed, user)
	}
	log.Ctx(ctx).Debug().
		Str("package", packageName).
		Int("user", userID).
		Bool("allowed", allowed).
		Msg("link handling updated")
	return types.StatusOK
}

// SetDomainVerificationUserSelection selects or deselects domains of the
// package owning id for userID. Selecting takes domains over from packages
// holding them at a lower level; domains held by a verified package are left
// untouched and reported as ERROR_UNABLE_TO_APPROVE.
func (s *Service) SetDomainVerificationUserSelection(ctx context.Context, id uuid.UUID, domains []string, enabled bool, userID int) (types.StatusCode, error) {
	if err := s.enforceUserPermission(types.PermissionUpdateUserSelection, userID); err != nil {
		return 0, err
	}
	defer s.Connection.ScheduleWriteSettings()

	code := s.setUserSelectionByID(ctx, s.Connection.Snapshot(), id, domains, enabled, userID)
	s.observe(OpSetUserSelection, code)
	return code, nil
}

func (s *Service) setUserSelectionByID(ctx context.Context, snapshot ports.PackageStateProvider, id uuid.UUID, domains []string, enabled bool, userID int) types.StatusCode {
	if !s.Connection.DoesUserExist(userID) {
		return types.ErrorUserNotExists
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	packageName, ok := s.registry.Owner(id)
	if !ok || !s.visible(snapshot, packageName, userID) {
		return types.ErrorDomainSetIDInvalid
	}
	record, ok := s.states.Get(packageName)
	if !ok {
		return types.ErrorDomainSetIDInvalid
	}
	return s.applySelection(ctx, snapshot, record, domains, enabled, userID)
}

// SetDomainVerificationUserSelectionInternal is the platform variant keyed by
// package name. Nil domains address every web domain the package declares;
// UserAll applies the change to every user the package is known for.
func (s *Service) SetDomainVerificationUserSelectionInternal(ctx context.Context, userID int, packageName string, enabled bool, domains []string) (types.StatusCode, error) {
	if err := s.enforceInternal(); err != nil {
		return 0, err
	}
	defer s.Connection.ScheduleWriteSettings()

	code := s.setUserSelectionInternal(ctx, s.Connection.Snapshot(), userID, packageName, enabled, domains)
	s.observe(OpSetUserSelection, code)
	return code, nil
}

func (s *Service) setUserSelectionInternal(ctx context.Context, snapshot ports.PackageStateProvider, userID int, packageName string, enabled bool, domains []string) types.StatusCode {
	if userID != types.UserAll && !s.Connection.DoesUserExist(userID) {
		return types.ErrorUserNotExists
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.states.Get(packageName)
	if !ok || !s.visible(snapshot, packageName, s.Connection.CallingUserID()) {
		return types.ErrorUnknownPackage
	}
	if domains == nil {
		domains = record.WebDomains.Sorted()
	}
	code := types.StatusOK
	for _, user := range s.targetUsers(snapshot, packageName, userID) {
		if result := s.applySelection(ctx, snapshot, record, domains, enabled, user); result != types.StatusOK {
			code = result
		}
	}
	return code
}

// applySelection runs with the write lock held.
func (s *Service) applySelection(ctx context.Context, snapshot ports.PackageStateProvider, record *types.PackageVerificationRecord, domains []string, enabled bool, userID int) types.StatusCode {
	result := s.takeover.Apply(record, domains, enabled, userID, snapshot)
	s.observeTakeover(enabled, result)
	log.Ctx(ctx).Debug().
		Str("package", record.PackageName).
		Int("user", userID).
		Bool("enabled", enabled).
		Strs("applied", result.Applied).
		Strs("displaced", result.Displaced).
		Int("blocked", len(result.Blocked)).
		Msg("user selection updated")
	if len(result.Blocked) > 0 {
		return types.ErrorUnableToApprove
	}
	return types.StatusOK
}

func (s *Service) observeTakeover(enabled bool, result core.SelectionResult) {
	if s.Metrics == nil || !enabled {
		return
	}
	if len(result.Applied) > 0 {
		s.Metrics.ObserveTakeover(policies.TakeoverGranted, len(result.Applied))
	}
	if len(result.Blocked) > 0 {
		s.Metrics.ObserveTakeover(policies.TakeoverBlocked, len(result.Blocked))
	}
	if len(result.Ignored) > 0 {
		s.Metrics.ObserveTakeover(policies.TakeoverIgnored, len(result.Ignored))
	}
}

// SetLegacyUserState maps the pre-verification always/never/ask preference
// onto the selection store.
func (s *Service) SetLegacyUserState(ctx context.Context, packageName string, userID int, state types.LegacyState) (types.StatusCode, error) {
	if err := s.enforceUserPermission(types.PermissionSetPreferredApplications, userID); err != nil {
		return 0, err
	}
	if err := policies.ValidateLegacyState(state); err != nil {
		return 0, err
	}
	defer s.Connection.ScheduleWriteSettings()

	code := s.setLegacyUserState(ctx, s.Connection.Snapshot(), packageName, userID, state)
	s.observe(OpSetLegacyUserState, code)
	return code, nil
}

func (s *Service) setLegacyUserState(ctx context.Context, snapshot ports.PackageStateProvider, packageName string, userID int, state types.LegacyState) types.StatusCode {
	if !s.Connection.DoesUserExist(userID) {
		return types.ErrorUserNotExists
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.states.Get(packageName); !ok || !s.visible(snapshot, packageName, userID) {
		return types.ErrorUnknownPackage
	}
	s.selections.SetLegacyState(packageName, userID, state)
	log.Ctx(ctx).Debug().
		Str("package", packageName).
		Int("user", userID).
		Str("legacy", string(state)).
		Msg("legacy user state set")
	return types.StatusOK
}
