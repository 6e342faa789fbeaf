package app

import (
	"context"
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"domverify/internal/shared"
	"domverify/internal/types"
)

func notFound(format string, args ...any) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg(fmt.Sprintf(format, args...))
}

// GetDomainVerificationUserState reports, for every web domain packageName
// declares, whether it is verified, selected or neither for userID.
func (s *Service) GetDomainVerificationUserState(ctx context.Context, packageName string, userID int) (types.DomainVerificationUserState, error) {
	snapshot := s.Connection.Snapshot()
	packageUID := -1
	if snapshot != nil {
		if state, ok := snapshot.GetPackageStateInternal(packageName); ok {
			packageUID = state.UID
		}
	}
	if err := s.enforceUserStateQuery(packageUID, userID); err != nil {
		return types.DomainVerificationUserState{}, err
	}
	if !s.Connection.DoesUserExist(userID) {
		return types.DomainVerificationUserState{}, notFound("user %d does not exist", userID)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.states.Get(packageName)
	if !ok || !s.visible(snapshot, packageName, userID) {
		return types.DomainVerificationUserState{}, notFound("package %s not found", packageName)
	}
	selection := s.selections.Get(userID, packageName)
	return types.DomainVerificationUserState{
		PackageName:         packageName,
		DomainSetID:         record.DomainSetID,
		UserID:              userID,
		LinkHandlingAllowed: selection.LinkHandlingAllowed,
		HostToState:         s.resolver.HostStates(record, userID),
	}, nil
}

// GetOwnersForDomain returns the packages that would open domain for userID,
// hiding those the caller may not see. An empty list means the user is asked.
func (s *Service) GetOwnersForDomain(ctx context.Context, domain string, userID int) ([]types.DomainOwner, error) {
	if err := s.enforceUserPermission(types.PermissionUpdateUserSelection, userID); err != nil {
		return nil, err
	}
	if !s.Connection.DoesUserExist(userID) {
		return nil, notFound("user %d does not exist", userID)
	}
	snapshot := s.Connection.Snapshot()

	s.mu.RLock()
	owners := s.resolver.Owners(shared.NormalizeDomain(domain), userID, snapshot)
	s.mu.RUnlock()

	callingUID := s.Connection.CallingUID()
	visible := make([]types.DomainOwner, 0, len(owners))
	for _, owner := range owners {
		if s.Connection.FilterAppAccess(owner.PackageName, callingUID, userID) {
			continue
		}
		visible = append(visible, owner)
	}
	if s.Metrics != nil {
		s.Metrics.ObserveOwnerLookup(len(visible))
	}
	return visible, nil
}

// GetDomainVerificationInfo returns the agent-facing status of every
// autoVerify domain of packageName.
func (s *Service) GetDomainVerificationInfo(ctx context.Context, packageName string) (types.DomainVerificationInfo, error) {
	if err := s.enforceAgentOrInternal(); err != nil {
		return types.DomainVerificationInfo{}, err
	}
	snapshot := s.Connection.Snapshot()

	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.states.Get(packageName)
	if !ok || !s.visible(snapshot, packageName, s.Connection.CallingUserID()) {
		return types.DomainVerificationInfo{}, notFound("package %s not found", packageName)
	}
	statuses := make(map[string]types.VerificationStatus, len(record.AutoVerifyDomains))
	for domain := range record.AutoVerifyDomains {
		statuses[domain] = record.StatusFor(domain)
	}
	return types.DomainVerificationInfo{
		PackageName:  packageName,
		DomainSetID:  record.DomainSetID,
		HostToStatus: statuses,
	}, nil
}

// QueryValidVerificationPackageNames lists the packages that declare at least
// one autoVerify domain.
func (s *Service) QueryValidVerificationPackageNames(ctx context.Context) ([]string, error) {
	if err := s.enforceAgentOrInternal(); err != nil {
		return nil, err
	}
	snapshot := s.Connection.Snapshot()

	s.mu.RLock()
	defer s.mu.RUnlock()

	names := []string{}
	for _, record := range s.states.Records() {
		if len(record.AutoVerifyDomains) == 0 {
			continue
		}
		if !s.visible(snapshot, record.PackageName, s.Connection.CallingUserID()) {
			continue
		}
		names = append(names, record.PackageName)
	}
	return names, nil
}
