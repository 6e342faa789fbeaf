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

// SetDomainVerificationStatus records the verification agent's result for
// domains of the domain set id. Domains the package does not declare are
// ignored.
func (s *Service) SetDomainVerificationStatus(ctx context.Context, id uuid.UUID, domains []string, status types.VerificationStatus) (types.StatusCode, error) {
	if err := s.enforceAgent(); err != nil {
		return 0, err
	}
	if err := policies.ValidateAgentStatus(status); err != nil {
		return 0, err
	}
	return s.setStatusByID(ctx, id, domains, status), nil
}

// SetDomainVerificationStatusAsUID is SetDomainVerificationStatus on behalf of
// uid, for hosts that resolve the calling identity themselves.
func (s *Service) SetDomainVerificationStatusAsUID(ctx context.Context, uid int, id uuid.UUID, domains []string, status types.VerificationStatus) (types.StatusCode, error) {
	if err := s.enforceVerifierUID(uid); err != nil {
		return 0, err
	}
	if err := policies.ValidateAgentStatus(status); err != nil {
		return 0, err
	}
	return s.setStatusByID(ctx, id, domains, status), nil
}

func (s *Service) setStatusByID(ctx context.Context, id uuid.UUID, domains []string, status types.VerificationStatus) types.StatusCode {
	defer s.Connection.ScheduleWriteSettings()

	snapshot := s.Connection.Snapshot()
	code, changes := s.setStatusLocked(ctx, snapshot, id, domains, status)
	s.observe(OpSetStatus, code)
	s.broadcastChanges(changes)
	return code
}

func (s *Service) setStatusLocked(ctx context.Context, snapshot ports.PackageStateProvider, id uuid.UUID, domains []string, status types.VerificationStatus) (types.StatusCode, []core.StatusChange) {
	s.mu.Lock()
	defer s.mu.Unlock()

	packageName, ok := s.registry.Owner(id)
	if !ok || !s.visible(snapshot, packageName, s.Connection.CallingUserID()) {
		return types.ErrorDomainSetIDInvalid, nil
	}
	code, changes := s.states.SetStatus(id, domains, status)
	log.Ctx(ctx).Debug().
		Str("package", packageName).
		Str("status", string(status)).
		Int("changed", len(changes)).
		Msg("verification status set")
	return code, changes
}

// SetDomainVerificationStatusInternal lets platform callers assign any status
// by package name. Empty domains address every declared domain that is not
// yet verified, or all of them when resetting to none.
func (s *Service) SetDomainVerificationStatusInternal(ctx context.Context, packageName string, status types.VerificationStatus, domains []string) (types.StatusCode, error) {
	if err := s.enforceInternal(); err != nil {
		return 0, err
	}
	if err := policies.ValidateInternalStatus(status); err != nil {
		return 0, err
	}
	defer s.Connection.ScheduleWriteSettings()

	snapshot := s.Connection.Snapshot()
	code, changes := s.setStatusInternalLocked(ctx, snapshot, packageName, status, domains)
	s.observe(OpSetStatusInternal, code)
	s.broadcastChanges(changes)
	return code, nil
}

func (s *Service) setStatusInternalLocked(ctx context.Context, snapshot ports.PackageStateProvider, packageName string, status types.VerificationStatus, domains []string) (types.StatusCode, []core.StatusChange) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.visible(snapshot, packageName, s.Connection.CallingUserID()) {
		return types.ErrorUnknownPackage, nil
	}
	changes, ok := s.states.SetStatusForPackageName(packageName, status, domains)
	if !ok {
		return types.ErrorUnknownPackage, nil
	}
	log.Ctx(ctx).Debug().
		Str("package", packageName).
		Str("status", string(status)).
		Int("changed", len(changes)).
		Msg("verification status set internally")
	return types.StatusOK, changes
}
