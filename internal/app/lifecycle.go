package app

import (
	"context"
	"fmt"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"domverify/internal/types"
)

// AddPackage registers an installed package. Persisted settings imported for
// the same domain set are attached. Persisting the result is left to the
// package lifecycle owner, so no write is scheduled.
func (s *Service) AddPackage(ctx context.Context, state types.PackageState) {
	assert.NotEmpty(ctx, state.PackageName, "package name must be set")
	assert.NotEmpty(ctx, domainSetIDString(state.DomainSetID), "domain set id must be set")

	needsVerification := s.addPackage(ctx, state)
	s.observe(OpAddPackage, types.StatusOK)
	if needsVerification {
		s.Connection.Schedule(types.ScheduleSendRequest, []string{state.PackageName})
	}
}

func (s *Service) addPackage(ctx context.Context, state types.PackageState) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := s.newRecord(state)
	if existing, ok := s.states.Get(state.PackageName); ok && existing.DomainSetID == state.DomainSetID {
		for domain, status := range existing.DomainState {
			record.DomainState[domain] = status
		}
	}
	s.register(record)

	restored := false
	if saved, ok := s.pending[state.PackageName]; ok {
		delete(s.pending, state.PackageName)
		if saved.DomainSetID == state.DomainSetID.String() {
			s.restore(record, saved)
			restored = true
		}
	}
	s.states.Replace(record, false)
	s.selections.RetainSelected(record.PackageName, record.WebDomains)

	log.Ctx(ctx).Debug().
		Str("package", record.PackageName).
		Str("domain_set_id", record.DomainSetID.String()).
		Int("auto_verify", len(record.AutoVerifyDomains)).
		Int("web", len(record.WebDomains)).
		Bool("restored", restored).
		Msg("package added")
	return hasUnverified(record)
}

// MigratePackage replaces a package's domain set after an update. Verified
// statuses and user selections survive for domains the new version still
// declares.
func (s *Service) MigratePackage(ctx context.Context, oldState types.PackageState, newState types.PackageState) {
	assert.NotEmpty(ctx, newState.PackageName, "package name must be set")

	needsVerification := s.migratePackage(ctx, oldState, newState)
	s.observe(OpMigratePackage, types.StatusOK)
	if needsVerification {
		s.Connection.Schedule(types.ScheduleSendRequest, []string{newState.PackageName})
	}
}

func (s *Service) migratePackage(ctx context.Context, oldState types.PackageState, newState types.PackageState) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, known := s.states.Get(oldState.PackageName)
	if oldState.PackageName != newState.PackageName {
		s.dropPackage(oldState.PackageName)
		known = false
	}
	record := s.newRecord(newState)
	s.register(record)
	s.states.Replace(record, known)
	s.selections.RetainSelected(record.PackageName, record.WebDomains)

	log.Ctx(ctx).Debug().
		Str("package", record.PackageName).
		Str("from", oldState.DomainSetID.String()).
		Str("to", record.DomainSetID.String()).
		Int("carried", len(record.DomainState)).
		Msg("package migrated")
	return hasUnverified(record)
}

// RemovePackage forgets a package and every state attached to it.
func (s *Service) RemovePackage(ctx context.Context, packageName string) types.StatusCode {
	defer s.Connection.ScheduleWriteSettings()

	code := s.removePackage(ctx, packageName)
	s.observe(OpRemovePackage, code)
	return code
}

func (s *Service) removePackage(ctx context.Context, packageName string) types.StatusCode {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.states.Get(packageName); !ok {
		return types.ErrorUnknownPackage
	}
	s.dropPackage(packageName)
	log.Ctx(ctx).Debug().Str("package", packageName).Msg("package removed")
	return types.StatusOK
}

func (s *Service) newRecord(state types.PackageState) *types.PackageVerificationRecord {
	return &types.PackageVerificationRecord{
		PackageName:       state.PackageName,
		DomainSetID:       state.DomainSetID,
		AutoVerifyDomains: types.NewDomainSet(s.collector.CollectAutoVerifyDomains(state.Pkg)...),
		WebDomains:        types.NewDomainSet(s.collector.CollectWebDomains(state.Pkg)...),
		DomainState:       map[string]types.VerificationStatus{},
		IsSystem:          state.IsSystem,
	}
}

// register binds the record's domain set. A domain set shared by two packages
// means the host handed out a duplicate identifier, which is unrecoverable.
func (s *Service) register(record *types.PackageVerificationRecord) {
	if err := s.registry.Add(record.DomainSetID, record.PackageName); err != nil {
		panic(fmt.Sprintf("register %s: %v", record.PackageName, err))
	}
}

func (s *Service) dropPackage(packageName string) {
	s.registry.Remove(packageName)
	s.states.Remove(packageName)
	s.selections.ClearPackage(packageName)
	delete(s.pending, packageName)
}

func hasUnverified(record *types.PackageVerificationRecord) bool {
	for domain := range record.AutoVerifyDomains {
		if !record.StatusFor(domain).IsVerified() {
			return true
		}
	}
	return false
}

// domainSetIDString renders the nil id as empty so it fails presence checks.
func domainSetIDString(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return id.String()
}
