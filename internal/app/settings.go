package app

import (
	"context"
	"fmt"
	"sort"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"domverify/internal/policies"
	"domverify/internal/ports"
	"domverify/internal/shared"
	"domverify/internal/types"
)

// ExportSettings captures the persistent state of every registered package.
// Settings imported for packages that never showed up are kept as they were.
func (s *Service) ExportSettings() types.SettingsFile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	file := types.SettingsFile{Version: types.SettingsFileVersion, Packages: []types.PackageSettings{}}
	for _, record := range s.states.Records() {
		entry := types.PackageSettings{
			PackageName: record.PackageName,
			DomainSetID: record.DomainSetID.String(),
		}
		if len(record.DomainState) > 0 {
			entry.States = make(map[string]types.VerificationStatus, len(record.DomainState))
			for domain, status := range record.DomainState {
				entry.States[domain] = status
			}
		}
		for _, selection := range s.selections.RecordsFor(record.PackageName) {
			allowed := selection.LinkHandlingAllowed
			entry.Users = append(entry.Users, types.UserSettings{
				UserID:              selection.UserID,
				LinkHandlingAllowed: &allowed,
				Selected:            selection.SelectedDomains.Sorted(),
				Legacy:              selection.Legacy,
			})
		}
		file.Packages = append(file.Packages, entry)
	}
	for _, saved := range s.pending {
		file.Packages = append(file.Packages, saved)
	}
	sort.Slice(file.Packages, func(i, j int) bool {
		return file.Packages[i].PackageName < file.Packages[j].PackageName
	})
	return file
}

// ImportSettings loads persisted state. Entries for registered packages with
// the same domain set are applied immediately; the rest wait for AddPackage
// and are discarded if the package arrives with a different domain set.
func (s *Service) ImportSettings(ctx context.Context, file types.SettingsFile) error {
	if file.Version > types.SettingsFileVersion {
		return errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(fmt.Sprintf("settings version %d is newer than supported version %d", file.Version, types.SettingsFileVersion))
	}
	for _, entry := range file.Packages {
		if entry.PackageName == "" {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("settings entry without package name")
		}
		if _, err := uuid.Parse(entry.DomainSetID); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("invalid domain set id for %s", entry.PackageName)).
				WithCause(err)
		}
	}

	s.mu.Lock()
	applied, deferred := 0, 0
	for _, entry := range file.Packages {
		record, ok := s.states.Get(entry.PackageName)
		if !ok {
			s.pending[entry.PackageName] = entry
			deferred++
			continue
		}
		if record.DomainSetID.String() != entry.DomainSetID {
			continue
		}
		s.restore(record, entry)
		s.states.Replace(record, false)
		s.selections.RetainSelected(record.PackageName, record.WebDomains)
		applied++
	}
	s.mu.Unlock()

	log.Ctx(ctx).Debug().Int("applied", applied).Int("deferred", deferred).Msg("settings imported")
	s.observe(OpImportSettings, types.StatusOK)
	return nil
}

// restore copies saved statuses and user records onto record. The caller
// prunes them to the record's declarations afterwards. A restored selection
// never displaces another package: domains already held by someone else, or
// claimed above Selected, are dropped.
func (s *Service) restore(record *types.PackageVerificationRecord, saved types.PackageSettings) {
	for domain, status := range saved.States {
		if !status.IsValid() {
			continue
		}
		record.DomainState[shared.NormalizeDomain(domain)] = status
	}
	snapshot := s.Connection.Snapshot()
	for _, user := range saved.Users {
		legacy := user.Legacy
		if !legacy.IsValid() {
			legacy = types.LegacyStateUndefined
		}
		selected := types.DomainSet{}
		for _, domain := range shared.NormalizeDomains(user.Selected) {
			if s.contested(snapshot, record.PackageName, domain, user.UserID) {
				continue
			}
			selected[domain] = struct{}{}
		}
		s.selections.Put(types.UserSelectionRecord{
			UserID:              user.UserID,
			PackageName:         record.PackageName,
			LinkHandlingAllowed: user.LinkHandling(),
			SelectedDomains:     selected,
			Legacy:              legacy,
		})
	}
}

func (s *Service) contested(snapshot ports.PackageStateProvider, packageName string, domain string, userID int) bool {
	for _, holder := range s.selections.Holders(domain, userID) {
		if holder != packageName {
			return true
		}
	}
	return !policies.DecideTakeover(domain, s.resolver.Claims(domain, userID, packageName, snapshot)).Allowed
}
