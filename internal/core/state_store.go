package core

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"domverify/internal/shared"
	"domverify/internal/types"
)

// StatusChange records one domain whose verification status moved.
type StatusChange struct {
	PackageName string
	Domain      string
	From        types.VerificationStatus
	To          types.VerificationStatus
}

// FlipsVerified reports whether the change gained or lost the Verified level.
func (c StatusChange) FlipsVerified() bool {
	return c.From.IsVerified() != c.To.IsVerified()
}

// VerificationStateStore keeps per-package, per-domain verification status
// keyed by the package's current domain set.
type VerificationStateStore struct {
	registry *DomainSetRegistry
	records  map[string]*types.PackageVerificationRecord
}

func NewVerificationStateStore(registry *DomainSetRegistry) *VerificationStateStore {
	return &VerificationStateStore{
		registry: registry,
		records:  map[string]*types.PackageVerificationRecord{},
	}
}

func (s *VerificationStateStore) Get(packageName string) (*types.PackageVerificationRecord, bool) {
	record, ok := s.records[packageName]
	return record, ok
}

// Records returns every record ordered by package name.
func (s *VerificationStateStore) Records() []*types.PackageVerificationRecord {
	out := make([]*types.PackageVerificationRecord, 0, len(s.records))
	for _, record := range s.records {
		out = append(out, record)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].PackageName < out[j].PackageName
	})
	return out
}

// Replace installs record as the package's current domain set. Statuses for
// domains the record no longer declares are pruned. With carryOver, verified
// statuses recorded for the previous domain set survive for domains still
// declared; anything short of verified is dropped so the agent asks again.
func (s *VerificationStateStore) Replace(record *types.PackageVerificationRecord, carryOver bool) {
	if record.DomainState == nil {
		record.DomainState = map[string]types.VerificationStatus{}
	}
	if previous, ok := s.records[record.PackageName]; ok && carryOver {
		for domain, status := range previous.DomainState {
			if _, set := record.DomainState[domain]; set || !status.IsVerified() {
				continue
			}
			record.DomainState[domain] = status
		}
	}
	for domain, status := range record.DomainState {
		if !record.AutoVerifyDomains.Has(domain) || status == types.VerificationStatusNone {
			delete(record.DomainState, domain)
		}
	}
	s.records[record.PackageName] = record
}

func (s *VerificationStateStore) Remove(packageName string) {
	delete(s.records, packageName)
}

// SetStatus applies status to the listed domains of the package owning id.
// Domains the package does not declare are ignored.
func (s *VerificationStateStore) SetStatus(id uuid.UUID, domains []string, status types.VerificationStatus) (types.StatusCode, []StatusChange) {
	packageName, ok := s.registry.Owner(id)
	if !ok {
		return types.ErrorDomainSetIDInvalid, nil
	}
	record := s.mustGet(packageName)
	return types.StatusOK, applyStatus(record, shared.NormalizeDomains(domains), status)
}

// SetStatusForPackageName is the privileged variant that bypasses domain set
// lookup. Empty domains address every declared domain that is not already
// verified, or every declared domain when resetting to none.
func (s *VerificationStateStore) SetStatusForPackageName(packageName string, status types.VerificationStatus, domains []string) ([]StatusChange, bool) {
	record, ok := s.records[packageName]
	if !ok {
		return nil, false
	}
	targets := shared.NormalizeDomains(domains)
	if len(targets) == 0 {
		for _, domain := range record.AutoVerifyDomains.Sorted() {
			if status != types.VerificationStatusNone && record.StatusFor(domain).IsVerified() {
				continue
			}
			targets = append(targets, domain)
		}
	}
	return applyStatus(record, targets, status), true
}

// ClearPackage resets every domain of the package to none.
func (s *VerificationStateStore) ClearPackage(packageName string) []StatusChange {
	record, ok := s.records[packageName]
	if !ok {
		return nil
	}
	return applyStatus(record, record.AutoVerifyDomains.Sorted(), types.VerificationStatusNone)
}

func (s *VerificationStateStore) ClearState(packageNames []string) []StatusChange {
	var changes []StatusChange
	for _, name := range packageNames {
		changes = append(changes, s.ClearPackage(name)...)
	}
	return changes
}

func (s *VerificationStateStore) mustGet(packageName string) *types.PackageVerificationRecord {
	record, ok := s.records[packageName]
	if !ok {
		panic(fmt.Sprintf("domain set registered for %s without verification state", packageName))
	}
	return record
}

func applyStatus(record *types.PackageVerificationRecord, domains []string, status types.VerificationStatus) []StatusChange {
	var changes []StatusChange
	for _, domain := range domains {
		if !record.AutoVerifyDomains.Has(domain) {
			continue
		}
		previous := record.StatusFor(domain)
		if previous == status {
			continue
		}
		if status == types.VerificationStatusNone {
			delete(record.DomainState, domain)
		} else {
			record.DomainState[domain] = status
		}
		changes = append(changes, StatusChange{
			PackageName: record.PackageName,
			Domain:      domain,
			From:        previous,
			To:          status,
		})
	}
	return changes
}
