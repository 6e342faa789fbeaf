package core

import (
	"domverify/internal/policies"
	"domverify/internal/ports"
	"domverify/internal/shared"
	"domverify/internal/types"
)

// OwnershipResolver computes approval levels and domain owners from the
// verification and selection stores.
type OwnershipResolver struct {
	States     *VerificationStateStore
	Selections *UserSelectionStore
}

func NewOwnershipResolver(states *VerificationStateStore, selections *UserSelectionStore) OwnershipResolver {
	return OwnershipResolver{States: states, Selections: selections}
}

// Level returns the approval level packageName holds for domain under userID.
func (r OwnershipResolver) Level(packageName string, domain string, userID int, provider ports.PackageStateProvider) types.ApprovalLevel {
	record, ok := r.States.Get(packageName)
	if !ok {
		return types.ApprovalLevelNone
	}
	if provider != nil {
		state, found := provider.GetPackageStateInternal(packageName)
		if !found || !state.InstalledFor(userID) {
			return types.ApprovalLevelNone
		}
	}
	if !declares(record.WebDomains, domain) && !declares(record.AutoVerifyDomains, domain) {
		return types.ApprovalLevelNone
	}

	selection := r.Selections.Get(userID, packageName)
	if !selection.LinkHandlingAllowed || selection.Legacy == types.LegacyStateNever {
		return types.ApprovalLevelNone
	}
	for declared := range record.AutoVerifyDomains {
		if shared.MatchesDomain(declared, domain) && record.StatusFor(declared).IsVerified() {
			return types.ApprovalLevelVerified
		}
	}
	if declares(selection.SelectedDomains, domain) {
		return types.ApprovalLevelSelected
	}
	switch {
	case selection.Legacy == types.LegacyStateAlways:
		return types.ApprovalLevelLegacyAlways
	case record.IsSystem:
		return types.ApprovalLevelSystemDefault
	case selection.Legacy == types.LegacyStateAsk, selection.Legacy == types.LegacyStateAlwaysAsk:
		return types.ApprovalLevelLegacyAsk
	default:
		return types.ApprovalLevelNone
	}
}

// Claims returns the level of every package with a non-zero claim on domain,
// ordered by package name. exclude is skipped when non-empty.
func (r OwnershipResolver) Claims(domain string, userID int, exclude string, provider ports.PackageStateProvider) []types.DomainOwner {
	claims := []types.DomainOwner{}
	for _, record := range r.States.Records() {
		if record.PackageName == exclude {
			continue
		}
		level := r.Level(record.PackageName, domain, userID, provider)
		if level == types.ApprovalLevelNone {
			continue
		}
		claims = append(claims, types.DomainOwner{PackageName: record.PackageName, Level: level})
	}
	return claims
}

// Owners returns the packages that currently win domain for userID. An empty
// result means the platform should ask the user.
func (r OwnershipResolver) Owners(domain string, userID int, provider ports.PackageStateProvider) []types.DomainOwner {
	_, winners := policies.WinningLevel(r.Claims(shared.NormalizeDomain(domain), userID, "", provider))
	return winners
}

// HostStates reports the user-facing state of every web domain record
// declares.
func (r OwnershipResolver) HostStates(record *types.PackageVerificationRecord, userID int) map[string]types.DomainState {
	selection := r.Selections.Get(userID, record.PackageName)
	states := make(map[string]types.DomainState, len(record.WebDomains))
	for domain := range record.WebDomains {
		switch {
		case record.StatusFor(domain).IsVerified():
			states[domain] = types.DomainStateVerified
		case selection.SelectedDomains.Has(domain):
			states[domain] = types.DomainStateSelected
		default:
			states[domain] = types.DomainStateNone
		}
	}
	return states
}

func declares(set types.DomainSet, domain string) bool {
	if set.Has(domain) {
		return true
	}
	for declared := range set {
		if shared.MatchesDomain(declared, domain) {
			return true
		}
	}
	return false
}
