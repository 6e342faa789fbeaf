package core

import (
	"sort"

	"domverify/internal/policies"
	"domverify/internal/ports"
	"domverify/internal/shared"
	"domverify/internal/types"
)

// SelectionResult partitions the domains of one selection request.
type SelectionResult struct {
	Applied []string
	Blocked []policies.TakeoverDecision
	Ignored []string
	// Displaced lists packages that lost a selected domain to the requester.
	Displaced []string
}

// Changed reports whether any selection bit moved.
func (r SelectionResult) Changed() bool {
	return len(r.Applied) > 0
}

// Takeover applies selection requests for one package and user, displacing
// other holders where arbitration allows it.
type Takeover struct {
	Resolver OwnershipResolver
}

func NewTakeover(resolver OwnershipResolver) Takeover {
	return Takeover{Resolver: resolver}
}

// Apply selects or deselects domains for packageName. Domains the package does
// not declare as web domains are ignored. Selecting a domain held above the
// Selected level by another package is blocked for that domain only.
func (t Takeover) Apply(record *types.PackageVerificationRecord, domains []string, enabled bool, userID int, provider ports.PackageStateProvider) SelectionResult {
	selections := t.Resolver.Selections
	result := SelectionResult{}
	displaced := map[string]struct{}{}
	for _, domain := range shared.NormalizeDomains(domains) {
		if !record.WebDomains.Has(domain) {
			result.Ignored = append(result.Ignored, domain)
			continue
		}
		if !enabled {
			if selections.SetSelected(userID, record.PackageName, domain, false) {
				result.Applied = append(result.Applied, domain)
			}
			continue
		}
		claims := t.Resolver.Claims(domain, userID, record.PackageName, provider)
		decision := policies.DecideTakeover(domain, claims)
		if !decision.Allowed {
			result.Blocked = append(result.Blocked, decision)
			continue
		}
		changed := false
		for _, holder := range selections.Holders(domain, userID) {
			if holder == record.PackageName {
				continue
			}
			if len(selections.Deselect(userID, holder, domain)) > 0 {
				displaced[holder] = struct{}{}
				changed = true
			}
		}
		if selections.SetSelected(userID, record.PackageName, domain, true) {
			changed = true
		}
		if changed {
			result.Applied = append(result.Applied, domain)
		}
	}
	for name := range displaced {
		result.Displaced = append(result.Displaced, name)
	}
	sort.Strings(result.Displaced)
	return result
}
