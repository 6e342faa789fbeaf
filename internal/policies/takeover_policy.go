package policies

import (
	"domverify/internal/types"
)

const (
	TakeoverGranted = "granted"
	TakeoverBlocked = "blocked"
	TakeoverIgnored = "ignored"
)

// TakeoverDecision is the arbitration outcome for one requested domain.
type TakeoverDecision struct {
	Domain    string
	Allowed   bool
	BlockedBy []string
}

// DecideTakeover allows a selection unless a competing package holds the
// domain above the Selected level.
func DecideTakeover(domain string, competitors []types.DomainOwner) TakeoverDecision {
	decision := TakeoverDecision{Domain: domain, Allowed: true}
	for _, competitor := range competitors {
		if competitor.Level > types.ApprovalLevelSelected {
			decision.Allowed = false
			decision.BlockedBy = append(decision.BlockedBy, competitor.PackageName)
		}
	}
	return decision
}

// WinningLevel returns the highest level among claims and the claims that
// hold it. Levels below SystemDefault never win.
func WinningLevel(claims []types.DomainOwner) (types.ApprovalLevel, []types.DomainOwner) {
	best := types.ApprovalLevelNone
	for _, claim := range claims {
		if claim.Level > best {
			best = claim.Level
		}
	}
	if best < types.ApprovalLevelSystemDefault {
		return types.ApprovalLevelNone, []types.DomainOwner{}
	}
	winners := []types.DomainOwner{}
	for _, claim := range claims {
		if claim.Level == best {
			claim.Overrideable = best < types.ApprovalLevelVerified
			winners = append(winners, claim)
		}
	}
	return best, winners
}
