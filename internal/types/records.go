package types

import (
	"sort"

	"github.com/google/uuid"
)

// DomainSet is a set of normalized host names.
type DomainSet map[string]struct{}

func NewDomainSet(domains ...string) DomainSet {
	set := DomainSet{}
	for _, domain := range domains {
		set[domain] = struct{}{}
	}
	return set
}

func (s DomainSet) Has(domain string) bool {
	_, ok := s[domain]
	return ok
}

func (s DomainSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for domain := range s {
		out = append(out, domain)
	}
	sort.Strings(out)
	return out
}

func (s DomainSet) Clone() DomainSet {
	out := make(DomainSet, len(s))
	for domain := range s {
		out[domain] = struct{}{}
	}
	return out
}

// PackageVerificationRecord holds the verification state of one package's
// current domain set.
//
// Invariant: every key of DomainState is a member of AutoVerifyDomains.
type PackageVerificationRecord struct {
	PackageName       string
	DomainSetID       uuid.UUID
	AutoVerifyDomains DomainSet
	WebDomains        DomainSet
	DomainState       map[string]VerificationStatus
	IsSystem          bool
}

// StatusFor returns the recorded status, defaulting to none.
func (r *PackageVerificationRecord) StatusFor(domain string) VerificationStatus {
	if status, ok := r.DomainState[domain]; ok {
		return status
	}
	return VerificationStatusNone
}

// UserSelectionRecord holds one user's overrides for one package.
type UserSelectionRecord struct {
	UserID              int
	PackageName         string
	LinkHandlingAllowed bool
	SelectedDomains     DomainSet
	Legacy              LegacyState
}

// DefaultUserSelection is the state of a (user, package) pair that never had
// a recorded override.
func DefaultUserSelection(userID int, packageName string) UserSelectionRecord {
	return UserSelectionRecord{
		UserID:              userID,
		PackageName:         packageName,
		LinkHandlingAllowed: true,
		SelectedDomains:     DomainSet{},
		Legacy:              LegacyStateUndefined,
	}
}

// IsDefault reports whether the record carries no override worth keeping.
func (r UserSelectionRecord) IsDefault() bool {
	return r.LinkHandlingAllowed && len(r.SelectedDomains) == 0 &&
		(r.Legacy == "" || r.Legacy == LegacyStateUndefined)
}

type DomainOwner struct {
	PackageName  string
	Level        ApprovalLevel
	Overrideable bool
}

type DomainVerificationUserState struct {
	PackageName         string
	DomainSetID         uuid.UUID
	UserID              int
	LinkHandlingAllowed bool
	HostToState         map[string]DomainState
}

type DomainVerificationInfo struct {
	PackageName  string
	DomainSetID  uuid.UUID
	HostToStatus map[string]VerificationStatus
}
