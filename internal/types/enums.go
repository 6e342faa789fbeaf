package types

import "fmt"

// VerificationStatus is the agent-assigned outcome for one autoVerify domain
// of one package.
type VerificationStatus string

const (
	VerificationStatusNone          VerificationStatus = "none"
	VerificationStatusPending       VerificationStatus = "pending"
	VerificationStatusSuccess       VerificationStatus = "success"
	VerificationStatusFailure       VerificationStatus = "failure"
	VerificationStatusLegacyFailure VerificationStatus = "legacy_failure"
	VerificationStatusApproved      VerificationStatus = "approved"
	VerificationStatusDenied        VerificationStatus = "denied"
	VerificationStatusMigrated      VerificationStatus = "migrated"
	VerificationStatusRestored      VerificationStatus = "restored"
	VerificationStatusSysConfig     VerificationStatus = "sys_config"
)

var validVerificationStatuses = map[VerificationStatus]struct{}{
	VerificationStatusNone:          {},
	VerificationStatusPending:       {},
	VerificationStatusSuccess:       {},
	VerificationStatusFailure:       {},
	VerificationStatusLegacyFailure: {},
	VerificationStatusApproved:      {},
	VerificationStatusDenied:        {},
	VerificationStatusMigrated:      {},
	VerificationStatusRestored:      {},
	VerificationStatusSysConfig:     {},
}

func (s VerificationStatus) IsValid() bool {
	_, ok := validVerificationStatuses[s]
	return ok
}

// IsVerified reports whether the status grants the Verified approval level.
func (s VerificationStatus) IsVerified() bool {
	switch s {
	case VerificationStatusSuccess,
		VerificationStatusApproved,
		VerificationStatusMigrated,
		VerificationStatusRestored,
		VerificationStatusSysConfig:
		return true
	default:
		return false
	}
}

func (s VerificationStatus) IsFailure() bool {
	switch s {
	case VerificationStatusFailure, VerificationStatusLegacyFailure, VerificationStatusDenied:
		return true
	default:
		return false
	}
}

// LegacyState is the pre-verification "always / never / ask" tri-state a user
// could assign to a package for all of its domains.
type LegacyState string

const (
	LegacyStateUndefined LegacyState = "undefined"
	LegacyStateAsk       LegacyState = "ask"
	LegacyStateAlways    LegacyState = "always"
	LegacyStateNever     LegacyState = "never"
	LegacyStateAlwaysAsk LegacyState = "always_ask"
)

func (s LegacyState) IsValid() bool {
	switch s {
	case LegacyStateUndefined, LegacyStateAsk, LegacyStateAlways, LegacyStateNever, LegacyStateAlwaysAsk:
		return true
	default:
		return false
	}
}

// ApprovalLevel orders competing claims on a domain; higher wins.
type ApprovalLevel int

const (
	ApprovalLevelNone ApprovalLevel = iota
	ApprovalLevelLegacyAsk
	ApprovalLevelSystemDefault
	ApprovalLevelLegacyAlways
	ApprovalLevelSelected
	ApprovalLevelVerified
)

func (l ApprovalLevel) String() string {
	switch l {
	case ApprovalLevelNone:
		return "none"
	case ApprovalLevelLegacyAsk:
		return "legacy_ask"
	case ApprovalLevelSystemDefault:
		return "system_default"
	case ApprovalLevelLegacyAlways:
		return "legacy_always"
	case ApprovalLevelSelected:
		return "selected"
	case ApprovalLevelVerified:
		return "verified"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// DomainState is the per-host state reported to a user-facing settings surface.
type DomainState string

const (
	DomainStateNone     DomainState = "none"
	DomainStateSelected DomainState = "selected"
	DomainStateVerified DomainState = "verified"
)

// StatusCode is the closed set of business outcomes returned by mutations.
type StatusCode int

const (
	StatusOK StatusCode = iota
	ErrorDomainSetIDInvalid
	ErrorUnableToApprove
	ErrorUserNotExists
	ErrorUnknownPackage
)

func (c StatusCode) String() string {
	switch c {
	case StatusOK:
		return "STATUS_OK"
	case ErrorDomainSetIDInvalid:
		return "ERROR_DOMAIN_SET_ID_INVALID"
	case ErrorUnableToApprove:
		return "ERROR_UNABLE_TO_APPROVE"
	case ErrorUserNotExists:
		return "ERROR_USER_NOT_EXISTS"
	case ErrorUnknownPackage:
		return "ERROR_UNKNOWN_PACKAGE"
	default:
		return fmt.Sprintf("STATUS(%d)", int(c))
	}
}

type Permission string

const (
	PermissionVerificationAgent        Permission = "DOMAIN_VERIFICATION_AGENT"
	PermissionUpdateUserSelection      Permission = "UPDATE_DOMAIN_VERIFICATION_USER_SELECTION"
	PermissionInteractAcrossUsers      Permission = "INTERACT_ACROSS_USERS"
	PermissionSetPreferredApplications Permission = "SET_PREFERRED_APPLICATIONS"
)

const (
	RootUID   = 0
	SystemUID = 1000
	ShellUID  = 2000
)

// UserAll addresses every known user in internal user operations.
const UserAll = -1

// ScheduleSendRequest asks the host to forward a set of package names to the
// verification agent once the current call has returned.
const ScheduleSendRequest = 1
