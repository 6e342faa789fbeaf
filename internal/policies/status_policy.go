package policies

import (
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"domverify/internal/types"
)

// ValidateAgentStatus accepts the statuses a verification agent may report.
func ValidateAgentStatus(status types.VerificationStatus) error {
	switch status {
	case types.VerificationStatusNone,
		types.VerificationStatusPending,
		types.VerificationStatusSuccess,
		types.VerificationStatusFailure:
		return nil
	}
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("status %q cannot be set by a verification agent", status))
}

func ValidateInternalStatus(status types.VerificationStatus) error {
	if status.IsValid() {
		return nil
	}
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("unknown verification status: %s", status))
}

func ValidateLegacyState(state types.LegacyState) error {
	if state.IsValid() {
		return nil
	}
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("unknown legacy state: %s", state))
}

// IsInternalCaller reports whether uid belongs to the platform itself.
func IsInternalCaller(uid int) bool {
	switch uid {
	case types.RootUID, types.SystemUID, types.ShellUID:
		return true
	default:
		return false
	}
}
