package app

import (
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"domverify/internal/policies"
	"domverify/internal/types"
)

func permissionDenied(format string, args ...any) error {
	return errbuilder.New().
		WithCode(errbuilder.CodePermissionDenied).
		WithMsg(fmt.Sprintf(format, args...))
}

// enforceAgent requires the caller to be the registered verification agent.
func (s *Service) enforceAgent() error {
	uid := s.Connection.CallingUID()
	if !s.Authorizer.HasPermission(types.PermissionVerificationAgent, uid) {
		return permissionDenied("uid %d lacks %s", uid, types.PermissionVerificationAgent)
	}
	if !s.Proxy.IsCallerVerifier(uid) {
		return permissionDenied("uid %d is not the domain verification agent", uid)
	}
	return nil
}

func (s *Service) enforceVerifierUID(uid int) error {
	if !s.Proxy.IsCallerVerifier(uid) {
		return permissionDenied("uid %d is not the domain verification agent", uid)
	}
	return nil
}

func (s *Service) enforceInternal() error {
	uid := s.Connection.CallingUID()
	if !policies.IsInternalCaller(uid) {
		return permissionDenied("uid %d is not a platform caller", uid)
	}
	return nil
}

// enforceAgentOrInternal admits the verification agent and platform callers.
func (s *Service) enforceAgentOrInternal() error {
	if policies.IsInternalCaller(s.Connection.CallingUID()) {
		return nil
	}
	return s.enforceAgent()
}

func (s *Service) enforceUserPermission(permission types.Permission, userID int) error {
	uid := s.Connection.CallingUID()
	if !s.Authorizer.HasPermission(permission, uid) {
		return permissionDenied("uid %d lacks %s", uid, permission)
	}
	return s.enforceCrossUser(userID)
}

func (s *Service) enforceCrossUser(userID int) error {
	uid := s.Connection.CallingUID()
	if userID == s.Connection.CallingUserID() {
		return nil
	}
	if !s.Authorizer.HasPermission(types.PermissionInteractAcrossUsers, uid) {
		return permissionDenied("uid %d may not act on user %d without %s", uid, userID, types.PermissionInteractAcrossUsers)
	}
	return nil
}

// enforceUserStateQuery admits the package itself or a selection manager.
func (s *Service) enforceUserStateQuery(packageUID int, userID int) error {
	uid := s.Connection.CallingUID()
	if uid != packageUID && !s.Authorizer.HasPermission(types.PermissionUpdateUserSelection, uid) {
		return permissionDenied("uid %d may not query another package's domain state", uid)
	}
	return s.enforceCrossUser(userID)
}
