package adapters

import (
	"strings"

	"domverify/internal/ports"
	"domverify/internal/types"
)

// StaticAuthorizer grants permissions from a fixed table. Platform uids hold
// every permission.
type StaticAuthorizer struct {
	grants map[int]map[types.Permission]struct{}
}

var _ ports.AuthorizerPort = StaticAuthorizer{}

// NewStaticAuthorizer builds the table from uid to permission names.
func NewStaticAuthorizer(grants map[int][]string) StaticAuthorizer {
	table := make(map[int]map[types.Permission]struct{}, len(grants))
	for uid, names := range grants {
		set := make(map[types.Permission]struct{}, len(names))
		for _, name := range names {
			set[types.Permission(strings.ToUpper(strings.TrimSpace(name)))] = struct{}{}
		}
		table[uid] = set
	}
	return StaticAuthorizer{grants: table}
}

func (a StaticAuthorizer) HasPermission(permission types.Permission, uid int) bool {
	switch uid {
	case types.RootUID, types.SystemUID, types.ShellUID:
		return true
	}
	_, ok := a.grants[uid][permission]
	return ok
}
