package ports

import "domverify/internal/types"

type AuthorizerPort interface {
	HasPermission(permission types.Permission, uid int) bool
}
