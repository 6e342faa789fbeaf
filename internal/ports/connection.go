package ports

import "domverify/internal/types"

// PackageStateProvider is a point-in-time view of installed packages.
type PackageStateProvider interface {
	// GetPackageStateInternal returns the package or false when it is not
	// installed.
	GetPackageStateInternal(packageName string) (types.PackageState, bool)
}

// ConnectionPort is the host platform as seen by the verification engine.
type ConnectionPort interface {
	CallingUID() int
	CallingUserID() int
	Snapshot() PackageStateProvider
	DoesUserExist(userID int) bool

	// FilterAppAccess returns true when packageName must be hidden from uid
	// acting in userID.
	FilterAppAccess(packageName string, uid int, userID int) bool

	// ScheduleWriteSettings requests that the current in-memory state be
	// persisted eventually. It must not block.
	ScheduleWriteSettings()

	// Schedule queues deferred work that the host hands back through the
	// engine once the current call has returned.
	Schedule(what int, obj any)
}
