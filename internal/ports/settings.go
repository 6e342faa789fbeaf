package ports

import (
	"context"

	"domverify/internal/types"
)

type SettingsStorePort interface {
	Read() (types.SettingsFile, error)
	Write(file types.SettingsFile) error
}

// SettingsSchedulerPort coalesces write requests into eventual writes.
type SettingsSchedulerPort interface {
	Schedule()
	Flush(ctx context.Context) error
}

type PackageSnapshotPort interface {
	LoadSnapshot(path string) (types.PackageSnapshotFile, error)
}
