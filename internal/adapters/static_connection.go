package adapters

import (
	"sync"

	"domverify/internal/ports"
)

// ScheduledWork is deferred work queued by the engine for the host to hand
// back once the current call has returned.
type ScheduledWork struct {
	What int
	Obj  any
}

// StaticConnection serves the engine from a fixed snapshot and caller
// identity.
type StaticConnection struct {
	uid       int
	userID    int
	snapshot  *PackageSnapshot
	hidden    map[string]struct{}
	scheduler ports.SettingsSchedulerPort

	mu    sync.Mutex
	queue []ScheduledWork
}

var _ ports.ConnectionPort = (*StaticConnection)(nil)

func NewStaticConnection(snapshot *PackageSnapshot, uid int, userID int, hidden []string, scheduler ports.SettingsSchedulerPort) *StaticConnection {
	hiddenSet := make(map[string]struct{}, len(hidden))
	for _, name := range hidden {
		hiddenSet[name] = struct{}{}
	}
	return &StaticConnection{
		uid:       uid,
		userID:    userID,
		snapshot:  snapshot,
		hidden:    hiddenSet,
		scheduler: scheduler,
	}
}

func (c *StaticConnection) CallingUID() int {
	return c.uid
}

func (c *StaticConnection) CallingUserID() int {
	return c.userID
}

func (c *StaticConnection) Snapshot() ports.PackageStateProvider {
	return c.snapshot
}

func (c *StaticConnection) DoesUserExist(userID int) bool {
	return c.snapshot.HasUser(userID)
}

func (c *StaticConnection) FilterAppAccess(packageName string, uid int, userID int) bool {
	_, hidden := c.hidden[packageName]
	return hidden
}

func (c *StaticConnection) ScheduleWriteSettings() {
	if c.scheduler != nil {
		c.scheduler.Schedule()
	}
}

func (c *StaticConnection) Schedule(what int, obj any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queue = append(c.queue, ScheduledWork{What: what, Obj: obj})
}

// Drain returns and forgets the queued work.
func (c *StaticConnection) Drain() []ScheduledWork {
	c.mu.Lock()
	defer c.mu.Unlock()
	queue := c.queue
	c.queue = nil
	return queue
}
