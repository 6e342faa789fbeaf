package app

import (
	"sync"
	"testing"

	"github.com/google/uuid"

	"domverify/internal/ports"
	"domverify/internal/types"
)

const (
	testPkg    = "com.test"
	testUserID = 10
)

var testUUID = uuid.MustParse("5168e42e-327e-432b-b562-cfb553518a70")

type scheduledCall struct {
	what int
	obj  any
}

type fakeConnection struct {
	mu         sync.Mutex
	uid        int
	userID     int
	users      map[int]bool
	packages   map[string]types.PackageState
	hidden     map[string]bool
	writes     int
	scheduled  []scheduledCall
	onSchedule func()
}

func newFakeConnection() *fakeConnection {
	return &fakeConnection{
		uid:      types.SystemUID,
		users:    map[int]bool{0: true, testUserID: true},
		packages: map[string]types.PackageState{},
		hidden:   map[string]bool{},
	}
}

func (c *fakeConnection) CallingUID() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.uid
}

func (c *fakeConnection) CallingUserID() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID
}

func (c *fakeConnection) Snapshot() ports.PackageStateProvider {
	c.mu.Lock()
	defer c.mu.Unlock()
	snapshot := make(fakeSnapshot, len(c.packages))
	for name, state := range c.packages {
		snapshot[name] = state
	}
	return snapshot
}

func (c *fakeConnection) DoesUserExist(userID int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.users[userID]
}

func (c *fakeConnection) FilterAppAccess(packageName string, uid int, userID int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hidden[packageName]
}

func (c *fakeConnection) ScheduleWriteSettings() {
	c.mu.Lock()
	c.writes++
	hook := c.onSchedule
	c.mu.Unlock()
	if hook != nil {
		hook()
	}
}

func (c *fakeConnection) Schedule(what int, obj any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scheduled = append(c.scheduled, scheduledCall{what: what, obj: obj})
}

func (c *fakeConnection) writeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writes
}

func (c *fakeConnection) resetWrites() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes = 0
}

func (c *fakeConnection) setCaller(uid int, userID int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.uid = uid
	c.userID = userID
}

type fakeSnapshot map[string]types.PackageState

func (s fakeSnapshot) GetPackageStateInternal(packageName string) (types.PackageState, bool) {
	state, ok := s[packageName]
	return state, ok
}

type fakeProxy struct {
	mu         sync.Mutex
	verifiers  map[int]bool
	broadcasts [][]string
}

func newFakeProxy(verifiers ...int) *fakeProxy {
	proxy := &fakeProxy{verifiers: map[int]bool{}}
	for _, uid := range verifiers {
		proxy.verifiers[uid] = true
	}
	return proxy
}

func (p *fakeProxy) IsCallerVerifier(uid int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.verifiers[uid]
}

func (p *fakeProxy) SendBroadcastForPackages(packageNames []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.broadcasts = append(p.broadcasts, append([]string(nil), packageNames...))
}

func (p *fakeProxy) sent() [][]string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([][]string(nil), p.broadcasts...)
}

// fakeAuthorizer grants every permission to platform uids plus explicit
// grants.
type fakeAuthorizer struct {
	grants map[int]map[types.Permission]bool
}

func newFakeAuthorizer() *fakeAuthorizer {
	return &fakeAuthorizer{grants: map[int]map[types.Permission]bool{}}
}

func (a *fakeAuthorizer) grant(uid int, permissions ...types.Permission) {
	if a.grants[uid] == nil {
		a.grants[uid] = map[types.Permission]bool{}
	}
	for _, permission := range permissions {
		a.grants[uid][permission] = true
	}
}

func (a *fakeAuthorizer) HasPermission(permission types.Permission, uid int) bool {
	switch uid {
	case types.RootUID, types.SystemUID, types.ShellUID:
		return true
	}
	return a.grants[uid][permission]
}

type fakeMetrics struct {
	mu        sync.Mutex
	mutations map[string][]types.StatusCode
	takeovers map[string]int
	lookups   int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{mutations: map[string][]types.StatusCode{}, takeovers: map[string]int{}}
}

func (m *fakeMetrics) ObserveMutation(operation string, code types.StatusCode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mutations[operation] = append(m.mutations[operation], code)
}

func (m *fakeMetrics) ObserveTakeover(outcome string, domains int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.takeovers[outcome] += domains
}

func (m *fakeMetrics) ObserveOwnerLookup(owners int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups++
}

func webFilter(autoVerify bool, hosts ...string) types.IntentFilter {
	return types.IntentFilter{
		AutoVerify: autoVerify,
		Actions:    []string{types.ActionView},
		Categories: []string{types.CategoryBrowsable, types.CategoryDefault},
		Schemes:    []string{types.SchemeHTTPS},
		Hosts:      hosts,
	}
}

func packageState(name string, id uuid.UUID, system bool, domains ...string) types.PackageState {
	return types.PackageState{
		PackageName: name,
		UID:         10000 + len(name),
		DomainSetID: id,
		IsSystem:    system,
		Pkg: &types.PackageManifest{
			PackageName: name,
			Activities: []types.Activity{{
				Name:          name + ".Main",
				IntentFilters: []types.IntentFilter{webFilter(true, domains...)},
			}},
		},
		UserStates: map[int]types.PackageUserState{
			0:          {Installed: true},
			testUserID: {Installed: true},
		},
	}
}

type testEnv struct {
	service    *Service
	connection *fakeConnection
	proxy      *fakeProxy
	authorizer *fakeAuthorizer
	metrics    *fakeMetrics
}

func newTestEnv() testEnv {
	connection := newFakeConnection()
	proxy := newFakeProxy()
	authorizer := newFakeAuthorizer()
	metrics := newFakeMetrics()
	service := NewService(connection, proxy, authorizer)
	service.Metrics = metrics
	return testEnv{
		service:    service,
		connection: connection,
		proxy:      proxy,
		authorizer: authorizer,
		metrics:    metrics,
	}
}

// install registers state with both the snapshot and the service.
func (e testEnv) install(t *testing.T, state types.PackageState) {
	e.connection.mu.Lock()
	e.connection.packages[state.PackageName] = state
	e.connection.mu.Unlock()
	e.service.AddPackage(t.Context(), state)
}
