package app

import (
	"sort"
	"sync"

	"domverify/internal/core"
	"domverify/internal/ports"
	"domverify/internal/types"
)

// Operation names reported to MetricsPort.
const (
	OpAddPackage           = "add_package"
	OpMigratePackage       = "migrate_package"
	OpRemovePackage        = "remove_package"
	OpClearPackage         = "clear_package"
	OpClearUser            = "clear_user"
	OpClearState           = "clear_state"
	OpClearUserStates      = "clear_user_states"
	OpSetStatus            = "set_status"
	OpSetStatusInternal    = "set_status_internal"
	OpSetLinkHandling      = "set_link_handling"
	OpSetUserSelection     = "set_user_selection"
	OpSetLegacyUserState   = "set_legacy_user_state"
	OpImportSettings       = "import_settings"
	OpRunScheduledRequests = "run_scheduled"
)

// Service is the mutation gateway over the verification engine. All state is
// guarded by one lock; collaborators are called outside of it.
type Service struct {
	Connection ports.ConnectionPort
	Proxy      ports.ProxyPort
	Authorizer ports.AuthorizerPort
	Metrics    ports.MetricsPort

	mu         sync.RWMutex
	registry   *core.DomainSetRegistry
	states     *core.VerificationStateStore
	selections *core.UserSelectionStore
	resolver   core.OwnershipResolver
	takeover   core.Takeover
	collector  core.DomainCollector
	pending    map[string]types.PackageSettings
}

func NewService(connection ports.ConnectionPort, proxy ports.ProxyPort, authorizer ports.AuthorizerPort) *Service {
	registry := core.NewDomainSetRegistry()
	states := core.NewVerificationStateStore(registry)
	selections := core.NewUserSelectionStore()
	resolver := core.NewOwnershipResolver(states, selections)
	return &Service{
		Connection: connection,
		Proxy:      proxy,
		Authorizer: authorizer,
		registry:   registry,
		states:     states,
		selections: selections,
		resolver:   resolver,
		takeover:   core.NewTakeover(resolver),
		collector:  core.NewDomainCollector(),
		pending:    map[string]types.PackageSettings{},
	}
}

func (s *Service) observe(operation string, code types.StatusCode) {
	if s.Metrics != nil {
		s.Metrics.ObserveMutation(operation, code)
	}
}

// broadcastChanges notifies the packages whose verified domain set moved.
func (s *Service) broadcastChanges(changes []core.StatusChange) {
	seen := map[string]struct{}{}
	var names []string
	for _, change := range changes {
		if !change.FlipsVerified() {
			continue
		}
		if _, ok := seen[change.PackageName]; ok {
			continue
		}
		seen[change.PackageName] = struct{}{}
		names = append(names, change.PackageName)
	}
	if len(names) > 0 {
		s.Proxy.SendBroadcastForPackages(names)
	}
}

// visible reports whether packageName exists in the snapshot and may be seen
// by the caller acting in userID.
func (s *Service) visible(snapshot ports.PackageStateProvider, packageName string, userID int) bool {
	if snapshot != nil {
		if _, ok := snapshot.GetPackageStateInternal(packageName); !ok {
			return false
		}
	}
	return !s.Connection.FilterAppAccess(packageName, s.Connection.CallingUID(), userID)
}

// targetUsers expands UserAll into the users a package is known for.
func (s *Service) targetUsers(snapshot ports.PackageStateProvider, packageName string, userID int) []int {
	if userID != types.UserAll {
		return []int{userID}
	}
	if snapshot != nil {
		if state, ok := snapshot.GetPackageStateInternal(packageName); ok && state.UserStates != nil {
			users := make([]int, 0, len(state.UserStates))
			for id := range state.UserStates {
				users = append(users, id)
			}
			sort.Ints(users)
			return users
		}
	}
	return s.selections.Users()
}
