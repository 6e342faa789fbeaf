package core

import (
	"github.com/google/uuid"

	"domverify/internal/types"
)

type testProvider map[string]types.PackageState

func (p testProvider) GetPackageStateInternal(name string) (types.PackageState, bool) {
	state, ok := p[name]
	return state, ok
}

func webFilter(autoVerify bool, hosts ...string) types.IntentFilter {
	return types.IntentFilter{
		AutoVerify: autoVerify,
		Actions:    []string{types.ActionView},
		Categories: []string{types.CategoryBrowsable, types.CategoryDefault},
		Schemes:    []string{types.SchemeHTTP, types.SchemeHTTPS},
		Hosts:      hosts,
	}
}

type testStores struct {
	registry   *DomainSetRegistry
	states     *VerificationStateStore
	selections *UserSelectionStore
	resolver   OwnershipResolver
}

func newTestStores() testStores {
	registry := NewDomainSetRegistry()
	states := NewVerificationStateStore(registry)
	selections := NewUserSelectionStore()
	return testStores{
		registry:   registry,
		states:     states,
		selections: selections,
		resolver:   NewOwnershipResolver(states, selections),
	}
}

func (s testStores) add(name string, system bool, domains ...string) uuid.UUID {
	id := uuid.New()
	if err := s.registry.Add(id, name); err != nil {
		panic(err)
	}
	s.states.Replace(&types.PackageVerificationRecord{
		PackageName:       name,
		DomainSetID:       id,
		AutoVerifyDomains: types.NewDomainSet(domains...),
		WebDomains:        types.NewDomainSet(domains...),
		IsSystem:          system,
	}, false)
	return id
}
