package core

import (
	"fmt"
	"sort"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/uuid"
)

// DomainSetRegistry maps domain set identifiers to the package that owns
// them. It is not safe for concurrent use; the gateway serializes access.
type DomainSetRegistry struct {
	owners    map[uuid.UUID]string
	byPackage map[string]uuid.UUID
}

func NewDomainSetRegistry() *DomainSetRegistry {
	return &DomainSetRegistry{
		owners:    map[uuid.UUID]string{},
		byPackage: map[string]uuid.UUID{},
	}
}

// Add registers id for packageName, replacing the package's previous domain
// set. An id already owned by a different package is rejected.
func (r *DomainSetRegistry) Add(id uuid.UUID, packageName string) error {
	if owner, ok := r.owners[id]; ok && owner != packageName {
		return errbuilder.New().
			WithCode(errbuilder.CodeAlreadyExists).
			WithMsg(fmt.Sprintf("domain set %s already registered to %s", id, owner))
	}
	if previous, ok := r.byPackage[packageName]; ok && previous != id {
		delete(r.owners, previous)
	}
	r.owners[id] = packageName
	r.byPackage[packageName] = id
	return nil
}

func (r *DomainSetRegistry) Remove(packageName string) {
	id, ok := r.byPackage[packageName]
	if !ok {
		return
	}
	delete(r.byPackage, packageName)
	delete(r.owners, id)
}

func (r *DomainSetRegistry) Owner(id uuid.UUID) (string, bool) {
	name, ok := r.owners[id]
	return name, ok
}

func (r *DomainSetRegistry) DomainSetID(packageName string) (uuid.UUID, bool) {
	id, ok := r.byPackage[packageName]
	return id, ok
}

func (r *DomainSetRegistry) Packages() []string {
	names := make([]string, 0, len(r.byPackage))
	for name := range r.byPackage {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
