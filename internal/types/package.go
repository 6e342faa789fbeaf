package types

import "github.com/google/uuid"

// Intent actions, categories and schemes recognized when collecting web domains.
const (
	ActionView         = "android.intent.action.VIEW"
	CategoryBrowsable  = "android.intent.category.BROWSABLE"
	CategoryDefault    = "android.intent.category.DEFAULT"
	SchemeHTTP         = "http"
	SchemeHTTPS        = "https"
	WildcardHostPrefix = "*."
)

type IntentFilter struct {
	AutoVerify bool     `yaml:"auto_verify"`
	Actions    []string `yaml:"actions"`
	Categories []string `yaml:"categories"`
	Schemes    []string `yaml:"schemes"`
	Hosts      []string `yaml:"hosts"`
}

type Activity struct {
	Name          string         `yaml:"name"`
	IntentFilters []IntentFilter `yaml:"intent_filters"`
}

// PackageManifest is the manifest-derived part of an installed package that
// the engine reads domains from.
type PackageManifest struct {
	PackageName string     `yaml:"package_name"`
	Activities  []Activity `yaml:"activities"`
}

type PackageUserState struct {
	Installed bool `yaml:"installed"`
}

// PackageState is the host's view of one installed package version.
type PackageState struct {
	PackageName string
	UID         int
	DomainSetID uuid.UUID
	IsSystem    bool
	Pkg         *PackageManifest
	UserStates  map[int]PackageUserState
}

// InstalledFor reports whether the package is installed for userID. A state
// without per-user information is treated as installed everywhere.
func (s PackageState) InstalledFor(userID int) bool {
	if s.UserStates == nil {
		return true
	}
	state, ok := s.UserStates[userID]
	return ok && state.Installed
}
