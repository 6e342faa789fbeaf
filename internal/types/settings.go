package types

// SettingsFileVersion is bumped whenever the persisted layout changes
// incompatibly.
const SettingsFileVersion = 1

type SettingsFile struct {
	Version  int               `yaml:"version"`
	Packages []PackageSettings `yaml:"packages"`
}

type PackageSettings struct {
	PackageName string                        `yaml:"package_name"`
	DomainSetID string                        `yaml:"domain_set_id"`
	States      map[string]VerificationStatus `yaml:"states,omitempty"`
	Users       []UserSettings                `yaml:"users,omitempty"`
}

type UserSettings struct {
	UserID              int         `yaml:"user_id"`
	LinkHandlingAllowed *bool       `yaml:"link_handling_allowed,omitempty"`
	Selected            []string    `yaml:"selected,omitempty"`
	Legacy              LegacyState `yaml:"legacy,omitempty"`
}

// PackageSnapshotFile describes the installed packages and users a host
// exposes to the engine.
type PackageSnapshotFile struct {
	Users    []int          `yaml:"users"`
	Packages []PackageEntry `yaml:"packages"`
}

type PackageEntry struct {
	Name        string     `yaml:"name"`
	UID         int        `yaml:"uid"`
	DomainSetID string     `yaml:"domain_set_id"`
	System      bool       `yaml:"system,omitempty"`
	Users       []int      `yaml:"users,omitempty"`
	Activities  []Activity `yaml:"activities"`
}

// LinkHandling reports the saved flag; a missing key means allowed.
func (u UserSettings) LinkHandling() bool {
	return u.LinkHandlingAllowed == nil || *u.LinkHandlingAllowed
}
