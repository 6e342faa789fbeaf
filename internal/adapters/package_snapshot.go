package adapters

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"domverify/internal/ports"
	"domverify/internal/types"
)

type PackageSnapshotFileAdapter struct{}

func NewPackageSnapshotFileAdapter() PackageSnapshotFileAdapter {
	return PackageSnapshotFileAdapter{}
}

var _ ports.PackageSnapshotPort = PackageSnapshotFileAdapter{}

func (a PackageSnapshotFileAdapter) LoadSnapshot(path string) (types.PackageSnapshotFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.PackageSnapshotFile{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("package snapshot not found").
			WithCause(err)
	}
	var file types.PackageSnapshotFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return types.PackageSnapshotFile{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse package snapshot yaml").
			WithCause(err)
	}
	return file, nil
}

// PackageSnapshot is an immutable in-memory view of a snapshot file.
type PackageSnapshot struct {
	users    []int
	packages map[string]types.PackageState
}

var _ ports.PackageStateProvider = (*PackageSnapshot)(nil)

// NewPackageSnapshot validates file and indexes its packages by name.
func NewPackageSnapshot(file types.PackageSnapshotFile) (*PackageSnapshot, error) {
	snapshot := &PackageSnapshot{
		users:    append([]int(nil), file.Users...),
		packages: map[string]types.PackageState{},
	}
	if len(snapshot.users) == 0 {
		snapshot.users = []int{0}
	}
	sort.Ints(snapshot.users)
	for _, entry := range file.Packages {
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("package entry without name")
		}
		if _, ok := snapshot.packages[name]; ok {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeAlreadyExists).
				WithMsg(fmt.Sprintf("package %s listed twice", name))
		}
		id, err := uuid.Parse(entry.DomainSetID)
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("invalid domain_set_id for %s", name)).
				WithCause(err)
		}
		users := entry.Users
		if len(users) == 0 {
			users = snapshot.users
		}
		userStates := make(map[int]types.PackageUserState, len(users))
		for _, userID := range users {
			userStates[userID] = types.PackageUserState{Installed: true}
		}
		snapshot.packages[name] = types.PackageState{
			PackageName: name,
			UID:         entry.UID,
			DomainSetID: id,
			IsSystem:    entry.System,
			Pkg:         &types.PackageManifest{PackageName: name, Activities: entry.Activities},
			UserStates:  userStates,
		}
	}
	return snapshot, nil
}

func (s *PackageSnapshot) GetPackageStateInternal(packageName string) (types.PackageState, bool) {
	state, ok := s.packages[packageName]
	return state, ok
}

// States returns every package ordered by name.
func (s *PackageSnapshot) States() []types.PackageState {
	states := make([]types.PackageState, 0, len(s.packages))
	for _, state := range s.packages {
		states = append(states, state)
	}
	sort.Slice(states, func(i, j int) bool {
		return states[i].PackageName < states[j].PackageName
	})
	return states
}

func (s *PackageSnapshot) Users() []int {
	return append([]int(nil), s.users...)
}

func (s *PackageSnapshot) HasUser(userID int) bool {
	for _, id := range s.users {
		if id == userID {
			return true
		}
	}
	return false
}
