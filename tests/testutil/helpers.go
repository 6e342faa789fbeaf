// Package testutil provides shared test helpers used across integration,
// e2e, and unit test packages.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"domverify/internal/types"
)

// RepoRoot returns the absolute path to the repository root by walking
// up from the current working directory. It fails the test if the
// working directory cannot be determined.
func RepoRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(dir, "..", ".."))
}

// CopyFixture copies fixtures/<name> into dir and returns the new path so
// tests can mutate it freely.
func CopyFixture(t *testing.T, dir string, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(RepoRoot(t), "fixtures", name))
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// ReadSettings decodes a persisted settings file.
func ReadSettings(t *testing.T, path string) types.SettingsFile {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var file types.SettingsFile
	require.NoError(t, yaml.Unmarshal(data, &file))
	return file
}

// FindPackage returns the saved entry for packageName.
func FindPackage(t *testing.T, file types.SettingsFile, packageName string) types.PackageSettings {
	t.Helper()
	for _, entry := range file.Packages {
		if entry.PackageName == packageName {
			return entry
		}
	}
	require.Failf(t, "package not saved", "%s missing from settings", packageName)
	return types.PackageSettings{}
}
