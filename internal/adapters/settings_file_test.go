package adapters

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"domverify/internal/types"
)

func TestSettingsFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "settings.yaml")
	adapter := NewSettingsFileAdapter(path)

	empty, err := adapter.Read()
	require.NoError(t, err)
	require.Equal(t, types.SettingsFileVersion, empty.Version)
	require.Empty(t, empty.Packages)

	denied := false
	want := types.SettingsFile{
		Version: types.SettingsFileVersion,
		Packages: []types.PackageSettings{{
			PackageName: "com.test",
			DomainSetID: "5168e42e-327e-432b-b562-cfb553518a70",
			States:      map[string]types.VerificationStatus{"example.com": types.VerificationStatusSuccess},
			Users: []types.UserSettings{
				{UserID: 10, LinkHandlingAllowed: &denied, Selected: []string{"example.com"}, Legacy: types.LegacyStateNever},
			},
		}},
	}
	require.NoError(t, adapter.Write(want))

	got, err := adapter.Read()
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected settings (-want +got):\n%s", diff)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
}

func TestReadSettingsFixture(t *testing.T) {
	file, err := NewSettingsFileAdapter("../../fixtures/settings.yaml").Read()
	require.NoError(t, err)
	require.Len(t, file.Packages, 2)
	require.Equal(t, types.VerificationStatusSuccess, file.Packages[0].States["example.com"])
	require.Equal(t, []string{"*.example.org"}, file.Packages[1].Users[0].Selected)
}

func TestReadSettingsInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("packages: [::"), 0644))
	_, err := NewSettingsFileAdapter(path).Read()
	require.Error(t, err)
}

func TestSettingsFileMissingLinkHandlingMeansAllowed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	raw := "version: 1\npackages:\n  - package_name: com.test\n    domain_set_id: 5168e42e-327e-432b-b562-cfb553518a70\n    users:\n      - user_id: 0\n        selected: [example.com]\n"
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	got, err := NewSettingsFileAdapter(path).Read()
	require.NoError(t, err)
	require.Len(t, got.Packages, 1)
	require.Len(t, got.Packages[0].Users, 1)
	require.Nil(t, got.Packages[0].Users[0].LinkHandlingAllowed)
	require.True(t, got.Packages[0].Users[0].LinkHandling())
}
