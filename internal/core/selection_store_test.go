package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"domverify/internal/types"
)

func TestSelectionDefaults(t *testing.T) {
	store := NewUserSelectionStore()
	got := store.Get(0, "com.test")
	if diff := cmp.Diff(types.DefaultUserSelection(0, "com.test"), got); diff != "" {
		t.Fatalf("unexpected default record (-want +got):\n%s", diff)
	}
	require.Empty(t, store.Users())
}

func TestSelectionCompactsDefaultRecords(t *testing.T) {
	store := NewUserSelectionStore()
	require.True(t, store.SetSelected(0, "com.test", "example.com", true))
	require.False(t, store.SetSelected(0, "com.test", "example.com", true))
	require.Equal(t, []int{0}, store.Users())

	require.True(t, store.SetSelected(0, "com.test", "example.com", false))
	require.False(t, store.SetSelected(0, "com.test", "example.com", false))
	require.Empty(t, store.Users())

	require.True(t, store.SetLinkHandlingAllowed("com.test", false, 10))
	require.False(t, store.SetLinkHandlingAllowed("com.test", false, 10))
	require.True(t, store.SetLinkHandlingAllowed("com.test", true, 10))
	require.Empty(t, store.Users())
}

func TestSelectionHoldersMatchWildcards(t *testing.T) {
	store := NewUserSelectionStore()
	store.SetSelected(0, "com.test.wild", "*.example.com", true)
	store.SetSelected(0, "com.test.exact", "a.example.com", true)
	store.SetSelected(10, "com.test.other", "a.example.com", true)

	if diff := cmp.Diff([]string{"com.test.exact", "com.test.wild"}, store.Holders("a.example.com", 0)); diff != "" {
		t.Fatalf("unexpected holders (-want +got):\n%s", diff)
	}
	require.Empty(t, store.Holders("example.com", 0))
}

func TestSelectionClears(t *testing.T) {
	store := NewUserSelectionStore()
	store.SetSelected(0, "com.test.one", "one.example.com", true)
	store.SetSelected(0, "com.test.two", "two.example.com", true)
	store.SetSelected(10, "com.test.one", "one.example.com", true)
	store.SetLegacyState("com.test.two", 10, types.LegacyStateAlways)

	require.Equal(t, 1, store.ClearUserStates([]string{"com.test.two", "com.test.missing"}, 0))
	require.Equal(t, 2, store.ClearPackage("com.test.one"))
	require.Equal(t, []int{10}, store.Users())
	require.Equal(t, 1, store.ClearUser(10))
	require.Empty(t, store.Users())
}

func TestSelectionRetainSelected(t *testing.T) {
	store := NewUserSelectionStore()
	store.SetSelected(0, "com.test", "kept.example.com", true)
	store.SetSelected(0, "com.test", "gone.example.com", true)
	store.SetSelected(10, "com.test", "gone.example.com", true)

	store.RetainSelected("com.test", types.NewDomainSet("kept.example.com"))
	records := store.RecordsFor("com.test")
	require.Len(t, records, 1)
	if diff := cmp.Diff([]string{"kept.example.com"}, records[0].SelectedDomains.Sorted()); diff != "" {
		t.Fatalf("unexpected selection (-want +got):\n%s", diff)
	}
}

func TestSelectionGetReturnsCopy(t *testing.T) {
	store := NewUserSelectionStore()
	store.SetSelected(0, "com.test", "example.com", true)
	got := store.Get(0, "com.test")
	delete(got.SelectedDomains, "example.com")
	require.Equal(t, []string{"com.test"}, store.Holders("example.com", 0))
}
