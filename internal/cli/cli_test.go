package cli

import (
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	dto "github.com/prometheus/client_model/go"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"

	"domverify/internal/types"
)

// ---------- Command tree tests ----------

func TestRootCommandHasSubcommands(t *testing.T) {
	root := newRootCommand()
	names := make([]string, 0, len(root.Commands()))
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	expected := []string{
		"packages", "info", "set-status", "select", "link-handling",
		"legacy", "owners", "user-state", "clear", "remove", "dump",
	}
	for _, name := range expected {
		assert.Contains(t, names, name, "missing subcommand: %s", name)
	}
}

func TestClearCommandHasSubcommands(t *testing.T) {
	cmd := newClearCommand()
	names := make([]string, 0, len(cmd.Commands()))
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"package", "user", "state", "user-states"}, names)
}

func TestRootCommandVersion(t *testing.T) {
	root := newRootCommand()
	assert.Equal(t, "dev", root.Version)
}

func TestRootPersistentFlags(t *testing.T) {
	root := newRootCommand()
	flags := []string{
		"config", "log-level", "packages", "settings",
		"caller-uid", "caller-user", "hidden", "verifier-uid",
	}
	for _, name := range flags {
		assert.NotNil(t, root.PersistentFlags().Lookup(name), "missing flag: %s", name)
	}
}

func TestSelectCommandFlags(t *testing.T) {
	cmd := newSelectCommand()
	for _, name := range []string{"domain-set-id", "package", "domain", "enabled", "user"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag: %s", name)
	}
	assert.Equal(t, "true", cmd.Flags().Lookup("enabled").DefValue)
}

func TestSetStatusCommandFlags(t *testing.T) {
	cmd := newSetStatusCommand()
	for _, name := range []string{"domain-set-id", "package", "domain", "status"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag: %s", name)
	}
}

// ---------- Helper function tests ----------

func TestResolveString(t *testing.T) {
	tests := []struct {
		name     string
		cmd      *cobra.Command
		value    string
		expected string
	}{
		{
			name:     "nil cmd with value returns value",
			cmd:      nil,
			value:    "explicit",
			expected: "explicit",
		},
		{
			name:     "nil cmd empty value returns empty",
			cmd:      nil,
			value:    "",
			expected: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveString(tt.cmd, tt.value, "test_key", "test-flag")
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestResolveStrings(t *testing.T) {
	got := resolveStrings(nil, []string{"a", "b"}, "test_key", "test-flag")
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestResolveInt(t *testing.T) {
	got := resolveInt(nil, 42, "test_key", "test-flag")
	assert.Equal(t, 42, got)
}

func TestResolveIntsPrefersChangedFlag(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().IntSlice("verifier-uid", nil, "")
	require.NoError(t, cmd.Flags().Set("verifier-uid", "10321"))
	got := resolveInts(cmd, []int{10321}, "verifier_uids_test", "verifier-uid")
	assert.Equal(t, []int{10321}, got)
}

func TestFlagChanged(t *testing.T) {
	assert.False(t, flagChanged(nil, "anything"), "nil cmd should return false")
	assert.False(t, flagChanged(nil, ""), "nil cmd with empty name")

	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("myflag", "", "test flag")
	assert.False(t, flagChanged(cmd, "myflag"), "unchanged flag")
	assert.False(t, flagChanged(cmd, "nonexistent"), "nonexistent flag")

	require.NoError(t, cmd.Flags().Set("myflag", "val"))
	assert.True(t, flagChanged(cmd, "myflag"))
}

func TestParseUser(t *testing.T) {
	tests := []struct {
		input    string
		expected int
		wantErr  bool
	}{
		{input: "0", expected: 0},
		{input: "10", expected: 10},
		{input: "all", expected: types.UserAll},
		{input: " ALL ", expected: types.UserAll},
		{input: "ten", wantErr: true},
		{input: "10x", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseUser(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseDomainSetID(t *testing.T) {
	id, err := parseDomainSetID("5168e42e-327e-432b-b562-cfb553518a70")
	require.NoError(t, err)
	assert.Equal(t, "5168e42e-327e-432b-b562-cfb553518a70", id.String())

	_, err = parseDomainSetID("not-a-uuid")
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestRequireFlag(t *testing.T) {
	value, err := requireFlag("  com.test  ", "package")
	require.NoError(t, err)
	assert.Equal(t, "com.test", value)

	_, err = requireFlag(" ", "package")
	require.Error(t, err)
	assert.Equal(t, "--package is required", errorMessage(err))
}

func TestStatusResult(t *testing.T) {
	assert.NoError(t, statusResult(types.StatusOK, nil))

	err := statusResult(types.ErrorUnableToApprove, nil)
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeFailedPrecondition, errbuilder.CodeOf(err))
	assert.Equal(t, "ERROR_UNABLE_TO_APPROVE", errorMessage(err))

	assert.ErrorIs(t, statusResult(types.StatusOK, assert.AnError), assert.AnError)
}

func TestMetricLines(t *testing.T) {
	families := []*dto.MetricFamily{
		{
			Name: proto.String("domverify_mutations_total"),
			Type: dto.MetricType_COUNTER.Enum(),
			Metric: []*dto.Metric{{
				Label: []*dto.LabelPair{
					{Name: proto.String("code"), Value: proto.String("STATUS_OK")},
					{Name: proto.String("operation"), Value: proto.String("set_status")},
				},
				Counter: &dto.Counter{Value: proto.Float64(2)},
			}},
		},
		{
			Name: proto.String("domverify_owner_lookup_owners"),
			Type: dto.MetricType_HISTOGRAM.Enum(),
			Metric: []*dto.Metric{{
				Histogram: &dto.Histogram{SampleCount: proto.Uint64(3)},
			}},
		},
	}
	assert.Equal(t, []string{
		`domverify_mutations_total{code="STATUS_OK",operation="set_status"} 2`,
		"domverify_owner_lookup_owners_count 3",
	}, metricLines(families))
}

// ---------- Exit code tests ----------

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name: "invalid argument",
			err: errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("bad input"),
			expected: 2,
		},
		{
			name: "already exists",
			err: errbuilder.New().
				WithCode(errbuilder.CodeAlreadyExists).
				WithMsg("dup"),
			expected: 2,
		},
		{
			name: "permission denied",
			err: errbuilder.New().
				WithCode(errbuilder.CodePermissionDenied).
				WithMsg("nope"),
			expected: 3,
		},
		{
			name:     "unknown package status",
			err:      statusResult(types.ErrorUnknownPackage, nil),
			expected: 4,
		},
		{
			name:     "domain set id invalid status",
			err:      statusResult(types.ErrorDomainSetIDInvalid, nil),
			expected: 4,
		},
		{
			name:     "takeover blocked",
			err:      statusResult(types.ErrorUnableToApprove, nil),
			expected: 6,
		},
		{
			name: "not found",
			err: errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg("package com.test not found"),
			expected: 5,
		},
		{
			name: "internal error",
			err: errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("boom"),
			expected: 5,
		},
		{
			name:     "unknown error",
			err:      assert.AnError,
			expected: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := exitCodeForError(tt.err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name: "errbuilder with msg",
			err: errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("something broke"),
			expected: "something broke",
		},
		{
			name:     "plain error",
			err:      assert.AnError,
			expected: assert.AnError.Error(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errorMessage(tt.err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
