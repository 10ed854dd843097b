package preflight

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/txtseek/internal/index"
)

func TestCheckStatus_String(t *testing.T) {
	tests := []struct {
		status CheckStatus
		want   string
	}{
		{StatusPass, "PASS"},
		{StatusWarn, "WARN"},
		{StatusFail, "FAIL"},
		{CheckStatus(9), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.String())
		})
	}
}

func TestCheckResult_JSON(t *testing.T) {
	data, err := json.Marshal(CheckResult{Name: "root", Status: StatusWarn, Message: "x"})
	require.NoError(t, err)

	assert.JSONEq(t, `{"name":"root","status":"warn","message":"x","required":false}`, string(data))
}

func TestCheckResult_IsCritical(t *testing.T) {
	tests := []struct {
		name     string
		result   CheckResult
		expected bool
	}{
		{"required pass", CheckResult{Status: StatusPass, Required: true}, false},
		{"required fail", CheckResult{Status: StatusFail, Required: true}, true},
		{"optional fail", CheckResult{Status: StatusFail}, false},
		{"required warn", CheckResult{Status: StatusWarn, Required: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.result.IsCritical())
		})
	}
}

func TestChecker_SummaryStatus(t *testing.T) {
	checker := New()

	tests := []struct {
		name     string
		results  []CheckResult
		expected string
	}{
		{"all pass", []CheckResult{{Status: StatusPass}, {Status: StatusPass}}, "ready"},
		{"with warnings", []CheckResult{{Status: StatusPass}, {Status: StatusWarn}}, "ready_with_warnings"},
		{"critical failure", []CheckResult{{Status: StatusWarn}, {Status: StatusFail, Required: true}}, "failed"},
		{"optional failure", []CheckResult{{Status: StatusFail}}, "ready_with_warnings"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, checker.SummaryStatus(tt.results))
			assert.Equal(t, tt.expected == "failed", checker.HasCriticalFailures(tt.results))
		})
	}
}

func TestChecker_CheckRoot(t *testing.T) {
	checker := New()

	ok := checker.CheckRoot(t.TempDir())
	assert.Equal(t, StatusPass, ok.Status)

	missing := checker.CheckRoot(filepath.Join(t.TempDir(), "missing"))
	assert.True(t, missing.IsCritical())
}

func TestChecker_CheckConfig(t *testing.T) {
	checker := New()

	assert.Equal(t, StatusPass, checker.CheckConfig(nil).Status)

	bad := checker.CheckConfig(errors.New("search.max_results must be >= 0"))
	assert.True(t, bad.IsCritical())
	assert.Contains(t, bad.Message, "max_results")
}

func TestChecker_CheckWritePermissions_MissingDataDir(t *testing.T) {
	// Given: a data dir that does not exist yet
	root := t.TempDir()
	dataDir := filepath.Join(root, ".txtseek")

	// When: checking write permissions
	result := New().CheckWritePermissions(dataDir)

	// Then: the parent is probed and nothing is left behind
	assert.Equal(t, StatusPass, result.Status)
	assert.Equal(t, root, result.Details)
	assert.NoDirExists(t, dataDir)
	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestChecker_CheckWritePermissions_ReadOnly(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("root ignores directory permissions")
	}

	readOnly := filepath.Join(t.TempDir(), "readonly")
	require.NoError(t, os.Mkdir(readOnly, 0o555))
	t.Cleanup(func() { _ = os.Chmod(readOnly, 0o755) })

	result := New().CheckWritePermissions(filepath.Join(readOnly, ".txtseek"))

	assert.Equal(t, StatusFail, result.Status)
	assert.Contains(t, result.Message, "permission denied")
}

func TestChecker_CheckDiskSpace(t *testing.T) {
	result := New().CheckDiskSpace(filepath.Join(t.TempDir(), ".txtseek"))

	assert.Equal(t, "disk_space", result.Name)
	assert.False(t, result.Required)
	assert.Contains(t, result.Message, "free")
}

func TestChecker_CheckSnapshot(t *testing.T) {
	checker := New()

	tests := []struct {
		name   string
		status index.Status
		want   CheckStatus
		msg    string
	}{
		{"missing", index.Status{}, StatusWarn, "no index yet"},
		{"corrupt", index.Status{Exists: true, Corrupt: true}, StatusWarn, "unreadable"},
		{"stale", index.Status{Exists: true, Stale: true, Changed: []string{"a"}}, StatusWarn, "1 changed"},
		{"current", index.Status{Exists: true, Documents: 3}, StatusPass, "3 documents"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := checker.CheckSnapshot(tt.status)
			assert.Equal(t, tt.want, got.Status)
			assert.Contains(t, got.Message, tt.msg)
		})
	}
}

func TestChecker_RunAll(t *testing.T) {
	// Given: a valid root with a snapshot status
	root := t.TempDir()
	target := Target{
		Root:    root,
		DataDir: filepath.Join(root, ".txtseek"),
		Status:  &index.Status{Exists: true, Documents: 1},
	}

	// When: running every check
	results := New().RunAll(context.Background(), target)

	// Then: each check reports once
	var names []string
	for _, r := range results {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"root", "config", "write_permissions", "disk_space", "file_descriptors", "snapshot"}, names)
}

func TestChecker_PrintResults(t *testing.T) {
	results := []CheckResult{
		{Name: "root", Status: StatusPass, Message: "/notes", Required: true},
		{Name: "snapshot", Status: StatusWarn, Message: "no index yet", Details: "/notes/.txtseek/snapshot.json"},
		{Name: "config", Status: StatusFail, Message: "invalid", Required: true},
	}

	buf := &bytes.Buffer{}
	New(WithOutput(buf), WithVerbose(true)).PrintResults(results)

	out := buf.String()
	assert.Contains(t, out, "[PASS] root: /notes")
	assert.Contains(t, out, "[WARN] snapshot: no index yet")
	assert.Contains(t, out, "/notes/.txtseek/snapshot.json")
	assert.Contains(t, out, "Status: FAILED")
	assert.Contains(t, out, "1 error(s):\n  - config: invalid")
	assert.Contains(t, out, "1 warning(s):\n  - snapshot: no index yet")
}
