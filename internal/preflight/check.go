package preflight

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Aman-CERP/txtseek/internal/index"
	"github.com/Aman-CERP/txtseek/internal/scanner"
)

// CheckStatus is the outcome of one check.
type CheckStatus int

const (
	StatusPass CheckStatus = iota
	StatusWarn
	StatusFail
)

// String returns PASS, WARN or FAIL.
func (s CheckStatus) String() string {
	switch s {
	case StatusPass:
		return "PASS"
	case StatusWarn:
		return "WARN"
	case StatusFail:
		return "FAIL"
	default:
		return "UNKNOWN"
	}
}

// MarshalText encodes the status by name.
func (s CheckStatus) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(s.String())), nil
}

// UnmarshalText decodes a status name written by MarshalText.
func (s *CheckStatus) UnmarshalText(text []byte) error {
	for _, st := range []CheckStatus{StatusPass, StatusWarn, StatusFail} {
		if strings.EqualFold(string(text), st.String()) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown check status %q", text)
}

// CheckResult holds the result of a single check.
type CheckResult struct {
	Name     string      `json:"name"`
	Status   CheckStatus `json:"status"`
	Message  string      `json:"message"`
	Details  string      `json:"details,omitempty"`
	Required bool        `json:"required"`
}

// IsCritical reports a required check that failed.
func (r CheckResult) IsCritical() bool {
	return r.Required && r.Status == StatusFail
}

// Target is what the checks run against.
type Target struct {
	Root    string
	DataDir string
	// ConfigErr is the error from loading the configuration, if any.
	ConfigErr error
	// Status is the snapshot status; nil skips the snapshot check.
	Status *index.Status
}

// Checker runs the checks and prints their results.
type Checker struct {
	verbose bool
	output  io.Writer
}

// Option configures a Checker.
type Option func(*Checker)

// WithVerbose prints result details.
func WithVerbose(verbose bool) Option {
	return func(c *Checker) {
		c.verbose = verbose
	}
}

// WithOutput sets the writer PrintResults uses.
func WithOutput(w io.Writer) Option {
	return func(c *Checker) {
		c.output = w
	}
}

// New creates a Checker writing to stdout.
func New(opts ...Option) *Checker {
	c := &Checker{output: os.Stdout}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RunAll runs every check against target.
func (c *Checker) RunAll(_ context.Context, target Target) []CheckResult {
	results := []CheckResult{
		c.CheckRoot(target.Root),
		c.CheckConfig(target.ConfigErr),
	}
	if target.DataDir != "" {
		results = append(results,
			c.CheckWritePermissions(target.DataDir),
			c.CheckDiskSpace(target.DataDir))
	}
	results = append(results, c.CheckFileDescriptors())
	if target.Status != nil {
		results = append(results, c.CheckSnapshot(*target.Status))
	}
	return results
}

// HasCriticalFailures reports whether any required check failed.
func (c *Checker) HasCriticalFailures(results []CheckResult) bool {
	for _, r := range results {
		if r.IsCritical() {
			return true
		}
	}
	return false
}

// SummaryStatus returns ready, ready_with_warnings or failed.
func (c *Checker) SummaryStatus(results []CheckResult) string {
	hasWarnings := false
	for _, r := range results {
		if r.IsCritical() {
			return "failed"
		}
		if r.Status != StatusPass {
			hasWarnings = true
		}
	}
	if hasWarnings {
		return "ready_with_warnings"
	}
	return "ready"
}

// PrintResults prints one line per check followed by a summary.
func (c *Checker) PrintResults(results []CheckResult) {
	_, _ = fmt.Fprintln(c.output, "txtseek System Check")
	_, _ = fmt.Fprintln(c.output, "====================")
	_, _ = fmt.Fprintln(c.output)

	var warnings, errs []string
	for _, r := range results {
		_, _ = fmt.Fprintf(c.output, "[%s] %s: %s\n", r.Status, r.Name, r.Message)
		if c.verbose && r.Details != "" {
			_, _ = fmt.Fprintf(c.output, "      %s\n", r.Details)
		}
		switch {
		case r.IsCritical():
			errs = append(errs, r.Name+": "+r.Message)
		case r.Status != StatusPass:
			warnings = append(warnings, r.Name+": "+r.Message)
		}
	}

	_, _ = fmt.Fprintln(c.output)
	_, _ = fmt.Fprintf(c.output, "Status: %s\n", strings.ToUpper(c.SummaryStatus(results)))

	printList(c.output, "error(s)", errs)
	printList(c.output, "warning(s)", warnings)
}

func printList(w io.Writer, label string, items []string) {
	if len(items) == 0 {
		return
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "%d %s:\n", len(items), label)
	for _, item := range items {
		_, _ = fmt.Fprintf(w, "  - %s\n", item)
	}
}

// CheckRoot checks that root is an existing directory.
func (c *Checker) CheckRoot(root string) CheckResult {
	result := CheckResult{Name: "root", Required: true}

	canon, err := scanner.ResolveRoot(root)
	if err != nil {
		result.Status = StatusFail
		result.Message = err.Error()
		return result
	}

	result.Status = StatusPass
	result.Message = canon
	return result
}

// CheckConfig reports the configuration load error, if any.
func (c *Checker) CheckConfig(loadErr error) CheckResult {
	result := CheckResult{Name: "config", Required: true}
	if loadErr != nil {
		result.Status = StatusFail
		result.Message = loadErr.Error()
		return result
	}
	result.Status = StatusPass
	result.Message = "OK"
	return result
}

// CheckWritePermissions checks that the snapshot directory, or the closest
// existing parent that would hold it, accepts new files.
func (c *Checker) CheckWritePermissions(dataDir string) CheckResult {
	result := CheckResult{Name: "write_permissions", Required: true}

	dir := existingAncestor(dataDir)
	f, err := os.CreateTemp(dir, ".txtseek-preflight-*")
	if err != nil {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("permission denied: %v", err)
		result.Details = "Use --data-dir to keep snapshots elsewhere"
		return result
	}
	_ = f.Close()
	_ = os.Remove(f.Name())

	result.Status = StatusPass
	result.Message = "OK"
	result.Details = dir
	return result
}

// CheckSnapshot reports whether the saved index can be reused.
func (c *Checker) CheckSnapshot(st index.Status) CheckResult {
	result := CheckResult{Name: "snapshot", Details: st.SnapshotPath}

	switch {
	case !st.Exists:
		result.Status = StatusWarn
		result.Message = "no index yet, the first search builds it"
	case st.Corrupt:
		result.Status = StatusWarn
		result.Message = "snapshot is unreadable and will be rebuilt"
	case st.Stale:
		result.Status = StatusWarn
		result.Message = fmt.Sprintf("stale: %d changed, %d new documents", len(st.Changed), len(st.Added))
	default:
		result.Status = StatusPass
		result.Message = fmt.Sprintf("current, %d documents", st.Documents)
	}
	return result
}

func existingAncestor(path string) string {
	for {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			return path
		}
		parent := filepath.Dir(path)
		if parent == path {
			return path
		}
		path = parent
	}
}
