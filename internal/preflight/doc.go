// Package preflight checks that txtseek can index a directory before any
// work starts: the root resolves, the configuration is valid, the snapshot
// directory is writable and the system has room to spare.
//
//	checker := preflight.New(preflight.WithOutput(os.Stdout))
//	results := checker.RunAll(ctx, preflight.Target{Root: root, DataDir: dataDir})
//	if checker.HasCriticalFailures(results) {
//	    // refuse to continue
//	}
package preflight
