package preflight

import (
	"context"

	"eyra/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	_ = ctx

	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckBinary("FFmpeg", cfg.FFmpegBinary()),
	}
	if cfg.Verification.MinFreeGiB > 0 {
		results = append(results, CheckFreeSpace("Data free space", cfg.Paths.DataDir, cfg.Verification.MinFreeGiB))
	}
	return results
}

// AllPassed reports whether every check in the set succeeded.
func AllPassed(results []Result) bool {
	for _, result := range results {
		if !result.Passed {
			return false
		}
	}
	return true
}
