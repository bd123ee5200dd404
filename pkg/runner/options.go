// Package runner discovers files, analyzes them concurrently through a
// dispatcher and writes fixes back.
package runner

import (
	"github.com/wronai/pactfix/pkg/config"
)

// Options controls a multi-file run.
type Options struct {
	// Paths are the user-specified paths (files or directories) to process.
	// If empty, defaults to the current working directory.
	Paths []string

	// WorkingDir is the base directory used to resolve relative Paths.
	// If empty, the current process working directory is used.
	WorkingDir string

	// Extensions restricts directory walks to these extensions (lowercase,
	// with leading dot). Empty means every file whose name the classifier
	// recognizes.
	Extensions []string

	// IncludeGlobs are doublestar patterns a discovered file must match,
	// relative to WorkingDir. Empty means no restriction.
	IncludeGlobs []string

	// ExcludeGlobs are doublestar patterns used to skip files or directories.
	ExcludeGlobs []string

	// FollowSymlinks controls whether directory symlinks are traversed.
	FollowSymlinks bool

	// Jobs controls the maximum number of concurrent workers.
	// 0 or negative means "auto" (runtime.NumCPU()).
	Jobs int

	// Force analyzes every file as this format instead of classifying it.
	Force string

	// Fix writes fixed text back to each changed file.
	Fix bool

	// Backup keeps a sidecar copy of every file before it is fixed.
	Backup bool
}

// OptionsFromConfig returns run options for cfg. Paths and Force are left
// for the caller.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Extensions:     cfg.Files.Extensions,
		IncludeGlobs:   cfg.Files.Include,
		ExcludeGlobs:   cfg.Files.Exclude,
		FollowSymlinks: cfg.Files.FollowSymlinks,
		Jobs:           cfg.Analyze.Jobs,
		Fix:            cfg.Analyze.Fix,
		Backup:         cfg.Analyze.Backup,
	}
}

// effectivePaths returns the paths to process, defaulting to "." if empty.
func (o Options) effectivePaths() []string {
	if len(o.Paths) == 0 {
		return []string{"."}
	}
	return o.Paths
}
