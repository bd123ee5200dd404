package configloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// ConfigPaths represents discovered configuration file paths.
type ConfigPaths struct {
	// User is the user-level config path (e.g., ~/.config/pactfix/config.yml).
	User string

	// Project is the project-level config path (e.g., ./.pactfix.yml).
	Project string

	// Explicit is a config path provided via --config flag.
	Explicit string
}

// ProjectConfigFiles are the config file names searched for, in order of preference.
//
//nolint:gochecknoglobals // Read-only lookup table.
var ProjectConfigFiles = []string{
	".pactfix.yml",
	".pactfix.yaml",
}

// vcsRootMarkers are directories that indicate a VCS root.
//
//nolint:gochecknoglobals // Read-only lookup table.
var vcsRootMarkers = []string{".git", ".hg", ".svn"}

// DiscoverPaths finds configuration files in standard locations:
//   - User config at $XDG_CONFIG_HOME/pactfix/config.{yml,yaml}
//   - Project config by searching upward from workDir for .pactfix.{yml,yaml}
//
// Missing files are represented as empty strings (not errors).
func DiscoverPaths(ctx context.Context, workDir string, getenv func(string) string) (*ConfigPaths, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("context cancelled: %w", ctx.Err())
	default:
	}

	if getenv == nil {
		getenv = os.Getenv
	}

	paths := &ConfigPaths{
		User: findUserConfig(getenv),
	}

	projectConfig, err := FindProjectConfig(ctx, workDir)
	if err != nil {
		return nil, err
	}
	paths.Project = projectConfig

	return paths, nil
}

// UserConfigDir returns the directory holding the user-level config.
func UserConfigDir(getenv func(string) string) string {
	if getenv == nil {
		getenv = os.Getenv
	}
	configHome := getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "pactfix")
}

// findUserConfig returns the path to the user-level config file, if it exists.
func findUserConfig(getenv func(string) string) string {
	dir := UserConfigDir(getenv)
	if dir == "" {
		return ""
	}
	for _, name := range []string{"config.yml", "config.yaml"} {
		path := filepath.Join(dir, name)
		if fileExists(path) {
			return path
		}
	}
	return ""
}

// FindProjectConfig searches upward from startDir for a project config file.
// Returns the path to the first config file found, or empty string if none.
// Stops at VCS roots, the home directory, or the filesystem root.
func FindProjectConfig(ctx context.Context, startDir string) (string, error) {
	if startDir == "" {
		var err error
		startDir, err = os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
	}

	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}

	homeDir, homeErr := os.UserHomeDir()
	if homeErr != nil {
		homeDir = ""
	}

	currentDir := absDir
	for {
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("context cancelled: %w", ctx.Err())
		default:
		}

		for _, name := range ProjectConfigFiles {
			path := filepath.Join(currentDir, name)
			if fileExists(path) {
				return path, nil
			}
		}

		if isVCSRoot(currentDir) {
			return "", nil
		}
		if homeDir != "" && currentDir == homeDir {
			return "", nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", nil
		}
		currentDir = parentDir
	}
}

// isVCSRoot returns true if the directory contains a VCS root marker.
func isVCSRoot(dir string) bool {
	for _, marker := range vcsRootMarkers {
		info, err := os.Stat(filepath.Join(dir, marker))
		if err == nil && info.IsDir() {
			return true
		}
	}
	return false
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
