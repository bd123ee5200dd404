// Package cli provides the Cobra command structure for pactfix.
package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wronai/pactfix/internal/logging"
	"github.com/wronai/pactfix/pkg/config"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// Option customizes the command environment.
type Option func(*app)

// WithWorkingDir resolves relative paths and config discovery from dir
// instead of the process working directory.
func WithWorkingDir(dir string) Option {
	return func(a *app) { a.workDir = dir }
}

// WithGetenv replaces os.Getenv for configuration lookups.
func WithGetenv(getenv func(string) string) Option {
	return func(a *app) { a.getenv = getenv }
}

// app is the state shared by all commands of one invocation.
type app struct {
	info    BuildInfo
	workDir string
	getenv  func(string) string

	debug      bool
	configPath string
	noColor    bool
}

// NewRootCommand creates the root pactfix command with all subcommands.
func NewRootCommand(info BuildInfo, opts ...Option) *cobra.Command {
	a := &app{info: info, getenv: os.Getenv}
	for _, opt := range opts {
		opt(a)
	}

	rootCmd := &cobra.Command{
		Use:   "pactfix",
		Short: "Detect and fix common mistakes in scripts, configs and documents",
		Long: `pactfix analyzes shell scripts, Python, SQL, Dockerfiles, Makefiles,
YAML, Kubernetes and Compose manifests, Terraform, nginx and systemd units,
and other formats. Each document is classified automatically, checked for
common mistakes, and optionally rewritten with the fixes applied.

Code blocks inside Markdown and markpact documents are analyzed in their own
format and the fixes are spliced back into the host document.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level := "info"
			if a.debug {
				level = "debug"
			}
			logger := logging.NewWithWriter(cmd.ErrOrStderr(), level, "text")

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(logging.WithLogger(ctx, logger))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	rootCmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "disable styled output")

	rootCmd.AddCommand(a.newAnalyzeCommand())
	rootCmd.AddCommand(a.newFormatsCommand())
	rootCmd.AddCommand(a.newInitCommand())
	rootCmd.AddCommand(a.newRestoreCommand())
	rootCmd.AddCommand(a.newVersionCommand())

	colorMode := config.ColorAuto
	if a.getenv("NO_COLOR") != "" {
		colorMode = config.ColorNever
	}
	NewHelpFormatter(colorMode, os.Stdout).ApplyToCommand(rootCmd)

	return rootCmd
}

// Execute runs the root command with args and returns the exit code. Errors
// other than a fail-on breach are logged to the command's stderr.
func Execute(ctx context.Context, cmd *cobra.Command, args []string) int {
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	code := ExitCode(err)
	if err != nil && code != ExitIssues {
		logging.NewWithWriter(cmd.ErrOrStderr(), "error", "text").
			Error("command failed", logging.FieldError, err)
	}
	return code
}

// resolvePath makes path absolute against the working directory.
func (a *app) resolvePath(path string) string {
	if path == "" || a.workDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(a.workDir, path)
}
