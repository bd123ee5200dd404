package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/wronai/pactfix/internal/logging"
	"github.com/wronai/pactfix/pkg/config"
	"github.com/wronai/pactfix/pkg/fsutil"
)

// DefaultConfigFile is the file written by init.
const DefaultConfigFile = ".pactfix.yml"

type initFlags struct {
	force  bool
	full   bool
	output string
}

func (a *app) newInitCommand() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a pactfix configuration file",
		Long: `Create a commented .pactfix.yml in the current directory with the default
settings. With --full the template also lists every format and its aliases.`,
		Example: `  pactfix init
  pactfix init --full
  pactfix init --output ci/pactfix.yml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runInit(cmd, flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "overwrite an existing file")
	cmd.Flags().BoolVar(&flags.full, "full", false, "include the format reference")
	cmd.Flags().StringVarP(&flags.output, "output", "o", DefaultConfigFile, "file to write")

	return cmd
}

func (a *app) runInit(cmd *cobra.Command, flags *initFlags) error {
	ctx := cmd.Context()
	logger := logging.FromContext(ctx)

	path := a.resolvePath(flags.output)
	_, err := os.Stat(path)
	switch {
	case err == nil && !flags.force:
		return usageError(fmt.Errorf("file %q already exists; use --force to overwrite", flags.output))
	case err == nil:
		logger.Warn("overwriting existing file", logging.FieldPath, flags.output)
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("stat %s: %w", path, err)
	}

	content := config.GenerateTemplate(config.TemplateOptions{Full: flags.full})
	if err := fsutil.WriteAtomic(ctx, path, content, fsutil.DefaultFileMode); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	logger.Info("created configuration file", logging.FieldPath, flags.output)
	logger.Info("run 'pactfix formats' to see every supported format")
	return nil
}
