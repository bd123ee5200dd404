package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wronai/pactfix/internal/logging"
	"github.com/wronai/pactfix/pkg/fsutil"
)

func (a *app) newRestoreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <files...>",
		Short: "Restore files from their .pactfix.bak backups",
		Long: `Put back the copies kept by "analyze --fix --backup" and remove the backup
files. Files without a backup are reported and left alone.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := logging.FromContext(ctx)

			missing := 0
			for _, arg := range args {
				path := a.resolvePath(arg)
				restored, err := fsutil.RestoreBackup(ctx, path)
				if err != nil {
					return fmt.Errorf("restore %s: %w", arg, err)
				}
				if !restored {
					missing++
					logger.Warn("no backup found", logging.FieldPath, arg)
					continue
				}
				logger.Info("restored", logging.FieldPath, arg)
			}

			if missing > 0 {
				return ErrIssuesFound
			}
			return nil
		},
	}
}
