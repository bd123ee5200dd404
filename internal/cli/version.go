package cli

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/wronai/pactfix/internal/logging"
)

func (a *app) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the version, commit hash, and build date of pactfix.`,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			logger := log.NewWithOptions(cmd.OutOrStdout(), log.Options{
				ReportTimestamp: false,
				ReportCaller:    false,
			})
			logger.SetLevel(log.InfoLevel)

			logger.Info("pactfix",
				logging.FieldVersion, a.info.Version,
				logging.FieldCommit, a.info.Commit,
				logging.FieldBuilt, a.info.Date,
			)
		},
	}
}
