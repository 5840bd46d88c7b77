package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tracksync/bridge/pkg/logging"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute one reconciliation pass",
	Long: `Run fetches mappings, acquires source records, reconciles them
against previously known tracked entities, and submits the computed
creates and updates. One invocation is one pass.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		r, err := newRunner()
		if err != nil {
			return err
		}

		report, err := r.RunOnce(cmd.Context())
		if err != nil {
			return err
		}

		logger := logging.Default()
		for _, m := range report.Mappings {
			if m.Err != nil || m.Result == nil {
				continue
			}
			logger.Info().
				Str("mapping", m.Mapping).
				Str("name", m.Name).
				Msg(m.Result.Summary())
		}
		logger.Info().Msg(report.Summary())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
