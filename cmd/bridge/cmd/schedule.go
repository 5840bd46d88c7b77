package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tracksync/bridge/pkg/logging"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run reconciliation passes on a fixed interval",
	Long: `Schedule runs a pass every interval until interrupted. A tick that
finds the previous pass still running is skipped rather than queued, so
at most one pass is ever in flight.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		r, err := newRunner()
		if err != nil {
			return err
		}

		interval := viper.GetDuration("interval")
		if interval == 0 {
			interval = config.Interval
		}

		logging.Default().Info().Dur("interval", interval).Msg("Starting scheduler")
		return r.Schedule(cmd.Context(), interval)
	},
}

func init() {
	scheduleCmd.Flags().Duration("interval", 30*time.Minute, "time between passes")
	_ = viper.BindPFlag("interval", scheduleCmd.Flags().Lookup("interval"))
	rootCmd.AddCommand(scheduleCmd)
}
