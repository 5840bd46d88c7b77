package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tracksync/bridge/pkg/dhis2"
	"github.com/tracksync/bridge/pkg/logging"
	"github.com/tracksync/bridge/pkg/types"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check mapping configurations without running a pass",
	Long: `Validate loads mappings from the server datastore or the local
mappings file and reports structural defects: missing identifiers,
unbound event-date columns, unknown org-unit strategies. A defective
mapping would prevent its pass from starting.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		var mappings []types.Mapping
		var err error

		if config.MappingsFile != "" {
			mappings, err = dhis2.LoadMappingsFile(config.MappingsFile)
		} else {
			var client *dhis2.Client
			client, err = dhis2.NewClient(config.URL, config.Username, config.Password)
			if err != nil {
				return err
			}
			mappings, err = client.Mappings(cmd.Context())
		}
		if err != nil {
			return err
		}

		logger := logging.Default()
		defective := 0
		for i := range mappings {
			m := &mappings[i]
			if verr := m.Validate(); verr != nil {
				defective++
				logger.Error().Str("mapping", m.ID).Str("name", m.Name).Err(verr).Msg("Mapping invalid")
				continue
			}
			logger.Info().Str("mapping", m.ID).Str("name", m.Name).Msg("Mapping valid")
		}

		if defective > 0 {
			return fmt.Errorf("%d of %d mappings invalid", defective, len(mappings))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
