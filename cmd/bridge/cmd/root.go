// Package cmd defines the bridge CLI commands.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tracksync/bridge/cmd/bridge/app"
	"github.com/tracksync/bridge/internal/transport"
	"github.com/tracksync/bridge/pkg/dhis2"
	"github.com/tracksync/bridge/pkg/errors"
	"github.com/tracksync/bridge/pkg/logging"
	"github.com/tracksync/bridge/pkg/runner"
	"github.com/tracksync/bridge/pkg/sources"
)

var (
	config *app.Config

	// Version information set by main.
	Version = "dev"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "bridge",
	Short: "Tracker reconciliation bridge",
	Long: `Bridge reconciles externally sourced tabular records against a
tracker server: it groups rows into client identities, validates values,
matches clients against previously known tracked entities, and submits
the minimal set of creates and updates.

Sources can be CSV files, Excel workbooks, remote JSON feeds, or SQL
queries; mapping configurations come from the server datastore or a
local file.`,
	PersistentPreRunE: setup,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// Execute runs the root command with signal-aware context.
func Execute(version string) error {
	Version = version
	rootCmd.Version = version

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default is $HOME/.bridge.yaml)")
	flags.String("url", "", "tracker server base URL")
	flags.String("username", "", "tracker server username")
	flags.String("password", "", "tracker server password")
	flags.String("source-type", "", "global record source: csv, excel, api, or sql")
	flags.String("source-url", "", "source location: file path, feed URL, or connection string")
	flags.String("data-username", "", "feed username, when the source requires authentication")
	flags.String("data-password", "", "feed password")
	flags.String("query-file", "", "SQL query file for the sql source")
	flags.String("mappings-file", "", "local mappings file instead of the server datastore")
	flags.String("since", "", "initial watermark for date-filtered sources (YYYY-MM-DD HH:MM:SS)")
	flags.String("log-level", "", "log level: trace, debug, info, warn, error")
	flags.BoolP("verbose", "v", false, "verbose output (debug logging)")
	flags.BoolP("quiet", "q", false, "quiet output (warnings and errors only)")

	for _, name := range []string{
		"config", "url", "username", "password",
		"source-type", "source-url", "data-username", "data-password",
		"query-file", "mappings-file", "since", "log-level", "verbose", "quiet",
	} {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}
}

// setup loads configuration and installs the logger before any command
// body runs.
func setup(_ *cobra.Command, _ []string) error {
	var err error
	config, err = app.LoadConfig()
	if err != nil {
		return err
	}
	if lvl := viper.GetString("log-level"); lvl != "" {
		config.LogLevel = lvl
	}

	logger := app.NewLogger(config)
	logging.SetDefault(logger)
	return nil
}

// newRunner wires a Runner from the loaded configuration.
func newRunner() (*runner.Runner, error) {
	if config.URL == "" {
		return nil, errors.NewValidationError("url", nil, "tracker server URL is required")
	}

	client, err := dhis2.NewClient(config.URL, config.Username, config.Password,
		dhis2.WithLogger(logging.Default()))
	if err != nil {
		return nil, err
	}

	opts := []runner.Option{
		runner.WithLogger(logging.Default()),
	}
	if config.MappingsFile != "" {
		opts = append(opts, runner.WithMappingsFile(config.MappingsFile))
	}
	if config.Since != "" {
		opts = append(opts, runner.WithSince(config.Since))
	}

	src, err := newSource()
	if err != nil {
		return nil, err
	}
	if src != nil {
		opts = append(opts, runner.WithSource(src))
	}

	return runner.New(client, opts...), nil
}

// newSource builds the global record source, or nil when each mapping
// names its own feed.
func newSource() (sources.Source, error) {
	switch config.SourceType {
	case "":
		return nil, nil
	case "csv":
		if config.SourceURL == "" {
			return nil, errors.NewValidationError("source-url", nil, "csv source requires a file path")
		}
		return sources.NewCSVSource(config.SourceURL), nil
	case "excel":
		if config.SourceURL == "" {
			return nil, errors.NewValidationError("source-url", nil, "excel source requires a file path")
		}
		return sources.NewExcelSource(config.SourceURL), nil
	case "api":
		var auth transport.Authenticator = &transport.NoAuth{}
		if config.DataUsername != "" {
			auth = &transport.BasicAuth{Username: config.DataUsername, Password: config.DataPassword}
		}
		return sources.NewAPISource(config.SourceURL, auth, "", "")
	case "sql":
		if config.QueryFile == "" {
			return nil, errors.NewValidationError("query-file", nil, "sql source requires a query file")
		}
		query, err := os.ReadFile(config.QueryFile)
		if err != nil {
			return nil, errors.WrapIO("read", config.QueryFile, err)
		}
		return sources.NewSQLSource(config.SourceURL, string(query)), nil
	default:
		return nil, errors.NewValidationError("source-type", config.SourceType, "expected csv, excel, api, or sql")
	}
}
