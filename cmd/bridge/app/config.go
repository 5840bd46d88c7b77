// Package app holds the CLI application configuration and logger wiring.
package app

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from flags,
// environment variables, .env files, and the config file.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool

	// Config file
	ConfigFile string

	// Server connection
	URL      string
	Username string
	Password string

	// Source configuration. Type selects csv, api, or sql; empty means
	// each mapping names its own feed.
	SourceType   string
	SourceURL    string
	DataUsername string
	DataPassword string
	QueryFile    string

	// Mappings
	MappingsFile string

	// Scheduling
	Schedule bool
	Interval time.Duration
	Since    string

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
// command-line flags (handled by cobra), environment variables, .env
// files, the config file (~/.bridge.yaml), then defaults.
func LoadConfig() (*Config, error) {
	loadEnvFiles()

	viper.AutomaticEnv()
	viper.SetEnvPrefix("bridge")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	configFile := viper.GetString("config")
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.AddConfigPath(".")
			viper.SetConfigType("yaml")
			viper.SetConfigName(".bridge")
		}
	}

	// Missing config file is fine; flags and env may carry everything.
	_ = viper.ReadInConfig()

	config := &Config{
		Verbose: viper.GetBool("verbose"),
		Quiet:   viper.GetBool("quiet"),

		ConfigFile: viper.ConfigFileUsed(),

		URL:      viper.GetString("url"),
		Username: viper.GetString("username"),
		Password: viper.GetString("password"),

		SourceType:   viper.GetString("source-type"),
		SourceURL:    viper.GetString("source-url"),
		DataUsername: viper.GetString("data-username"),
		DataPassword: viper.GetString("data-password"),
		QueryFile:    viper.GetString("query-file"),

		MappingsFile: viper.GetString("mappings-file"),

		Schedule: viper.GetBool("schedule"),
		Interval: viper.GetDuration("interval"),
		Since:    viper.GetString("since"),

		LogLevel:  getEnvOrDefault("LOG_LEVEL", ""),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput: getEnvOrDefault("LOG_OUTPUT", "stderr"),
	}

	if config.Interval == 0 {
		config.Interval = 30 * time.Minute
	}

	return config, nil
}

// loadEnvFiles loads .env files before viper env binding so both see the
// same values.
func loadEnvFiles() {
	for _, file := range []string{".env.local", ".env"} {
		if _, err := os.Stat(file); err == nil {
			_ = godotenv.Load(file)
		}
	}
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
