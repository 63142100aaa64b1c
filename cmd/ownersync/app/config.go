package app

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/xcp-ng/ownersync/internal/github"
	"github.com/xcp-ng/ownersync/pkg/registry"
)

// Defaults for the reconciliation settings.
const (
	DefaultOrg          = "xcp-ng-rpms"
	DefaultPlatformTeam = "OS Platform & Release"
	DefaultBranch       = "master"
)

// Config holds the application configuration loaded from config files,
// environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool

	// Config file
	ConfigFile string

	// Reconciliation settings
	Org          string
	PlatformTeam string
	Registry     string
	Branches     []string

	// Remote API
	Token  string
	APIURL string

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables
// 3. .env files
// 4. Config file (~/.ownersync.yaml)
// 5. Defaults
func LoadConfig() (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	// Set up Viper for environment variables
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	// GITHUB_TOKEN is the credential contract of the tool; bind it
	// explicitly so it is picked up regardless of key casing.
	_ = viper.BindEnv("github_token", "GITHUB_TOKEN")

	// Try to read config file if it exists
	configFile := viper.GetString("config")
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.AddConfigPath(".")
			viper.SetConfigType("yaml")
			viper.SetConfigName(".ownersync")
		}
	}

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()

	config := &Config{
		// Global flags (may be overridden by cobra flags later)
		Verbose: viper.GetBool("verbose"),
		Quiet:   viper.GetBool("quiet"),
		NoColor: viper.GetBool("no-color"),

		// Config file
		ConfigFile: viper.ConfigFileUsed(),

		// Reconciliation settings
		Org:          viper.GetString("org"),
		PlatformTeam: viper.GetString("platform_team"),
		Registry:     viper.GetString("registry"),
		Branches:     viper.GetStringSlice("branches"),

		// Remote API
		Token:  viper.GetString("github_token"),
		APIURL: viper.GetString("api_url"),

		// Logging configuration
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput: getEnvOrDefault("LOG_OUTPUT", "stderr"),
	}

	// Set defaults
	if config.Org == "" {
		config.Org = DefaultOrg
	}
	if config.PlatformTeam == "" {
		config.PlatformTeam = DefaultPlatformTeam
	}
	if config.Registry == "" {
		config.Registry = registry.DefaultPath
	}
	if len(config.Branches) == 0 {
		config.Branches = []string{DefaultBranch}
	}
	if config.APIURL == "" {
		config.APIURL = github.DefaultAPIURL
	}

	return config, nil
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env.
func loadEnvFiles() {
	envFiles := []string{
		".env",
		".env.local",
	}

	for _, envFile := range envFiles {
		_ = godotenv.Load(envFile)
	}
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
