package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from the specified file path.
// It supports YAML files and performs environment variable substitution.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// Read the config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := DefaultConfig()

	// Unmarshal into config struct
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Perform environment variable substitution
	substituteEnvVars(cfg)

	return cfg, nil
}

// LoadOptional behaves like Load but returns defaults when the file does
// not exist. Used when the CLI is driven entirely by flags.
func LoadOptional(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	return Load(configPath)
}

// LoadFromViper creates a Config from an existing Viper instance.
// Useful for testing or when Viper is configured externally.
func LoadFromViper(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	substituteEnvVars(cfg)

	return cfg, nil
}

// envVarPattern matches ${VAR_NAME} or $VAR_NAME patterns
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// substituteEnvVars replaces ${VAR_NAME} patterns with environment variable values.
func substituteEnvVars(cfg *Config) {
	// Substitute in Jira connection config (credentials usually live in env)
	cfg.Jira.URL = expandEnvVar(cfg.Jira.URL)
	cfg.Jira.User = expandEnvVar(cfg.Jira.User)
	cfg.Jira.Password = expandEnvVar(cfg.Jira.Password)
	cfg.Jira.Cookie = expandEnvVar(cfg.Jira.Cookie)

	// Substitute in output and logging paths
	cfg.Output.File = expandEnvVar(cfg.Output.File)
	cfg.Logging.Output = expandEnvVar(cfg.Logging.Output)
}

// expandEnvVar expands environment variables in the format ${VAR} or $VAR.
func expandEnvVar(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		var varName string
		if strings.HasPrefix(match, "${") {
			varName = match[2 : len(match)-1]
		} else {
			varName = match[1:]
		}

		if value, exists := os.LookupEnv(varName); exists {
			return value
		}
		// Return original if env var not found
		return match
	})
}

// ApplyOverrides applies CLI flag overrides to the global configuration.
// Only non-zero/non-empty values are applied.
func (c *Config) ApplyOverrides(logLevel, logFormat string) {
	if logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFormat != "" {
		c.Logging.Format = logFormat
	}
}
