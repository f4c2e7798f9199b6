package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags at build time)
var (
	Version = "0.0.1-dev"
	Commit  = "unknown"
)

// CLI flags that override config file values
var (
	cfgFile   string
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "jiragraph",
	Short: "Jira issue dependency graph generator",
	Long: `A CLI tool that walks issue links and subtasks outward from one or
more Jira issues and renders the dependency graph as an image, or as a
Graphviz dot file for use with standard layout tools.

Features:
  - Breadth-first traversal with a configurable depth limit
  - Include/exclude filters on link types
  - Subtask and closed-issue traversal toggles
  - Node styling by issue status and type, blocker highlighting`,
	Version: Version,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Config file flag
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "jiragraph.yaml",
		"Path to configuration file (optional)")

	// Logging overrides
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"Override log format (json, text)")
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}

// CLIOverrides contains flag values that override config file settings
type CLIOverrides struct {
	LogLevel  string
	LogFormat string
}

// GetCLIOverrides returns the CLI flag override values
func GetCLIOverrides() CLIOverrides {
	return CLIOverrides{
		LogLevel:  logLevel,
		LogFormat: logFormat,
	}
}
