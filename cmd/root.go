// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"os"

	"github.com/naka-gawa/github-trajectory/internal/config"
	"github.com/naka-gawa/github-trajectory/internal/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "github-trajectory",
	Short: "A CLI tool to summarize a developer's recent GitHub activity.",
	Long: `github-trajectory summarizes the configured user's GitHub activity:
commits in the last 24 hours, commits over the last 7 days and the language
breakdown of their most recently updated repositories.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().StringP("config", "c", config.DefaultPath, "Path to the config file (JSON or YAML)")
	rootCmd.PersistentFlags().String("log-format", logging.FormatText, "Log format: text or json")
}

// newLogger builds the logger from the root flags. Logs go to standard error;
// LOG_LEVEL applies unless --verbose is set.
func newLogger(cmd *cobra.Command) (*logrus.Logger, error) {
	verbose, _ := cmd.InheritedFlags().GetBool("verbose")
	format, _ := cmd.InheritedFlags().GetString("log-format")
	level := os.Getenv("LOG_LEVEL")
	if verbose {
		level = "debug"
	}
	return logging.New(os.Stderr, level, format)
}
