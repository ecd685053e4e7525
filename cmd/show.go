package cmd

import (
	"fmt"
	"os"

	"github.com/naka-gawa/github-trajectory/internal/config"
	"github.com/naka-gawa/github-trajectory/internal/render"
	"github.com/naka-gawa/github-trajectory/internal/sink"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Prints a previously written summary",
	Long:  `Reads a summary written by fetch and prints the weekly goal progress, the language breakdown and yesterday's commits.`,
	Run: func(cmd *cobra.Command, args []string) {
		logger, err := newLogger(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		configPath, _ := cmd.InheritedFlags().GetString("config")
		cfg, err := config.Load(configPath)
		if err != nil {
			logger.WithError(err).Error("Failed to load config.")
			os.Exit(1)
		}
		if err := cfg.ValidateGoals(); err != nil {
			logger.WithError(err).Error("Invalid config.")
			os.Exit(1)
		}

		input := cfg.Output
		if cmd.Flags().Changed("in") {
			input, _ = cmd.Flags().GetString("in")
		}
		summary, err := sink.Read(input)
		if err != nil {
			logger.WithError(err).Error("Failed to read activity summary.")
			os.Exit(1)
		}

		loc, err := cfg.Location()
		if err != nil {
			logger.WithError(err).Error("Failed to load timezone.")
			os.Exit(1)
		}

		fmt.Printf("%s's Trajectory\n\n", cfg.Username)
		if err := render.Summary(os.Stdout, summary, cfg.Goals.WeeklyCommits, loc); err != nil {
			logger.WithError(err).Error("Failed to render activity summary.")
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().StringP("in", "i", "", "Summary file to read (defaults to the configured output)")
}
