package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/naka-gawa/github-trajectory/internal/config"
	"github.com/naka-gawa/github-trajectory/internal/gateway"
	"github.com/naka-gawa/github-trajectory/internal/sink"
	"github.com/naka-gawa/github-trajectory/internal/usecase"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetches GitHub activity and writes the summary as JSON",
	Long: `Fetches the configured user's recent commits, weekly commit count and repository
languages, and writes the summary to the output file (or standard output with --out -).
The previous file is only replaced when the whole run succeeds.`,
	Run: func(cmd *cobra.Command, args []string) {
		logger, err := newLogger(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		loaded, err := config.LoadEnvFiles()
		if err != nil {
			logger.WithError(err).Error("Failed to load environment files.")
			os.Exit(1)
		}
		if len(loaded) > 0 {
			logger.WithField("files", loaded).Debug("Loaded environment files.")
		}

		configPath, _ := cmd.InheritedFlags().GetString("config")
		cfg, err := config.Load(configPath)
		if err != nil {
			logger.WithError(err).Error("Failed to load config.")
			os.Exit(1)
		}

		output := cfg.Output
		if cmd.Flags().Changed("out") {
			output, _ = cmd.Flags().GetString("out")
		}
		timeout, _ := cmd.Flags().GetDuration("timeout")
		graphqlLanguages, _ := cmd.Flags().GetBool("graphql-languages")

		loc, err := cfg.Location()
		if err != nil {
			logger.WithError(err).Error("Failed to load timezone.")
			os.Exit(1)
		}

		runLogger := logger.WithFields(logrus.Fields{
			"run_id": uuid.NewString(),
			"user":   cfg.Username,
		})

		token := os.Getenv("GITHUB_TOKEN")
		if token == "" {
			runLogger.Warn("GITHUB_TOKEN is not set; requests will likely be rejected.")
		}

		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		githubGateway, err := gateway.NewGitHubGateway(token, cfg.RateLimit.MaxWait, runLogger)
		if err != nil {
			runLogger.WithError(err).Error("Failed to create GitHub gateway.")
			os.Exit(1)
		}
		aggregator := usecase.NewAggregator(githubGateway, runLogger)

		opts := usecase.Options{
			Location:            loc,
			GraphQLLanguages:    graphqlLanguages || cfg.Languages.Source == config.LanguageSourceGraphQL,
			LanguageConcurrency: cfg.Languages.Concurrency,
		}
		if err := aggregator.Run(ctx, cfg.Username, time.Now(), opts, sink.New(output, os.Stdout)); err != nil {
			runLogger.WithError(err).Error("Failed to update activity summary.")
			os.Exit(1)
		}
		runLogger.WithField("output", output).Info("Successfully updated activity summary.")
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().StringP("out", "o", "", "Output file, or - for standard output (overrides the config)")
	fetchCmd.Flags().Duration("timeout", 0, "Abort the run after this duration (0 means no timeout)")
	fetchCmd.Flags().Bool("graphql-languages", false, "Fetch repository languages with a single GraphQL query")
}
