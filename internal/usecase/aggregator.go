// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/naka-gawa/github-trajectory/internal/domain"
	"github.com/naka-gawa/github-trajectory/internal/gateway"
	"github.com/naka-gawa/github-trajectory/internal/sink"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	// RecentWindow is the window of the "yesterday" commit list.
	RecentWindow = 24 * time.Hour
	// WeeklyWindow is the window of the weekly commit count.
	WeeklyWindow = 7 * 24 * time.Hour

	defaultLanguageConcurrency = 4
)

// Options tunes a single run.
type Options struct {
	// Location is used to render commit times. Defaults to time.Local.
	Location *time.Location
	// GraphQLLanguages fetches all repository languages with one GraphQL query
	// instead of listing repositories and querying each one.
	GraphQLLanguages bool
	// LanguageConcurrency bounds the per-repository language queries.
	LanguageConcurrency int
}

// Aggregator is the use case for building an activity summary.
// It orchestrates the fetching and combining of data.
type Aggregator struct {
	fetcher gateway.Fetcher
	logger  logrus.FieldLogger
}

// NewAggregator creates a new Aggregator instance.
func NewAggregator(fetcher gateway.Fetcher, logger logrus.FieldLogger) *Aggregator {
	return &Aggregator{
		fetcher: fetcher,
		logger:  logger,
	}
}

// Aggregate fetches everything concurrently and builds the summary for user as of now.
// The first failing query cancels the others and its error is returned.
func (a *Aggregator) Aggregate(ctx context.Context, user string, now time.Time, opts Options) (*domain.ActivitySummary, error) {
	a.logger.Info("Starting data aggregation...")

	recentBoundary := now.Add(-RecentWindow)
	weeklyBoundary := now.Add(-WeeklyWindow)

	var hits []domain.CommitHit
	var weeklyCommits int
	var events []domain.Event
	var perRepo []map[string]int

	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		var err error
		hits, err = a.fetcher.SearchCommits(egCtx, user, recentBoundary)
		return err
	})

	eg.Go(func() error {
		var err error
		weeklyCommits, err = a.fetcher.CountCommits(egCtx, user, weeklyBoundary)
		return err
	})

	eg.Go(func() error {
		var err error
		events, err = a.fetcher.ListEvents(egCtx, user)
		return err
	})

	eg.Go(func() error {
		var err error
		if opts.GraphQLLanguages {
			perRepo, err = a.fetcher.FetchRepositoryLanguages(egCtx)
			return err
		}
		perRepo, err = a.fetchLanguages(egCtx, user, opts.LanguageConcurrency)
		return err
	})

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	a.logger.WithFields(logrus.Fields{
		"commit_hits":  len(hits),
		"weekly_total": weeklyCommits,
		"events":       len(events),
		"repositories": len(perRepo),
	}).Info("All data fetched successfully.")

	commits := FilterRecentCommits(hits, recentBoundary, opts.Location)
	languages := NormalizeLanguages(MergeLanguages(perRepo))

	summary := Assemble(now, commits, languages, weeklyCommits)
	a.logger.WithFields(logrus.Fields{
		"commits_24h": summary.Yesterday.CommitCount,
		"languages":   len(summary.Languages),
	}).Info("Aggregation complete.")
	return summary, nil
}

// Run aggregates the summary and hands it to out. Nothing is written when aggregation fails.
func (a *Aggregator) Run(ctx context.Context, user string, now time.Time, opts Options, out sink.Sink) error {
	summary, err := a.Aggregate(ctx, user, now, opts)
	if err != nil {
		return fmt.Errorf("failed to aggregate activity: %w", err)
	}
	if err := out.Write(summary); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

// fetchLanguages lists the repositories and then queries their languages in parallel.
// Results keep the repository order so merging does not depend on completion order.
func (a *Aggregator) fetchLanguages(ctx context.Context, user string, concurrency int) ([]map[string]int, error) {
	repos, err := a.fetcher.ListRepositories(ctx)
	if err != nil {
		return nil, err
	}
	if concurrency < 1 {
		concurrency = defaultLanguageConcurrency
	}

	perRepo := make([]map[string]int, len(repos))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(concurrency)
	for i, repo := range repos {
		if repo.Owner == "" {
			repo.Owner = user
		}
		eg.Go(func() error {
			langs, err := a.fetcher.ListLanguages(egCtx, repo)
			if err != nil {
				return err
			}
			perRepo[i] = langs
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	a.logger.WithField("repositories", len(repos)).Debug("Fetched repository languages.")
	return perRepo, nil
}
