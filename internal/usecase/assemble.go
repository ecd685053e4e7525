package usecase

import (
	"time"

	"github.com/naka-gawa/github-trajectory/internal/domain"
)

// Assemble builds the summary of one run. The commit count covers every record
// while only the first domain.MaxDisplayedCommits are kept for display.
func Assemble(now time.Time, commits []domain.CommitRecord, languages []domain.LanguageShare, weeklyCommits int) *domain.ActivitySummary {
	shown := commits
	if len(shown) > domain.MaxDisplayedCommits {
		shown = shown[:domain.MaxDisplayedCommits]
	}
	if shown == nil {
		shown = []domain.CommitRecord{}
	}
	if languages == nil {
		languages = []domain.LanguageShare{}
	}
	return &domain.ActivitySummary{
		GeneratedAt: now.UTC(),
		Yesterday: domain.YesterdayStats{
			CommitCount: len(commits),
			Commits:     shown,
		},
		Languages: languages,
		WeeklyStats: domain.WeeklyStats{
			CurrentCommits: weeklyCommits,
		},
	}
}
