// Package domain contains the core data structures and domain logic for the application.
package domain

import "time"

// MaxDisplayedCommits is the number of commit records kept in a summary for display.
const MaxDisplayedCommits = 5

// CommitHit is a single raw result of a commit search.
type CommitHit struct {
	Repository  string
	Message     string
	CommittedAt time.Time
}

// Repository identifies a repository visible to the authenticated user.
type Repository struct {
	Owner string
	Name  string
}

// Event is a single entry of a user's public event feed.
type Event struct {
	Type      string
	Repo      string
	CreatedAt time.Time
}

// CommitRecord is a commit as it appears in the summary.
type CommitRecord struct {
	Repo        string    `json:"repo"`
	Message     string    `json:"message"`
	Time        string    `json:"time"`
	CommittedAt time.Time `json:"committedAt"`
}

// LanguageShare is a language's rounded share of all bytes.
type LanguageShare struct {
	Name    string `json:"name"`
	Percent int    `json:"percent"`
	Color   string `json:"color"`
}

// YesterdayStats holds the commits made in the last 24 hours.
// CommitCount is the full count; Commits may be truncated.
type YesterdayStats struct {
	CommitCount int            `json:"commitCount"`
	Commits     []CommitRecord `json:"commits"`
}

// WeeklyStats holds the commit volume of the last 7 days.
type WeeklyStats struct {
	CurrentCommits int `json:"currentCommits"`
}

// ActivitySummary is the artifact produced by one run.
// The generation time keeps the "lastUpdated" key read by existing dashboards.
type ActivitySummary struct {
	GeneratedAt time.Time       `json:"lastUpdated"`
	Yesterday   YesterdayStats  `json:"yesterday"`
	Languages   []LanguageShare `json:"languages"`
	WeeklyStats WeeklyStats     `json:"weeklyStats"`
}
