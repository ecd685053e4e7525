package usecase

import (
	"strings"
	"time"

	"github.com/naka-gawa/github-trajectory/internal/domain"
)

// CommitTimeLayout is the hour:minute layout of a commit record's display time.
const CommitTimeLayout = "15:04"

// FilterRecentCommits keeps the hits committed strictly after boundary, in their original
// order, and converts them to records whose time is rendered in loc.
func FilterRecentCommits(hits []domain.CommitHit, boundary time.Time, loc *time.Location) []domain.CommitRecord {
	if loc == nil {
		loc = time.Local
	}
	records := make([]domain.CommitRecord, 0, len(hits))
	for _, hit := range hits {
		if !hit.CommittedAt.After(boundary) {
			continue
		}
		records = append(records, domain.CommitRecord{
			Repo:        hit.Repository,
			Message:     firstLine(hit.Message),
			Time:        hit.CommittedAt.In(loc).Format(CommitTimeLayout),
			CommittedAt: hit.CommittedAt,
		})
	}
	return records
}

func firstLine(message string) string {
	line, _, _ := strings.Cut(message, "\n")
	return strings.TrimSuffix(line, "\r")
}
