// Package render prints a finished activity summary to a terminal.
package render

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/naka-gawa/github-trajectory/internal/domain"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

const timestampLayout = "2006-01-02 15:04"

var heading = color.New(color.Bold).SprintFunc()

// WeeklyProgress returns the weekly goal completion as a rounded percent capped at 100.
func WeeklyProgress(current, goal int) int {
	if goal <= 0 {
		return 0
	}
	p := math.Min(100, float64(current)/float64(goal)*100)
	return int(math.Round(p))
}

// Summary writes the weekly goal, the language breakdown and yesterday's commits to w.
// Times are shown in loc.
func Summary(w io.Writer, summary *domain.ActivitySummary, weeklyGoal int, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}
	green := color.New(color.FgGreen).SprintFunc()
	blue := color.New(color.FgBlue, color.Bold).SprintFunc()

	fmt.Fprintf(w, "Last updated: %s\n\n", summary.GeneratedAt.In(loc).Format(timestampLayout))

	fmt.Fprintln(w, heading("Weekly Goal"))
	fmt.Fprintf(w, "%s / %d commits  %s\n\n",
		green(summary.WeeklyStats.CurrentCommits), weeklyGoal,
		blue(fmt.Sprintf("%d%%", WeeklyProgress(summary.WeeklyStats.CurrentCommits, weeklyGoal))))

	fmt.Fprintln(w, heading("Top Languages"))
	if err := languageTable(w, summary.Languages); err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s  %s\n", heading("Yesterday's Impact"), green(fmt.Sprintf("%d Commits", summary.Yesterday.CommitCount)))
	return commitTable(w, summary.Yesterday.Commits)
}

func languageTable(w io.Writer, languages []domain.LanguageShare) error {
	if len(languages) == 0 {
		_, err := fmt.Fprintln(w, "No language data.")
		return err
	}
	table := tablewriter.NewWriter(w)
	table.Header([]string{"", "Language", "Percent"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.PerColumn = []tw.Align{tw.AlignLeft, tw.AlignLeft, tw.AlignRight}
	})

	var data [][]string
	for _, lang := range languages {
		data = append(data, []string{
			swatch(lang.Color),
			lang.Name,
			fmt.Sprintf("%d%%", lang.Percent),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func commitTable(w io.Writer, commits []domain.CommitRecord) error {
	if len(commits) == 0 {
		_, err := fmt.Fprintln(w, "No commits in the last 24 hours.")
		return err
	}
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Time", "Repository", "Message"})

	var data [][]string
	for _, c := range commits {
		data = append(data, []string{c.Time, c.Repo, c.Message})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// swatch renders a colored dot for a "#rrggbb" color, or a plain one when it cannot be parsed.
func swatch(hex string) string {
	r, g, b, ok := parseHex(hex)
	if !ok {
		return "●"
	}
	return color.RGB(r, g, b).Sprint("●")
}

func parseHex(hex string) (r, g, b int, ok bool) {
	s := strings.TrimPrefix(hex, "#")
	if len(s) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff), true
}
