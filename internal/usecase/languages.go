package usecase

import (
	"sort"

	"github.com/montanaflynn/stats"
	"github.com/naka-gawa/github-trajectory/internal/domain"
)

// OthersThreshold is the raw percent below which a language is folded into "Others".
const OthersThreshold = 5.0

// LanguageTally accumulates byte counts per language across repositories.
// It remembers the order in which languages were first seen.
type LanguageTally struct {
	order []string
	bytes map[string]int64
}

// NewLanguageTally returns an empty tally.
func NewLanguageTally() *LanguageTally {
	return &LanguageTally{bytes: make(map[string]int64)}
}

// Add adds bytes to a language. Negative counts are ignored.
func (t *LanguageTally) Add(name string, bytes int64) {
	if bytes < 0 {
		return
	}
	if _, ok := t.bytes[name]; !ok {
		t.order = append(t.order, name)
	}
	t.bytes[name] += bytes
}

// Merge adds a repository's language map to the tally.
// Languages new to the tally are recorded largest first, then by name.
func (t *LanguageTally) Merge(langs map[string]int) {
	names := make([]string, 0, len(langs))
	for name := range langs {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if langs[names[i]] != langs[names[j]] {
			return langs[names[i]] > langs[names[j]]
		}
		return names[i] < names[j]
	})
	for _, name := range names {
		t.Add(name, int64(langs[name]))
	}
}

// Total returns the number of bytes across all languages.
func (t *LanguageTally) Total() int64 {
	var total int64
	for _, b := range t.bytes {
		total += b
	}
	return total
}

// Bytes returns the accumulated bytes of a language.
func (t *LanguageTally) Bytes(name string) int64 {
	return t.bytes[name]
}

// Names returns the languages in first-seen order.
func (t *LanguageTally) Names() []string {
	return append([]string(nil), t.order...)
}

// MergeLanguages sums the given per-repository maps into a single tally.
func MergeLanguages(perRepo []map[string]int) *LanguageTally {
	tally := NewLanguageTally()
	for _, langs := range perRepo {
		tally.Merge(langs)
	}
	return tally
}

type rawShare struct {
	name    string
	percent float64
	color   string
}

// NormalizeLanguages converts a tally into rounded shares that sum to exactly 100.
// Languages under OthersThreshold are folded into a single "Others" entry, zero-rounded
// entries are dropped, and the rounding remainder goes to the largest entry (see applyRemainder).
// An empty or zero-byte tally yields an empty slice.
func NormalizeLanguages(tally *LanguageTally) []domain.LanguageShare {
	total := tally.Total()
	if total == 0 {
		return []domain.LanguageShare{}
	}

	all := make([]rawShare, 0, len(tally.order))
	for _, name := range tally.order {
		all = append(all, rawShare{
			name:    name,
			percent: float64(tally.bytes[name]) / float64(total) * 100,
			color:   domain.LanguageColor(name),
		})
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].percent > all[j].percent
	})

	var visible []rawShare
	var otherPercents stats.Float64Data
	for _, s := range all {
		if s.percent >= OthersThreshold {
			visible = append(visible, s)
		} else {
			otherPercents = append(otherPercents, s.percent)
		}
	}
	if len(otherPercents) > 0 {
		sum, _ := stats.Sum(otherPercents)
		visible = append(visible, rawShare{name: domain.OthersLanguage, percent: sum, color: domain.NeutralColor})
	}

	shares := make([]domain.LanguageShare, 0, len(visible))
	current := 0
	for _, s := range visible {
		p := roundPercent(s.percent)
		if p <= 0 {
			continue
		}
		shares = append(shares, domain.LanguageShare{Name: s.name, Percent: p, Color: s.color})
		current += p
	}

	byPercent := func(i, j int) bool { return shares[i].Percent > shares[j].Percent }
	// Others is appended last and may outrank visible entries.
	sort.SliceStable(shares, byPercent)
	if diff := 100 - current; diff != 0 && len(shares) > 0 {
		applyRemainder(shares, diff)
		// Taking points from several entries can break the descending order.
		sort.SliceStable(shares, byPercent)
	}
	return shares
}

// applyRemainder adjusts shares, sorted largest first, by diff points.
// The largest entry takes the whole remainder unless that would leave it below 1;
// then points are taken one at a time from the largest entries down, keeping each at 1 or more.
func applyRemainder(shares []domain.LanguageShare, diff int) {
	if diff > 0 || shares[0].Percent+diff >= 1 {
		shares[0].Percent += diff
		return
	}
	for diff < 0 {
		taken := false
		for i := range shares {
			if diff == 0 {
				break
			}
			if shares[i].Percent > 1 {
				shares[i].Percent--
				diff++
				taken = true
			}
		}
		if !taken {
			return
		}
	}
}

// roundPercent rounds half up. Values that cannot be rounded count as zero.
func roundPercent(p float64) int {
	r, err := stats.Round(p, 0)
	if err != nil {
		return 0
	}
	return int(r)
}
