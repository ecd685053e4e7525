package domain

// OthersLanguage is the name of the bucket holding every language below the visibility threshold.
const OthersLanguage = "Others"

// NeutralColor is used for "Others" and for any language without a known color.
const NeutralColor = "#8b949e"

var languageColors = map[string]string{
	"JavaScript": "#f1e05a",
	"TypeScript": "#3178c6",
	"HTML":       "#e34c26",
	"CSS":        "#563d7c",
	"Python":     "#3572A5",
	"Go":         "#00ADD8",
	"Rust":       "#dea584",
	"Java":       "#b07219",
}

// LanguageColor returns the display color of a language.
func LanguageColor(name string) string {
	if c, ok := languageColors[name]; ok {
		return c
	}
	return NeutralColor
}
