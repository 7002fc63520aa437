// Package report extracts structured entities out of the free-form markdown
// the pipeline service returns. Everything here is best-effort pattern
// matching over strings: a miss is an empty result, never an error.
package report

import (
	"regexp"
	"strings"
)

const (
	maxHashtags    = 25
	maxCompetitors = 8
	maxConcepts    = 10
	maxAvatars     = 10
)

// ThemeNames are the comment theme subsections a report may contain, in
// display order.
var ThemeNames = []string{"Desire", "Objection", "Question", "Comparison", "Surprise"}

var (
	hashtagRe    = regexp.MustCompile(`#[A-Za-z][A-Za-z0-9]*`)
	competitorRe = regexp.MustCompile(`(?m)^\s*\d+\.\s+\*\*([^*"\n]+?)\*\*\s*$`)
	conceptRe    = regexp.MustCompile(`(?m)^\s*\d+\.\s+\*\*"([^"\n]+)"\*\*`)
	avatarRe     = regexp.MustCompile(`(?m)^\s*\d+\.\s+\*\*Name:\*\*\s*(.+?)\s*\n\s*-\s+\*\*Demographics:\*\*\s*(.+?)\s*$`)
	commentRe    = regexp.MustCompile(`(?m)^\s*-\s+"([^"\n]+)"`)
	headingRe    = regexp.MustCompile(`(?m)^#{1,6}\s`)

	themeHeadingRes = func() map[string]*regexp.Regexp {
		m := make(map[string]*regexp.Regexp, len(ThemeNames))
		for _, theme := range ThemeNames {
			m[theme] = regexp.MustCompile(`(?m)^####[^\n]*\b` + theme + `\b[^\n]*$`)
		}
		return m
	}()
)

// Avatar is one customer avatar entry from a report.
type Avatar struct {
	Name         string
	Demographics string
}

// Hashtags returns the first 25 distinct hashtag tokens in document order.
// A token is '#' followed by a letter and alphanumerics; distinctness is by
// exact string, so #DealAlert and #dealalert are separate tokens.
func Hashtags(s string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, m := range hashtagRe.FindAllString(s, -1) {
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
		if len(out) == maxHashtags {
			break
		}
	}
	return out
}

// Competitors returns the first 8 names from numbered list items whose
// entire item is bolded, e.g. `1. **Acme Corp**`.
func Competitors(s string) []string {
	return captureAll(competitorRe, s, maxCompetitors)
}

// Concepts returns the first 10 quoted phrases from numbered list items of
// the form `1. **"Phrase"**`.
func Concepts(s string) []string {
	return captureAll(conceptRe, s, maxConcepts)
}

// CommentThemes maps each matched theme name to its quoted comment lines.
// A theme section starts at a `#### <Theme>` heading and runs until the
// next heading or end of text. Themes without comments are omitted.
func CommentThemes(s string) map[string][]string {
	out := make(map[string][]string)
	for _, theme := range ThemeNames {
		loc := themeHeadingRes[theme].FindStringIndex(s)
		if loc == nil {
			continue
		}
		section := s[loc[1]:]
		if next := headingRe.FindStringIndex(section); next != nil {
			section = section[:next[0]]
		}
		comments := captureAll(commentRe, section, -1)
		if len(comments) > 0 {
			out[theme] = comments
		}
	}
	return out
}

// Avatars returns up to 10 customer avatars, matched as a numbered
// `**Name:**` line followed by a `- **Demographics:**` line.
func Avatars(s string) []Avatar {
	var out []Avatar
	for _, m := range avatarRe.FindAllStringSubmatch(s, maxAvatars) {
		out = append(out, Avatar{
			Name:         strings.TrimSpace(m[1]),
			Demographics: strings.TrimSpace(m[2]),
		})
	}
	return out
}

func captureAll(re *regexp.Regexp, s string, limit int) []string {
	var out []string
	for _, m := range re.FindAllStringSubmatch(s, limit) {
		out = append(out, strings.TrimSpace(m[1]))
	}
	return out
}
