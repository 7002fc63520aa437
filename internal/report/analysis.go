package report

import (
	"regexp"
	"sort"
	"strings"
)

// Analysis is the structured view of one video's AI analysis text. Sections
// the summarizer omitted or mangled stay empty; Raw always holds the input
// with code fences and bold markers stripped, for display when nothing
// structured was found.
type Analysis struct {
	Hook              string
	MainMessage       string
	CallToAction      string
	Format            string
	EngagementDrivers string
	ScriptStructure   string
	WhyItWorks        string
	Raw               string
}

// Structured reports whether at least one of the seven sections matched.
func (a *Analysis) Structured() bool {
	return a.Hook != "" || a.MainMessage != "" || a.CallToAction != "" ||
		a.Format != "" || a.EngagementDrivers != "" || a.ScriptStructure != "" ||
		a.WhyItWorks != ""
}

// The summarizer numbers its sections 1-7 in a fixed order. Each heading is
// located by its number and label on one line, tolerating `**`, `#`
// prefixes, and case differences.
var sectionRes = [7]*regexp.Regexp{
	sectionRe(1, `Hook`),
	sectionRe(2, `Main\s+Message`),
	sectionRe(3, `(?:Call[-\s]?to[-\s]?Action|CTA)`),
	sectionRe(4, `Format`),
	sectionRe(5, `Engagement\s+Drivers?`),
	sectionRe(6, `Script\s+Structure`),
	sectionRe(7, `Why\s+It\s+Works`),
}

func sectionRe(number int, label string) *regexp.Regexp {
	return regexp.MustCompile(`(?mi)^\s*(?:#+\s*)?(?:\*\*)?\s*` +
		string(rune('0'+number)) + `[\.\):]\s*(?:\*\*)?\s*` + label + `[^\n]*$`)
}

// ParseAnalysis splits free-form analysis text into its seven sections.
// Never errors: a missing section is simply empty.
func ParseAnalysis(s string) *Analysis {
	a := &Analysis{Raw: stripMarkup(s)}
	if s == "" {
		return a
	}

	type hit struct {
		section    int
		start, end int
	}
	var hits []hit
	for i, re := range sectionRes {
		if loc := re.FindStringIndex(s); loc != nil {
			hits = append(hits, hit{section: i, start: loc[0], end: loc[1]})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].start < hits[j].start })

	sections := [7]string{}
	for i, h := range hits {
		end := len(s)
		if i+1 < len(hits) {
			end = hits[i+1].start
		}
		sections[h.section] = strings.TrimSpace(stripMarkup(s[h.end:end]))
	}

	a.Hook = sections[0]
	a.MainMessage = sections[1]
	a.CallToAction = sections[2]
	a.Format = sections[3]
	a.EngagementDrivers = sections[4]
	a.ScriptStructure = sections[5]
	a.WhyItWorks = sections[6]
	return a
}

// stripMarkup drops code fence lines and bold markers.
func stripMarkup(s string) string {
	if s == "" {
		return ""
	}
	var kept []string
	for _, line := range strings.Split(s, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.ReplaceAll(strings.Join(kept, "\n"), "**", "")
}
