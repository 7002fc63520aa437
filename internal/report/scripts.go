package report

import (
	"regexp"
	"strings"
)

// Script is one generated video script block from the scripts document.
type Script struct {
	Platform string
	Format   string
	Hook     string
	CTA      string
	Why      string
	Raw      string
}

var (
	hrRe             = regexp.MustCompile(`(?m)^\s*-{3,}\s*$`)
	platformMarkerRe = regexp.MustCompile(`\*\*Platform:\*\*`)

	platformFieldRe = scriptFieldRe(`Platform`)
	formatFieldRe   = scriptFieldRe(`Format`)
	hookFieldRe     = scriptFieldRe(`Hook`)
	ctaFieldRe      = scriptFieldRe(`CTA`)
	whyFieldRe      = scriptFieldRe(`Why\s+It\s+Will\s+Work`)
)

func scriptFieldRe(label string) *regexp.Regexp {
	return regexp.MustCompile(`(?mi)\*\*` + label + `:\*\*\s*([^\n]*)`)
}

// ParseScripts splits a scripts document on horizontal-rule lines and keeps
// the blocks that carry a `**Platform:**` marker. Labelled sub-fields
// default to empty when absent. Never errors.
func ParseScripts(s string) []Script {
	var out []Script
	for _, block := range hrRe.Split(s, -1) {
		if !platformMarkerRe.MatchString(block) {
			continue
		}
		out = append(out, Script{
			Platform: field(platformFieldRe, block),
			Format:   field(formatFieldRe, block),
			Hook:     field(hookFieldRe, block),
			CTA:      field(ctaFieldRe, block),
			Why:      field(whyFieldRe, block),
			Raw:      strings.TrimSpace(block),
		})
	}
	return out
}

func field(re *regexp.Regexp, block string) string {
	m := re.FindStringSubmatch(block)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
