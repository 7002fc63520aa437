package intel

import (
	"fmt"
	"strings"
)

// PhaseSummary is display data for one completed phase of a terminal run.
type PhaseSummary struct {
	Title      string
	Lines      []string
	Keywords   []string
	Subreddits []string
	Sources    []SourceCount
	HasReport  bool
	HasScripts bool
}

// SourceCount is a per-platform tally of scraped videos.
type SourceCount struct {
	Platform Platform
	Name     string
	Count    int
}

var platformDisplay = map[Platform]string{
	PlatformYouTube:       "YouTube",
	PlatformYouTubeShorts: "YouTube Shorts",
	PlatformTikTok:        "TikTok",
	PlatformInstagram:     "Instagram",
}

const (
	maxSummaryKeywords   = 6
	maxSummarySubreddits = 5
)

// Summarize builds the display summary for a 0-indexed phase of a run.
// Returns nil for out-of-range phases. Missing payload fields degrade to
// "N/A" lines, never errors.
func Summarize(run *Run, phase int) *PhaseSummary {
	if run == nil || phase < 0 || phase >= TotalPhases {
		return nil
	}

	stage := run.StageRecordByName(StageOrder[phase])

	switch phase {
	case 0:
		return &PhaseSummary{
			Title: "Product Fetched",
			Lines: []string{
				"Product URL: " + run.ProductURL,
				"Product Name: " + stageMeta(stage, "product_name"),
				"Category: " + stageMeta(stage, "category"),
				"Status: " + string(run.Status),
			},
		}
	case 1:
		s := &PhaseSummary{Title: "Keywords Generated"}
		if run.Keywords != nil {
			s.Keywords = headOf(run.Keywords.SearchQueries, maxSummaryKeywords)
			s.Subreddits = headOf(run.Keywords.Subreddits, maxSummarySubreddits)
		}
		return s
	case 2:
		return &PhaseSummary{
			Title:   "Videos Scraped",
			Sources: countByPlatform(run.Videos),
		}
	case 3:
		transcribed := 0
		for _, v := range run.Videos {
			if strings.TrimSpace(v.Transcript) != "" {
				transcribed++
			}
		}
		return &PhaseSummary{
			Title: "Downloads Completed",
			Lines: []string{
				fmt.Sprintf("Total Videos Downloaded: %d", len(run.Videos)),
				fmt.Sprintf("Transcripts Extracted: %d", transcribed),
				"Analysis Ready",
			},
		}
	case 4:
		analyzed := 0
		for _, v := range run.Videos {
			if strings.TrimSpace(v.Analysis) != "" {
				analyzed++
			}
		}
		return &PhaseSummary{
			Title: "Analysis Complete",
			Lines: []string{
				fmt.Sprintf("Videos Analyzed: %d/%d", analyzed, len(run.Videos)),
			},
		}
	case 5:
		return &PhaseSummary{
			Title: "Report Generated",
			Lines: []string{
				"Report Pages: " + stageMeta(stage, "report_pages"),
				"Sections: " + stageMeta(stage, "sections"),
				"Ready for download",
			},
			HasReport: run.Report != "",
		}
	default: // phase 6
		return &PhaseSummary{
			Title: "Scripts Created",
			Lines: []string{
				"Scripts Generated: " + stageMeta(stage, "scripts_generated"),
				"Platforms: " + stageMetaList(stage, "platforms"),
				"All scripts ready for deployment",
			},
			HasScripts: run.Scripts != "",
		}
	}
}

func headOf(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}

func countByPlatform(videos []Video) []SourceCount {
	order := []Platform{PlatformYouTube, PlatformYouTubeShorts, PlatformTikTok, PlatformInstagram}
	counts := make(map[Platform]int)
	for _, v := range videos {
		counts[v.Platform]++
	}

	var out []SourceCount
	for _, p := range order {
		if counts[p] > 0 {
			out = append(out, SourceCount{Platform: p, Name: platformDisplay[p], Count: counts[p]})
		}
	}
	return out
}

// stageMeta reads a metadata value as display text, "N/A" when absent.
func stageMeta(stage *StageRecord, key string) string {
	if stage == nil || stage.Metadata == nil {
		return "N/A"
	}
	v, ok := stage.Metadata[key]
	if !ok || v == nil {
		return "N/A"
	}
	switch t := v.(type) {
	case string:
		if t == "" {
			return "N/A"
		}
		return t
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%v", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// stageMetaList joins a metadata string array, "N/A" when absent.
func stageMetaList(stage *StageRecord, key string) string {
	if stage == nil || stage.Metadata == nil {
		return "N/A"
	}
	arr, ok := stage.Metadata[key].([]any)
	if !ok || len(arr) == 0 {
		return "N/A"
	}
	parts := make([]string, 0, len(arr))
	for _, v := range arr {
		if s, ok := v.(string); ok {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return "N/A"
	}
	return strings.Join(parts, ", ")
}
