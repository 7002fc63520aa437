package intel

// TotalPhases is the number of UI phases; each pipeline stage maps to one.
const TotalPhases = 7

// Pipeline stage names as emitted by the service, in execution order.
const (
	StageFetchProduct = "fetch_product"
	StageKeywords     = "keywords"
	StageVideoScrape  = "video_scrape"
	StageDownload     = "download"
	StageAnalysis     = "analysis"
	StageReport       = "report"
	StageScripts      = "scripts"
)

// StageOrder lists the stages in execution order; index = phase index.
var StageOrder = [TotalPhases]string{
	StageFetchProduct,
	StageKeywords,
	StageVideoScrape,
	StageDownload,
	StageAnalysis,
	StageReport,
	StageScripts,
}

var stageToPhase = func() map[string]int {
	m := make(map[string]int, TotalPhases)
	for i, name := range StageOrder {
		m[name] = i
	}
	return m
}()

// PhaseIndex maps a stage name to its 0-indexed phase. Unrecognized names
// return (-1, false); callers leave the current phase unchanged in that case.
func PhaseIndex(stage string) (int, bool) {
	idx, ok := stageToPhase[stage]
	if !ok {
		return -1, false
	}
	return idx, true
}

// Phase is the display-facing counterpart of a stage.
type Phase struct {
	Name        string
	Description string
}

// Phases holds the display metadata for the 7 phases, in order.
var Phases = [TotalPhases]Phase{
	{Name: "Fetch Product", Description: "Validate"},
	{Name: "Keywords", Description: "Generate"},
	{Name: "Video Scrape", Description: "Collect"},
	{Name: "Download", Description: "Capture"},
	{Name: "Analysis", Description: "Extract"},
	{Name: "Report", Description: "Compose"},
	{Name: "Scripts", Description: "Write"},
}

// PhaseName returns the display name for a 0-indexed phase, or "" when out
// of range.
func PhaseName(idx int) string {
	if idx < 0 || idx >= TotalPhases {
		return ""
	}
	return Phases[idx].Name
}
