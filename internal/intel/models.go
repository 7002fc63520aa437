package intel

// Status is the lifecycle state of a pipeline run as reported by the service.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Terminal reports whether no further status changes can occur.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Platform identifies where a scraped video came from.
type Platform string

const (
	PlatformYouTube       Platform = "youtube"
	PlatformYouTubeShorts Platform = "youtube_shorts"
	PlatformTikTok        Platform = "tiktok"
	PlatformInstagram     Platform = "instagram"
)

// Run mirrors the JSON payload of the service's status endpoint.
// Result fields (Keywords, Videos, Report, Scripts) are only populated on a
// completed run; ErrorMessage only on a failed one.
type Run struct {
	ID           string        `json:"id"`
	ProductURL   string        `json:"product_url"`
	Status       Status        `json:"status"`
	CurrentStage string        `json:"current_stage,omitempty"`
	Metadata     *RunMetadata  `json:"metadata,omitempty"`
	Keywords     *Keywords     `json:"keywords,omitempty"`
	Stages       []StageRecord `json:"stages,omitempty"`
	Videos       []Video       `json:"videos,omitempty"`
	Report       string        `json:"report,omitempty"`
	Scripts      string        `json:"scripts,omitempty"`
	ErrorMessage string        `json:"error_message,omitempty"`
}

// RunMetadata carries structured progress alongside the status.
type RunMetadata struct {
	CompletedStages []string `json:"completed_stages,omitempty"`
}

// Keywords is the output of the keyword generation stage.
type Keywords struct {
	SearchQueries []string `json:"search_queries"`
	Subreddits    []string `json:"subreddits"`
}

// StageRecord is one entry of the per-stage breakdown in a terminal payload.
type StageRecord struct {
	StageName string         `json:"stage_name"`
	Status    Status         `json:"status,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Video is one scraped video with its AI analysis text.
type Video struct {
	Platform        Platform `json:"platform"`
	SourceURL       string   `json:"source_url"`
	Title           string   `json:"title"`
	Author          string   `json:"author"`
	DurationSeconds int      `json:"duration_seconds"`
	ViewCount       int64    `json:"view_count"`
	LikeCount       int64    `json:"like_count"`
	CommentCount    int64    `json:"comment_count"`
	FileSizeBytes   int64    `json:"file_size_bytes"`
	Transcript      string   `json:"transcript,omitempty"`
	PublishedAt     string   `json:"published_at,omitempty"`
	Analysis        string   `json:"analysis,omitempty"`
}

// StageRecordByName returns the stage record with the given name, or nil.
func (r *Run) StageRecordByName(name string) *StageRecord {
	for i := range r.Stages {
		if r.Stages[i].StageName == name {
			return &r.Stages[i]
		}
	}
	return nil
}
