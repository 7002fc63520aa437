package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/prodscope/prodscope/internal/client"
	"github.com/prodscope/prodscope/internal/export"
	"github.com/prodscope/prodscope/internal/intel"
	"github.com/prodscope/prodscope/internal/report"
	"github.com/prodscope/prodscope/internal/store"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s.renderIndex(w, http.StatusOK, "")
}

func (s *Server) renderIndex(w http.ResponseWriter, code int, errMsg string) {
	runs, err := s.db.ListRuns(0)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	stats, err := s.db.GetStats()
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	var activeID string
	s.mu.Lock()
	if s.active != nil && !s.active.finished() {
		activeID = s.active.id
	}
	s.mu.Unlock()

	s.renderStatus(w, code, "index.html", map[string]any{
		"Runs":     runs,
		"Stats":    stats,
		"ActiveID": activeID,
		"Error":    errMsg,
	})
}

func (s *Server) handleStartRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	productURL := strings.TrimSpace(r.FormValue("product_url"))
	if err := client.ValidateURL(productURL); err != nil {
		s.renderIndex(w, http.StatusBadRequest, "Enter a full product URL, including http:// or https://.")
		return
	}

	runID, err := s.api.StartRun(r.Context(), productURL)
	if err != nil {
		log.Printf("Starting run for %s: %v", productURL, err)
		s.renderIndex(w, http.StatusBadGateway, "The pipeline service did not accept the run: "+err.Error())
		return
	}

	s.begin(runID, productURL)
	http.Redirect(w, r, "/runs/"+runID, http.StatusFound)
}

// handleRunPath dispatches /runs/{id} and its sub-pages.
func (s *Server) handleRunPath(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/runs/")
	parts := strings.SplitN(path, "/", 3)
	if parts[0] == "" {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	runID := parts[0]

	if len(parts) == 1 {
		s.handleRun(w, r, runID)
		return
	}

	switch parts[1] {
	case "status":
		s.handleRunStatus(w, r, runID)
	case "report":
		s.handleReport(w, r, runID)
	case "scripts":
		s.handleScripts(w, r, runID)
	case "videos":
		s.handleVideos(w, r, runID)
	case "cancel":
		s.handleCancel(w, r, runID)
	case "delete":
		s.handleDelete(w, r, runID)
	case "export":
		if len(parts) == 3 {
			s.handleExport(w, r, runID, parts[2])
			return
		}
		http.NotFound(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request, runID string) {
	if a := s.activeFor(runID); a != nil && !a.finished() {
		title, _, _ := a.snapshot()
		s.render(w, "run.html", map[string]any{
			"Live":       true,
			"RunID":      runID,
			"ProductURL": a.productURL,
			"Title":      title,
			"Phases":     intel.Phases,
		})
		return
	}

	run, err := s.db.GetRun(runID)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	s.render(w, "run.html", map[string]any{
		"Live": false,
		"Run":  run,
	})
}

type runStatusResponse struct {
	ID             string `json:"id"`
	Done           bool   `json:"done"`
	Status         string `json:"status"`
	Phase          int    `json:"phase"`
	PhaseName      string `json:"phase_name"`
	TotalPhases    int    `json:"total_phases"`
	ElapsedSeconds int    `json:"elapsed_seconds"`
	Error          string `json:"error,omitempty"`
}

func (s *Server) handleRunStatus(w http.ResponseWriter, r *http.Request, runID string) {
	resp := runStatusResponse{ID: runID, TotalPhases: intel.TotalPhases}

	if a := s.activeFor(runID); a != nil {
		phase := a.session.Phase()
		resp.Phase = phase
		resp.PhaseName = intel.PhaseName(phase)
		resp.ElapsedSeconds = int(a.session.Elapsed() / time.Second)
		if a.finished() {
			_, result, err := a.snapshot()
			resp.Done = true
			switch {
			case result != nil:
				resp.Status = string(result.Status)
			case err != nil:
				resp.Status = string(intel.StatusFailed)
				resp.Error = err.Error()
			}
		} else {
			resp.Status = string(intel.StatusRunning)
		}
		writeJSON(w, resp)
		return
	}

	run, err := s.db.GetRun(runID)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	resp.Done = true
	resp.Status = string(run.Status)
	resp.Phase = intel.TotalPhases - 1
	resp.PhaseName = intel.PhaseName(resp.Phase)
	resp.Error = run.ErrorMessage
	writeJSON(w, resp)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request, runID string) {
	run, ok := s.storedRun(w, r, runID)
	if !ok {
		return
	}
	if run.Report == "" {
		http.Redirect(w, r, "/runs/"+runID, http.StatusFound)
		return
	}

	type themeView struct {
		Name     string
		Comments []string
	}
	themes := report.CommentThemes(run.Report)
	var themeViews []themeView
	for _, name := range report.ThemeNames {
		if comments := themes[name]; len(comments) > 0 {
			themeViews = append(themeViews, themeView{Name: name, Comments: comments})
		}
	}

	s.render(w, "report.html", map[string]any{
		"Run":         run,
		"Hashtags":    report.Hashtags(run.Report),
		"Competitors": report.Competitors(run.Report),
		"Concepts":    report.Concepts(run.Report),
		"Themes":      themeViews,
		"Avatars":     report.Avatars(run.Report),
	})
}

func (s *Server) handleScripts(w http.ResponseWriter, r *http.Request, runID string) {
	run, ok := s.storedRun(w, r, runID)
	if !ok {
		return
	}
	if run.Scripts == "" {
		http.Redirect(w, r, "/runs/"+runID, http.StatusFound)
		return
	}

	s.render(w, "scripts.html", map[string]any{
		"Run":     run,
		"Scripts": report.ParseScripts(run.Scripts),
	})
}

func (s *Server) handleVideos(w http.ResponseWriter, r *http.Request, runID string) {
	run, ok := s.storedRun(w, r, runID)
	if !ok {
		return
	}

	type videoView struct {
		intel.Video
		Analysis *report.Analysis
	}
	views := make([]videoView, 0, len(run.Videos))
	for _, v := range run.Videos {
		views = append(views, videoView{Video: v, Analysis: report.ParseAnalysis(v.Analysis)})
	}

	s.render(w, "videos.html", map[string]any{
		"Run":    run,
		"Videos": views,
	})
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request, runID string) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/runs/"+runID, http.StatusFound)
		return
	}
	if a := s.activeFor(runID); a != nil {
		a.session.Cancel()
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// handleReset abandons the tracked session so the dashboard returns to a
// clean start state. The poll loop stops; nothing stored is touched.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	s.mu.Lock()
	a := s.active
	s.active = nil
	s.mu.Unlock()

	if a != nil {
		a.session.Cancel()
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request, runID string) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/runs/"+runID, http.StatusFound)
		return
	}
	if err := s.db.DeleteRun(runID); err != nil && !errors.Is(err, store.ErrNotFound) {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// handleExport serves report.md, report.html, scripts.md and scripts.html
// as downloads. Markdown is served byte for byte as the service produced it.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request, runID, name string) {
	run, ok := s.storedRun(w, r, runID)
	if !ok {
		return
	}

	var content, prefix, docTitle string
	switch name {
	case "report.md", "report.html":
		content, prefix, docTitle = run.Report, "report", "Product Intelligence Report"
	case "scripts.md", "scripts.html":
		content, prefix, docTitle = run.Scripts, "scripts", "Video Scripts"
	default:
		http.NotFound(w, r)
		return
	}
	if content == "" {
		http.NotFound(w, r)
		return
	}

	if strings.HasSuffix(name, ".html") {
		filename := export.Filename(prefix, "html", time.Now())
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
		w.Write([]byte(export.HTMLDocument(content, docTitle)))
		return
	}

	filename := export.Filename(prefix, "md", time.Now())
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Write([]byte(content))
}

func (s *Server) storedRun(w http.ResponseWriter, r *http.Request, runID string) (*store.StoredRun, bool) {
	run, err := s.db.GetRun(runID)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return nil, false
	}
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return nil, false
	}
	return run, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Encoding JSON response: %v", err)
	}
}
