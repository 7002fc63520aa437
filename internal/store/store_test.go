package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/prodscope/prodscope/internal/intel"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func completedRun(id string) *intel.Run {
	return &intel.Run{
		ID:         id,
		ProductURL: "https://example.com/widget",
		Status:     intel.StatusCompleted,
		Keywords: &intel.Keywords{
			SearchQueries: []string{"widget review", "best widget"},
			Subreddits:    []string{"r/widgets"},
		},
		Videos: []intel.Video{
			{Platform: intel.PlatformYouTube, SourceURL: "https://youtu.be/abc", Title: "Widget review", ViewCount: 1200},
		},
		Report:  "# Report\n\nFindings.",
		Scripts: "**Platform:** TikTok",
	}
}

func TestSaveAndGetRun(t *testing.T) {
	db := testDB(t)

	if err := db.SaveRun(completedRun("run-1"), "Widget 3000"); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	got, err := db.GetRun("run-1")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got.Status != intel.StatusCompleted {
		t.Errorf("status = %q, want completed", got.Status)
	}
	if got.ProductTitle != "Widget 3000" {
		t.Errorf("product title = %q, want Widget 3000", got.ProductTitle)
	}
	if len(got.Keywords) != 2 || got.Keywords[0] != "widget review" {
		t.Errorf("keywords = %v", got.Keywords)
	}
	if len(got.Videos) != 1 || got.Videos[0].ViewCount != 1200 {
		t.Errorf("videos = %+v", got.Videos)
	}
	if got.StartedAt == "" || got.FinishedAt == "" {
		t.Errorf("timestamps not set: started=%q finished=%q", got.StartedAt, got.FinishedAt)
	}
}

func TestGetRunNotFound(t *testing.T) {
	db := testDB(t)

	_, err := db.GetRun("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetRun error = %v, want ErrNotFound", err)
	}
}

func TestSaveRunUpsert(t *testing.T) {
	db := testDB(t)

	run := completedRun("run-1")
	run.Status = intel.StatusFailed
	run.ErrorMessage = "stage crashed"
	if err := db.SaveRun(run, ""); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	run.Status = intel.StatusCompleted
	run.ErrorMessage = ""
	if err := db.SaveRun(run, "Widget 3000"); err != nil {
		t.Fatalf("second SaveRun failed: %v", err)
	}

	got, err := db.GetRun("run-1")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got.Status != intel.StatusCompleted || got.ErrorMessage != "" {
		t.Errorf("upsert did not replace: status=%q error=%q", got.Status, got.ErrorMessage)
	}

	runs, err := db.ListRuns(0)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("got %d runs after upsert, want 1", len(runs))
	}
}

func TestListRunsLimit(t *testing.T) {
	db := testDB(t)

	for _, id := range []string{"run-1", "run-2", "run-3"} {
		if err := db.SaveRun(completedRun(id), ""); err != nil {
			t.Fatalf("SaveRun %s failed: %v", id, err)
		}
	}

	runs, err := db.ListRuns(2)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	// Same second-resolution timestamp, so the ID tiebreaker orders them.
	if runs[0].ID != "run-3" {
		t.Errorf("first run = %s, want run-3", runs[0].ID)
	}
}

func TestGetStats(t *testing.T) {
	db := testDB(t)

	ok := completedRun("run-1")
	if err := db.SaveRun(ok, ""); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}
	failed := completedRun("run-2")
	failed.Status = intel.StatusFailed
	failed.Scripts = ""
	failed.ErrorMessage = "download stage failed"
	if err := db.SaveRun(failed, ""); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	stats, err := db.GetStats()
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.Total != 2 || stats.Completed != 1 || stats.Failed != 1 || stats.WithScripts != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestDeleteRun(t *testing.T) {
	db := testDB(t)

	if err := db.SaveRun(completedRun("run-1"), ""); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}
	if err := db.DeleteRun("run-1"); err != nil {
		t.Fatalf("DeleteRun failed: %v", err)
	}
	if err := db.DeleteRun("run-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteRun error = %v, want ErrNotFound", err)
	}
	if _, err := db.GetRun("run-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetRun after delete error = %v, want ErrNotFound", err)
	}
}

func TestOpenCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "test.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()
	if db.Path() != path {
		t.Errorf("Path() = %q, want %q", db.Path(), path)
	}
}
