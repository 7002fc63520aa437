package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/prodscope/prodscope/internal/intel"
)

// ErrNotFound is returned when no run with the requested ID exists.
var ErrNotFound = errors.New("run not found")

// StoredRun is a persisted pipeline run with its results.
type StoredRun struct {
	ID           string
	ProductURL   string
	Status       intel.Status
	ProductTitle string
	Keywords     []string
	Subreddits   []string
	Videos       []intel.Video
	Report       string
	Scripts      string
	ErrorMessage string
	StartedAt    string
	FinishedAt   string
}

// Stats summarizes the run history.
type Stats struct {
	Total       int
	Completed   int
	Failed      int
	WithScripts int
}

// SaveRun inserts or replaces a terminal run. The product title comes from
// the page preview and is passed separately since the service does not
// return it.
func (db *DB) SaveRun(run *intel.Run, productTitle string) error {
	var keywords, subreddits []string
	if run.Keywords != nil {
		keywords = run.Keywords.SearchQueries
		subreddits = run.Keywords.Subreddits
	}
	keywordsJSON, err := encodeJSON(keywords)
	if err != nil {
		return fmt.Errorf("encoding keywords: %w", err)
	}
	subredditsJSON, err := encodeJSON(subreddits)
	if err != nil {
		return fmt.Errorf("encoding subreddits: %w", err)
	}
	videosJSON, err := encodeJSON(run.Videos)
	if err != nil {
		return fmt.Errorf("encoding videos: %w", err)
	}

	_, err = db.conn.Exec(`
		INSERT INTO runs (id, product_url, status, product_title, keywords, subreddits, videos, report, scripts, error_message, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			product_title = excluded.product_title,
			keywords = excluded.keywords,
			subreddits = excluded.subreddits,
			videos = excluded.videos,
			report = excluded.report,
			scripts = excluded.scripts,
			error_message = excluded.error_message,
			finished_at = excluded.finished_at`,
		run.ID, run.ProductURL, string(run.Status), productTitle,
		keywordsJSON, subredditsJSON, videosJSON,
		run.Report, run.Scripts, run.ErrorMessage)
	if err != nil {
		return fmt.Errorf("saving run %s: %w", run.ID, err)
	}
	return nil
}

// GetRun loads a single run by ID.
func (db *DB) GetRun(id string) (*StoredRun, error) {
	row := db.conn.QueryRow(`
		SELECT id, product_url, status, product_title, keywords, subreddits, videos,
		       report, scripts, error_message, started_at, COALESCE(finished_at, '')
		FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading run %s: %w", id, err)
	}
	return run, nil
}

// ListRuns returns runs newest first, up to limit. A limit of 0 means all.
func (db *DB) ListRuns(limit int) ([]*StoredRun, error) {
	query := `
		SELECT id, product_url, status, product_title, keywords, subreddits, videos,
		       report, scripts, error_message, started_at, COALESCE(finished_at, '')
		FROM runs ORDER BY started_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []*StoredRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetStats returns aggregate counts over the run history.
func (db *DB) GetStats() (*Stats, error) {
	s := &Stats{}

	queries := []struct {
		sql  string
		dest *int
	}{
		{"SELECT COUNT(*) FROM runs", &s.Total},
		{"SELECT COUNT(*) FROM runs WHERE status = 'completed'", &s.Completed},
		{"SELECT COUNT(*) FROM runs WHERE status = 'failed'", &s.Failed},
		{"SELECT COUNT(*) FROM runs WHERE scripts != ''", &s.WithScripts},
	}
	for _, q := range queries {
		if err := db.conn.QueryRow(q.sql).Scan(q.dest); err != nil {
			return nil, fmt.Errorf("reading stats: %w", err)
		}
	}
	return s, nil
}

// DeleteRun removes a run from the history.
func (db *DB) DeleteRun(id string) error {
	res, err := db.conn.Exec("DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting run %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting run %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*StoredRun, error) {
	run := &StoredRun{}
	var keywordsJSON, subredditsJSON, videosJSON string
	err := row.Scan(&run.ID, &run.ProductURL, &run.Status, &run.ProductTitle,
		&keywordsJSON, &subredditsJSON, &videosJSON,
		&run.Report, &run.Scripts, &run.ErrorMessage,
		&run.StartedAt, &run.FinishedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(keywordsJSON), &run.Keywords); err != nil {
		return nil, fmt.Errorf("decoding keywords: %w", err)
	}
	if err := json.Unmarshal([]byte(subredditsJSON), &run.Subreddits); err != nil {
		return nil, fmt.Errorf("decoding subreddits: %w", err)
	}
	if err := json.Unmarshal([]byte(videosJSON), &run.Videos); err != nil {
		return nil, fmt.Errorf("decoding videos: %w", err)
	}
	return run, nil
}

func encodeJSON(v any) (string, error) {
	if v == nil {
		return "[]", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
