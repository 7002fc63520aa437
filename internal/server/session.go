package server

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/prodscope/prodscope/internal/intel"
	"github.com/prodscope/prodscope/internal/poller"
)

const previewTimeout = 15 * time.Second

// activeRun is the single in-flight polling session the dashboard tracks.
// Starting a new run cancels the previous one.
type activeRun struct {
	id         string
	productURL string
	session    *poller.Session
	done       chan struct{}

	mu     sync.Mutex
	title  string
	result *intel.Run
	err    error
}

func (a *activeRun) finished() bool {
	select {
	case <-a.done:
		return true
	default:
		return false
	}
}

func (a *activeRun) snapshot() (title string, result *intel.Run, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.title, a.result, a.err
}

// begin replaces the active session with one for the given run and starts
// polling in the background.
func (s *Server) begin(runID, productURL string) *activeRun {
	a := &activeRun{
		id:         runID,
		productURL: productURL,
		session:    poller.New(runID, s.api.RunStatus, s.pollOpts...),
		done:       make(chan struct{}),
	}

	s.mu.Lock()
	prev := s.active
	s.active = a
	s.mu.Unlock()

	if prev != nil {
		prev.session.Cancel()
	}

	go s.watch(a)
	return a
}

func (s *Server) activeFor(runID string) *activeRun {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != nil && s.active.id == runID {
		return s.active
	}
	return nil
}

// watch drives one session to its end and persists the outcome.
func (s *Server) watch(a *activeRun) {
	defer close(a.done)

	if s.previews != nil {
		ctx, cancel := context.WithTimeout(context.Background(), previewTimeout)
		if p, err := s.previews.Fetch(ctx, a.productURL); err == nil {
			a.mu.Lock()
			a.title = p.Title
			a.mu.Unlock()
		}
		cancel()
	}

	run, err := a.session.Run(context.Background())

	a.mu.Lock()
	a.result, a.err = run, err
	title := a.title
	a.mu.Unlock()

	switch {
	case run != nil:
		if dbErr := s.db.SaveRun(run, title); dbErr != nil {
			log.Printf("Saving run %s: %v", a.id, dbErr)
		}
	case err != nil && !errors.Is(err, context.Canceled):
		failed := &intel.Run{
			ID:           a.id,
			ProductURL:   a.productURL,
			Status:       intel.StatusFailed,
			ErrorMessage: err.Error(),
		}
		var pf *poller.PipelineFailedError
		if errors.As(err, &pf) {
			failed.ErrorMessage = pf.Message
		}
		if dbErr := s.db.SaveRun(failed, title); dbErr != nil {
			log.Printf("Saving failed run %s: %v", a.id, dbErr)
		}
	}
}
