package gui

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mittoalb/tomolog-cli/internal/config"
)

// RunFunc publishes one scan file or directory. It receives a private
// config snapshot so a running job never races with dashboard edits.
type RunFunc func(ctx context.Context, cfg *config.Config, fileName string) error

// JobManager tracks the running publish job. Publishing is paced by the
// Google API quota, so only one job runs at a time.
type JobManager struct {
	mu        sync.Mutex
	id        string
	cancel    context.CancelFunc
	startTime time.Time
}

// NewJobManager creates a job manager.
func NewJobManager() *JobManager {
	return &JobManager{startTime: time.Now()}
}

// Uptime is how long the dashboard has been up.
func (m *JobManager) Uptime() time.Duration {
	return time.Since(m.startTime)
}

// Running reports whether a publish job is active, and its id.
func (m *JobManager) Running() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.id, m.cancel != nil
}

// Start registers a new job; it fails while another one is running.
func (m *JobManager) Start(cancel context.CancelFunc) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		return "", fmt.Errorf("a publish job is already running")
	}
	m.id = fmt.Sprintf("run-%d", time.Now().UnixNano())
	m.cancel = cancel
	return m.id, nil
}

// Finish clears the job if it is still the current one.
func (m *JobManager) Finish(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.id == id {
		m.cancel = nil
		m.id = ""
	}
}

// Stop cancels the running job.
func (m *JobManager) Stop() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel == nil {
		return false
	}
	m.cancel()
	m.cancel = nil
	m.id = ""
	return true
}
