// Package gui provides the web dashboard for tomolog: start and stop
// publish runs, follow the log and preview reconstruction slices.
package gui

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mittoalb/tomolog-cli/internal/config"
	"github.com/mittoalb/tomolog-cli/internal/log"
)

//go:embed static/*
var staticFS embed.FS

// Server is the dashboard web server.
type Server struct {
	port    int
	version string
	run     RunFunc
	jobs    *JobManager

	// mu guards cfg; handlers mutate it while others read it
	mu  sync.Mutex
	cfg *config.Config

	httpServer *http.Server
}

// NewServer creates a dashboard server. run is invoked for every
// requested publish job.
func NewServer(port int, version string, cfg *config.Config, run RunFunc) *Server {
	return &Server{
		port:    port,
		version: version,
		cfg:     cfg,
		run:     run,
		jobs:    NewJobManager(),
	}
}

// Start starts the dashboard server.
func (s *Server) Start() error {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/config", s.handleConfig)
	mux.HandleFunc("/api/run", s.handleRun)
	mux.HandleFunc("/api/stop", s.handleStop)
	mux.HandleFunc("/api/logs", s.handleLogs)
	mux.HandleFunc("/api/preview", s.handlePreview)

	staticContent, err := fs.Sub(staticFS, "static")
	if err != nil {
		return fmt.Errorf("failed to get static files: %w", err)
	}
	mux.Handle("/", http.FileServer(http.FS(staticContent)))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logrus.Infof("tomolog dashboard on http://localhost:%d", s.port)
	return s.httpServer.ListenAndServe()
}

// Stop gracefully stops the server and the running job.
func (s *Server) Stop(ctx context.Context) error {
	s.jobs.Stop()
	return s.httpServer.Shutdown(ctx)
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id, running := s.jobs.Running()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"version": s.version,
		"running": running,
		"jobId":   id,
		"uptime":  s.jobs.Uptime().Round(time.Second).String(),
	})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	s.mu.Lock()
	body := map[string]interface{}{
		"fileName":        s.cfg.Scan.FileName,
		"beamline":        s.cfg.Scan.Beamline,
		"recType":         s.cfg.Scan.RecType,
		"presentationUrl": s.cfg.Slides.PresentationURL,
		"cloudHost":       s.cfg.Cloud.Host,
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, body)
}

// runRequest is an incoming publish request.
type runRequest struct {
	FileName        string `json:"fileName"`
	Beamline        string `json:"beamline"`
	PresentationURL string `json:"presentationUrl"`
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.FileName == "" {
		s.mu.Lock()
		req.FileName = s.cfg.Scan.FileName
		s.mu.Unlock()
	}
	if req.FileName == "" {
		writeError(w, http.StatusBadRequest, "fileName is required")
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	id, err := s.jobs.Start(cancel)
	if err != nil {
		cancel()
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	// only the job holder may edit the shared config; a rejected
	// request must not mutate it under a running publish. The job
	// gets a snapshot so later edits cannot race with it.
	s.mu.Lock()
	if req.Beamline != "" {
		s.cfg.Scan.Beamline = req.Beamline
	}
	if req.PresentationURL != "" {
		s.cfg.Slides.PresentationURL = req.PresentationURL
	}
	jobCfg := *s.cfg
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "started",
		"jobId":  id,
		"file":   req.FileName,
	})

	go func() {
		defer s.jobs.Finish(id)
		logrus.Infof("Dashboard publish started: %s", req.FileName)
		if err := s.run(ctx, &jobCfg, req.FileName); err != nil {
			logrus.WithError(err).Error("Dashboard publish failed")
			return
		}
		logrus.Info("Dashboard publish finished")
	}()
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !s.jobs.Stop() {
		writeError(w, http.StatusConflict, "no publish job is running")
		return
	}
	logrus.Warning("Dashboard publish stopped")
	writeJSON(w, http.StatusOK, map[string]string{"status": "stopped"})
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"logs": log.Tail()})
}

// parseFloatDefault parses a query parameter, keeping def on absence or
// garbage.
func parseFloatDefault(q string, def float64) float64 {
	if q == "" {
		return def
	}
	v, err := strconv.ParseFloat(q, 64)
	if err != nil {
		return def
	}
	return v
}
