// Package log configures session logging: colored console output plus a
// per-run log file under ~/logs, and a small in-memory tail the web
// dashboard polls.
package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// tailSize is how many recent entries the dashboard can retrieve.
const tailSize = 50

// Setup initializes logging and returns the session log file path.
func Setup(verbose bool) (string, error) {
	logrus.SetFormatter(&logrus.TextFormatter{
		ForceColors:     true,
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	dir := filepath.Join(home, "logs")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}

	path := filepath.Join(dir, "tomolog_"+time.Now().Format("2006-01-02_15_04_05")+".log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to open log file: %w", err)
	}

	logrus.AddHook(&fileHook{
		file:      f,
		formatter: &logrus.TextFormatter{DisableColors: true, FullTimestamp: true},
	})
	logrus.AddHook(defaultTail)

	return path, nil
}

// fileHook mirrors every entry into the session log file without colors.
type fileHook struct {
	mu        sync.Mutex
	file      *os.File
	formatter logrus.Formatter
}

func (h *fileHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *fileHook) Fire(entry *logrus.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.file.Write(line)
	return err
}

// tailHook keeps the last tailSize formatted entries in memory.
type tailHook struct {
	mu      sync.Mutex
	entries []string
}

var defaultTail = &tailHook{}

func (h *tailHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *tailHook) Fire(entry *logrus.Entry) error {
	line := entry.Time.Format("15:04:05") + " - " + entry.Message
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, line)
	if len(h.entries) > tailSize {
		h.entries = h.entries[len(h.entries)-tailSize:]
	}
	return nil
}

// Tail returns the most recent log lines, newest last.
func Tail() []string {
	defaultTail.mu.Lock()
	defer defaultTail.mu.Unlock()
	out := make([]string, len(defaultTail.entries))
	copy(out, defaultTail.entries)
	return out
}
