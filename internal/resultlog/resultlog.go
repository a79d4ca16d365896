// Package resultlog writes the per-run duplicate report.
//
// The file is recreated at the start of each matching phase with a short
// header, then one block is appended and synced per match so a scan that
// dies midway leaves every match found so far on disk:
//
//	# Audio Duplicate Scan - 2026-10-19 21:04:11
//	# Folder: /music
//	# Run: 5b0c...
//
//	[MATCH 95.5%]
//	  ├── /music/a.mp3
//	  └── /music/b.mp3
package resultlog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"dupefinder/internal/matcher"
)

// TimeLayout formats the header timestamp.
const TimeLayout = "2006-01-02 15:04:05"

// Header describes the run a log belongs to.
type Header struct {
	Time   time.Time
	Folder string
	RunID  string
}

// Writer appends match blocks to a result log.
type Writer struct {
	path string

	mu      sync.Mutex
	file    *os.File
	matches int
}

// Create truncates or creates the log at path and writes header.
func Create(path string, header Header) (*Writer, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create result log directory: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open result log: %w", err)
	}
	w := &Writer{path: path, file: file}
	if err := w.write(FormatHeader(header)); err != nil {
		_ = file.Close()
		return nil, err
	}
	return w, nil
}

// Path returns the log location.
func (w *Writer) Path() string { return w.path }

// Matches returns the number of blocks written.
func (w *Writer) Matches() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.matches
}

// Append writes one match block and flushes it to disk.
func (w *Writer) Append(m matcher.Match) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.write(FormatMatch(m)); err != nil {
		return err
	}
	w.matches++
	return nil
}

// Close closes the log file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

func (w *Writer) write(s string) error {
	if w.file == nil {
		return fmt.Errorf("result log %s is closed", w.path)
	}
	if _, err := w.file.WriteString(s); err != nil {
		return fmt.Errorf("write result log: %w", err)
	}
	if err := w.file.Sync(); err != nil {
		return fmt.Errorf("sync result log: %w", err)
	}
	return nil
}

// FormatHeader renders the header block, ending with a blank line.
func FormatHeader(h Header) string {
	ts := h.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# Audio Duplicate Scan - %s\n", ts.Format(TimeLayout))
	fmt.Fprintf(&b, "# Folder: %s\n", h.Folder)
	if h.RunID != "" {
		fmt.Fprintf(&b, "# Run: %s\n", h.RunID)
	}
	b.WriteString("\n")
	return b.String()
}

// FormatMatch renders one match block.
func FormatMatch(m matcher.Match) string {
	return fmt.Sprintf("[MATCH %s%%]\n  ├── %s\n  └── %s\n", matcher.FormatPercent(m.Score), m.A, m.B)
}
