// Package sink writes and reads activity summary artifacts.
package sink

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/naka-gawa/github-trajectory/internal/domain"
)

// StdoutPath selects the writer sink instead of a file.
const StdoutPath = "-"

// Sink receives the finished summary of a run.
type Sink interface {
	Write(summary *domain.ActivitySummary) error
}

// New returns a FileSink for path, or a WriterSink on out when path is StdoutPath.
func New(path string, out io.Writer) Sink {
	if path == StdoutPath {
		return NewWriterSink(out)
	}
	return NewFileSink(path)
}

func marshal(summary *domain.ActivitySummary) ([]byte, error) {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal summary to JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// FileSink replaces a JSON file with each summary it receives.
type FileSink struct {
	path string
}

// NewFileSink creates a sink writing to path.
func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

// Path returns the artifact path.
func (s *FileSink) Path() string {
	return s.path
}

// Write stores the summary through a temporary file in the same directory, renamed over
// the artifact once fully written. On error the previous artifact is left untouched.
func (s *FileSink) Write(summary *domain.ActivitySummary) error {
	data, err := marshal(summary)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary artifact: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write temporary artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary artifact: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("failed to set artifact permissions: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace artifact %s: %w", s.path, err)
	}
	return nil
}

// WriterSink prints each summary as JSON to a writer.
type WriterSink struct {
	w io.Writer
}

// NewWriterSink creates a sink writing to w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

func (s *WriterSink) Write(summary *domain.ActivitySummary) error {
	data, err := marshal(summary)
	if err != nil {
		return err
	}
	if _, err := s.w.Write(data); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

// Read loads a previously written artifact.
func Read(path string) (*domain.ActivitySummary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}
	var summary domain.ActivitySummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("failed to parse artifact %s: %w", path, err)
	}
	return &summary, nil
}
