package api

import (
	"bufio"
	"fmt"
	"os"
)

// FileSink writes instructions to a file, one per line. The file is created
// on the first write, so a failed run leaves no file behind.
type FileSink struct {
	path string
	file *os.File
	w    *bufio.Writer
}

// NewFileSink creates a sink for path.
func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

// Path returns the output path.
func (s *FileSink) Path() string {
	return s.path
}

// WriteLines appends lines to the file.
func (s *FileSink) WriteLines(lines []string) error {
	if s.file == nil {
		f, err := os.Create(s.path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", s.path, err)
		}
		s.file = f
		s.w = bufio.NewWriter(f)
	}

	for _, line := range lines {
		if _, err := s.w.WriteString(line + "\n"); err != nil {
			return fmt.Errorf("failed to write %s: %w", s.path, err)
		}
	}

	return nil
}

// Close flushes and closes the file.
func (s *FileSink) Close() error {
	if s.file == nil {
		return nil
	}

	flushErr := s.w.Flush()
	closeErr := s.file.Close()
	s.file = nil

	if flushErr != nil {
		return fmt.Errorf("failed to flush %s: %w", s.path, flushErr)
	}
	return closeErr
}

// MemorySink keeps the instructions in memory.
type MemorySink struct {
	Lines  []string
	Closed bool
}

// WriteLines appends lines.
func (s *MemorySink) WriteLines(lines []string) error {
	s.Lines = append(s.Lines, lines...)
	return nil
}

// Close marks the sink closed.
func (s *MemorySink) Close() error {
	s.Closed = true
	return nil
}
