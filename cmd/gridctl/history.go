package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// History keeps the commands of a REPL session and appends each one to a
// file on fs, so later sessions can recall them.
type History struct {
	fs    afero.Fs
	path  string
	lines []string
}

func NewHistory(fs afero.Fs, path string) *History {
	return &History{fs: fs, path: path}
}

// Load reads the newest max entries of the history file (all of them when
// max <= 0). A missing file is an empty history.
func (h *History) Load(max int) error {
	if h.path == "" {
		return nil
	}
	data, err := afero.ReadFile(h.fs, h.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}

	for _, line := range strings.Split(string(data), "\n") {
		if cmd := compactOneLine(line); cmd != "" {
			h.lines = append(h.lines, cmd)
		}
	}
	if max > 0 && len(h.lines) > max {
		h.lines = append([]string(nil), h.lines[len(h.lines)-max:]...)
	}
	return nil
}

func (h *History) Append(cmd string) error {
	cmd = compactOneLine(cmd)
	if cmd == "" {
		return nil
	}
	h.lines = append(h.lines, cmd)
	if h.path == "" {
		return nil
	}

	if err := h.fs.MkdirAll(filepath.Dir(h.path), 0o755); err != nil {
		return fmt.Errorf("history: %w", err)
	}
	f, err := h.fs.OpenFile(h.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	defer func() { _ = f.Close() }()

	_, err = fmt.Fprintln(f, cmd)
	return err
}

// Print writes the last entries, numbered from the start of the history.
func (h *History) Print(w io.Writer, last int) {
	if last <= 0 || last > len(h.lines) {
		last = len(h.lines)
	}
	for i := len(h.lines) - last; i < len(h.lines); i++ {
		fmt.Fprintf(w, "%5d  %s\n", i+1, h.lines[i])
	}
}

// compactOneLine collapses whitespace runs into single spaces.
func compactOneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".novagrid_history"
	}
	return filepath.Join(home, ".novagrid_history")
}
