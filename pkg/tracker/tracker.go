// Package tracker persists the set of log files that have already been processed.
//
// The file format is plain text with one filename per line. The file is
// rewritten in full on every Save.
package tracker

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Tracker is the in-memory view of a tracking file.
// It is not safe for concurrent use.
type Tracker struct {
	path  string
	names map[string]struct{}
}

// Load reads the tracking file at path. A missing file yields an empty tracker.
func Load(path string) (*Tracker, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("tracking file path is empty")
	}

	t := &Tracker{
		path:  path,
		names: make(map[string]struct{}),
	}

	data, err := os.ReadFile(path) // #nosec G304 -- configured path
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return t, nil
		}
		return nil, fmt.Errorf("reading tracking file: %w", err)
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		if name == "" {
			continue
		}
		t.names[name] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("parsing tracking file: %w", err)
	}

	return t, nil
}

// Path returns the tracking file location.
func (t *Tracker) Path() string {
	return t.path
}

// Contains reports whether name has been processed.
func (t *Tracker) Contains(name string) bool {
	_, ok := t.names[name]
	return ok
}

// Add marks name as processed. It returns false if it was already present.
func (t *Tracker) Add(name string) bool {
	if t.Contains(name) {
		return false
	}
	t.names[name] = struct{}{}
	return true
}

// Len returns the number of processed names.
func (t *Tracker) Len() int {
	return len(t.names)
}

// Names returns the processed names in sorted order.
func (t *Tracker) Names() []string {
	names := make([]string, 0, len(t.names))
	for name := range t.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Save rewrites the tracking file with the current set.
func (t *Tracker) Save() error {
	if dir := filepath.Dir(t.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure tracking directory: %w", err)
		}
	}

	content := strings.Join(t.Names(), "\n")
	if content != "" {
		content += "\n"
	}

	tmpPath := fmt.Sprintf("%s.%d.tmp", t.path, time.Now().UnixNano())
	if err := os.WriteFile(tmpPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write temp tracking file: %w", err)
	}
	if err := os.Rename(tmpPath, t.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace tracking file: %w", err)
	}
	return nil
}
