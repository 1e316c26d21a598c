package logtable

import (
	"container/heap"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
)

// MergedSource interleaves several sources by timestamp, oldest first.
// Records with equal timestamps keep the order of the sources passed in,
// and within one source their line order.
type MergedSource struct {
	sources []RecordSource
	heap    recordHeap
	primed  bool
}

// NewMergedSource creates a RecordSource that merges sources by timestamp.
// Each source is expected to be in timestamp order already.
func NewMergedSource(sources ...RecordSource) *MergedSource {
	return &MergedSource{sources: sources}
}

// Next returns the oldest pending record across all sources.
func (m *MergedSource) Next(ctx context.Context) (*Record, error) {
	if !m.primed {
		if err := m.prime(ctx); err != nil {
			return nil, err
		}
	}

	if m.heap.Len() == 0 {
		return nil, io.EOF
	}

	item := heap.Pop(&m.heap).(*heapItem)
	if err := m.pull(ctx, item.source); err != nil {
		return nil, err
	}
	return item.rec, nil
}

func (m *MergedSource) prime(ctx context.Context) error {
	m.primed = true
	for i := range m.sources {
		if err := m.pull(ctx, i); err != nil {
			return err
		}
	}
	return nil
}

// pull reads the next record of source i into the heap.
func (m *MergedSource) pull(ctx context.Context, i int) error {
	rec, err := m.sources[i].Next(ctx)
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return err
	}
	heap.Push(&m.heap, &heapItem{rec: rec, source: i})
	return nil
}

// Close closes every source and returns the first error.
func (m *MergedSource) Close() error {
	var firstErr error
	for _, src := range m.sources {
		if err := src.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

type heapItem struct {
	rec    *Record
	source int
}

type recordHeap []*heapItem

func (h recordHeap) Len() int { return len(h) }

func (h recordHeap) Less(i, j int) bool {
	if h[i].rec.Timestamp != h[j].rec.Timestamp {
		return h[i].rec.Timestamp < h[j].rec.Timestamp
	}
	return h[i].source < h[j].source
}

func (h recordHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *recordHeap) Push(x any) {
	*h = append(*h, x.(*heapItem))
}

func (h *recordHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// ExpandPaths expands file paths and glob patterns into a sorted, deduplicated
// list. A pattern matching nothing is kept as a literal path so that opening
// it reports a useful error.
func ExpandPaths(patterns ...string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string

	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			matches = []string{pattern}
		}
		for _, match := range matches {
			if !seen[match] {
				seen[match] = true
				paths = append(paths, match)
			}
		}
	}

	sort.Strings(paths)
	return paths, nil
}

// LoadAll builds one table from every file the patterns match. A single file
// is loaded in line order; several files are merged by timestamp.
func LoadAll(ctx context.Context, patterns ...string) (*Table, error) {
	paths, err := ExpandPaths(patterns...)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no log files given")
	}
	if len(paths) == 1 {
		return Load(ctx, paths[0])
	}

	sources := make([]RecordSource, 0, len(paths))
	for _, p := range paths {
		src, err := OpenFile(p)
		if err != nil {
			for _, opened := range sources {
				_ = opened.Close()
			}
			return nil, err
		}
		sources = append(sources, src)
	}

	merged := NewMergedSource(sources...)
	defer merged.Close()

	return Collect(ctx, merged, strings.Join(paths, ","))
}
