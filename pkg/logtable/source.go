package logtable

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

const maxLineSize = 1024 * 1024

// RecordSource provides an iterator over parsed records.
// Implementations must be safe for sequential access (not concurrent).
type RecordSource interface {
	// Next returns the next record.
	// Returns io.EOF when no more records are available.
	// A line that is not a valid record yields a *MalformedRecordError.
	Next(ctx context.Context) (*Record, error)

	// Close releases any resources held by the source.
	Close() error
}

// ReaderSource reads records from an io.Reader.
type ReaderSource struct {
	name    string
	scanner *bufio.Scanner
	line    int
	closer  func() error
}

// NewReaderSource creates a RecordSource over r. The name is used in errors.
func NewReaderSource(r io.Reader, name string) *ReaderSource {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &ReaderSource{
		name:    name,
		scanner: scanner,
	}
}

// Next returns the next record, skipping blank lines.
func (s *ReaderSource) Next(ctx context.Context) (*Record, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				return nil, fmt.Errorf("reading %s: %w", s.name, err)
			}
			return nil, io.EOF
		}
		s.line++

		line := s.scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		rec, err := ParseLine(line)
		if err != nil {
			var mre *MalformedRecordError
			if errors.As(err, &mre) {
				mre.Source = s.name
				mre.Line = s.line
			}
			return nil, err
		}
		rec.Source = s.name
		rec.LineNum = s.line
		return &rec, nil
	}
}

// Close releases the underlying reader, if this source owns one.
func (s *ReaderSource) Close() error {
	if s.closer == nil {
		return nil
	}
	err := s.closer()
	s.closer = nil
	return err
}

// OpenFile creates a RecordSource for a log file. Files ending in .gz or .zst
// are decompressed transparently. Empty files yield no records.
func OpenFile(path string) (*ReaderSource, error) {
	f, err := os.Open(path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		return nil, fmt.Errorf("opening log file %s: %w", path, err)
	}

	// An empty file holds no records whatever its suffix.
	if info, err := f.Stat(); err == nil && info.Size() == 0 {
		src := NewReaderSource(f, path)
		src.closer = f.Close
		return src, nil
	}

	switch {
	case strings.HasSuffix(path, ".gz"):
		gz, err := gzip.NewReader(f)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("opening gzip stream %s: %w", path, err)
		}
		src := NewReaderSource(gz, path)
		src.closer = func() error {
			gzErr := gz.Close()
			if err := f.Close(); err != nil {
				return err
			}
			return gzErr
		}
		return src, nil

	case strings.HasSuffix(path, ".zst"):
		dec, err := zstd.NewReader(f)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("opening zstd stream %s: %w", path, err)
		}
		src := NewReaderSource(dec, path)
		src.closer = func() error {
			dec.Close()
			return f.Close()
		}
		return src, nil
	}

	src := NewReaderSource(f, path)
	src.closer = f.Close
	return src, nil
}

// ParseLine parses "<epoch_millis> <source_host> <target_host>".
// The returned record has no Source or LineNum set.
func ParseLine(line string) (Record, error) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return Record{}, &MalformedRecordError{
			Content: line,
			Reason:  fmt.Sprintf("expected 3 fields, got %d", len(fields)),
		}
	}

	ts, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return Record{}, &MalformedRecordError{
			Content: line,
			Reason:  "timestamp is not an integer",
			Err:     err,
		}
	}

	return NewRecord(ts, fields[1], fields[2]), nil
}

// Scan streams every record from src to fn without building a table.
// It stops at the first error from src or fn.
func Scan(ctx context.Context, src RecordSource, fn func(*Record) error) error {
	for {
		rec, err := src.Next(ctx)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
}
