package logtable

import (
	"errors"
	"fmt"
)

// ErrMalformedRecord matches any MalformedRecordError via errors.Is.
var ErrMalformedRecord = errors.New("malformed record")

// MalformedRecordError reports a log line that is not
// "<epoch_millis> <source_host> <target_host>".
type MalformedRecordError struct {
	Source  string
	Line    int
	Content string
	Reason  string
	Err     error
}

func (e *MalformedRecordError) Error() string {
	msg := fmt.Sprintf("%s:%d: %s: %q", e.Source, e.Line, e.Reason, e.Content)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying parse error, if any.
func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrMalformedRecord.
func (e *MalformedRecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}
