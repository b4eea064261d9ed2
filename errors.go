package csvresync

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a fatal error surfaced by the driver or its
// workers.
type ErrorKind int

const (
	// IoError is a file-not-found, permission-denied, or read failure.
	IoError ErrorKind = iota
	// TokenizerError is malformed quoting that even flexible mode cannot
	// recover a record from.
	TokenizerError
	// ResyncFail marks a ResyncFail condition surfaced for logging; it is
	// never returned from a worker as a fatal error, but callers that want
	// to report on merge decisions can tag a non-fatal *Error with this
	// kind.
	ResyncFail
	// EmptyInput marks the file-has-no-header short circuit.
	EmptyInput
)

func (k ErrorKind) String() string {
	switch k {
	case IoError:
		return "IoError"
	case TokenizerError:
		return "TokenizerError"
	case ResyncFail:
		return "ResyncFail"
	case EmptyInput:
		return "EmptyInput"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Error wraps a fatal error with its ErrorKind, so callers can distinguish
// I/O faults from tokenizer faults via errors.Is/errors.As while still
// reaching the underlying error through Unwrap.
type Error struct {
	Kind    ErrorKind
	Segment int
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("csvresync: %s in segment %d: %v", e.Kind, e.Segment, e.Err)
}

// Unwrap returns the underlying error so *Error participates in
// errors.Is/errors.As.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Sentinel errors for expected conditions.
var (
	// ErrReaderIsNil is returned when a nil io.Reader is supplied where a
	// non-nil one is required.
	ErrReaderIsNil = errors.New("csvresync: reader is nil")
	// ErrEmptyInput is returned by ScanSample when the file has no header:
	// the program emits 0 and exits cleanly rather than treating this as
	// fatal.
	ErrEmptyInput = errors.New("csvresync: input has no header record")
)
