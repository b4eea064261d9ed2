package csvresync

import (
	"io"

	"github.com/dsvtools/csvresync/internal/tokenizer"
)

// SampleStats holds the pair derived once, up front, and held immutable
// for the rest of the run.
type SampleStats struct {
	// MaxRecordSize is the maximum position(r_i+1) - position(r_i) over
	// the first N successfully read records, including the header.
	MaxRecordSize int64
	// ExpectedFieldCount is the number of fields in the header record.
	ExpectedFieldCount int
}

// ScanSample reads the header and up to opts.SampleSize further records
// from r, returning the maximum observed record size in bytes and the
// header's field count. r must be positioned at the start of the file.
//
// If the file has no header at all, ScanSample returns ErrEmptyInput: the
// caller's job is to emit 0 and exit cleanly, not treat this as fatal.
func ScanSample(r io.Reader, opts Options) (SampleStats, error) {
	opts.Normalize()
	tok := tokenizer.New(r, opts.Delimiter, opts.Quote)

	header, ok, err := tok.Next()
	if err != nil {
		return SampleStats{}, &Error{Kind: IoError, Err: err}
	}
	if !ok {
		return SampleStats{}, ErrEmptyInput
	}

	stats := SampleStats{ExpectedFieldCount: len(header.Fields)}
	prevPos := header.Pos

	for i := 0; i < opts.SampleSize; i++ {
		rec, ok, err := tok.Next()
		if err != nil {
			return SampleStats{}, &Error{Kind: IoError, Err: err}
		}
		if !ok {
			break
		}
		if size := rec.Pos - prevPos; size > stats.MaxRecordSize {
			stats.MaxRecordSize = size
		}
		prevPos = rec.Pos
	}

	return stats, nil
}
