package csvresync

import (
	"bytes"
	"io"

	"github.com/dsvtools/csvresync/internal/tokenizer"
)

// Opener returns a fresh, independent reader positioned at byte offset in
// the underlying file. The oracle calls it once per pass and closes what
// it returns; readers are never shared across probes or workers.
type Opener func(offset int64) (io.ReadCloser, error)

// Oracle implements the resync algorithm: given an arbitrary byte offset,
// it determines where the next genuine record boundary lies.
type Oracle struct {
	Open  Opener
	Stats SampleStats
	Opts  Options
}

// NewOracle returns an Oracle that reopens the file via open for every
// probe, using stats as the window/arity evidence and opts for
// delimiter/quote/window-multiplier configuration.
func NewOracle(open Opener, stats SampleStats, opts Options) *Oracle {
	opts.Normalize()
	return &Oracle{Open: open, Stats: stats, Opts: opts}
}

type sampledRecord struct {
	pos        int64
	fieldCount int
}

// Resync returns the NextRecord verdict for probe offset. It never
// returns an error for a bad resync — only for an I/O fault on the
// underlying reader.
func (o *Oracle) Resync(offset int64) (NextRecord, error) {
	window := int64(o.Opts.WindowMultiplier) * o.Stats.MaxRecordSize

	unquoted, err := o.collect(offset, window, false)
	if err != nil {
		return NextRecord{}, err
	}
	if verdict, ok := o.judge(unquoted, offset, false); ok {
		return verdict, nil
	}

	quoted, err := o.collect(offset, window, true)
	if err != nil {
		return NextRecord{}, err
	}
	if verdict, ok := o.judge(quoted, offset, true); ok {
		return verdict, nil
	}

	return Fail(), nil
}

// collect runs one pass (unquoted, or quoted with a synthetic prefix quote
// byte) from offset, reading flexible-mode records until the window is
// exhausted or EOF, and returns the (position, field count) pairs
// observed.
func (o *Oracle) collect(offset int64, window int64, quotedPass bool) ([]sampledRecord, error) {
	rc, err := o.Open(offset)
	if err != nil {
		return nil, &Error{Kind: IoError, Err: err}
	}
	defer rc.Close()

	var r io.Reader = rc
	if quotedPass {
		r = io.MultiReader(bytes.NewReader([]byte{o.Opts.Quote}), rc)
	}

	tok := tokenizer.New(r, o.Opts.Delimiter, o.Opts.Quote)

	var out []sampledRecord
	for {
		rec, ok, err := tok.Next()
		if err != nil {
			return nil, &Error{Kind: IoError, Err: err}
		}
		if !ok {
			break
		}
		fieldCount := -1
		if !rec.Ambiguous() {
			fieldCount = len(rec.Fields)
		}
		out = append(out, sampledRecord{pos: rec.Pos, fieldCount: fieldCount})
		if rec.Pos >= window {
			break
		}
	}
	return out, nil
}

// judge applies one pass's decision: too few records means EndOfFile; a
// consistent run from the second record onward means a resolved Offset;
// anything else falls through (ok=false) so the caller tries the next
// pass, or returns Fail after both passes are exhausted.
func (o *Oracle) judge(records []sampledRecord, offset int64, quotedPass bool) (NextRecord, bool) {
	if len(records) < 2 {
		return EndOfFile(), true
	}

	consistent := true
	for _, rec := range records[1:] {
		if rec.fieldCount != o.Stats.ExpectedFieldCount {
			consistent = false
			break
		}
	}
	if !consistent {
		return NextRecord{}, false
	}

	// records[0].pos is the stream-local position immediately after the
	// first (suspect) record, i.e. the start of the second, trustworthy
	// record. In the quoted pass the stream is offset by the synthetic
	// prefix byte, so translate back by subtracting its length.
	boundary := records[0].pos
	if quotedPass {
		boundary--
	}
	return Offset(quotedPass, uint64(offset+boundary)), true
}
