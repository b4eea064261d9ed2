// Package tokenizer implements a byte-position-tracking, flexible-field
// reader that the sample scanner and resync oracle use to probe arbitrary
// offsets in a CSV file.
//
// It reuses the terminator-detection split function (internal/linesplit)
// and quote-awareness helpers (internal/util), but unlike the
// higher-level permissive Scanner it never pads or truncates a record:
// callers need the raw field count to judge whether a probe has landed on
// a genuine record boundary.
package tokenizer

import (
	"bufio"
	"encoding/csv"
	"io"
	"strings"

	"github.com/dsvtools/csvresync/internal/linesplit"
	"github.com/dsvtools/csvresync/internal/util"
)

// Record is one raw record read by a Tokenizer.
type Record struct {
	Fields []string
	// Pos is the byte offset immediately after this record's terminator,
	// measured from the start of the stream the Tokenizer was opened on.
	Pos int64
}

// Ambiguous reports whether csv field-splitting could not make sense of
// this record (bare or extraneous quote). An ambiguous record's field
// count never matches a genuine expected arity, so callers can treat it
// as a mismatch without special-casing it.
func (r Record) Ambiguous() bool {
	return r.Fields == nil
}

// Tokenizer reads records from an io.Reader, tracking the cumulative byte
// position consumed from the underlying stream and never enforcing a fixed
// field count (flexible mode).
type Tokenizer struct {
	delimiter rune
	quote     byte
	splitter  *linesplit.Splitter
	scanner   *bufio.Scanner
	pos       int64
}

// New returns a Tokenizer reading from r. delimiter is the field separator
// (defaults to ',' when the zero rune); quote is the byte that delimits
// quoted spans (defaults to '"' when the zero byte).
func New(r io.Reader, delimiter rune, quote byte) *Tokenizer {
	if delimiter == 0 {
		delimiter = ','
	}
	if quote == 0 {
		quote = '"'
	}
	splitter := &linesplit.Splitter{Quote: quote}
	t := &Tokenizer{
		delimiter: delimiter,
		quote:     quote,
		splitter:  splitter,
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	sc.Split(t.wrapSplit)
	t.scanner = sc
	return t
}

// wrapSplit delegates to the linesplit.Splitter but also advances the
// Tokenizer's running byte counter by exactly what the splitter consumed.
// bufio.Scanner guarantees that "advance" bytes are retired from the
// underlying reader for every ordinary Split call, so summing advance
// values gives the true cumulative stream position regardless of how much
// bufio looked ahead internally. The final call of a stream without a
// trailing terminator reports err == bufio.ErrFinalToken and bufio ignores
// advance entirely in that case (it never calls s.advance), so the byte
// count there is taken from the returned token's length instead.
func (t *Tokenizer) wrapSplit(data []byte, atEOF bool) (advance int, token []byte, err error) {
	advance, token, err = t.splitter.Split(data, atEOF)
	if err == bufio.ErrFinalToken {
		t.pos += int64(len(token))
	} else {
		t.pos += int64(advance)
	}
	return
}

// Position returns the byte offset immediately after the most recently read
// record's terminator, measured from the start of the stream.
func (t *Tokenizer) Position() int64 {
	return t.pos
}

// Next reads the next record. It returns false (with a nil error) at EOF.
// A non-nil error indicates an I/O fault on the underlying reader; csv
// quoting errors (bare/extraneous quote) are not fatal here — they surface
// as a record with a sentinel field count of -1 so callers can treat the
// probe as a mismatch rather than crash.
func (t *Tokenizer) Next() (Record, bool, error) {
	more := t.scanner.Scan()
	if !more {
		if err := t.scanner.Err(); err != nil {
			return Record{}, false, err
		}
		return Record{}, false, nil
	}

	raw := t.scanner.Text()
	term := t.splitter.CurrentTerminator()
	trimmed := raw
	if len(term) > 0 && strings.HasSuffix(raw, term) {
		trimmed = raw[:len(raw)-len(term)]
	}

	fields := []string{""}
	if trimmed != "" {
		text := util.TokenizeTerminators(trimmed)
		r := csv.NewReader(strings.NewReader(text))
		r.Comma = t.delimiter
		r.FieldsPerRecord = -1
		rec, err := r.Read()
		if err != nil {
			// Ambiguous quoting: not a genuine record boundary. Signal
			// this to callers via a field count that can never equal a
			// real expected arity.
			return Record{Fields: nil, Pos: t.pos}, true, nil
		}
		fields = util.ResetTerminatorTokens(rec)
	}

	return Record{Fields: fields, Pos: t.pos}, true, nil
}
