package csvresync

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"strings"
	"text/template"

	"github.com/dsvtools/csvresync/internal/linesplit"
	"github.com/dsvtools/csvresync/internal/util"
)

const (
	// AltBareQuote is the description for bare-quote record alterations.
	AltBareQuote = "bare quote"

	// AltExtraneousQuote is the description for extraneous-quote record alterations.
	AltExtraneousQuote = "extraneous quote"

	// AltTruncatedRecord is the description for truncated record alterations.
	AltTruncatedRecord = "truncated record"

	// AltPaddedRecord is the description for padded record alterations.
	AltPaddedRecord = "padded record"
)

// Scanner provides facility for permissively reading CSV input. Successive
// calls to the Scan method will step through the records of a file,
// skipping terminator bytes between each record.
//
// Terminators (line endings) can be any (or a mix) of DOS (\r\n), inverted
// DOS (\n\r), unix (\n), or carriage return (\r) tokens. Quoted spans use
// the configurable Quote byte from Options (default '"'); tokens inside a
// quoted span are never treated as terminators.
//
// Once a record is identified, it is split into fields using standard CSV
// encoding rules, with the delimiter taken from Options (default ','). The
// first record scanned is always presumed to have the correct number of
// fields. For each subsequent record, if the record has fewer fields than
// expected, the Scanner pads it with blank fields; if it has more, the
// Scanner truncates it. Padding and truncation, along with bare- and
// extraneous-quote recoveries, are recorded as Alterations and available
// via Summary once scanning completes.
//
// Scanner is the record-producing layer the resync oracle and sample
// scanner are built on top of (via internal/tokenizer); it is kept here as
// a richer, permissive reader for direct record-at-a-time use and for
// Partition, a record-count based partitioning strategy independent of the
// byte-oracle pipeline in planner.go/oracle.go.
type Scanner struct {
	headerCheck        HeaderCheck
	currentRecord      []string
	reader             io.ReadSeeker
	scanner            *bufio.Scanner
	expectedFieldCount int
	recordsScanned     int64
	scanSummary        *ScanSummary
	checkedForHeader   bool
	splitter           *linesplit.Splitter
	delimiter          rune
	bytePos            int64

	// these values can only be non-nil the first time Scan is called
	// and will be nil for all subsequent calls.
	firstRecord  []string
	secondRecord []string
}

// HeaderCheck is a function that evaluates whether or not firstRecord is
// a header. HeaderCheck is called by the RecordIsHeader method, and is supplied
// values according to the current state of the Scanner.
//
// firstRecord is the first record of the file.
// firstRecord will be nil in the following conditions:
//   - Scan has not been called.
//   - The file is empty.
//   - The Scanner has advanced beyond the first record.
//
// secondRecord is the second record of the file.
// secondRecord will be nil in the following conditions:
//   - Scan has not been called
//   - The file is empty.
//   - The Scanner has advanced beyond the first record.
//   - The file does not have a second record.
type HeaderCheck func(firstRecord, secondRecord []string) bool

// HeaderCheckAssumeNoHeader is a HeaderCheck that instructs the RecordIsHeader
// method to report that no header exists for the file being scanned.
var HeaderCheckAssumeNoHeader HeaderCheck = func(firstRecord, secondRecod []string) bool {
	return false
}

// HeaderCheckAssumeHeaderExists returns true unless firstRecord is nil.
var HeaderCheckAssumeHeaderExists HeaderCheck = func(firstRecord, secondRecod []string) bool {
	return firstRecord != nil
}

// NewScanner returns a new Scanner reading from r, using opts for the
// configurable delimiter and quote byte.
func NewScanner(r io.ReadSeeker, headerCheck HeaderCheck, opts Options) *Scanner {
	opts.Normalize()
	s := &Scanner{
		headerCheck: headerCheck,
		reader:      r,
		splitter:    &linesplit.Splitter{Quote: opts.Quote},
		delimiter:   opts.Delimiter,
	}
	internalScanner := bufio.NewScanner(r)
	internalScanner.Split(s.wrapSplit)
	s.scanner = internalScanner
	return s
}

// wrapSplit delegates to the splitter but also tracks the Scanner's
// cumulative byte position, mirroring internal/tokenizer's handling of
// bufio.ErrFinalToken: bufio never calls s.advance for the stream's final
// token, so the position there is taken from the token length instead.
func (s *Scanner) wrapSplit(data []byte, atEOF bool) (advance int, token []byte, err error) {
	advance, token, err = s.splitter.Split(data, atEOF)
	if err == bufio.ErrFinalToken {
		s.bytePos += int64(len(token))
	} else {
		s.bytePos += int64(advance)
	}
	return
}

// BytePosition returns the byte offset immediately after the most
// recently scanned record's terminator, measured from the start of the
// underlying reader. The parallel driver uses this to bound a worker's
// read to its resolved span without re-deriving offsets.
func (s *Scanner) BytePosition() int64 {
	return s.bytePos
}

// Scan advances the scanner to the next record, which will then be available
// via the CurrentRecord method. Scan returns false when it reaches the end
// of the file. Once scanning is complete, subsequent scans will continue to
// return false until the Reset method is called.
//
// If the underlaying Reader is nil, Scan will return false on the first call.
// In all other cases, Scan will return true on the first call.
func (s *Scanner) Scan() bool {
	if !s.checkedForHeader {
		more := s.scan()
		s.firstRecord = make([]string, len(s.currentRecord))
		copy(s.firstRecord, s.currentRecord)
		if more {
			s.scan()
			if !s.Summary().EOF {
				s.secondRecord = make([]string, len(s.currentRecord))
				copy(s.secondRecord, s.currentRecord)
			}
		}
		s.recordsScanned = 0
		s.currentRecord = nil
		s.scanSummary = nil
		s.bytePos = 0
		if s.reader != nil {
			s.reader.Seek(0, io.SeekStart)
		}
		s.scanner = bufio.NewScanner(s.reader)
		s.scanner.Split(s.wrapSplit)
		s.checkedForHeader = true
	} else {
		s.firstRecord = nil
		s.secondRecord = nil
	}
	return s.scan()
}

func (s *Scanner) scan() bool {
	var (
		extraneousQuoteEncountered = false
		bareQuoteEncountered       = false
		recordTruncated            = false
		recordPadded               = false
	)

	if s.scanSummary == nil {
		s.scanSummary = &ScanSummary{
			Alterations: []*Alteration{},
		}
	}

	if s.reader == nil {
		s.scanSummary.Err = ErrReaderIsNil
		s.scanSummary.RecordCount = -1
		s.scanSummary.AlterationCount = -1
		s.scanSummary.EOF = false
		return false
	}

	var record []string
	more := s.scanner.Scan()
	if !more {
		s.scanSummary.EOF = true
		return false
	}

	s.scanSummary.RecordCount++
	rawRecord := s.scanner.Text()
	var trimmedRawRecord string
	currentTerminator := s.splitter.CurrentTerminator()
	if len(currentTerminator) > 0 && strings.HasSuffix(rawRecord, string(currentTerminator)) {
		trimmedRawRecord = rawRecord[:len(rawRecord)-len(currentTerminator)]
	} else {
		trimmedRawRecord = rawRecord
	}

	if trimmedRawRecord == "" {
		record = []string{""}
	} else {
		// we want to leverage csv.Reader for its field parsing logic, but
		// want to avoid its record parsing logic. So, we replace any instances
		// of \n or \r with tokens to override the Readers standard record
		// termination handling; then fix the tokens after the fact.
		text := util.TokenizeTerminators(trimmedRawRecord)
		c := csv.NewReader(strings.NewReader(text))
		c.Comma = s.delimiterOrDefault()
		var err error
		record, err = c.Read()
		if err != nil {
			extraneousQuoteEncountered = util.IsExtraneousQuoteError(err)
			bareQuoteEncountered = util.IsBareQuoteError(err)
			record = []string{}
		}
		record = util.ResetTerminatorTokens(record)
	}

	s.recordsScanned++
	if s.recordsScanned == 1 {
		s.expectedFieldCount = len(record)
	}

	if len(record) > s.expectedFieldCount {
		record = record[:s.expectedFieldCount]
		recordTruncated = true
	} else if len(record) < s.expectedFieldCount {
		pad := make([]string, s.expectedFieldCount-len(record))
		record = append(record, pad...)
		recordPadded = true
	}

	// In cases where the record (for any reason) ends up with zero capacity
	// (nil), we return an empty slice with capacity 1 instead. This ensures the
	// scanner always returns an empty slice, rather than a nil slice if a
	// record contains no fields.
	if cap(record) == 0 {
		record = make([]string, 0, 1)
	}
	s.currentRecord = record

	if extraneousQuoteEncountered {
		s.appendAlteration(trimmedRawRecord, record, AltExtraneousQuote)
	} else if bareQuoteEncountered {
		s.appendAlteration(trimmedRawRecord, record, AltBareQuote)
	} else if recordTruncated {
		s.appendAlteration(trimmedRawRecord, record, AltTruncatedRecord)
	} else if recordPadded {
		s.appendAlteration(trimmedRawRecord, record, AltPaddedRecord)
	}

	return true
}

func (s *Scanner) delimiterOrDefault() rune {
	if s.delimiter == 0 {
		return ','
	}
	return s.delimiter
}

func (s *Scanner) appendAlteration(originalText string, record []string, description string) {
	s.scanSummary.AlterationCount++
	s.scanSummary.Alterations = append(s.scanSummary.Alterations, &Alteration{
		RecordOrdinal:         s.scanSummary.RecordCount,
		OriginalData:          originalText,
		ResultingRecord:       record,
		AlterationDescription: description,
	})
}

// Reset sets the Scanner back to the top of the file, and clears any summary
// data that any previous calls to Scan may have generated.
func (s *Scanner) Reset() {
	if s.reader != nil {
		s.reader.Seek(0, io.SeekStart)
	}
	opts := Options{Delimiter: s.delimiter, Quote: s.splitter.Quote}
	*s = *NewScanner(s.reader, s.headerCheck, opts)
}

// CurrentRecord returns the most recent record generated by a call to Scan.
func (s *Scanner) CurrentRecord() []string {
	return s.currentRecord
}

// Alteration describes a change that the Scanner made to a record because the
// record was in an unexpected format.
type Alteration struct {
	RecordOrdinal         int
	OriginalData          string
	ResultingRecord       []string
	AlterationDescription string
}

// ScanSummary contains information about assumptions or alterations that have
// been made via any calls to Scan.
type ScanSummary struct {
	RecordCount     int
	AlterationCount int
	Alterations     []*Alteration
	EOF             bool
	Err             error
}

// String returns a prettified representation of the summary.
func (s *ScanSummary) String() string {
	const templateText = `Scan Summary
---------------------------------------
  Records Scanned:    {{.RecordCount}}
  Alterations Made:   {{.AlterationCount}}
  EOF:                {{.EOF}}
  Err:                {{if .Err}}{{.Err}}{{else}}none{{end}}
  Alterations:{{range .Alterations}}
    Record Number:    {{.RecordOrdinal}}
    Alteration:       {{.AlterationDescription}}
    Original Data:    {{.OriginalData}}
    Resulting Record: {{json .ResultingRecord}}
{{else}}        none{{end}}`

	var recordToJSON = func(s []string) string {
		record, err := json.Marshal(s)
		util.Panic(err)
		return string(record)
	}
	funcMap := template.FuncMap{"json": recordToJSON}
	tmpl := template.Must(template.
		New("summary").
		Funcs(funcMap).
		Parse(templateText))
	buf := new(bytes.Buffer)
	util.Panic(tmpl.Execute(buf, s))
	return buf.String()
}

// Summary returns a summary of information about the assumptions or alterations
// that were made during the most recent Scan. If the Scan method has not been
// called, or Reset was called after the last call to Scan, Summary will return
// nil. Summary will continue to collect data each time Scan is called, and will
// only reset after the Reset method has been called.
func (s *Scanner) Summary() *ScanSummary {
	return s.scanSummary
}

// RecordIsHeader returns true if the current record has been identified as a
// header. RecordIsHeader determines if the current record is a header by
// calling the HeaderCheck callback which was supplied to NewScanner when the
// Scanner was instantiated.
func (s *Scanner) RecordIsHeader() bool {
	return s.headerCheck(s.firstRecord, s.secondRecord)
}

// Segment represents a byte range within a file that contains a subset of
// records. It is produced by Partition, the record-count based
// partitioning strategy; it is unrelated to Span, the byte-oracle's
// resolved parallel-worker range in driver.go.
type Segment struct {
	Ordinal     int64
	LowerOffset int64
	UpperOffset int64
	SegmentSize int64
}

// Partition reads the full file and divides it into a series of partitions,
// each of which contains n records. All partitions are guaranteed to contain at
// least n records, except for the final partition, which may contain a
// smaller number of records.
//
// Each partition is represented by a Segment, which contains an Ordinal (an
// integer value representing the segment's placement relative to other
// segments), the lower byte offset where the partition starts, the upper byte
// offset where the partition ends, and the segment size, which is the
// partition length in bytes. If the file being read is empty (0 bytes),
// Partition will return a single empty segment with a length of zero, and
// both offsets set to -1.
//
// To maintain record consistency across segments, the byte offsets
// for a segment typically exclude its trailing terminator. Stripping the
// trailing terminator from the segment ensures that each segment can be properly
// interpreted as an independent file without having to make potentially
// erronious assumptions about implied empty records. In cases where a
// leading or trailing terminator implies that an empty record exists, the
// terminator will be retained.
//
// If excludeHeader is true, Partition will check if a header exists. If a
// header is detected, the first Segment will ignore the header, and the
// LowerOffset value will be the first byte position after the header record.
//
// If excludeHeader is false, the LowerOffset of the first segment will always
// be 0 (regardless of whether the first record is a header or not).
//
// Partition is designed for small files or diagnostics: it requires a full
// sequential scan, which is exactly what the byte-oracle pipeline
// (planner.go, oracle.go, driver.go) exists to avoid for large files.
//
// Before processing, Partition explicitly resets the underlaying reader to the
// top of the file. Thus, using Partition in conjunction with Scan could have
// undesired results.
func (s *Scanner) Partition(n int, excludeHeader bool) []*Segment {
	var (
		ordinal     int64
		lowerOffset int64
		upperOffset int64
	)
	s.Reset()
	segments := []*Segment{}
	currentRawRecord := ""
	recordsInCurrentSegment := 0
	for s.Scan() {
		if recordsInCurrentSegment == n {
			ordinal++
			segments = append(segments, &Segment{
				Ordinal:     ordinal,
				LowerOffset: lowerOffset,
				UpperOffset: upperOffset - int64(len(s.splitter.CurrentTerminator())),
				SegmentSize: upperOffset - lowerOffset,
			})
			recordsInCurrentSegment = 0
			currentRawRecord = ""
			lowerOffset = upperOffset + int64(len(s.splitter.CurrentTerminator()))
		}
		currentRawRecord += s.scanner.Text()
		upperOffset = lowerOffset + int64(len(currentRawRecord)-len(s.splitter.CurrentTerminator()))
		recordsInCurrentSegment++
	}

	if recordsInCurrentSegment > 0 {
		ordinal++
		segments = append(segments,
			&Segment{
				Ordinal:     ordinal,
				LowerOffset: lowerOffset,
				UpperOffset: upperOffset - int64(len(s.splitter.CurrentTerminator())) - 1,
				SegmentSize: upperOffset - lowerOffset,
			})
	}

	if len(segments) == 1 && s.scanner.Text() == "" {
		segments[0].UpperOffset = 0
	}

	summary := s.Summary()
	if summary.Err == ErrReaderIsNil {
		segments = append(segments, &Segment{
			Ordinal:     -1,
			LowerOffset: -1,
			UpperOffset: -1,
			SegmentSize: -1,
		})
	}
	return segments
}
