package linesplit

import (
	"bufio"

	"github.com/dsvtools/csvresync/internal/util"
)

// Splitter provides a lineSplit function that will split records on
// unix, DOS, inverted DOS (/n/r) or bare carriage return (/r) terminators.
// Splitter emits certain information about the status of the splitter,
// such as the most recently read record, terminator, terminator length, etc...
//
// Quote is the byte used to delimit quoted spans; terminators inside a
// quoted span are not treated as record boundaries. Quote defaults to '"'
// when left as the zero value.
type Splitter struct {
	Quote byte

	currentRawRecord        string
	currentTerminator       string
	currentTerminatorLength int
	atEOF                   bool
	currentRawUpperOffset   uint64
}

func (l *Splitter) quote() byte {
	if l.Quote == 0 {
		return '"'
	}
	return l.Quote
}

// CurrentRawRecord returns the record that was most recently idenfied by the
// splitter.
func (l *Splitter) CurrentRawRecord() string {
	return l.currentRawRecord
}

// CurrentTerminator returns the terminator that was most recently identified
// by the splitter.
func (l *Splitter) CurrentTerminator() string {
	return l.currentTerminator
}

// CurrentTerminatorLength returns the length of the terminator that was most
// recently identified by the splitter.
func (l *Splitter) CurrentTerminatorLength() int {
	return len(l.CurrentTerminator())
}

// EOF returns true if the splitter has reached the end of the file.
func (l *Splitter) EOF() bool {
	return l.atEOF
}

// Split performs the line splitting operations.
func (l *Splitter) Split(data []byte, atEOF bool) (advance int, token []byte, err error) {
	// Mirrors bufio.ScanLines' own guard: once EOF is reached and no bytes
	// remain, there is nothing left to deliver. Returning a plain (0, nil,
	// nil) here (rather than falling through to the final-token path
	// below) tells Scan to stop cleanly instead of handing back one more,
	// spurious, empty token.
	if atEOF && len(data) == 0 {
		l.atEOF = true
		return 0, nil, nil
	}

	const (
		nl     = "\n"
		cr     = "\r"
		dos    = "\r\n"
		invdos = "\n\r"
	)
	str := string(data)
	q := l.quote()
	DOSIndex := util.IndexNonQuoted(str, dos, q)
	invertedDOSIndex := util.IndexNonQuoted(str, invdos, q)
	newlineIndex := util.IndexNonQuoted(str, nl, q)
	carriageReturnIndex := util.IndexNonQuoted(str, cr, q)

	nearestTerminator := -1
	terminatorLength := 0

	if invertedDOSIndex != -1 &&
		newlineIndex == invertedDOSIndex &&
		carriageReturnIndex > newlineIndex {
		nearestTerminator = invertedDOSIndex
		terminatorLength = 2
	}

	if DOSIndex != -1 &&
		carriageReturnIndex == DOSIndex &&
		newlineIndex > carriageReturnIndex {
		if nearestTerminator == -1 {
			nearestTerminator = DOSIndex
			terminatorLength = 2
		} else if DOSIndex < nearestTerminator {
			nearestTerminator = DOSIndex
			terminatorLength = 2
		}
	}

	if nearestTerminator != -1 {
		advance = nearestTerminator + 2
		token = data[:advance]
		l.recordTerminator(token, terminatorLength)
		return
	}

	if newlineIndex != -1 {
		nearestTerminator = newlineIndex
		terminatorLength = 1
	}

	if carriageReturnIndex != -1 {
		if nearestTerminator == -1 || carriageReturnIndex < nearestTerminator {
			nearestTerminator = carriageReturnIndex
			terminatorLength = 1
		}
	}

	if nearestTerminator != -1 {
		advance = nearestTerminator + 1
		token = data[:advance]
		l.recordTerminator(token, terminatorLength)
		return
	}

	if !atEOF {
		return
	}

	token = data
	err = bufio.ErrFinalToken
	l.currentRawRecord = string(token)
	l.currentTerminator = ""
	l.currentTerminatorLength = 0
	l.atEOF = true
	return
}

// recordTerminator stashes the record and terminator most recently
// identified, so CurrentRawRecord/CurrentTerminator reflect the token
// Split just returned.
func (l *Splitter) recordTerminator(token []byte, terminatorLength int) {
	l.currentRawRecord = string(token)
	l.currentTerminatorLength = terminatorLength
	l.currentTerminator = string(token[len(token)-terminatorLength:])
}
