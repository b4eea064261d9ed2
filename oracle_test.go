package csvresync_test

import (
	"bytes"
	"io"
	"testing"

	csvresync "github.com/dsvtools/csvresync"
	"github.com/stretchr/testify/assert"
)

type closerReader struct {
	io.Reader
}

func (closerReader) Close() error { return nil }

// memOpener returns an Opener over an in-memory file, handing back an
// independent reader positioned at offset for each call, matching the
// "independent file handle per probe/worker" contract Opener documents.
func memOpener(data []byte) csvresync.Opener {
	return func(offset int64) (io.ReadCloser, error) {
		return closerReader{bytes.NewReader(data[offset:])}, nil
	}
}

// Test_Oracle_ResolvesStartOfFollowingRecord covers probing the byte
// immediately after a complete first record: the oracle resolves to the
// start of the record after that, never the probed record itself.
func Test_Oracle_ResolvesStartOfFollowingRecord(t *testing.T) {
	data := []byte("a,b\n1,2\n3,4\n")
	stats := csvresync.SampleStats{MaxRecordSize: 4, ExpectedFieldCount: 2}
	oracle := csvresync.NewOracle(memOpener(data), stats, csvresync.Options{})

	verdict, err := oracle.Resync(4)
	assert.NoError(t, err)
	assert.Equal(t, csvresync.Offset(false, 8), verdict)
}

// Test_Oracle_QuotedFieldResolvesViaQuotedPass covers a probe landing
// inside a quoted field: it fails the unquoted pass on field-count
// consistency, and resolves via the quoted pass instead.
func Test_Oracle_QuotedFieldResolvesViaQuotedPass(t *testing.T) {
	data := []byte(`a,b
"x,y",2
3,4
`)
	stats := csvresync.SampleStats{MaxRecordSize: 8, ExpectedFieldCount: 2}
	oracle := csvresync.NewOracle(memOpener(data), stats, csvresync.Options{})

	verdict, err := oracle.Resync(6)
	assert.NoError(t, err)
	assert.Equal(t, csvresync.Offset(true, 12), verdict)
}

// Test_Oracle_ProbeAtTrueRecordStartSkipsToNext covers probing exactly at
// a true record start: that record is attributed to the preceding
// segment, and the oracle returns the *next* record's start instead of
// echoing the probe.
func Test_Oracle_ProbeAtTrueRecordStartSkipsToNext(t *testing.T) {
	data := []byte("a,b\n1,2\n3,4\n5,6\n")
	stats := csvresync.SampleStats{MaxRecordSize: 4, ExpectedFieldCount: 2}
	oracle := csvresync.NewOracle(memOpener(data), stats, csvresync.Options{})

	verdict, err := oracle.Resync(4)
	assert.NoError(t, err)
	assert.Equal(t, csvresync.Offset(false, 8), verdict)
}

// Test_Oracle_EndOfFile covers a probe landing in the file's final
// record: fewer than two records remain to judge consistency from, so
// the oracle reports EndOfFile rather than guessing at a boundary.
func Test_Oracle_EndOfFile(t *testing.T) {
	data := []byte("a,b\n1,2\n3,4\n")
	stats := csvresync.SampleStats{MaxRecordSize: 4, ExpectedFieldCount: 2}
	oracle := csvresync.NewOracle(memOpener(data), stats, csvresync.Options{})

	verdict, err := oracle.Resync(8)
	assert.NoError(t, err)
	assert.Equal(t, csvresync.EndOfFile(), verdict)
}

// Test_Oracle_Fail covers a header whose field count never matches the
// body's, combined with a stray quote that keeps both the unquoted and
// quoted passes from ever settling on a consistent run: the oracle
// reports Fail rather than guess.
func Test_Oracle_Fail(t *testing.T) {
	header := "a,b,c,d,e,f,g\n"
	body := "1,2\n3\",4\n5,6\n7,8\n"
	data := []byte(header + body)
	stats := csvresync.SampleStats{MaxRecordSize: 4, ExpectedFieldCount: 7}
	oracle := csvresync.NewOracle(memOpener(data), stats, csvresync.Options{})

	verdict, err := oracle.Resync(int64(len(header)))
	assert.NoError(t, err)
	assert.Equal(t, csvresync.Fail(), verdict)
}

// Test_Oracle_Idempotence confirms resolving the same probe twice yields
// the same verdict.
func Test_Oracle_Idempotence(t *testing.T) {
	data := []byte("a,b\n1,2\n3,4\n5,6\n7,8\n")
	stats := csvresync.SampleStats{MaxRecordSize: 4, ExpectedFieldCount: 2}
	oracle := csvresync.NewOracle(memOpener(data), stats, csvresync.Options{})

	first, err := oracle.Resync(6)
	assert.NoError(t, err)
	second, err := oracle.Resync(6)
	assert.NoError(t, err)
	assert.Equal(t, first, second)
}

// Test_Oracle_WindowSufficiency confirms that when the observed
// max_record_size genuinely bounds every record in the file, a probe
// anywhere in a well-formed file resolves to Offset or EndOfFile, never
// Fail.
func Test_Oracle_WindowSufficiency(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("a,b,c\n")
	for i := 0; i < 50; i++ {
		buf.WriteString("1,2,3\n")
	}
	data := buf.Bytes()
	stats := csvresync.SampleStats{MaxRecordSize: 6, ExpectedFieldCount: 3}
	oracle := csvresync.NewOracle(memOpener(data), stats, csvresync.Options{})

	for offset := int64(0); offset < int64(len(data)); offset += 7 {
		verdict, err := oracle.Resync(offset)
		assert.NoError(t, err)
		assert.NotEqual(t, csvresync.VerdictFail, verdict.Kind, "offset %d produced Fail", offset)
	}
}

// Test_Oracle_QuotedOffsetUsesAbsoluteByte confirms the synthetic
// prefix-quote byte used for the quoted pass is translated back out of
// the returned boundary: Byte must be an offset into the real file, not
// the quoted-pass's prefixed stream.
func Test_Oracle_QuotedOffsetUsesAbsoluteByte(t *testing.T) {
	data := []byte(`a,b
"x,y",2
3,4
`)
	stats := csvresync.SampleStats{MaxRecordSize: 8, ExpectedFieldCount: 2}
	oracle := csvresync.NewOracle(memOpener(data), stats, csvresync.Options{})

	verdict, err := oracle.Resync(6)
	assert.NoError(t, err)
	assert.True(t, verdict.Quoted)
	assert.Less(t, int(verdict.Byte), len(data))
}
