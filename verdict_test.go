package csvresync_test

import (
	"testing"

	csvresync "github.com/dsvtools/csvresync"
	"github.com/stretchr/testify/assert"
)

func Test_Verdict_Constructors(t *testing.T) {
	assert.Equal(t, csvresync.NextRecord{Kind: csvresync.VerdictStart}, csvresync.Start())
	assert.Equal(t, csvresync.NextRecord{Kind: csvresync.VerdictEndOfFile}, csvresync.EndOfFile())
	assert.Equal(t, csvresync.NextRecord{Kind: csvresync.VerdictFail}, csvresync.Fail())
	assert.Equal(t,
		csvresync.NextRecord{Kind: csvresync.VerdictOffset, Quoted: true, Byte: 42},
		csvresync.Offset(true, 42))
}

func Test_VerdictKind_String(t *testing.T) {
	tests := []struct {
		kind csvresync.VerdictKind
		want string
	}{
		{csvresync.VerdictStart, "Start"},
		{csvresync.VerdictOffset, "Offset"},
		{csvresync.VerdictEndOfFile, "EndOfFile"},
		{csvresync.VerdictFail, "Fail"},
		{csvresync.VerdictKind(99), "VerdictKind(99)"},
	}
	for _, test := range tests {
		assert.Equal(t, test.want, test.kind.String())
	}
}

func Test_NextRecord_String(t *testing.T) {
	assert.Equal(t, "Offset(quoted=true, byte=7)", csvresync.Offset(true, 7).String())
	assert.Equal(t, "Start", csvresync.Start().String())
	assert.Equal(t, "EndOfFile", csvresync.EndOfFile().String())
	assert.Equal(t, "Fail", csvresync.Fail().String())
}
