package csvresync_test

import (
	"errors"
	"testing"

	csvresync "github.com/dsvtools/csvresync"
	"github.com/stretchr/testify/assert"
)

func Test_ErrorKind_String(t *testing.T) {
	tests := []struct {
		kind csvresync.ErrorKind
		want string
	}{
		{csvresync.IoError, "IoError"},
		{csvresync.TokenizerError, "TokenizerError"},
		{csvresync.ResyncFail, "ResyncFail"},
		{csvresync.EmptyInput, "EmptyInput"},
		{csvresync.ErrorKind(99), "ErrorKind(99)"},
	}
	for _, test := range tests {
		assert.Equal(t, test.want, test.kind.String())
	}
}

func Test_Error_ErrorAndUnwrap(t *testing.T) {
	underlying := errors.New("disk on fire")
	err := &csvresync.Error{Kind: csvresync.IoError, Segment: 3, Err: underlying}

	assert.Equal(t, "csvresync: IoError in segment 3: disk on fire", err.Error())
	assert.Same(t, underlying, errors.Unwrap(err))
	assert.True(t, errors.Is(err, underlying))
}

func Test_Error_NilReceiver(t *testing.T) {
	var err *csvresync.Error
	assert.Equal(t, "", err.Error())
	assert.Nil(t, err.Unwrap())
}

func Test_SentinelErrors(t *testing.T) {
	assert.EqualError(t, csvresync.ErrReaderIsNil, "csvresync: reader is nil")
	assert.EqualError(t, csvresync.ErrEmptyInput, "csvresync: input has no header record")
}
