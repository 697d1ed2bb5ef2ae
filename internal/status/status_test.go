package status

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeverity(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		code                 Code
		good, uncertain, bad bool
	}{
		{Good, true, false, false},
		{Uncertain, false, true, false},
		{BadNodeIDUnknown, false, false, true},
		{BadShutdown, false, false, true},
	}
	for _, tc := range testCases {
		t.Run(tc.code.String(), func(t *testing.T) {
			assert.Equal(t, tc.good, tc.code.IsGood())
			assert.Equal(t, tc.uncertain, tc.code.IsUncertain())
			assert.Equal(t, tc.bad, tc.code.IsBad())
		})
	}
}

func TestString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "BadNodeIdUnknown", BadNodeIDUnknown.String())
	assert.Equal(t, "0x80FF0000", Code(0x80FF0000).String())
}

func TestFromError(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name string
		err  error
		want Code
	}{
		{"nil", nil, Good},
		{"status error", Errorf(BadNotWritable, "nope"), BadNotWritable},
		{"wrapped status error", fmt.Errorf("outer: %w", Errorf(BadTypeMismatch, "x")), BadTypeMismatch},
		{"deadline", fmt.Errorf("wait: %w", context.DeadlineExceeded), BadTimeout},
		{"cancelled", context.Canceled, BadTimeout},
		{"anything else", errors.New("boom"), BadUnexpectedError},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FromError(tc.err))
		})
	}
}

func TestError_Message(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "BadTimeout", (&Error{Code: BadTimeout}).Error())
	assert.Equal(t, "BadTimeout: after 5s", Errorf(BadTimeout, "after %ds", 5).Error())
}
