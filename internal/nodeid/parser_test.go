// internal/nodeid/parser_test.go
package nodeid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name       string
		rawID      string
		expectErr  bool
		expectedID ID
	}{
		{
			name:       "numeric in namespace zero",
			rawID:      "i=85",
			expectedID: NewNumeric(0, 85),
		},
		{
			name:       "string with namespace",
			rawID:      "ns=1;s=pump",
			expectedID: NewString(1, "pump"),
		},
		{
			name:       "string keeps separators",
			rawID:      "ns=2;s=pump.speed",
			expectedID: NewString(2, "pump.speed"),
		},
		{
			name:       "numeric with namespace",
			rawID:      "ns=3;i=7",
			expectedID: NewNumeric(3, 7),
		},
		{
			name:      "error - empty string",
			rawID:     "",
			expectErr: true,
		},
		{
			name:      "error - no kind prefix",
			rawID:     "pump",
			expectErr: true,
		},
		{
			name:      "error - non numeric value",
			rawID:     "i=abc",
			expectErr: true,
		},
		{
			name:      "error - namespace out of range",
			rawID:     "ns=70000;s=a",
			expectErr: true,
		},
		{
			name:      "error - empty identifier",
			rawID:     "ns=1;s=",
			expectErr: true,
		},
		{
			name:      "error - unknown kind",
			rawID:     "ns=1;g=abc",
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			id, err := Parse(tc.rawID)
			if tc.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedID, id)
		})
	}
}

func TestString_RoundTrip(t *testing.T) {
	for _, raw := range []string{"i=85", "ns=1;s=a", "ns=1;s=a.name", "ns=4;i=12"} {
		t.Run(raw, func(t *testing.T) {
			t.Parallel()
			id, err := Parse(raw)
			require.NoError(t, err)
			assert.Equal(t, raw, id.String())
		})
	}
}

func TestChild(t *testing.T) {
	owner := NewString(1, "a")
	assert.Equal(t, "ns=1;s=a.speed", owner.Child(".", "speed").String())
	assert.Equal(t, "ns=1;s=a:delete", owner.Child(":", "delete").String())

	// Numeric owners still produce string children in the owner's namespace.
	assert.Equal(t, NewString(0, "85.x"), NewNumeric(0, 85).Child(".", "x"))
}

func TestParseOrString(t *testing.T) {
	id, err := ParseOrString(1, "a")
	require.NoError(t, err)
	assert.Equal(t, NewString(1, "a"), id)

	id, err = ParseOrString(1, "ns=2;s=b")
	require.NoError(t, err)
	assert.Equal(t, NewString(2, "b"), id)

	_, err = ParseOrString(1, "")
	assert.Error(t, err)

	_, err = ParseOrString(1, "i=notanumber")
	assert.Error(t, err)
}

func TestIsNull(t *testing.T) {
	assert.True(t, Null.IsNull())
	assert.False(t, NewNumeric(0, 85).IsNull())
}

func TestMustParse_Panics(t *testing.T) {
	assert.Panics(t, func() { MustParse("bogus") })
	assert.NotPanics(t, func() { MustParse("i=84") })
}

func TestText(t *testing.T) {
	var id ID
	require.NoError(t, id.UnmarshalText([]byte("ns=1;s=x")))
	out, err := id.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "ns=1;s=x", string(out))
}
