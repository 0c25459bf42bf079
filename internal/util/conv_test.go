package util

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexBoolUnmarshal(t *testing.T) {
	cases := []struct {
		raw   string
		set   bool
		value bool
	}{
		{`true`, true, true},
		{`false`, true, false},
		{`1`, true, true},
		{`0`, true, false},
		{`"1"`, true, true},
		{`"0"`, true, false},
		{`"true"`, true, true},
		{`"false"`, true, false},
		{`null`, false, false},
		{`""`, false, false},
	}

	for _, tc := range cases {
		var b FlexBool
		err := json.Unmarshal([]byte(tc.raw), &b)
		require.NoError(t, err, "raw=%s", tc.raw)
		assert.Equal(t, tc.set, b.Set, "raw=%s", tc.raw)
		assert.Equal(t, tc.value, b.Value, "raw=%s", tc.raw)
	}

	var b FlexBool
	assert.Error(t, json.Unmarshal([]byte(`"yes please"`), &b))
}

func TestFlexBoolDistinguishesUnsetFromFalse(t *testing.T) {
	var payload struct {
		Enabled FlexBool `json:"enabled"`
		Locked  FlexBool `json:"locked"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"enabled":"0"}`), &payload))

	require.NotNil(t, payload.Enabled.Ptr())
	assert.False(t, *payload.Enabled.Ptr())
	assert.Nil(t, payload.Locked.Ptr())
}

func TestMustParseUint(t *testing.T) {
	assert.Equal(t, uint(42), MustParseUint("42"))
	assert.Equal(t, uint(0), MustParseUint("not-a-number"))
	assert.Equal(t, uint(0), MustParseUint(""))
}
