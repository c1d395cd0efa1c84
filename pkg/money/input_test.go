package money

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInputDecodesNumbersAndStrings(t *testing.T) {
	var payload struct {
		A Input `json:"a"`
		B Input `json:"b"`
		C Input `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 12.5, "b": "12,50", "c": null}`), &payload))

	a, err := payload.A.Decimal()
	require.NoError(t, err)
	b, err := payload.B.Decimal()
	require.NoError(t, err)
	assert.True(t, a.Equal(b))

	_, err = payload.C.Decimal()
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestInputRejectsObjects(t *testing.T) {
	var in Input
	assert.Error(t, json.Unmarshal([]byte(`{"x":1}`), &in))
}

func TestParseSigned(t *testing.T) {
	d, err := ParseSigned("-40,5")
	require.NoError(t, err)
	assert.Equal(t, "-40.5", d.String())

	d, err = ParseSigned("+10")
	require.NoError(t, err)
	assert.Equal(t, "10", d.String())

	d, err = ParseSigned("5")
	require.NoError(t, err)
	assert.Equal(t, "5", d.String())

	for _, bad := range []string{"-", "+", "+-5", "-+5", "--5", "++5", "- 5", "+ 5", "-\u00a05"} {
		_, err := ParseSigned(bad)
		assert.ErrorIs(t, err, ErrInvalidAmount, bad)
	}
}
