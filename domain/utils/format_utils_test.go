package utils

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatShortNotation(t *testing.T) {
	t.Parallel()

	huge := new(uint256.Int).Lsh(uint256.NewInt(1), 100)

	tests := []struct {
		name     string
		value    uint256.Int
		expected string
	}{
		{"zero", *uint256.NewInt(0), "0"},
		{"small", *uint256.NewInt(999), "999"},
		{"exactly 1k", *uint256.NewInt(1000), "1.0k"},
		{"15k", *uint256.NewInt(15000), "15k"},
		{"minimum deposit", *uint256.NewInt(1_000_000), "1.00M"},
		{"billions", *uint256.NewInt(1_500_000_000), "1.50B"},
		{"beyond uint64", *huge, huge.Dec()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, FormatShortNotation(tt.value))
		})
	}
}

func TestParseAmount(t *testing.T) {
	t.Parallel()

	v, err := ParseAmount("1000000")
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000), v.Uint64())

	max := "115792089237316195423570985008687907853269984665640564039457584007913129639935"
	v, err = ParseAmount(max)
	require.NoError(t, err)
	assert.Equal(t, max, v.Dec())

	for _, bad := range []string{"", "-1", "+5", "abc", "1.5", "0x10",
		"115792089237316195423570985008687907853269984665640564039457584007913129639936"} {
		_, err := ParseAmount(bad)
		assert.ErrorIs(t, err, ErrInvalidAmount, bad)
	}
}

func TestParseOptionalAmount(t *testing.T) {
	t.Parallel()

	got, err := ParseOptionalAmount(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	s := "42"
	got, err = ParseOptionalAmount(&s)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, uint64(42), got.Uint64())
}
