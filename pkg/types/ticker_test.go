package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewTicker_Validation 大写归一化与字符集校验
func TestNewTicker_Validation(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
		err   error
	}{
		{"uppercased", "acme", "ACME", nil},
		{"punctuation allowed", "a_b-c.d/e", "A_B-C.D/E", nil},
		{"full length", "ABCDEFGHIJKL", "ABCDEFGHIJKL", nil},
		{"empty", "", "", ErrEmptyTicker},
		{"too long", "ABCDEFGHIJKLM", "", ErrTickerTooLong},
		{"space rejected", "AC ME", "", ErrInvalidTickerCharacter},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// Act
			ticker, err := NewTicker(tc.input)

			// Assert
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, ticker.String())
			assert.Equal(t, len(tc.want), ticker.Len())
			assert.Len(t, ticker.KeyBytes(), TickerLen)
		})
	}
}

// TestTicker_TextRoundTrip 文本编解码
func TestTicker_TextRoundTrip(t *testing.T) {
	// Arrange
	original := MustTicker("acme")

	// Act
	text, err := original.MarshalText()
	require.NoError(t, err)
	var decoded Ticker
	require.NoError(t, decoded.UnmarshalText(text))

	// Assert
	assert.Equal(t, original, decoded)
	assert.Error(t, decoded.UnmarshalText([]byte("bad ticker")))
	assert.True(t, Ticker{}.IsZero())
}

// TestIdentityId_TextRoundTrip 十六进制文本编解码
func TestIdentityId_TextRoundTrip(t *testing.T) {
	// Arrange
	id := IdentityId{0xab, 0xcd}

	// Act
	parsed, err := ParseIdentityId(id.String())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, id, parsed)
	assert.Equal(t, "0xabcd", id.String()[:6])
	_, err = ParseIdentityId("0x1234")
	assert.Error(t, err)
}
