package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		token    string
		expected string
	}{
		{"113,50", "113.5"},
		{"4 767,00", "4767"},
		{"1 234 567,89", "1234567.89"},
		{"400", "400"},
		{"-28,00", "-28"},
		{"0,00", "0"},
		{"1 500,00", "1500"},
	}

	for _, tc := range cases {
		value, err := ParseAmount(tc.token)
		require.NoError(t, err, "token %q", tc.token)
		assert.True(t, value.Equal(decimal.RequireFromString(tc.expected)),
			"token %q: got %s, want %s", tc.token, value, tc.expected)
	}
}

func TestParseAmountMalformed(t *testing.T) {
	tokens := []string{
		"",
		"abc",
		"12.50",     // wrong decimal separator
		"1,2,3",     // two commas
		"1 23,00",   // broken thousands group
		"12 3456,0", // broken thousands group
		"4O0",       // OCR-corrupted digit
	}

	for _, token := range tokens {
		_, err := ParseAmount(token)
		require.Error(t, err, "token %q", token)
		var malformed *MalformedNumberError
		assert.ErrorAs(t, err, &malformed, "token %q", token)
	}
}
