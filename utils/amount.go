package utils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// MalformedNumberError reports a captured numeric token that does not match
// the vendor's number format. The extractor only feeds this parser tokens
// captured by its own patterns, but OCR can corrupt digits inside a token
// that still matched the surrounding shape.
type MalformedNumberError struct {
	Token string
}

func (e *MalformedNumberError) Error() string {
	return fmt.Sprintf("malformed number token %q", e.Token)
}

// amountRe is the vendor's numeric shape: optional sign, digits with
// optional space (or non-breaking space) thousands separators, comma as
// decimal separator. "1 234,56", "1234,56", "-2,00" and "400" all match.
var amountRe = regexp.MustCompile(`^-?[0-9]+(?:[ \x{00A0}][0-9]{3})*(?:,[0-9]+)?$`)

// ParseAmount converts a locale-formatted numeric token into an exact
// decimal value: thousands separators removed, decimal comma replaced by a
// point. Returns *MalformedNumberError for tokens outside the expected shape.
func ParseAmount(token string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(token)
	if !amountRe.MatchString(trimmed) {
		return decimal.Zero, &MalformedNumberError{Token: token}
	}

	normalized := strings.NewReplacer(" ", "", " ", "", ",", ".").Replace(trimmed)
	value, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, &MalformedNumberError{Token: token}
	}

	return value, nil
}
