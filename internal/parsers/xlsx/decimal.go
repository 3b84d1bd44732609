package xlsx

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Locale describes the number formatting conventions of a spreadsheet export.
type Locale struct {
	DecimalSeparator  string
	ThousandSeparator string
}

// RussianLocale matches exports using comma decimals and space thousands
// ("1 234,56").
var RussianLocale = Locale{DecimalSeparator: ",", ThousandSeparator: " "}

// EnglishLocale matches exports using dot decimals and comma thousands
// ("1,234.56").
var EnglishLocale = Locale{DecimalSeparator: ".", ThousandSeparator: ","}

// ParseDecimal parses a locale-formatted number string without losing
// precision. Native dot-decimal strings are accepted regardless of locale,
// since numeric cells often arrive already normalized.
func ParseDecimal(s string, loc Locale) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(s)
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("empty numeric value")
	}

	// Non-breaking spaces show up as thousand separators in exports.
	cleaned = strings.ReplaceAll(cleaned, " ", " ")

	if loc.ThousandSeparator != "" {
		cleaned = strings.ReplaceAll(cleaned, loc.ThousandSeparator, "")
	}
	if loc.DecimalSeparator != "" && loc.DecimalSeparator != "." {
		// A dot alongside no locale separator means the cell is already
		// dot-decimal; only rewrite when the locale separator is present.
		if strings.Contains(cleaned, loc.DecimalSeparator) {
			cleaned = strings.ReplaceAll(cleaned, loc.DecimalSeparator, ".")
		}
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid numeric value %q: %w", s, err)
	}
	return d, nil
}
