// Package money holds the decimal amount helpers shared by the ledger, reporting and exports.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is the only currency the app formats natively.
const DefaultCurrency = "PLN"

const nbsp = "\u00a0"

// ErrInvalidAmount is returned by Parse for empty, malformed or negative input.
var ErrInvalidAmount = errors.New("invalid amount")

// Money couples an amount with its ISO currency code.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// New builds a Money value; an empty currency means DefaultCurrency.
func New(amount decimal.Decimal, currency string) Money {
	if currency == "" {
		currency = DefaultCurrency
	}
	return Money{Amount: amount, Currency: strings.ToUpper(currency)}
}

// String renders the value through Format, or FormatFallback for foreign currencies.
func (m Money) String() string {
	if m.Currency == "" || m.Currency == DefaultCurrency {
		return Format(m.Amount)
	}
	return FormatFallback(m.Amount)
}

// Parse reads a user supplied amount. Both "12.50" and "12,50" are accepted.
func Parse(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.ReplaceAll(raw, " ", "")
	raw = strings.ReplaceAll(raw, nbsp, "")
	if raw == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	raw = strings.ReplaceAll(raw, ",", ".")
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrInvalidAmount, err)
	}
	if d.IsNegative() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d.Round(2), nil
}

// Positive reports whether d is strictly greater than zero.
func Positive(d decimal.Decimal) bool {
	return d.GreaterThan(decimal.Zero)
}

// FloorZero clamps negative values to zero.
func FloorZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Format renders an amount the way pl-PL currency formatting does: comma decimal
// separator, non-breaking space grouping once the integer part reaches five digits,
// and a trailing "zł".
func Format(d decimal.Decimal) string {
	fixed := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")
	if len(intPart) >= 5 {
		intPart = group(intPart)
	}
	sign := ""
	if d.Round(2).IsNegative() {
		sign = "-"
	}
	return sign + intPart + "," + frac + nbsp + "zł"
}

// FormatFallback mirrors the plain "toFixed(2) zł" rendering used when no locale
// formatter is available.
func FormatFallback(d decimal.Decimal) string {
	return d.StringFixed(2) + " zł"
}

func group(digits string) string {
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(nbsp)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
