package money

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Input is an amount as typed by a user. It decodes from a JSON number or string so
// both 12.5 and "12,50" reach Parse unchanged.
type Input string

// UnmarshalJSON accepts numbers, strings and null.
func (in *Input) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*in = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*in = Input(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*in = Input(n.String())
	return nil
}

// Decimal parses the input as a non-negative amount.
func (in Input) Decimal() (decimal.Decimal, error) {
	return Parse(string(in))
}

// ParseSigned is Parse with at most one leading sign, used for manual adjustments. The
// digits must follow the sign directly.
func ParseSigned(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	negative := false
	if raw != "" && (raw[0] == '-' || raw[0] == '+') {
		negative = raw[0] == '-'
		raw = raw[1:]
		if raw == "" || strings.ContainsRune("+- \t", rune(raw[0])) || strings.HasPrefix(raw, nbsp) {
			return decimal.Zero, ErrInvalidAmount
		}
	}
	d, err := Parse(raw)
	if err != nil {
		return decimal.Zero, err
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}
