package paia

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
)

// moneyPattern matches the PAIA monetary value grammar: an amount with
// exactly two decimal digits, a space and a three-letter currency code.
var moneyPattern = regexp.MustCompile(`^(\d+)\.(\d{2}) ([A-Z]{3})$`)

// Money is a monetary value in integer minor units. Values that do not match
// the protocol grammar are passed through unparsed so that downstream
// formatting decides how to reject them.
type Money struct {
	Minor    int64
	Currency string
	Raw      string
	Valid    bool
}

// ParseMoney parses a PAIA amount string. It never fails: a non-matching
// input yields a Money with Valid=false carrying the original string.
func ParseMoney(s string) Money {
	m := moneyPattern.FindStringSubmatch(s)
	if m == nil {
		return Money{Raw: s}
	}
	whole, _ := strconv.ParseInt(m[1], 10, 64)
	frac, _ := strconv.ParseInt(m[2], 10, 64)
	return Money{
		Minor:    whole*100 + frac,
		Currency: m[3],
		Raw:      s,
		Valid:    true,
	}
}

// String renders a parsed amount back into the protocol grammar. Unparsed
// values are returned verbatim.
func (m Money) String() string {
	if !m.Valid {
		return m.Raw
	}
	return fmt.Sprintf("%d.%02d %s", m.Minor/100, m.Minor%100, m.Currency)
}

// MarshalJSON emits the minor-unit integer for parsed values and the raw
// string for everything else.
func (m Money) MarshalJSON() ([]byte, error) {
	if m.Valid {
		return json.Marshal(m.Minor)
	}
	return json.Marshal(m.Raw)
}
