package paia

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		minor    int64
		currency string
		valid    bool
	}{
		{
			name:     "simple amount",
			input:    "12.50 EUR",
			minor:    1250,
			currency: "EUR",
			valid:    true,
		},
		{
			name:     "whole euros",
			input:    "3.00 EUR",
			minor:    300,
			currency: "EUR",
			valid:    true,
		},
		{
			name:     "zero amount",
			input:    "0.00 USD",
			minor:    0,
			currency: "USD",
			valid:    true,
		},
		{
			name:     "large amount",
			input:    "1234.99 GBP",
			minor:    123499,
			currency: "GBP",
			valid:    true,
		},
		{
			name:  "garbage passes through",
			input: "bad",
			valid: false,
		},
		{
			name:  "missing currency",
			input: "12.50",
			valid: false,
		},
		{
			name:  "one decimal digit",
			input: "12.5 EUR",
			valid: false,
		},
		{
			name:  "lowercase currency",
			input: "12.50 eur",
			valid: false,
		},
		{
			name:  "negative amount",
			input: "-12.50 EUR",
			valid: false,
		},
		{
			name:  "empty string",
			input: "",
			valid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			money := ParseMoney(tt.input)
			assert.Equal(t, tt.valid, money.Valid)
			assert.Equal(t, tt.input, money.Raw)
			if tt.valid {
				assert.Equal(t, tt.minor, money.Minor)
				assert.Equal(t, tt.currency, money.Currency)
			}
		})
	}
}

func TestMoneyString(t *testing.T) {
	assert.Equal(t, "12.50 EUR", ParseMoney("12.50 EUR").String())
	assert.Equal(t, "0.05 EUR", ParseMoney("0.05 EUR").String())
	assert.Equal(t, "bad", ParseMoney("bad").String())
}

func TestMoneyMarshalJSON(t *testing.T) {
	parsed, err := json.Marshal(ParseMoney("3.00 EUR"))
	require.NoError(t, err)
	assert.Equal(t, "300", string(parsed))

	passthrough, err := json.Marshal(ParseMoney("bad"))
	require.NoError(t, err)
	assert.Equal(t, `"bad"`, string(passthrough))
}
