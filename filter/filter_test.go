package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patron-tools/patronctl/paia"
)

func TestCompile(t *testing.T) {
	tests := []struct {
		name        string
		expression  string
		wantErr     bool
		errContains string
	}{
		{
			name:       "valid expression",
			expression: `statusIs(3)`,
		},
		{
			name:        "empty expression",
			expression:  "   ",
			wantErr:     true,
			errContains: "empty",
		},
		{
			name:       "invalid syntax",
			expression: `statusIs(3`,
			wantErr:    true,
		},
		{
			name:       "complex expression",
			expression: `statusIs(3) and Item.Renewals > 1 and contains(Item.Storage, "main")`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			itemFilter, err := Compile(tt.expression)
			if tt.wantErr {
				require.Error(t, err)
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				return
			}
			require.NoError(t, err)
			require.NotNil(t, itemFilter)
			assert.Equal(t, tt.expression, itemFilter.String())
		})
	}
}

func TestEvaluate(t *testing.T) {
	doc := paia.ItemDocument{
		Item:     "uri:1",
		Status:   paia.StatusHeld,
		Label:    "Compilers: Principles and Practice",
		Storage:  "Main reading room",
		Renewals: 2,
		Endtime:  "2099-01-02",
	}

	tests := []struct {
		name       string
		expression string
		want       bool
	}{
		{name: "status match", expression: `statusIs(3)`, want: true},
		{name: "status mismatch", expression: `statusIs(4)`, want: false},
		{name: "status label", expression: `statusLabel() == "held"`, want: true},
		{name: "field access", expression: `Item.Renewals > 1`, want: true},
		{name: "case-insensitive contains", expression: `contains(Item.Storage, "READING")`, want: true},
		{name: "startsWith", expression: `startsWith(Item.Label, "compilers")`, want: true},
		{name: "combined", expression: `statusIs(3) and Item.Renewals < 2`, want: false},
		{name: "date helper", expression: `daysUntil(Item.Endtime) > 0`, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			itemFilter, err := Compile(tt.expression)
			require.NoError(t, err)
			assert.Equal(t, tt.want, itemFilter.Evaluate(doc))
		})
	}
}

func TestApply(t *testing.T) {
	docs := []paia.ItemDocument{
		{Item: "A", Status: paia.StatusHeld},
		{Item: "B", Status: paia.StatusProvided},
		{Item: "C", Status: paia.StatusHeld},
	}

	itemFilter, err := Compile(`statusIs(3)`)
	require.NoError(t, err)

	filtered := itemFilter.Apply(docs)
	require.Len(t, filtered, 2)
	assert.Equal(t, "A", filtered[0].Item)
	assert.Equal(t, "C", filtered[1].Item)
}
