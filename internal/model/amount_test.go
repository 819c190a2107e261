package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input string
		ok    bool
		want  string
	}{
		{"500", true, "500"},
		{" 12.34 ", true, "12.34"},
		{"0.01", true, "0.01"},
		{"0", false, ""},
		{"0.00", false, ""},
		{"-5", false, ""},
		{"", false, ""},
		{"abc", false, ""},
		{"1,5", false, ""},
	}
	for _, tt := range tests {
		got, ok := ParseAmount(tt.input)
		assert.Equal(t, tt.ok, ok, "ParseAmount(%q)", tt.input)
		if tt.ok {
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "ParseAmount(%q) = %s", tt.input, got)
		}
	}
}

func TestSumLines(t *testing.T) {
	lines := []SplitLine{
		{Amount: "100"},
		{Amount: "50"},
		{Amount: ""},
		{Amount: "x"},
	}
	assert.True(t, SumLines(lines).Equal(decimal.NewFromInt(150)))
	assert.True(t, SumLines(nil).IsZero())
}
