package usecase

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		input         string
		currency      string
		expectedMinor int64
		expectedErr   bool
	}{
		{input: "10.99", currency: "usd", expectedMinor: 1099},
		{input: "10", currency: "usd", expectedMinor: 1000},
		{input: "0.5", currency: "usd", expectedMinor: 50},
		{input: "19.995", currency: "usd", expectedMinor: 2000},
		{input: "0.005", currency: "usd", expectedMinor: 1},
		{input: "92233720368547758.07", currency: "usd", expectedMinor: 9223372036854775807},
		{input: "1500", currency: "jpy", expectedMinor: 1500},
		{input: "1500", currency: "JPY", expectedMinor: 1500},
		{input: "0.7", currency: "jpy", expectedMinor: 1},
		{input: "0.004", currency: "usd", expectedErr: true},
		{input: "0.4", currency: "jpy", expectedErr: true},
		{input: "184467440737095516.17", currency: "usd", expectedErr: true},
		{input: "92233720368547758.08", currency: "usd", expectedErr: true},
		{input: "1e30", currency: "usd", expectedErr: true},
		{input: "0", currency: "usd", expectedErr: true},
		{input: "-1", currency: "usd", expectedErr: true},
		{input: "ten", currency: "usd", expectedErr: true},
		{input: "", currency: "usd", expectedErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.currency+" "+tt.input, func(t *testing.T) {
			amount, err := parsePrice(tt.input, tt.currency)
			if tt.expectedErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			minor, ok := toMinorUnits(amount, tt.currency)
			assert.True(t, ok)
			assert.Equal(t, tt.expectedMinor, minor)
		})
	}
}

func TestToMinorUnits(t *testing.T) {
	minor, ok := toMinorUnits(decimal.RequireFromString("10.99"), "usd")
	assert.True(t, ok)
	assert.Equal(t, int64(1099), minor)

	minor, ok = toMinorUnits(decimal.RequireFromString("10.99"), "krw")
	assert.True(t, ok)
	assert.Equal(t, int64(11), minor)

	_, ok = toMinorUnits(decimal.RequireFromString("184467440737095516.17"), "usd")
	assert.False(t, ok)
}

func TestMinorUnitExponent(t *testing.T) {
	assert.Equal(t, int32(2), minorUnitExponent("usd"))
	assert.Equal(t, int32(2), minorUnitExponent("brl"))
	assert.Equal(t, int32(0), minorUnitExponent("jpy"))
	assert.Equal(t, int32(0), minorUnitExponent("XOF"))
}
