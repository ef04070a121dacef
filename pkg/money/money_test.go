package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefund(t *testing.T) {
	tests := []struct {
		cost float64
		want string
	}{
		{10, "12.00"},
		{10.1, "12.12"},
		{0, "0.00"},
		{19.99, "23.99"},
	}

	for _, tt := range tests {
		t.Run(Format(FromFloat(tt.cost)), func(t *testing.T) {
			assert.Equal(t, tt.want, Format(Refund(FromFloat(tt.cost))))
		})
	}
}

func TestToMinorUnitsTruncates(t *testing.T) {
	tests := []struct {
		amount string
		want   int64
	}{
		{"10.00", 1000},
		{"19.99", 1999},
		{"0.015", 1},
		{"12.345", 1234},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			d, err := Parse(tt.amount)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ToMinorUnits(d))
		})
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse("ten dollars")
	assert.Error(t, err)
}
