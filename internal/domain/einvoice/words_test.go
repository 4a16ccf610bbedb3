package einvoice

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAmountInWords(t *testing.T) {
	tests := []struct {
		amount string
		want   string
	}{
		{"0", "Rupees Zero Only"},
		{"1", "Rupees One Only"},
		{"19", "Rupees Nineteen Only"},
		{"90", "Rupees Ninety Only"},
		{"1050.50", "Rupees One Thousand Fifty and Fifty Paise Only"},
		{"123456.78", "Rupees One Lakh Twenty Three Thousand Four Hundred Fifty Six and Seventy Eight Paise Only"},
		{"10000000", "Rupees One Crore Only"},
		{"250000000", "Rupees Twenty Five Crore Only"},
		{"0.05", "Rupees Zero and Five Paise Only"},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.want, AmountInWords(decimal.RequireFromString(tt.amount)))
		})
	}
}
