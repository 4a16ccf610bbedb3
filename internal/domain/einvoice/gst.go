package einvoice

import (
	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	two     = decimal.NewFromInt(2)
)

// validGSTRates are the slab rates accepted by the e-invoice schema.
var validGSTRates = []string{"0", "0.1", "0.25", "1", "1.5", "3", "5", "6", "7.5", "12", "18", "28"}

// IsValidGSTRate checks if rate is an accepted GST slab
func IsValidGSTRate(rate decimal.Decimal) bool {
	for _, r := range validGSTRates {
		if rate.Equal(decimal.RequireFromString(r)) {
			return true
		}
	}
	return false
}

// IsInterState reports whether supply between the two registrations crosses
// a state boundary.
func IsInterState(sellerGSTIN, buyerGSTIN string) bool {
	return StateCode(sellerGSTIN) != StateCode(buyerGSTIN)
}

// TaxBreakup is the GST split of one assessable amount.
type TaxBreakup struct {
	CGST decimal.Decimal
	SGST decimal.Decimal
	IGST decimal.Decimal
}

// Total returns the sum of all components
func (t TaxBreakup) Total() decimal.Decimal {
	return t.CGST.Add(t.SGST).Add(t.IGST)
}

// ComputeTax splits GST on an assessable amount. Intra-state supply is taxed
// half as CGST and half as SGST; inter-state supply is taxed as IGST.
// Each component is rounded to 2 decimal places.
func ComputeTax(assessable, rate decimal.Decimal, interState bool) TaxBreakup {
	tax := assessable.Mul(rate).Div(hundred)
	if interState {
		return TaxBreakup{
			CGST: decimal.Zero,
			SGST: decimal.Zero,
			IGST: tax.Round(2),
		}
	}
	half := tax.Div(two).Round(2)
	return TaxBreakup{
		CGST: half,
		SGST: half,
		IGST: decimal.Zero,
	}
}
