package einvoice

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const (
	karnatakaSeller  = "29AABCT1332L1ZT"
	karnatakaBuyer   = "29AAGCB7383J1Z4"
	maharashtraBuyer = "27AAPFU0939F1ZV"
)

func newTestUnit(t *testing.T) *SellerUnit {
	t.Helper()
	unit, err := NewSellerUnit("BLR-01", Party{
		GSTIN:     karnatakaSeller,
		LegalName: "Tata Components Pvt Ltd",
		Address:   "12 Industrial Area, Peenya",
		Location:  "Bengaluru",
		Pincode:   "560058",
	})
	require.NoError(t, err)
	return unit
}

func newTestCustomer(t *testing.T, gstin, pincode string) *Customer {
	t.Helper()
	customer, err := NewCustomer("CUST-"+gstin[:2], Party{
		GSTIN:     gstin,
		LegalName: "Bharat Traders",
		Address:   "5 Market Road",
		Location:  "Mumbai",
		Pincode:   pincode,
	})
	require.NoError(t, err)
	return customer
}

func testItems() []LineItemInput {
	return []LineItemInput{
		{
			Description: "Steel bracket",
			HSNCode:     "7326",
			Quantity:    decimal.NewFromInt(10),
			Unit:        "nos",
			UnitPrice:   decimal.NewFromInt(100),
			GSTRate:     decimal.NewFromInt(18),
		},
		{
			Description: "Installation",
			HSNCode:     "998719",
			IsService:   true,
			Quantity:    decimal.NewFromInt(1),
			UnitPrice:   decimal.RequireFromString("333.33"),
			GSTRate:     decimal.NewFromInt(5),
		},
	}
}

var testDocDate = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
