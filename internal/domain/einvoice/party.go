package einvoice

import (
	"regexp"
	"strings"

	"github.com/erp/einvoice/internal/domain/shared"
)

var (
	gstinPattern   = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)
	pincodePattern = regexp.MustCompile(`^[1-9][0-9]{5}$`)
)

// IsValidGSTIN checks the 15 character GSTIN format.
func IsValidGSTIN(gstin string) bool {
	return gstinPattern.MatchString(gstin)
}

// StateCode returns the two digit state code encoded in a GSTIN.
func StateCode(gstin string) string {
	if len(gstin) < 2 {
		return ""
	}
	return gstin[:2]
}

// Party is a registered taxpayer appearing on a document.
type Party struct {
	GSTIN     string
	LegalName string
	TradeName string
	Address   string
	Location  string
	Pincode   string
	StateCode string
	Email     string
	Phone     string
}

func (p *Party) normalize() {
	p.GSTIN = strings.ToUpper(strings.TrimSpace(p.GSTIN))
	p.LegalName = strings.TrimSpace(p.LegalName)
	p.TradeName = strings.TrimSpace(p.TradeName)
	p.Address = strings.TrimSpace(p.Address)
	p.Location = strings.TrimSpace(p.Location)
	p.Pincode = strings.TrimSpace(p.Pincode)
	if p.StateCode == "" {
		p.StateCode = StateCode(p.GSTIN)
	}
}

// Validate checks the party against e-invoice field rules
func (p *Party) Validate() error {
	if !IsValidGSTIN(p.GSTIN) {
		return shared.NewDomainError("INVALID_GSTIN", "GSTIN is not valid")
	}
	if p.LegalName == "" {
		return shared.NewDomainError("INVALID_INPUT", "Legal name cannot be empty")
	}
	if len(p.LegalName) > 100 {
		return shared.NewDomainError("INVALID_INPUT", "Legal name cannot exceed 100 characters")
	}
	if p.Address == "" {
		return shared.NewDomainError("INVALID_INPUT", "Address cannot be empty")
	}
	if p.Location == "" {
		return shared.NewDomainError("INVALID_INPUT", "Location cannot be empty")
	}
	if !pincodePattern.MatchString(p.Pincode) {
		return shared.NewDomainError("INVALID_INPUT", "Pincode must be 6 digits")
	}
	if p.StateCode != StateCode(p.GSTIN) {
		return shared.NewDomainError("INVALID_INPUT", "State code does not match GSTIN")
	}
	return nil
}

// SellerUnit is a registered place of business issuing documents.
type SellerUnit struct {
	shared.BaseEntity
	Code string
	Party
}

// NewSellerUnit creates a validated seller unit
func NewSellerUnit(code string, party Party) (*SellerUnit, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Unit code cannot be empty")
	}
	if len(code) > 50 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Unit code cannot exceed 50 characters")
	}
	party.normalize()
	if err := party.Validate(); err != nil {
		return nil, err
	}
	return &SellerUnit{
		BaseEntity: shared.NewBaseEntity(),
		Code:       code,
		Party:      party,
	}, nil
}

// Customer is the B2B recipient of a document.
type Customer struct {
	shared.BaseEntity
	Code string
	Party
}

// NewCustomer creates a validated customer
func NewCustomer(code string, party Party) (*Customer, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Customer code cannot be empty")
	}
	if len(code) > 50 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Customer code cannot exceed 50 characters")
	}
	party.normalize()
	if err := party.Validate(); err != nil {
		return nil, err
	}
	return &Customer{
		BaseEntity: shared.NewBaseEntity(),
		Code:       code,
		Party:      party,
	}, nil
}
