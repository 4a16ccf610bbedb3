package einvoice

import (
	"regexp"
	"strings"
	"time"

	"github.com/erp/einvoice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DocumentType is the schema document type code.
type DocumentType string

const (
	DocumentTypeInvoice    DocumentType = "INV"
	DocumentTypeCreditNote DocumentType = "CRN"
)

// IsValid checks if the type is supported
func (t DocumentType) IsValid() bool {
	return t == DocumentTypeInvoice || t == DocumentTypeCreditNote
}

// Label returns a human readable name for messages
func (t DocumentType) Label() string {
	if t == DocumentTypeCreditNote {
		return "Credit note"
	}
	return "Invoice"
}

// DocumentStatus tracks the IRN lifecycle of a document.
type DocumentStatus string

const (
	DocumentStatusDraft        DocumentStatus = "DRAFT"
	DocumentStatusIRNGenerated DocumentStatus = "IRN_GENERATED"
	DocumentStatusIRNCancelled DocumentStatus = "IRN_CANCELLED"
)

// DateLayout is the schema date format (dd/mm/yyyy).
const DateLayout = "02/01/2006"

var documentNumberPattern = regexp.MustCompile(`^(?i)[A-Z1-9][A-Z0-9/-]{0,15}$`)

// LineItemInput is the caller supplied part of a line.
type LineItemInput struct {
	Description string
	HSNCode     string
	IsService   bool
	Quantity    decimal.Decimal
	Unit        string
	UnitPrice   decimal.Decimal
	GSTRate     decimal.Decimal
}

// LineItem is a priced and taxed document line.
type LineItem struct {
	SlNo             int
	Description      string
	HSNCode          string
	IsService        bool
	Quantity         decimal.Decimal
	Unit             string
	UnitPrice        decimal.Decimal
	GSTRate          decimal.Decimal
	AssessableAmount decimal.Decimal
	CGSTAmount       decimal.Decimal
	SGSTAmount       decimal.Decimal
	IGSTAmount       decimal.Decimal
	TotalItemValue   decimal.Decimal
}

// Document is an invoice or credit note and its IRN state.
type Document struct {
	shared.BaseAggregateRoot
	Type                  DocumentType
	Number                string
	Date                  time.Time
	UnitID                uuid.UUID
	CustomerID            uuid.UUID
	Items                 []LineItem
	AssessableValue       decimal.Decimal
	CGSTValue             decimal.Decimal
	SGSTValue             decimal.Decimal
	IGSTValue             decimal.Decimal
	TotalValue            decimal.Decimal
	AmountInWords         string
	Status                DocumentStatus
	OriginalInvoiceNumber string
	OriginalInvoiceDate   *time.Time

	Irn           string
	AckNo         string
	AckDate       string
	SignedQRCode  string
	SignedInvoice string
	CancelledAt   *time.Time
	CancelReason  CancelReason
	CancelRemark  string
}

// NewDocumentInput groups the fields needed to issue a document.
type NewDocumentInput struct {
	Type                  DocumentType
	Number                string
	Date                  time.Time
	Unit                  *SellerUnit
	Customer              *Customer
	Items                 []LineItemInput
	OriginalInvoiceNumber string
	OriginalInvoiceDate   *time.Time
}

// NewDocument validates input, prices every line and returns a DRAFT document
func NewDocument(in NewDocumentInput) (*Document, error) {
	if !in.Type.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Document type must be INV or CRN")
	}
	number := strings.TrimSpace(in.Number)
	if !documentNumberPattern.MatchString(number) {
		return nil, shared.NewDomainError("INVALID_INPUT", "Document number must be 1-16 characters of letters, digits, '/' or '-' and cannot start with 0")
	}
	if in.Date.IsZero() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Document date is required")
	}
	if in.Date.After(time.Now()) {
		return nil, shared.NewDomainError("INVALID_INPUT", "Document date cannot be in the future")
	}
	if in.Unit == nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Seller unit is required")
	}
	if in.Customer == nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Customer is required")
	}
	if len(in.Items) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Document must have at least one item")
	}
	if in.Type == DocumentTypeCreditNote {
		if strings.TrimSpace(in.OriginalInvoiceNumber) == "" || in.OriginalInvoiceDate == nil {
			return nil, shared.NewDomainError("INVALID_INPUT", "Credit note must reference the original invoice number and date")
		}
	}

	interState := IsInterState(in.Unit.GSTIN, in.Customer.GSTIN)
	items := make([]LineItem, 0, len(in.Items))
	for i, input := range in.Items {
		item, err := newLineItem(i+1, input, interState)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	doc := &Document{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Type:              in.Type,
		Number:            number,
		Date:              in.Date,
		UnitID:            in.Unit.ID,
		CustomerID:        in.Customer.ID,
		Items:             items,
		Status:            DocumentStatusDraft,
	}
	if in.Type == DocumentTypeCreditNote {
		doc.OriginalInvoiceNumber = strings.TrimSpace(in.OriginalInvoiceNumber)
		doc.OriginalInvoiceDate = in.OriginalInvoiceDate
	}
	doc.recalculateTotals()
	return doc, nil
}

func newLineItem(slNo int, in LineItemInput, interState bool) (LineItem, error) {
	if strings.TrimSpace(in.Description) == "" {
		return LineItem{}, shared.NewDomainError("INVALID_INPUT", "Item description cannot be empty")
	}
	hsn := strings.TrimSpace(in.HSNCode)
	if l := len(hsn); l < 4 || l > 8 {
		return LineItem{}, shared.NewDomainError("INVALID_INPUT", "HSN code must be 4 to 8 digits")
	}
	if !in.Quantity.IsPositive() {
		return LineItem{}, shared.NewDomainError("INVALID_INPUT", "Item quantity must be positive")
	}
	if in.UnitPrice.IsNegative() {
		return LineItem{}, shared.NewDomainError("INVALID_INPUT", "Item unit price cannot be negative")
	}
	if !IsValidGSTRate(in.GSTRate) {
		return LineItem{}, shared.NewDomainError("INVALID_INPUT", "GST rate is not a valid slab")
	}

	unit := strings.ToUpper(strings.TrimSpace(in.Unit))
	if unit == "" {
		unit = "NOS"
	}
	assessable := in.Quantity.Mul(in.UnitPrice).Round(2)
	tax := ComputeTax(assessable, in.GSTRate, interState)
	return LineItem{
		SlNo:             slNo,
		Description:      strings.TrimSpace(in.Description),
		HSNCode:          hsn,
		IsService:        in.IsService,
		Quantity:         in.Quantity,
		Unit:             unit,
		UnitPrice:        in.UnitPrice,
		GSTRate:          in.GSTRate,
		AssessableAmount: assessable,
		CGSTAmount:       tax.CGST,
		SGSTAmount:       tax.SGST,
		IGSTAmount:       tax.IGST,
		TotalItemValue:   assessable.Add(tax.Total()),
	}, nil
}

func (d *Document) recalculateTotals() {
	d.AssessableValue = decimal.Zero
	d.CGSTValue = decimal.Zero
	d.SGSTValue = decimal.Zero
	d.IGSTValue = decimal.Zero
	d.TotalValue = decimal.Zero
	for _, item := range d.Items {
		d.AssessableValue = d.AssessableValue.Add(item.AssessableAmount)
		d.CGSTValue = d.CGSTValue.Add(item.CGSTAmount)
		d.SGSTValue = d.SGSTValue.Add(item.SGSTAmount)
		d.IGSTValue = d.IGSTValue.Add(item.IGSTAmount)
		d.TotalValue = d.TotalValue.Add(item.TotalItemValue)
	}
	d.AmountInWords = AmountInWords(d.TotalValue)
}

// HasIRN reports whether an IRN is recorded locally
func (d *Document) HasIRN() bool {
	return d.Irn != ""
}

// EnsureCanGenerateIRN rejects documents that already carry an IRN
func (d *Document) EnsureCanGenerateIRN() error {
	if d.HasIRN() || d.Status != DocumentStatusDraft {
		return shared.NewDomainError("IRN_ALREADY_GENERATED", d.Type.Label()+" already has an IRN")
	}
	return nil
}

// EnsureCanCancelIRN requires an active IRN
func (d *Document) EnsureCanCancelIRN() error {
	if d.Status == DocumentStatusIRNCancelled {
		return shared.NewDomainError("IRN_ALREADY_CANCELLED", d.Type.Label()+" IRN is already cancelled")
	}
	if !d.HasIRN() {
		return shared.NewDomainError("IRN_NOT_GENERATED", d.Type.Label()+" has no IRN to cancel")
	}
	return nil
}

// RecordIRN stores a generated IRN on the document
func (d *Document) RecordIRN(result IRNResult) error {
	if result.Irn == "" {
		return shared.NewDomainError("INVALID_INPUT", "IRN cannot be empty")
	}
	if d.Status == DocumentStatusIRNCancelled {
		return shared.NewDomainError("IRN_ALREADY_CANCELLED", d.Type.Label()+" IRN is already cancelled")
	}
	d.Irn = result.Irn
	d.AckNo = result.AckNo
	d.AckDate = result.AckDate
	d.SignedQRCode = result.SignedQRCode
	d.SignedInvoice = result.SignedInvoice
	d.Status = DocumentStatusIRNGenerated
	d.Touch()
	d.IncrementVersion()
	return nil
}

// RecordCancellation marks the IRN as cancelled
func (d *Document) RecordCancellation(reason CancelReason, remark string, at time.Time) error {
	if err := d.EnsureCanCancelIRN(); err != nil {
		return err
	}
	d.Status = DocumentStatusIRNCancelled
	d.CancelReason = reason
	d.CancelRemark = remark
	d.CancelledAt = &at
	d.Touch()
	d.IncrementVersion()
	return nil
}

// Lookup returns the identifiers used to find the document upstream
func (d *Document) Lookup() DocumentLookup {
	return DocumentLookup{Type: d.Type, Number: d.Number, Date: d.Date}
}
