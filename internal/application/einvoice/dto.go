package einvoice

import (
	"time"

	domain "github.com/erp/einvoice/internal/domain/einvoice"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RequestDateLayout is the date format accepted by the API
const RequestDateLayout = "2006-01-02"

// PartyRequest holds the registration details of a unit or customer
type PartyRequest struct {
	Code      string `json:"code" binding:"required,min=1,max=50"`
	GSTIN     string `json:"gstin" binding:"required,gstin"`
	LegalName string `json:"legal_name" binding:"required,min=1,max=100"`
	TradeName string `json:"trade_name" binding:"max=100"`
	Address   string `json:"address" binding:"required,min=1,max=200"`
	Location  string `json:"location" binding:"required,min=3,max=100"`
	Pincode   string `json:"pincode" binding:"required,len=6,numeric"`
	Email     string `json:"email" binding:"omitempty,email,max=100"`
	Phone     string `json:"phone" binding:"omitempty,min=6,max=12,numeric"`
}

func (r PartyRequest) toParty() domain.Party {
	return domain.Party{
		GSTIN:     r.GSTIN,
		LegalName: r.LegalName,
		TradeName: r.TradeName,
		Address:   r.Address,
		Location:  r.Location,
		Pincode:   r.Pincode,
		Email:     r.Email,
		Phone:     r.Phone,
	}
}

// PartyResponse represents a seller unit or customer in API responses
type PartyResponse struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code"`
	GSTIN     string    `json:"gstin"`
	LegalName string    `json:"legal_name"`
	TradeName string    `json:"trade_name,omitempty"`
	Address   string    `json:"address"`
	Location  string    `json:"location"`
	Pincode   string    `json:"pincode"`
	StateCode string    `json:"state_code"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toPartyResponse(id uuid.UUID, code string, p domain.Party, createdAt time.Time) *PartyResponse {
	return &PartyResponse{
		ID:        id,
		Code:      code,
		GSTIN:     p.GSTIN,
		LegalName: p.LegalName,
		TradeName: p.TradeName,
		Address:   p.Address,
		Location:  p.Location,
		Pincode:   p.Pincode,
		StateCode: p.StateCode,
		Email:     p.Email,
		Phone:     p.Phone,
		CreatedAt: createdAt,
	}
}

// LineItemRequest is one line of an invoice or credit note
type LineItemRequest struct {
	Description string          `json:"description" binding:"required,min=1,max=300"`
	HSNCode     string          `json:"hsn_code" binding:"required,min=4,max=8,numeric"`
	IsService   bool            `json:"is_service"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit" binding:"max=8"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	GSTRate     decimal.Decimal `json:"gst_rate"`
}

// IssueInvoiceRequest creates a DRAFT invoice
type IssueInvoiceRequest struct {
	Number       string            `json:"number" binding:"required,min=1,max=16"`
	Date         string            `json:"date" binding:"required,datetime=2006-01-02"`
	UnitCode     string            `json:"unit_code" binding:"required"`
	CustomerCode string            `json:"customer_code" binding:"required"`
	Items        []LineItemRequest `json:"items" binding:"required,min=1,dive"`
}

// IssueCreditNoteRequest creates a DRAFT credit note against an invoice
type IssueCreditNoteRequest struct {
	IssueInvoiceRequest
	OriginalInvoiceNumber string `json:"original_invoice_number" binding:"required,min=1,max=16"`
	OriginalInvoiceDate   string `json:"original_invoice_date" binding:"required,datetime=2006-01-02"`
}

// CancelIRNRequest cancels the IRN of a document
type CancelIRNRequest struct {
	Reason string `json:"reason" binding:"required,oneof=1 2 3 4"`
	Remark string `json:"remark" binding:"required,min=1,max=100"`
}

// LineItemResponse represents a priced line in API responses
type LineItemResponse struct {
	SlNo             int             `json:"sl_no"`
	Description      string          `json:"description"`
	HSNCode          string          `json:"hsn_code"`
	IsService        bool            `json:"is_service"`
	Quantity         decimal.Decimal `json:"quantity"`
	Unit             string          `json:"unit"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	GSTRate          decimal.Decimal `json:"gst_rate"`
	AssessableAmount decimal.Decimal `json:"assessable_amount"`
	CGSTAmount       decimal.Decimal `json:"cgst_amount"`
	SGSTAmount       decimal.Decimal `json:"sgst_amount"`
	IGSTAmount       decimal.Decimal `json:"igst_amount"`
	TotalItemValue   decimal.Decimal `json:"total_item_value"`
}

// DocumentResponse represents an invoice or credit note in API responses
type DocumentResponse struct {
	ID                    uuid.UUID          `json:"id"`
	Type                  string             `json:"type"`
	Number                string             `json:"number"`
	Date                  string             `json:"date"`
	UnitID                uuid.UUID          `json:"unit_id"`
	CustomerID            uuid.UUID          `json:"customer_id"`
	Items                 []LineItemResponse `json:"items"`
	AssessableValue       decimal.Decimal    `json:"assessable_value"`
	CGSTValue             decimal.Decimal    `json:"cgst_value"`
	SGSTValue             decimal.Decimal    `json:"sgst_value"`
	IGSTValue             decimal.Decimal    `json:"igst_value"`
	TotalValue            decimal.Decimal    `json:"total_value"`
	AmountInWords         string             `json:"amount_in_words"`
	Status                string             `json:"status"`
	OriginalInvoiceNumber string             `json:"original_invoice_number,omitempty"`
	OriginalInvoiceDate   string             `json:"original_invoice_date,omitempty"`
	Irn                   string             `json:"irn,omitempty"`
	AckNo                 string             `json:"ack_no,omitempty"`
	AckDate               string             `json:"ack_date,omitempty"`
	SignedQRCode          string             `json:"signed_qr_code,omitempty"`
	CancelledAt           *time.Time         `json:"cancelled_at,omitempty"`
	CancelReason          string             `json:"cancel_reason,omitempty"`
	CancelRemark          string             `json:"cancel_remark,omitempty"`
	CreatedAt             time.Time          `json:"created_at"`
	UpdatedAt             time.Time          `json:"updated_at"`
	Version               int                `json:"version"`
}

// ToDocumentResponse converts a domain document to its API shape
func ToDocumentResponse(d *domain.Document) *DocumentResponse {
	items := make([]LineItemResponse, len(d.Items))
	for i, it := range d.Items {
		items[i] = LineItemResponse{
			SlNo:             it.SlNo,
			Description:      it.Description,
			HSNCode:          it.HSNCode,
			IsService:        it.IsService,
			Quantity:         it.Quantity,
			Unit:             it.Unit,
			UnitPrice:        it.UnitPrice,
			GSTRate:          it.GSTRate,
			AssessableAmount: it.AssessableAmount,
			CGSTAmount:       it.CGSTAmount,
			SGSTAmount:       it.SGSTAmount,
			IGSTAmount:       it.IGSTAmount,
			TotalItemValue:   it.TotalItemValue,
		}
	}

	resp := &DocumentResponse{
		ID:                    d.ID,
		Type:                  string(d.Type),
		Number:                d.Number,
		Date:                  d.Date.Format(RequestDateLayout),
		UnitID:                d.UnitID,
		CustomerID:            d.CustomerID,
		Items:                 items,
		AssessableValue:       d.AssessableValue,
		CGSTValue:             d.CGSTValue,
		SGSTValue:             d.SGSTValue,
		IGSTValue:             d.IGSTValue,
		TotalValue:            d.TotalValue,
		AmountInWords:         d.AmountInWords,
		Status:                string(d.Status),
		OriginalInvoiceNumber: d.OriginalInvoiceNumber,
		Irn:                   d.Irn,
		AckNo:                 d.AckNo,
		AckDate:               d.AckDate,
		SignedQRCode:          d.SignedQRCode,
		CancelledAt:           d.CancelledAt,
		CancelReason:          string(d.CancelReason),
		CancelRemark:          d.CancelRemark,
		CreatedAt:             d.CreatedAt,
		UpdatedAt:             d.UpdatedAt,
		Version:               d.Version,
	}
	if d.OriginalInvoiceDate != nil {
		resp.OriginalInvoiceDate = d.OriginalInvoiceDate.Format(RequestDateLayout)
	}
	return resp
}
