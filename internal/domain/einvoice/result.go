package einvoice

import (
	"time"

	"github.com/erp/einvoice/internal/domain/shared"
)

// IRNResult is the success record of an IRN operation.
type IRNResult struct {
	Irn           string `json:"irn"`
	AckNo         string `json:"ack_no,omitempty"`
	AckDate       string `json:"ack_date,omitempty"`
	SignedQRCode  string `json:"signed_qr_code,omitempty"`
	SignedInvoice string `json:"signed_invoice,omitempty"`
	Status        string `json:"status,omitempty"`
	CancelDate    string `json:"cancel_date,omitempty"`
	EwbNo         string `json:"ewb_no,omitempty"`
	EwbDate       string `json:"ewb_date,omitempty"`
	EwbValidTill  string `json:"ewb_valid_till,omitempty"`
}

// CancelReason is the upstream cancellation reason code.
type CancelReason string

const (
	CancelReasonDuplicate        CancelReason = "1"
	CancelReasonDataEntryMistake CancelReason = "2"
	CancelReasonOrderCancelled   CancelReason = "3"
	CancelReasonOthers           CancelReason = "4"
)

// IsValid checks if the reason is one of the accepted codes
func (r CancelReason) IsValid() bool {
	switch r {
	case CancelReasonDuplicate, CancelReasonDataEntryMistake, CancelReasonOrderCancelled, CancelReasonOthers:
		return true
	}
	return false
}

// MaxCancelRemarkLength is the upstream limit on CnlRem.
const MaxCancelRemarkLength = 100

// CancelRequest is the body of a cancel-IRN call.
type CancelRequest struct {
	Irn    string       `json:"Irn"`
	Reason CancelReason `json:"CnlRsn"`
	Remark string       `json:"CnlRem"`
}

// Validate checks the request against upstream limits
func (r CancelRequest) Validate() error {
	if r.Irn == "" {
		return shared.NewDomainError("INVALID_INPUT", "IRN is required for cancellation")
	}
	if !r.Reason.IsValid() {
		return shared.NewDomainError("INVALID_INPUT", "Cancel reason must be one of 1, 2, 3, 4")
	}
	if r.Remark == "" {
		return shared.NewDomainError("INVALID_INPUT", "Cancel remark is required")
	}
	if len([]rune(r.Remark)) > MaxCancelRemarkLength {
		return shared.NewDomainError("INVALID_INPUT", "Cancel remark cannot exceed 100 characters")
	}
	return nil
}

// DocumentLookup identifies a document upstream when its IRN is unknown locally.
type DocumentLookup struct {
	Type   DocumentType
	Number string
	Date   time.Time
}

// SessionInfo describes the cached credential pair without exposing secrets.
type SessionInfo struct {
	UserName             string    `json:"user_name"`
	AccessTokenExpiresAt time.Time `json:"access_token_expires_at"`
	SessionExpiresAt     time.Time `json:"session_expires_at"`
}
