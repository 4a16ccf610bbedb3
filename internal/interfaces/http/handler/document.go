package handler

import (
	"context"
	"net/http"

	app "github.com/erp/einvoice/internal/application/einvoice"
	"github.com/gin-gonic/gin"
)

// DocumentService issues invoices and credit notes and drives their IRN lifecycle
type DocumentService interface {
	IssueInvoice(ctx context.Context, req app.IssueInvoiceRequest) (*app.DocumentResponse, error)
	GetInvoice(ctx context.Context, number string) (*app.DocumentResponse, error)
	GenerateInvoiceIRN(ctx context.Context, number string) (*app.DocumentResponse, error)
	CancelInvoiceIRN(ctx context.Context, number string, req app.CancelIRNRequest) (*app.DocumentResponse, error)
	RegenerateInvoiceIRN(ctx context.Context, number string) (*app.DocumentResponse, error)

	IssueCreditNote(ctx context.Context, req app.IssueCreditNoteRequest) (*app.DocumentResponse, error)
	GetCreditNote(ctx context.Context, number string) (*app.DocumentResponse, error)
	GenerateCreditNoteIRN(ctx context.Context, number string) (*app.DocumentResponse, error)
	CancelCreditNoteIRN(ctx context.Context, number string, req app.CancelIRNRequest) (*app.DocumentResponse, error)
	RegenerateCreditNoteIRN(ctx context.Context, number string) (*app.DocumentResponse, error)
}

// DocumentHandler handles invoice and credit note endpoints. Document
// numbers may contain '/', which callers send percent-encoded.
type DocumentHandler struct {
	BaseHandler
	svc DocumentService
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(svc DocumentService) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

func (h *DocumentHandler) respond(c *gin.Context, status int, resp *app.DocumentResponse, err error) {
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if status == http.StatusCreated {
		h.Created(c, resp)
		return
	}
	h.Success(c, resp)
}

// IssueInvoice handles POST /invoices
func (h *DocumentHandler) IssueInvoice(c *gin.Context) {
	var req app.IssueInvoiceRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.svc.IssueInvoice(c.Request.Context(), req)
	h.respond(c, http.StatusCreated, resp, err)
}

// GetInvoice handles GET /invoices/:number
func (h *DocumentHandler) GetInvoice(c *gin.Context) {
	resp, err := h.svc.GetInvoice(c.Request.Context(), c.Param("number"))
	h.respond(c, http.StatusOK, resp, err)
}

// GenerateInvoiceIRN handles POST /invoices/:number/irn
func (h *DocumentHandler) GenerateInvoiceIRN(c *gin.Context) {
	resp, err := h.svc.GenerateInvoiceIRN(c.Request.Context(), c.Param("number"))
	h.respond(c, http.StatusOK, resp, err)
}

// CancelInvoiceIRN handles POST /invoices/:number/irn/cancel
func (h *DocumentHandler) CancelInvoiceIRN(c *gin.Context) {
	var req app.CancelIRNRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.svc.CancelInvoiceIRN(c.Request.Context(), c.Param("number"), req)
	h.respond(c, http.StatusOK, resp, err)
}

// RegenerateInvoiceIRN handles POST /invoices/:number/irn/regenerate
func (h *DocumentHandler) RegenerateInvoiceIRN(c *gin.Context) {
	resp, err := h.svc.RegenerateInvoiceIRN(c.Request.Context(), c.Param("number"))
	h.respond(c, http.StatusOK, resp, err)
}

// IssueCreditNote handles POST /credit-notes
func (h *DocumentHandler) IssueCreditNote(c *gin.Context) {
	var req app.IssueCreditNoteRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.svc.IssueCreditNote(c.Request.Context(), req)
	h.respond(c, http.StatusCreated, resp, err)
}

// GetCreditNote handles GET /credit-notes/:number
func (h *DocumentHandler) GetCreditNote(c *gin.Context) {
	resp, err := h.svc.GetCreditNote(c.Request.Context(), c.Param("number"))
	h.respond(c, http.StatusOK, resp, err)
}

// GenerateCreditNoteIRN handles POST /credit-notes/:number/irn
func (h *DocumentHandler) GenerateCreditNoteIRN(c *gin.Context) {
	resp, err := h.svc.GenerateCreditNoteIRN(c.Request.Context(), c.Param("number"))
	h.respond(c, http.StatusOK, resp, err)
}

// CancelCreditNoteIRN handles POST /credit-notes/:number/irn/cancel
func (h *DocumentHandler) CancelCreditNoteIRN(c *gin.Context) {
	var req app.CancelIRNRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.svc.CancelCreditNoteIRN(c.Request.Context(), c.Param("number"), req)
	h.respond(c, http.StatusOK, resp, err)
}

// RegenerateCreditNoteIRN handles POST /credit-notes/:number/irn/regenerate
func (h *DocumentHandler) RegenerateCreditNoteIRN(c *gin.Context) {
	resp, err := h.svc.RegenerateCreditNoteIRN(c.Request.Context(), c.Param("number"))
	h.respond(c, http.StatusOK, resp, err)
}
