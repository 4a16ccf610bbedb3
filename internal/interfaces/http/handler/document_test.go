package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	app "github.com/erp/einvoice/internal/application/einvoice"
	"github.com/erp/einvoice/internal/domain/einvoice"
	"github.com/erp/einvoice/internal/domain/shared"
	"github.com/erp/einvoice/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const validInvoiceJSON = `{
	"number": "INV-001",
	"date": "2024-01-15",
	"unit_code": "BLR",
	"customer_code": "MUM",
	"items": [{
		"description": "Consulting",
		"hsn_code": "998311",
		"is_service": true,
		"quantity": "2",
		"unit": "NOS",
		"unit_price": "1000",
		"gst_rate": "18"
	}]
}`

func newDocumentRouter(svc DocumentService) *gin.Engine {
	h := NewDocumentHandler(svc)
	router := gin.New()
	router.POST("/invoices", h.IssueInvoice)
	router.GET("/invoices/:number", h.GetInvoice)
	router.POST("/invoices/:number/irn", h.GenerateInvoiceIRN)
	router.POST("/invoices/:number/irn/cancel", h.CancelInvoiceIRN)
	router.POST("/invoices/:number/irn/regenerate", h.RegenerateInvoiceIRN)
	router.POST("/credit-notes", h.IssueCreditNote)
	router.GET("/credit-notes/:number", h.GetCreditNote)
	router.POST("/credit-notes/:number/irn", h.GenerateCreditNoteIRN)
	router.POST("/credit-notes/:number/irn/cancel", h.CancelCreditNoteIRN)
	router.POST("/credit-notes/:number/irn/regenerate", h.RegenerateCreditNoteIRN)
	return router
}

func sampleDocument(docType, number, status string) *app.DocumentResponse {
	return &app.DocumentResponse{
		ID:              uuid.New(),
		Type:            docType,
		Number:          number,
		Date:            "2024-01-15",
		AssessableValue: decimal.NewFromInt(2000),
		IGSTValue:       decimal.NewFromInt(360),
		TotalValue:      decimal.NewFromInt(2360),
		Status:          status,
		Version:         1,
	}
}

func decodeDocument(t *testing.T, w *httptest.ResponseRecorder) app.DocumentResponse {
	t.Helper()
	var doc app.DocumentResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &doc))
	return doc
}

func TestDocumentHandler_IssueInvoice(t *testing.T) {
	svc := new(MockDocumentService)
	svc.On("IssueInvoice", mock.Anything, mock.MatchedBy(func(req app.IssueInvoiceRequest) bool {
		return req.Number == "INV-001" && len(req.Items) == 1 &&
			req.Items[0].UnitPrice.Equal(decimal.NewFromInt(1000))
	})).Return(sampleDocument("INV", "INV-001", "DRAFT"), nil)

	w := postJSON(newDocumentRouter(svc), "/invoices", validInvoiceJSON)

	require.Equal(t, http.StatusCreated, w.Code)
	doc := decodeDocument(t, w)
	assert.Equal(t, "DRAFT", doc.Status)
	assert.True(t, doc.TotalValue.Equal(decimal.NewFromInt(2360)))
	svc.AssertExpectations(t)
}

func TestDocumentHandler_IssueInvoice_Validation(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"bad date", strings.Replace(validInvoiceJSON, "2024-01-15", "15/01/2024", 1), "date"},
		{"no items", `{"number":"INV-001","date":"2024-01-15","unit_code":"BLR","customer_code":"MUM","items":[]}`, "items"},
		{"missing number", strings.Replace(validInvoiceJSON, `"number": "INV-001",`, "", 1), "number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockDocumentService)
			w := postJSON(newDocumentRouter(svc), "/invoices", tt.body)

			require.Equal(t, http.StatusBadRequest, w.Code)
			env := decodeEnvelope(t, w)
			assert.Equal(t, dto.ErrCodeValidation, env.Error.Code)
			require.NotEmpty(t, env.Error.Details)
			assert.Equal(t, tt.field, env.Error.Details[0].Field)
			svc.AssertNotCalled(t, "IssueInvoice", mock.Anything, mock.Anything)
		})
	}
}

func TestDocumentHandler_IssueInvoice_MalformedBody(t *testing.T) {
	svc := new(MockDocumentService)
	w := postJSON(newDocumentRouter(svc), "/invoices", `{"number":`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeBadRequest, decodeEnvelope(t, w).Error.Code)
}

func TestDocumentHandler_IssueCreditNote(t *testing.T) {
	body := strings.Replace(validInvoiceJSON, `"number": "INV-001",`,
		`"number": "CN-001", "original_invoice_number": "INV-001", "original_invoice_date": "2024-01-10",`, 1)
	svc := new(MockDocumentService)
	svc.On("IssueCreditNote", mock.Anything, mock.MatchedBy(func(req app.IssueCreditNoteRequest) bool {
		return req.Number == "CN-001" && req.OriginalInvoiceNumber == "INV-001"
	})).Return(sampleDocument("CRN", "CN-001", "DRAFT"), nil)

	w := postJSON(newDocumentRouter(svc), "/credit-notes", body)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "CRN", decodeDocument(t, w).Type)
	svc.AssertExpectations(t)
}

func TestDocumentHandler_IssueCreditNote_RequiresOriginal(t *testing.T) {
	svc := new(MockDocumentService)
	w := postJSON(newDocumentRouter(svc), "/credit-notes", validInvoiceJSON)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "IssueCreditNote", mock.Anything, mock.Anything)
}

func TestDocumentHandler_GenerateIRN(t *testing.T) {
	generated := sampleDocument("INV", "INV-001", "IRN_GENERATED")
	generated.Irn = "a5c12dca80e743321740b001fd70953e8738d109865d28ba4013750f2046f229"
	generated.AckNo = "112010036563310"

	svc := new(MockDocumentService)
	svc.On("GenerateInvoiceIRN", mock.Anything, "INV-001").Return(generated, nil)
	svc.On("GenerateCreditNoteIRN", mock.Anything, "CN-001").Return(sampleDocument("CRN", "CN-001", "IRN_GENERATED"), nil)
	router := newDocumentRouter(svc)

	w := postJSON(router, "/invoices/INV-001/irn", "")
	require.Equal(t, http.StatusOK, w.Code)
	doc := decodeDocument(t, w)
	assert.Equal(t, generated.Irn, doc.Irn)
	assert.Equal(t, "IRN_GENERATED", doc.Status)

	w = postJSON(router, "/credit-notes/CN-001/irn", "")
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestDocumentHandler_GenerateIRN_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"already generated", shared.NewDomainError("IRN_ALREADY_GENERATED", "IRN already generated"), http.StatusConflict, dto.ErrCodeIRNAlreadyGenerated},
		{"not found", shared.ErrNotFound, http.StatusNotFound, dto.ErrCodeNotFound},
		{"upstream rejected", einvoice.NewBusinessError(200, "Duplicate IRN", "2150", nil), http.StatusUnprocessableEntity, dto.ErrCodeUpstreamRejected},
		{"upstream down", einvoice.NewTransportError(0, "", assert.AnError), http.StatusBadGateway, dto.ErrCodeUpstreamUnavailable},
		{"not configured", einvoice.NewConfigurationError([]string{"gsp.client_id"}), http.StatusServiceUnavailable, dto.ErrCodeNotConfigured},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockDocumentService)
			svc.On("GenerateInvoiceIRN", mock.Anything, "INV-001").Return(nil, tt.err)

			w := postJSON(newDocumentRouter(svc), "/invoices/INV-001/irn", "")

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, decodeEnvelope(t, w).Error.Code)
		})
	}
}

func TestDocumentHandler_CancelIRN(t *testing.T) {
	cancelled := sampleDocument("INV", "INV-001", "IRN_CANCELLED")
	svc := new(MockDocumentService)
	svc.On("CancelInvoiceIRN", mock.Anything, "INV-001", app.CancelIRNRequest{Reason: "2", Remark: "Data entry mistake"}).
		Return(cancelled, nil)

	w := postJSON(newDocumentRouter(svc), "/invoices/INV-001/irn/cancel", `{"reason":"2","remark":"Data entry mistake"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "IRN_CANCELLED", decodeDocument(t, w).Status)
	svc.AssertExpectations(t)
}

func TestDocumentHandler_CancelIRN_InvalidReason(t *testing.T) {
	svc := new(MockDocumentService)

	w := postJSON(newDocumentRouter(svc), "/credit-notes/CN-001/irn/cancel", `{"reason":"9","remark":"x"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeEnvelope(t, w)
	require.NotEmpty(t, env.Error.Details)
	assert.Equal(t, "reason", env.Error.Details[0].Field)
	svc.AssertNotCalled(t, "CancelCreditNoteIRN", mock.Anything, mock.Anything, mock.Anything)
}

func TestDocumentHandler_RegenerateIRN(t *testing.T) {
	svc := new(MockDocumentService)
	svc.On("RegenerateInvoiceIRN", mock.Anything, "INV-001").Return(sampleDocument("INV", "INV-001", "IRN_GENERATED"), nil)
	svc.On("RegenerateCreditNoteIRN", mock.Anything, "CN-001").
		Return(nil, shared.NewDomainError("IRN_NOT_GENERATED", "Credit note has no IRN to regenerate"))
	router := newDocumentRouter(svc)

	w := postJSON(router, "/invoices/INV-001/irn/regenerate", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = postJSON(router, "/credit-notes/CN-001/irn/regenerate", "")
	assert.Equal(t, http.StatusConflict, w.Code)
	svc.AssertExpectations(t)
}

func TestDocumentHandler_Get(t *testing.T) {
	svc := new(MockDocumentService)
	svc.On("GetInvoice", mock.Anything, "INV-001").Return(sampleDocument("INV", "INV-001", "DRAFT"), nil)
	svc.On("GetCreditNote", mock.Anything, "CN-404").Return(nil, shared.ErrNotFound)
	router := newDocumentRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/invoices/INV-001", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "INV-001", decodeDocument(t, w).Number)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/credit-notes/CN-404", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	svc.AssertExpectations(t)
}
