package einvoice

import (
	"context"
	"errors"
	"strings"
	"time"

	domain "github.com/erp/einvoice/internal/domain/einvoice"
	"github.com/erp/einvoice/internal/domain/shared"
	"github.com/erp/einvoice/internal/infrastructure/logger"
	"github.com/erp/einvoice/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// upstreamCancelDateLayout is the CancelDate format returned by the GSP
const upstreamCancelDateLayout = "2006-01-02 15:04:05"

var indianStandardTime = time.FixedZone("IST", 5*60*60+30*60)

// IRNProvider performs credentialed IRN operations
type IRNProvider interface {
	GenerateIRN(ctx context.Context, payload any) (*domain.IRNResult, error)
	CancelIRN(ctx context.Context, req domain.CancelRequest) (*domain.IRNResult, error)
	GetIRNByDocument(ctx context.Context, lookup domain.DocumentLookup) (*domain.IRNResult, error)
}

// DocumentService issues invoices and credit notes and manages their IRNs
type DocumentService struct {
	units     domain.SellerUnitRepository
	customers domain.CustomerRepository
	documents domain.DocumentRepository
	irn       IRNProvider
	logger    *zap.Logger
	now       func() time.Time
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(
	units domain.SellerUnitRepository,
	customers domain.CustomerRepository,
	documents domain.DocumentRepository,
	irn IRNProvider,
	log *zap.Logger,
) *DocumentService {
	if log == nil {
		log = zap.NewNop()
	}
	return &DocumentService{
		units:     units,
		customers: customers,
		documents: documents,
		irn:       irn,
		logger:    log,
		now:       time.Now,
	}
}

// CreateSellerUnit registers a new seller unit
func (s *DocumentService) CreateSellerUnit(ctx context.Context, req PartyRequest) (*PartyResponse, error) {
	exists, err := s.units.ExistsByCode(ctx, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Seller unit with this code already exists")
	}

	unit, err := domain.NewSellerUnit(req.Code, req.toParty())
	if err != nil {
		return nil, err
	}
	if err := s.units.Save(ctx, unit); err != nil {
		return nil, err
	}
	return toPartyResponse(unit.ID, unit.Code, unit.Party, unit.CreatedAt), nil
}

// GetSellerUnit retrieves a seller unit by code
func (s *DocumentService) GetSellerUnit(ctx context.Context, code string) (*PartyResponse, error) {
	unit, err := s.units.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return toPartyResponse(unit.ID, unit.Code, unit.Party, unit.CreatedAt), nil
}

// CreateCustomer registers a new customer
func (s *DocumentService) CreateCustomer(ctx context.Context, req PartyRequest) (*PartyResponse, error) {
	exists, err := s.customers.ExistsByCode(ctx, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Customer with this code already exists")
	}

	customer, err := domain.NewCustomer(req.Code, req.toParty())
	if err != nil {
		return nil, err
	}
	if err := s.customers.Save(ctx, customer); err != nil {
		return nil, err
	}
	return toPartyResponse(customer.ID, customer.Code, customer.Party, customer.CreatedAt), nil
}

// GetCustomer retrieves a customer by code
func (s *DocumentService) GetCustomer(ctx context.Context, code string) (*PartyResponse, error) {
	customer, err := s.customers.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return toPartyResponse(customer.ID, customer.Code, customer.Party, customer.CreatedAt), nil
}

// IssueInvoice prices and stores a DRAFT invoice
func (s *DocumentService) IssueInvoice(ctx context.Context, req IssueInvoiceRequest) (*DocumentResponse, error) {
	return s.issue(ctx, domain.DocumentTypeInvoice, req, "", "")
}

// IssueCreditNote prices and stores a DRAFT credit note
func (s *DocumentService) IssueCreditNote(ctx context.Context, req IssueCreditNoteRequest) (*DocumentResponse, error) {
	return s.issue(ctx, domain.DocumentTypeCreditNote, req.IssueInvoiceRequest, req.OriginalInvoiceNumber, req.OriginalInvoiceDate)
}

// GetInvoice retrieves an invoice by number
func (s *DocumentService) GetInvoice(ctx context.Context, number string) (*DocumentResponse, error) {
	return s.get(ctx, domain.DocumentTypeInvoice, number)
}

// GetCreditNote retrieves a credit note by number
func (s *DocumentService) GetCreditNote(ctx context.Context, number string) (*DocumentResponse, error) {
	return s.get(ctx, domain.DocumentTypeCreditNote, number)
}

// GenerateInvoiceIRN registers an invoice upstream and records its IRN
func (s *DocumentService) GenerateInvoiceIRN(ctx context.Context, number string) (*DocumentResponse, error) {
	return s.generateIRN(ctx, domain.DocumentTypeInvoice, number)
}

// GenerateCreditNoteIRN registers a credit note upstream and records its IRN
func (s *DocumentService) GenerateCreditNoteIRN(ctx context.Context, number string) (*DocumentResponse, error) {
	return s.generateIRN(ctx, domain.DocumentTypeCreditNote, number)
}

// CancelInvoiceIRN cancels the IRN of an invoice
func (s *DocumentService) CancelInvoiceIRN(ctx context.Context, number string, req CancelIRNRequest) (*DocumentResponse, error) {
	return s.cancelIRN(ctx, domain.DocumentTypeInvoice, number, req)
}

// CancelCreditNoteIRN cancels the IRN of a credit note
func (s *DocumentService) CancelCreditNoteIRN(ctx context.Context, number string, req CancelIRNRequest) (*DocumentResponse, error) {
	return s.cancelIRN(ctx, domain.DocumentTypeCreditNote, number, req)
}

// RegenerateInvoiceIRN records an IRN that was issued upstream but never saved locally
func (s *DocumentService) RegenerateInvoiceIRN(ctx context.Context, number string) (*DocumentResponse, error) {
	return s.regenerateIRN(ctx, domain.DocumentTypeInvoice, number)
}

// RegenerateCreditNoteIRN records a credit note IRN issued upstream but never saved locally
func (s *DocumentService) RegenerateCreditNoteIRN(ctx context.Context, number string) (*DocumentResponse, error) {
	return s.regenerateIRN(ctx, domain.DocumentTypeCreditNote, number)
}

func (s *DocumentService) issue(ctx context.Context, docType domain.DocumentType, req IssueInvoiceRequest, origNumber, origDate string) (*DocumentResponse, error) {
	date, err := parseRequestDate(req.Date, "Document date")
	if err != nil {
		return nil, err
	}

	exists, err := s.documents.ExistsByNumber(ctx, docType, strings.TrimSpace(req.Number))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", docType.Label()+" with this number already exists")
	}

	unit, err := s.units.FindByCode(ctx, req.UnitCode)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_INPUT", "Seller unit not found")
		}
		return nil, err
	}
	customer, err := s.customers.FindByCode(ctx, req.CustomerCode)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_INPUT", "Customer not found")
		}
		return nil, err
	}

	in := domain.NewDocumentInput{
		Type:     docType,
		Number:   req.Number,
		Date:     date,
		Unit:     unit,
		Customer: customer,
		Items:    toLineItemInputs(req.Items),
	}
	if docType == domain.DocumentTypeCreditNote {
		origDateValue, err := parseRequestDate(origDate, "Original invoice date")
		if err != nil {
			return nil, err
		}
		in.OriginalInvoiceNumber = origNumber
		in.OriginalInvoiceDate = &origDateValue
	}

	doc, err := domain.NewDocument(in)
	if err != nil {
		return nil, err
	}
	if err := s.documents.Create(ctx, doc); err != nil {
		return nil, err
	}

	logger.Ctx(ctx, s.logger).Info("Document issued",
		zap.String("type", string(doc.Type)),
		zap.String("number", doc.Number),
		zap.String("total", doc.TotalValue.StringFixed(2)),
	)
	return ToDocumentResponse(doc), nil
}

func (s *DocumentService) get(ctx context.Context, docType domain.DocumentType, number string) (*DocumentResponse, error) {
	doc, err := s.documents.FindByNumber(ctx, docType, number)
	if err != nil {
		return nil, err
	}
	return ToDocumentResponse(doc), nil
}

func (s *DocumentService) generateIRN(ctx context.Context, docType domain.DocumentType, number string) (*DocumentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "DocumentService", "GenerateIRN",
		telemetry.SpanAttrDocumentType, string(docType),
		telemetry.SpanAttrDocumentNumber, number,
	)
	defer span.End()

	doc, err := s.documents.FindByNumber(ctx, docType, number)
	if err != nil {
		return nil, err
	}
	if err := doc.EnsureCanGenerateIRN(); err != nil {
		return nil, err
	}

	unit, err := s.units.FindByID(ctx, doc.UnitID)
	if err != nil {
		return nil, err
	}
	customer, err := s.customers.FindByID(ctx, doc.CustomerID)
	if err != nil {
		return nil, err
	}
	payload, err := domain.BuildPayload(doc, unit, customer)
	if err != nil {
		return nil, err
	}

	result, err := s.irn.GenerateIRN(ctx, payload)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return s.saveIRN(ctx, doc, result)
}

func (s *DocumentService) regenerateIRN(ctx context.Context, docType domain.DocumentType, number string) (*DocumentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "DocumentService", "RegenerateIRN",
		telemetry.SpanAttrDocumentType, string(docType),
		telemetry.SpanAttrDocumentNumber, number,
	)
	defer span.End()

	doc, err := s.documents.FindByNumber(ctx, docType, number)
	if err != nil {
		return nil, err
	}
	if err := doc.EnsureCanGenerateIRN(); err != nil {
		return nil, err
	}

	result, err := s.irn.GetIRNByDocument(ctx, doc.Lookup())
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return s.saveIRN(ctx, doc, result)
}

// saveIRN records the IRN locally. The upstream registration cannot be
// undone, so a failed write surfaces the result with the error.
func (s *DocumentService) saveIRN(ctx context.Context, doc *domain.Document, result *domain.IRNResult) (*DocumentResponse, error) {
	log := logger.Ctx(ctx, s.logger).With(
		zap.String("type", string(doc.Type)),
		zap.String("number", doc.Number),
		zap.String("irn", result.Irn),
	)

	if err := doc.RecordIRN(*result); err != nil {
		log.Error("IRN obtained but could not be applied to document", zap.Error(err))
		return nil, domain.NewPersistenceError(result, err)
	}
	if err := s.documents.SaveIRNState(ctx, doc); err != nil {
		log.Error("IRN obtained but could not be saved", zap.Error(err))
		return nil, domain.NewPersistenceError(result, err)
	}

	log.Info("IRN recorded", zap.String("ack_no", result.AckNo))
	return ToDocumentResponse(doc), nil
}

func (s *DocumentService) cancelIRN(ctx context.Context, docType domain.DocumentType, number string, req CancelIRNRequest) (*DocumentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "DocumentService", "CancelIRN",
		telemetry.SpanAttrDocumentType, string(docType),
		telemetry.SpanAttrDocumentNumber, number,
	)
	defer span.End()

	doc, err := s.documents.FindByNumber(ctx, docType, number)
	if err != nil {
		return nil, err
	}
	if err := doc.EnsureCanCancelIRN(); err != nil {
		return nil, err
	}

	cancelReq := domain.CancelRequest{
		Irn:    doc.Irn,
		Reason: domain.CancelReason(req.Reason),
		Remark: strings.TrimSpace(req.Remark),
	}
	if err := cancelReq.Validate(); err != nil {
		return nil, err
	}

	result, err := s.irn.CancelIRN(ctx, cancelReq)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	log := logger.Ctx(ctx, s.logger).With(
		zap.String("type", string(doc.Type)),
		zap.String("number", doc.Number),
		zap.String("irn", result.Irn),
	)
	cancelledAt := s.cancelTime(result.CancelDate)
	if err := doc.RecordCancellation(cancelReq.Reason, cancelReq.Remark, cancelledAt); err != nil {
		log.Error("IRN cancelled but could not be applied to document", zap.Error(err))
		return nil, domain.NewPersistenceError(result, err)
	}
	if err := s.documents.SaveIRNState(ctx, doc); err != nil {
		log.Error("IRN cancelled but could not be saved", zap.Error(err))
		return nil, domain.NewPersistenceError(result, err)
	}

	log.Info("IRN cancelled")
	return ToDocumentResponse(doc), nil
}

// cancelTime uses the upstream CancelDate when it parses, otherwise now
func (s *DocumentService) cancelTime(cancelDate string) time.Time {
	if t, err := time.ParseInLocation(upstreamCancelDateLayout, cancelDate, indianStandardTime); err == nil {
		return t
	}
	return s.now()
}

func parseRequestDate(value, field string) (time.Time, error) {
	t, err := time.Parse(RequestDateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, shared.NewDomainError("INVALID_INPUT", field+" must be in YYYY-MM-DD format")
	}
	return t, nil
}

func toLineItemInputs(items []LineItemRequest) []domain.LineItemInput {
	out := make([]domain.LineItemInput, len(items))
	for i, it := range items {
		out[i] = domain.LineItemInput{
			Description: it.Description,
			HSNCode:     it.HSNCode,
			IsService:   it.IsService,
			Quantity:    it.Quantity,
			Unit:        it.Unit,
			UnitPrice:   it.UnitPrice,
			GSTRate:     it.GSTRate,
		}
	}
	return out
}
