package handler

import (
	"context"

	app "github.com/erp/einvoice/internal/application/einvoice"
	"github.com/erp/einvoice/internal/domain/einvoice"
	"github.com/stretchr/testify/mock"
)

type MockPartyService struct {
	mock.Mock
}

func (m *MockPartyService) party(args mock.Arguments) (*app.PartyResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*app.PartyResponse), args.Error(1)
}

func (m *MockPartyService) CreateSellerUnit(ctx context.Context, req app.PartyRequest) (*app.PartyResponse, error) {
	return m.party(m.Called(ctx, req))
}

func (m *MockPartyService) GetSellerUnit(ctx context.Context, code string) (*app.PartyResponse, error) {
	return m.party(m.Called(ctx, code))
}

func (m *MockPartyService) CreateCustomer(ctx context.Context, req app.PartyRequest) (*app.PartyResponse, error) {
	return m.party(m.Called(ctx, req))
}

func (m *MockPartyService) GetCustomer(ctx context.Context, code string) (*app.PartyResponse, error) {
	return m.party(m.Called(ctx, code))
}

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) doc(args mock.Arguments) (*app.DocumentResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*app.DocumentResponse), args.Error(1)
}

func (m *MockDocumentService) IssueInvoice(ctx context.Context, req app.IssueInvoiceRequest) (*app.DocumentResponse, error) {
	return m.doc(m.Called(ctx, req))
}

func (m *MockDocumentService) GetInvoice(ctx context.Context, number string) (*app.DocumentResponse, error) {
	return m.doc(m.Called(ctx, number))
}

func (m *MockDocumentService) GenerateInvoiceIRN(ctx context.Context, number string) (*app.DocumentResponse, error) {
	return m.doc(m.Called(ctx, number))
}

func (m *MockDocumentService) CancelInvoiceIRN(ctx context.Context, number string, req app.CancelIRNRequest) (*app.DocumentResponse, error) {
	return m.doc(m.Called(ctx, number, req))
}

func (m *MockDocumentService) RegenerateInvoiceIRN(ctx context.Context, number string) (*app.DocumentResponse, error) {
	return m.doc(m.Called(ctx, number))
}

func (m *MockDocumentService) IssueCreditNote(ctx context.Context, req app.IssueCreditNoteRequest) (*app.DocumentResponse, error) {
	return m.doc(m.Called(ctx, req))
}

func (m *MockDocumentService) GetCreditNote(ctx context.Context, number string) (*app.DocumentResponse, error) {
	return m.doc(m.Called(ctx, number))
}

func (m *MockDocumentService) GenerateCreditNoteIRN(ctx context.Context, number string) (*app.DocumentResponse, error) {
	return m.doc(m.Called(ctx, number))
}

func (m *MockDocumentService) CancelCreditNoteIRN(ctx context.Context, number string, req app.CancelIRNRequest) (*app.DocumentResponse, error) {
	return m.doc(m.Called(ctx, number, req))
}

func (m *MockDocumentService) RegenerateCreditNoteIRN(ctx context.Context, number string) (*app.DocumentResponse, error) {
	return m.doc(m.Called(ctx, number))
}

type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) VerifySession(ctx context.Context) (*einvoice.SessionInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*einvoice.SessionInfo), args.Error(1)
}

func (m *MockSessionService) ResetCredentials(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

var (
	_ PartyService    = (*MockPartyService)(nil)
	_ DocumentService = (*MockDocumentService)(nil)
	_ SessionService  = (*MockSessionService)(nil)
	_ Pinger          = (*MockPinger)(nil)
)
