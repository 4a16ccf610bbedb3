package einvoice

import (
	"context"

	domain "github.com/erp/einvoice/internal/domain/einvoice"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockSellerUnitRepository struct {
	mock.Mock
}

func (m *MockSellerUnitRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.SellerUnit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SellerUnit), args.Error(1)
}

func (m *MockSellerUnitRepository) FindByCode(ctx context.Context, code string) (*domain.SellerUnit, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SellerUnit), args.Error(1)
}

func (m *MockSellerUnitRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockSellerUnitRepository) Save(ctx context.Context, unit *domain.SellerUnit) error {
	return m.Called(ctx, unit).Error(0)
}

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByCode(ctx context.Context, code string) (*domain.Customer, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockCustomerRepository) Save(ctx context.Context, customer *domain.Customer) error {
	return m.Called(ctx, customer).Error(0)
}

type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) FindByNumber(ctx context.Context, docType domain.DocumentType, number string) (*domain.Document, error) {
	args := m.Called(ctx, docType, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) ExistsByNumber(ctx context.Context, docType domain.DocumentType, number string) (bool, error) {
	args := m.Called(ctx, docType, number)
	return args.Bool(0), args.Error(1)
}

func (m *MockDocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	return m.Called(ctx, doc).Error(0)
}

func (m *MockDocumentRepository) SaveIRNState(ctx context.Context, doc *domain.Document) error {
	return m.Called(ctx, doc).Error(0)
}

type MockIRNProvider struct {
	mock.Mock
}

func (m *MockIRNProvider) GenerateIRN(ctx context.Context, payload any) (*domain.IRNResult, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IRNResult), args.Error(1)
}

func (m *MockIRNProvider) CancelIRN(ctx context.Context, req domain.CancelRequest) (*domain.IRNResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IRNResult), args.Error(1)
}

func (m *MockIRNProvider) GetIRNByDocument(ctx context.Context, lookup domain.DocumentLookup) (*domain.IRNResult, error) {
	args := m.Called(ctx, lookup)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IRNResult), args.Error(1)
}
