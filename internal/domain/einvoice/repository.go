package einvoice

import (
	"context"

	"github.com/google/uuid"
)

// SellerUnitRepository persists seller units.
type SellerUnitRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*SellerUnit, error)
	FindByCode(ctx context.Context, code string) (*SellerUnit, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	Save(ctx context.Context, unit *SellerUnit) error
}

// CustomerRepository persists customers.
type CustomerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	FindByCode(ctx context.Context, code string) (*Customer, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	Save(ctx context.Context, customer *Customer) error
}

// DocumentRepository persists invoices and credit notes.
type DocumentRepository interface {
	FindByNumber(ctx context.Context, docType DocumentType, number string) (*Document, error)
	ExistsByNumber(ctx context.Context, docType DocumentType, number string) (bool, error)
	// Create inserts a new document together with its items.
	Create(ctx context.Context, doc *Document) error
	// SaveIRNState updates the IRN, acknowledgement, cancellation and status
	// columns of an existing document.
	SaveIRNState(ctx context.Context, doc *Document) error
}
