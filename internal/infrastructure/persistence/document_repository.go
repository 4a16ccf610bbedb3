package persistence

import (
	"context"

	"github.com/erp/einvoice/internal/domain/einvoice"
	"github.com/erp/einvoice/internal/domain/shared"
	"github.com/erp/einvoice/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormDocumentRepository implements einvoice.DocumentRepository using GORM.
// Invoices and credit notes share the documents table, keyed by type and number.
type GormDocumentRepository struct {
	db *gorm.DB
}

// NewGormDocumentRepository creates a new GormDocumentRepository
func NewGormDocumentRepository(db *gorm.DB) *GormDocumentRepository {
	return &GormDocumentRepository{db: db}
}

// FindByNumber finds a document and its items by type and number
func (r *GormDocumentRepository) FindByNumber(ctx context.Context, docType einvoice.DocumentType, number string) (*einvoice.Document, error) {
	var model models.DocumentModel
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sl_no ASC")
		}).
		Where("type = ? AND number = ?", docType, number).
		First(&model).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// ExistsByNumber checks if a document of the given type and number exists
func (r *GormDocumentRepository) ExistsByNumber(ctx context.Context, docType einvoice.DocumentType, number string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.DocumentModel{}).
		Where("type = ? AND number = ?", docType, number).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts the document header and its items in one transaction
func (r *GormDocumentRepository) Create(ctx context.Context, doc *einvoice.Document) error {
	model := models.DocumentModelFromDomain(doc)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Create(model).Error; err != nil {
			return translateDuplicate(err, doc.Type.Label()+" number already exists")
		}
		if len(model.Items) == 0 {
			return nil
		}
		return tx.Create(&model.Items).Error
	})
}

// SaveIRNState writes the IRN lifecycle columns with an optimistic lock on
// the version the document was loaded with.
func (r *GormDocumentRepository) SaveIRNState(ctx context.Context, doc *einvoice.Document) error {
	result := r.db.WithContext(ctx).
		Model(&models.DocumentModel{}).
		Where("id = ? AND version = ?", doc.ID, doc.Version-1).
		Updates(models.IRNStateColumns(doc))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("CONCURRENT_MODIFICATION", doc.Type.Label()+" "+doc.Number+" was modified by another request")
	}
	return nil
}

var _ einvoice.DocumentRepository = (*GormDocumentRepository)(nil)
