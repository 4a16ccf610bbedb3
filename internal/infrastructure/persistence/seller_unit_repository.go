package persistence

import (
	"context"
	"errors"

	"github.com/erp/einvoice/internal/domain/einvoice"
	"github.com/erp/einvoice/internal/domain/shared"
	"github.com/erp/einvoice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSellerUnitRepository implements einvoice.SellerUnitRepository using GORM
type GormSellerUnitRepository struct {
	db *gorm.DB
}

// NewGormSellerUnitRepository creates a new GormSellerUnitRepository
func NewGormSellerUnitRepository(db *gorm.DB) *GormSellerUnitRepository {
	return &GormSellerUnitRepository{db: db}
}

// FindByID finds a seller unit by its ID
func (r *GormSellerUnitRepository) FindByID(ctx context.Context, id uuid.UUID) (*einvoice.SellerUnit, error) {
	var model models.SellerUnitModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// FindByCode finds a seller unit by its unit code
func (r *GormSellerUnitRepository) FindByCode(ctx context.Context, code string) (*einvoice.SellerUnit, error) {
	var model models.SellerUnitModel
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&model).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// ExistsByCode checks if a seller unit with the given code exists
func (r *GormSellerUnitRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.SellerUnitModel{}).
		Where("code = ?", code).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a seller unit
func (r *GormSellerUnitRepository) Save(ctx context.Context, unit *einvoice.SellerUnit) error {
	model := models.SellerUnitModelFromDomain(unit)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return translateDuplicate(err, "Seller unit code already exists")
	}
	return nil
}

// translateNotFound maps gorm.ErrRecordNotFound to shared.ErrNotFound
func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}

// translateDuplicate maps unique violations to ALREADY_EXISTS. It needs
// gorm.Config.TranslateError, which NewDatabase sets.
func translateDuplicate(err error, message string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.NewDomainError("ALREADY_EXISTS", message)
	}
	return err
}

var _ einvoice.SellerUnitRepository = (*GormSellerUnitRepository)(nil)
