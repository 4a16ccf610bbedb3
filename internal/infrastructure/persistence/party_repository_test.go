package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/einvoice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormSellerUnitRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("saves and finds by code and id", func(t *testing.T) {
		repo := NewGormSellerUnitRepository(setupEInvoiceTestDB(t))
		unit := newTestSellerUnit(t, "BLR-01")

		require.NoError(t, repo.Save(ctx, unit))

		byCode, err := repo.FindByCode(ctx, "BLR-01")
		require.NoError(t, err)
		assert.Equal(t, unit.ID, byCode.ID)
		assert.Equal(t, unit.Party, byCode.Party)
		assert.Equal(t, "29", byCode.StateCode)

		byID, err := repo.FindByID(ctx, unit.ID)
		require.NoError(t, err)
		assert.Equal(t, "BLR-01", byID.Code)
	})

	t.Run("missing unit is not found", func(t *testing.T) {
		repo := NewGormSellerUnitRepository(setupEInvoiceTestDB(t))

		_, err := repo.FindByCode(ctx, "NOPE")
		assert.ErrorIs(t, err, shared.ErrNotFound)

		_, err = repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("exists by code", func(t *testing.T) {
		repo := NewGormSellerUnitRepository(setupEInvoiceTestDB(t))
		require.NoError(t, repo.Save(ctx, newTestSellerUnit(t, "BLR-01")))

		exists, err := repo.ExistsByCode(ctx, "BLR-01")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsByCode(ctx, "BLR-02")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("save updates an existing unit", func(t *testing.T) {
		repo := NewGormSellerUnitRepository(setupEInvoiceTestDB(t))
		unit := newTestSellerUnit(t, "BLR-01")
		require.NoError(t, repo.Save(ctx, unit))

		unit.TradeName = "Tata Components South"
		require.NoError(t, repo.Save(ctx, unit))

		found, err := repo.FindByCode(ctx, "BLR-01")
		require.NoError(t, err)
		assert.Equal(t, "Tata Components South", found.TradeName)
	})

	t.Run("duplicate code maps to already exists", func(t *testing.T) {
		repo := NewGormSellerUnitRepository(setupEInvoiceTestDB(t))
		require.NoError(t, repo.Save(ctx, newTestSellerUnit(t, "BLR-01")))

		err := repo.Save(ctx, newTestSellerUnit(t, "BLR-01"))
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("query errors pass through", func(t *testing.T) {
		db, mock, _ := newMockGormDB(t)
		repo := NewGormSellerUnitRepository(db)

		mock.ExpectQuery(`SELECT count\(\*\) FROM "seller_units" WHERE code = \$1`).
			WithArgs("BLR-01").
			WillReturnError(errors.New("connection reset"))

		_, err := repo.ExistsByCode(ctx, "BLR-01")
		assert.EqualError(t, err, "connection reset")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCustomerRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("saves and finds by code and id", func(t *testing.T) {
		repo := NewGormCustomerRepository(setupEInvoiceTestDB(t))
		customer := newTestCustomer(t, "CUST-01")

		require.NoError(t, repo.Save(ctx, customer))

		byCode, err := repo.FindByCode(ctx, "CUST-01")
		require.NoError(t, err)
		assert.Equal(t, customer.ID, byCode.ID)
		assert.Equal(t, customer.Party, byCode.Party)

		byID, err := repo.FindByID(ctx, customer.ID)
		require.NoError(t, err)
		assert.Equal(t, "27AAPFU0939F1ZV", byID.GSTIN)

		exists, err := repo.ExistsByCode(ctx, "CUST-01")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("missing customer is not found", func(t *testing.T) {
		repo := NewGormCustomerRepository(setupEInvoiceTestDB(t))

		_, err := repo.FindByCode(ctx, "CUST-99")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("duplicate code maps to already exists", func(t *testing.T) {
		repo := NewGormCustomerRepository(setupEInvoiceTestDB(t))
		require.NoError(t, repo.Save(ctx, newTestCustomer(t, "CUST-01")))

		err := repo.Save(ctx, newTestCustomer(t, "CUST-01"))
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("lookup errors pass through", func(t *testing.T) {
		db, mock, _ := newMockGormDB(t)
		repo := NewGormCustomerRepository(db)
		id := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "customers" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(id, 1).
			WillReturnError(errors.New("connection reset"))

		_, err := repo.FindByID(ctx, id)
		assert.EqualError(t, err, "connection reset")
		assert.False(t, errors.Is(err, shared.ErrNotFound))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

