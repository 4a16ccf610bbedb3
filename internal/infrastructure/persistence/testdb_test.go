package persistence

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/einvoice/internal/domain/einvoice"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// sqliteSchema mirrors migrations/ with SQLite column types. Decimals are
// TEXT so values round-trip without float conversion.
var sqliteSchema = []string{
	`CREATE TABLE seller_units (
		id TEXT PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		gstin TEXT NOT NULL,
		legal_name TEXT NOT NULL,
		trade_name TEXT,
		address TEXT NOT NULL,
		location TEXT NOT NULL,
		pincode TEXT NOT NULL,
		state_code TEXT NOT NULL,
		email TEXT,
		phone TEXT,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE customers (
		id TEXT PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		gstin TEXT NOT NULL,
		legal_name TEXT NOT NULL,
		trade_name TEXT,
		address TEXT NOT NULL,
		location TEXT NOT NULL,
		pincode TEXT NOT NULL,
		state_code TEXT NOT NULL,
		email TEXT,
		phone TEXT,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE documents (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		number TEXT NOT NULL,
		date DATE NOT NULL,
		unit_id TEXT NOT NULL,
		customer_id TEXT NOT NULL,
		assessable_value TEXT NOT NULL,
		cgst_value TEXT NOT NULL,
		sgst_value TEXT NOT NULL,
		igst_value TEXT NOT NULL,
		total_value TEXT NOT NULL,
		amount_in_words TEXT,
		status TEXT NOT NULL DEFAULT 'DRAFT',
		original_invoice_number TEXT,
		original_invoice_date DATE,
		irn TEXT,
		ack_no TEXT,
		ack_date TEXT,
		signed_qr_code TEXT,
		signed_invoice TEXT,
		cancelled_at DATETIME,
		cancel_reason TEXT,
		cancel_remark TEXT,
		version INTEGER NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		UNIQUE (type, number)
	)`,
	`CREATE TABLE document_items (
		id TEXT PRIMARY KEY,
		document_id TEXT NOT NULL,
		sl_no INTEGER NOT NULL,
		description TEXT NOT NULL,
		hsn_code TEXT NOT NULL,
		is_service BOOLEAN NOT NULL DEFAULT 0,
		quantity TEXT NOT NULL,
		unit TEXT NOT NULL,
		unit_price TEXT NOT NULL,
		gst_rate TEXT NOT NULL,
		assessable_amount TEXT NOT NULL,
		cgst_amount TEXT NOT NULL,
		sgst_amount TEXT NOT NULL,
		igst_amount TEXT NOT NULL,
		total_item_value TEXT NOT NULL
	)`,
}

// setupEInvoiceTestDB creates an in-memory SQLite database with the gateway schema
func setupEInvoiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	// every pooled connection would otherwise get its own empty database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, ddl := range sqliteSchema {
		require.NoError(t, db.Exec(ddl).Error)
	}
	return db
}

// newMockGormDB creates a GORM DB over a mocked PostgreSQL connection
// opts are sqlmock option values (e.g. sqlmock.MonitorPingsOption); go-sqlmock
// exposes no named option type, so they are passed through untyped.
func newMockGormDB(t *testing.T, opts ...any) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := newSqlmock(sqlmock.New, opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

// newSqlmock calls sqlmock.New with opts converted to its (unexported) option type
func newSqlmock[O any](newFn func(...O) (*sql.DB, sqlmock.Sqlmock, error), opts []any) (*sql.DB, sqlmock.Sqlmock, error) {
	typed := make([]O, 0, len(opts))
	for _, o := range opts {
		typed = append(typed, o.(O))
	}
	return newFn(typed...)
}

func testParty(gstin, pincode string) einvoice.Party {
	return einvoice.Party{
		GSTIN:     gstin,
		LegalName: "Tata Components Pvt Ltd",
		TradeName: "Tata Components",
		Address:   "12 Industrial Area, Peenya",
		Location:  "Bengaluru",
		Pincode:   pincode,
		Email:     "accounts@example.in",
		Phone:     "9876543210",
	}
}

func newTestSellerUnit(t *testing.T, code string) *einvoice.SellerUnit {
	t.Helper()
	unit, err := einvoice.NewSellerUnit(code, testParty("29AABCT1332L1ZT", "560058"))
	require.NoError(t, err)
	return unit
}

func newTestCustomer(t *testing.T, code string) *einvoice.Customer {
	t.Helper()
	customer, err := einvoice.NewCustomer(code, testParty("27AAPFU0939F1ZV", "400001"))
	require.NoError(t, err)
	return customer
}

var testDocumentDate = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

func newTestDocument(t *testing.T, docType einvoice.DocumentType, number string) *einvoice.Document {
	t.Helper()
	in := einvoice.NewDocumentInput{
		Type:     docType,
		Number:   number,
		Date:     testDocumentDate,
		Unit:     newTestSellerUnit(t, "BLR-01"),
		Customer: newTestCustomer(t, "CUST-01"),
		Items: []einvoice.LineItemInput{
			{
				Description: "Steel bracket",
				HSNCode:     "7326",
				Quantity:    decimal.NewFromInt(10),
				Unit:        "NOS",
				UnitPrice:   decimal.NewFromInt(100),
				GSTRate:     decimal.NewFromInt(18),
			},
			{
				Description: "Installation",
				HSNCode:     "998719",
				IsService:   true,
				Quantity:    decimal.NewFromInt(1),
				UnitPrice:   decimal.RequireFromString("333.33"),
				GSTRate:     decimal.NewFromInt(5),
			},
		},
	}
	if docType == einvoice.DocumentTypeCreditNote {
		original := testDocumentDate.AddDate(0, 0, -5)
		in.OriginalInvoiceNumber = "INV/2024/001"
		in.OriginalInvoiceDate = &original
	}
	doc, err := einvoice.NewDocument(in)
	require.NoError(t, err)
	return doc
}
