package models

import (
	"time"

	"github.com/erp/einvoice/internal/domain/einvoice"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PartyColumns are the taxpayer columns shared by seller units and customers.
type PartyColumns struct {
	GSTIN     string `gorm:"column:gstin;type:varchar(15);not null;index"`
	LegalName string `gorm:"type:varchar(100);not null"`
	TradeName string `gorm:"type:varchar(100)"`
	Address   string `gorm:"type:varchar(200);not null"`
	Location  string `gorm:"type:varchar(100);not null"`
	Pincode   string `gorm:"type:varchar(6);not null"`
	StateCode string `gorm:"type:varchar(2);not null"`
	Email     string `gorm:"type:varchar(100)"`
	Phone     string `gorm:"type:varchar(20)"`
}

func (p PartyColumns) toDomain() einvoice.Party {
	return einvoice.Party{
		GSTIN:     p.GSTIN,
		LegalName: p.LegalName,
		TradeName: p.TradeName,
		Address:   p.Address,
		Location:  p.Location,
		Pincode:   p.Pincode,
		StateCode: p.StateCode,
		Email:     p.Email,
		Phone:     p.Phone,
	}
}

func partyColumns(p einvoice.Party) PartyColumns {
	return PartyColumns{
		GSTIN:     p.GSTIN,
		LegalName: p.LegalName,
		TradeName: p.TradeName,
		Address:   p.Address,
		Location:  p.Location,
		Pincode:   p.Pincode,
		StateCode: p.StateCode,
		Email:     p.Email,
		Phone:     p.Phone,
	}
}

// SellerUnitModel is the persistence model for the SellerUnit entity.
type SellerUnitModel struct {
	BaseModel
	Code string `gorm:"type:varchar(50);not null;uniqueIndex:idx_seller_unit_code"`
	PartyColumns
}

// TableName returns the table name for GORM
func (SellerUnitModel) TableName() string {
	return "seller_units"
}

// ToDomain converts the persistence model to a domain SellerUnit.
func (m *SellerUnitModel) ToDomain() *einvoice.SellerUnit {
	return &einvoice.SellerUnit{
		BaseEntity: m.BaseModel.ToDomain(),
		Code:       m.Code,
		Party:      m.PartyColumns.toDomain(),
	}
}

// SellerUnitModelFromDomain creates a persistence model from a domain SellerUnit.
func SellerUnitModelFromDomain(u *einvoice.SellerUnit) *SellerUnitModel {
	m := &SellerUnitModel{Code: u.Code, PartyColumns: partyColumns(u.Party)}
	m.FromDomainBaseEntity(u.BaseEntity)
	return m
}

// CustomerModel is the persistence model for the Customer entity.
type CustomerModel struct {
	BaseModel
	Code string `gorm:"type:varchar(50);not null;uniqueIndex:idx_customer_code"`
	PartyColumns
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer.
func (m *CustomerModel) ToDomain() *einvoice.Customer {
	return &einvoice.Customer{
		BaseEntity: m.BaseModel.ToDomain(),
		Code:       m.Code,
		Party:      m.PartyColumns.toDomain(),
	}
}

// CustomerModelFromDomain creates a persistence model from a domain Customer.
func CustomerModelFromDomain(c *einvoice.Customer) *CustomerModel {
	m := &CustomerModel{Code: c.Code, PartyColumns: partyColumns(c.Party)}
	m.FromDomainBaseEntity(c.BaseEntity)
	return m
}

// DocumentModel is the persistence model for invoices and credit notes.
type DocumentModel struct {
	AggregateModel
	Type                  einvoice.DocumentType   `gorm:"type:varchar(3);not null;uniqueIndex:idx_document_type_number,priority:1"`
	Number                string                  `gorm:"type:varchar(16);not null;uniqueIndex:idx_document_type_number,priority:2"`
	Date                  time.Time               `gorm:"type:date;not null"`
	UnitID                uuid.UUID               `gorm:"type:uuid;not null;index"`
	CustomerID            uuid.UUID               `gorm:"type:uuid;not null;index"`
	AssessableValue       decimal.Decimal         `gorm:"type:decimal(18,2);not null;default:0"`
	CGSTValue             decimal.Decimal         `gorm:"column:cgst_value;type:decimal(18,2);not null;default:0"`
	SGSTValue             decimal.Decimal         `gorm:"column:sgst_value;type:decimal(18,2);not null;default:0"`
	IGSTValue             decimal.Decimal         `gorm:"column:igst_value;type:decimal(18,2);not null;default:0"`
	TotalValue            decimal.Decimal         `gorm:"type:decimal(18,2);not null;default:0"`
	AmountInWords         string                  `gorm:"type:text"`
	Status                einvoice.DocumentStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	OriginalInvoiceNumber string                  `gorm:"type:varchar(16)"`
	OriginalInvoiceDate   *time.Time              `gorm:"type:date"`
	Irn                   string                  `gorm:"type:varchar(64);index"`
	AckNo                 string                  `gorm:"type:varchar(20)"`
	AckDate               string                  `gorm:"type:varchar(30)"`
	SignedQRCode          string                  `gorm:"column:signed_qr_code;type:text"`
	SignedInvoice         string                  `gorm:"type:text"`
	CancelledAt           *time.Time
	CancelReason          einvoice.CancelReason `gorm:"type:varchar(1)"`
	CancelRemark          string                `gorm:"type:varchar(100)"`
	Items                 []DocumentItemModel   `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (DocumentModel) TableName() string {
	return "documents"
}

// ToDomain converts the persistence model to a domain Document.
func (m *DocumentModel) ToDomain() *einvoice.Document {
	doc := &einvoice.Document{
		BaseAggregateRoot:     m.AggregateModel.ToDomainAggregateRoot(),
		Type:                  m.Type,
		Number:                m.Number,
		Date:                  m.Date,
		UnitID:                m.UnitID,
		CustomerID:            m.CustomerID,
		Items:                 make([]einvoice.LineItem, len(m.Items)),
		AssessableValue:       m.AssessableValue,
		CGSTValue:             m.CGSTValue,
		SGSTValue:             m.SGSTValue,
		IGSTValue:             m.IGSTValue,
		TotalValue:            m.TotalValue,
		AmountInWords:         m.AmountInWords,
		Status:                m.Status,
		OriginalInvoiceNumber: m.OriginalInvoiceNumber,
		OriginalInvoiceDate:   m.OriginalInvoiceDate,
		Irn:                   m.Irn,
		AckNo:                 m.AckNo,
		AckDate:               m.AckDate,
		SignedQRCode:          m.SignedQRCode,
		SignedInvoice:         m.SignedInvoice,
		CancelledAt:           m.CancelledAt,
		CancelReason:          m.CancelReason,
		CancelRemark:          m.CancelRemark,
	}
	for i := range m.Items {
		doc.Items[i] = m.Items[i].ToDomain()
	}
	return doc
}

// DocumentModelFromDomain creates a persistence model, items included, from a domain Document.
func DocumentModelFromDomain(d *einvoice.Document) *DocumentModel {
	m := &DocumentModel{
		Type:                  d.Type,
		Number:                d.Number,
		Date:                  d.Date,
		UnitID:                d.UnitID,
		CustomerID:            d.CustomerID,
		AssessableValue:       d.AssessableValue,
		CGSTValue:             d.CGSTValue,
		SGSTValue:             d.SGSTValue,
		IGSTValue:             d.IGSTValue,
		TotalValue:            d.TotalValue,
		AmountInWords:         d.AmountInWords,
		Status:                d.Status,
		OriginalInvoiceNumber: d.OriginalInvoiceNumber,
		OriginalInvoiceDate:   d.OriginalInvoiceDate,
		Irn:                   d.Irn,
		AckNo:                 d.AckNo,
		AckDate:               d.AckDate,
		SignedQRCode:          d.SignedQRCode,
		SignedInvoice:         d.SignedInvoice,
		CancelledAt:           d.CancelledAt,
		CancelReason:          d.CancelReason,
		CancelRemark:          d.CancelRemark,
		Items:                 make([]DocumentItemModel, len(d.Items)),
	}
	m.FromDomainAggregateRoot(d.BaseAggregateRoot)
	for i, item := range d.Items {
		m.Items[i] = DocumentItemModelFromDomain(d.ID, item)
	}
	return m
}

// IRNStateColumns returns the columns written when the IRN lifecycle of a
// document changes.
func IRNStateColumns(d *einvoice.Document) map[string]any {
	return map[string]any{
		"status":         d.Status,
		"irn":            d.Irn,
		"ack_no":         d.AckNo,
		"ack_date":       d.AckDate,
		"signed_qr_code": d.SignedQRCode,
		"signed_invoice": d.SignedInvoice,
		"cancelled_at":   d.CancelledAt,
		"cancel_reason":  d.CancelReason,
		"cancel_remark":  d.CancelRemark,
		"version":        d.Version,
		"updated_at":     d.UpdatedAt,
	}
}

// DocumentItemModel is the persistence model for a document line.
type DocumentItemModel struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key"`
	DocumentID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	SlNo             int             `gorm:"not null"`
	Description      string          `gorm:"type:varchar(300);not null"`
	HSNCode          string          `gorm:"column:hsn_code;type:varchar(8);not null"`
	IsService        bool            `gorm:"not null;default:false"`
	Quantity         decimal.Decimal `gorm:"type:decimal(18,3);not null"`
	Unit             string          `gorm:"type:varchar(8);not null"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(18,3);not null"`
	GSTRate          decimal.Decimal `gorm:"column:gst_rate;type:decimal(5,2);not null"`
	AssessableAmount decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CGSTAmount       decimal.Decimal `gorm:"column:cgst_amount;type:decimal(18,2);not null"`
	SGSTAmount       decimal.Decimal `gorm:"column:sgst_amount;type:decimal(18,2);not null"`
	IGSTAmount       decimal.Decimal `gorm:"column:igst_amount;type:decimal(18,2);not null"`
	TotalItemValue   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (DocumentItemModel) TableName() string {
	return "document_items"
}

// ToDomain converts the persistence model to a domain LineItem.
func (m *DocumentItemModel) ToDomain() einvoice.LineItem {
	return einvoice.LineItem{
		SlNo:             m.SlNo,
		Description:      m.Description,
		HSNCode:          m.HSNCode,
		IsService:        m.IsService,
		Quantity:         m.Quantity,
		Unit:             m.Unit,
		UnitPrice:        m.UnitPrice,
		GSTRate:          m.GSTRate,
		AssessableAmount: m.AssessableAmount,
		CGSTAmount:       m.CGSTAmount,
		SGSTAmount:       m.SGSTAmount,
		IGSTAmount:       m.IGSTAmount,
		TotalItemValue:   m.TotalItemValue,
	}
}

// DocumentItemModelFromDomain creates a line model owned by documentID.
func DocumentItemModelFromDomain(documentID uuid.UUID, item einvoice.LineItem) DocumentItemModel {
	return DocumentItemModel{
		ID:               uuid.New(),
		DocumentID:       documentID,
		SlNo:             item.SlNo,
		Description:      item.Description,
		HSNCode:          item.HSNCode,
		IsService:        item.IsService,
		Quantity:         item.Quantity,
		Unit:             item.Unit,
		UnitPrice:        item.UnitPrice,
		GSTRate:          item.GSTRate,
		AssessableAmount: item.AssessableAmount,
		CGSTAmount:       item.CGSTAmount,
		SGSTAmount:       item.SGSTAmount,
		IGSTAmount:       item.IGSTAmount,
		TotalItemValue:   item.TotalItemValue,
	}
}
