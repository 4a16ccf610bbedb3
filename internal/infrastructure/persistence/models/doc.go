// Package models contains GORM persistence models for the e-invoice gateway.
// Domain entities stay free of ORM tags; each model carries ToDomain and
// FromDomain mappers used by the repositories.
//
// Tables:
//   - seller_units: registered places of business issuing documents
//   - customers: B2B recipients
//   - documents: invoices (INV) and credit notes (CRN) with their IRN state
//   - document_items: priced and taxed lines of a document
package models
