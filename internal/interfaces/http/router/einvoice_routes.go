package router

import "github.com/erp/einvoice/internal/interfaces/http/handler"

// Handlers are the endpoint handlers of the gateway API
type Handlers struct {
	Party    *handler.PartyHandler
	Document *handler.DocumentHandler
	Session  *handler.SessionHandler
	System   *handler.SystemHandler
}

// EInvoiceRoutes returns the route groups mounted under /api/v1
func EInvoiceRoutes(h Handlers) []RouteRegistrar {
	units := NewDomainGroup("units", "/units").
		POST("", h.Party.CreateSellerUnit).
		GET("/:code", h.Party.GetSellerUnit)

	customers := NewDomainGroup("customers", "/customers").
		POST("", h.Party.CreateCustomer).
		GET("/:code", h.Party.GetCustomer)

	invoices := NewDomainGroup("invoices", "/invoices").
		POST("", h.Document.IssueInvoice).
		GET("/:number", h.Document.GetInvoice).
		POST("/:number/irn", h.Document.GenerateInvoiceIRN).
		POST("/:number/irn/cancel", h.Document.CancelInvoiceIRN).
		POST("/:number/irn/regenerate", h.Document.RegenerateInvoiceIRN)

	creditNotes := NewDomainGroup("credit-notes", "/credit-notes").
		POST("", h.Document.IssueCreditNote).
		GET("/:number", h.Document.GetCreditNote).
		POST("/:number/irn", h.Document.GenerateCreditNoteIRN).
		POST("/:number/irn/cancel", h.Document.CancelCreditNoteIRN).
		POST("/:number/irn/regenerate", h.Document.RegenerateCreditNoteIRN)

	session := NewDomainGroup("einvoice", "/einvoice").
		GET("/session", h.Session.Verify).
		DELETE("/session", h.Session.Reset)

	return []RouteRegistrar{units, customers, invoices, creditNotes, session}
}
