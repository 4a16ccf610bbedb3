// Package einvoice holds the domain model of the e-invoicing gateway: seller
// units, customers, invoices and credit notes, the credentials exchanged with
// the GSP (GST Suvidha Provider) and the result of IRN operations.
package einvoice
