package dto

import "github.com/shopspring/decimal"

// LedgerOfficeInput oficina con valor para exportación directa.
type LedgerOfficeInput struct {
	OfficeCode string          `json:"office_code"`
	OfficeName string          `json:"office_name,omitempty"`
	Value      decimal.Decimal `json:"value"`
}

// LedgerInvoiceInput factura de exportación directa (sin pasar por la base).
type LedgerInvoiceInput struct {
	Number      string              `json:"number"`
	InvoiceDate string              `json:"invoice_date,omitempty"`
	Offices     []LedgerOfficeInput `json:"offices"`
}

// LedgerExportRequest body para POST /api/ledger/preview y /api/ledger/export.
// Con InvoiceIDs los datos salen de las facturas guardadas; si no, de Invoices.
// HasVAT y WithholdingPct reemplazan lo que diga el contrato.
type LedgerExportRequest struct {
	InvoiceIDs     []string             `json:"invoice_ids,omitempty"`
	Invoices       []LedgerInvoiceInput `json:"invoices,omitempty"`
	ProviderTaxID  string               `json:"provider_tax_id,omitempty"`
	ProviderName   string               `json:"provider_name,omitempty"`
	HasVAT         *bool                `json:"has_vat,omitempty"`
	WithholdingPct *decimal.Decimal     `json:"withholding_pct,omitempty"`
	Numedoc        int                  `json:"numedoc,omitempty"`
	CausationDate  string               `json:"causation_date,omitempty"` // YYYY-MM-DD, defecto hoy
	Description    string               `json:"description,omitempty"`
}

// LedgerDocumentResponse totales por documento (factura).
type LedgerDocumentResponse struct {
	Document      int             `json:"numedoc"`
	InvoiceNumber string          `json:"invoice_number"`
	Base          decimal.Decimal `json:"base"`
	VAT           decimal.Decimal `json:"vat"`
	Withholding   decimal.Decimal `json:"withholding"`
	Debits        decimal.Decimal `json:"debits"`
	Credits       decimal.Decimal `json:"credits"`
	Balance       decimal.Decimal `json:"balance"`
	Rows          int             `json:"rows"`
}

// LedgerPreviewResponse filas del archivo plano como JSON (encabezado -> valor).
type LedgerPreviewResponse struct {
	FileName  string                   `json:"file_name"`
	TotalRows int                      `json:"total_rows"`
	Headers   []string                 `json:"headers"`
	Rows      []map[string]any         `json:"rows"`
	Documents []LedgerDocumentResponse `json:"documents"`
}
