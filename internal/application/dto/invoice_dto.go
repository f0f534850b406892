package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OfficeAssignmentInput oficina con su valor. Se identifica por OfficeID o, en su defecto, por OfficeCode.
type OfficeAssignmentInput struct {
	OfficeID   string          `json:"office_id,omitempty"`
	OfficeCode string          `json:"office_code,omitempty"`
	Value      decimal.Decimal `json:"value"`
	Notes      string          `json:"notes,omitempty"`
}

// CreateInvoiceRequest body para POST /api/invoices.
// El proveedor se indica por ProviderID o por ProviderTaxID (se crea si llega ProviderName).
type CreateInvoiceRequest struct {
	ProviderID    string                  `json:"provider_id,omitempty"`
	ProviderTaxID string                  `json:"provider_tax_id,omitempty"`
	ProviderName  string                  `json:"provider_name,omitempty"`
	Number        string                  `json:"number"`
	CUFE          string                  `json:"cufe,omitempty"`
	InvoiceDate   string                  `json:"invoice_date,omitempty"` // YYYY-MM-DD
	DueDate       string                  `json:"due_date,omitempty"`
	Value         decimal.Decimal         `json:"value"`
	URL           string                  `json:"url,omitempty"`
	Notes         string                  `json:"notes,omitempty"`
	Offices       []OfficeAssignmentInput `json:"offices,omitempty"`
}

// UpdateInvoiceRequest body para PUT /api/invoices/:id (campos opcionales).
type UpdateInvoiceRequest struct {
	Number      *string          `json:"number"`
	CUFE        *string          `json:"cufe"`
	InvoiceDate *string          `json:"invoice_date"`
	DueDate     *string          `json:"due_date"`
	Value       *decimal.Decimal `json:"value"`
	URL         *string          `json:"url"`
	Notes       *string          `json:"notes"`
}

// AssignOfficeRequest body para PUT /api/invoices/:id/office.
type AssignOfficeRequest struct {
	OfficeID string `json:"office_id"`
}

// ReplaceAssignmentsRequest body para PUT /api/invoices/:id/assignments.
type ReplaceAssignmentsRequest struct {
	Offices []OfficeAssignmentInput `json:"offices"`
}

// UpdateAssignmentRequest body para PATCH /api/assignments/:id.
type UpdateAssignmentRequest struct {
	Value  decimal.Decimal `json:"value"`
	Status string          `json:"status,omitempty"` // PENDIENTE | PAGADA
	Notes  *string         `json:"notes"`
}

// AssignmentResponse asignación factura-oficina.
type AssignmentResponse struct {
	ID         string          `json:"id"`
	InvoiceID  string          `json:"invoice_id"`
	OfficeID   string          `json:"office_id"`
	OfficeCode string          `json:"office_code,omitempty"`
	OfficeName string          `json:"office_name,omitempty"`
	ContractID string          `json:"contract_id,omitempty"`
	Value      decimal.Decimal `json:"value"`
	Status     string          `json:"status"`
	Notes      string          `json:"notes,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// InvoiceResponse factura con sus asignaciones.
// HasDiscrepancy indica que la suma asignada difiere del valor de la factura (solo informativo).
type InvoiceResponse struct {
	ID               string               `json:"id"`
	ProviderID       string               `json:"provider_id"`
	ProviderTaxID    string               `json:"provider_tax_id,omitempty"`
	ProviderName     string               `json:"provider_name,omitempty"`
	Number           string               `json:"number"`
	CUFE             string               `json:"cufe,omitempty"`
	InvoiceDate      string               `json:"invoice_date,omitempty"`
	DueDate          string               `json:"due_date,omitempty"`
	Value            decimal.Decimal      `json:"value"`
	Status           string               `json:"status"`
	URL              string               `json:"url,omitempty"`
	Notes            string               `json:"notes,omitempty"`
	LegacyOfficeID   string               `json:"legacy_office_id,omitempty"`
	LegacyContractID string               `json:"legacy_contract_id,omitempty"`
	Assignments      []AssignmentResponse `json:"assignments"`
	AssignedTotal    decimal.Decimal      `json:"assigned_total"`
	HasDiscrepancy   bool                 `json:"has_discrepancy"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
}

// InvoiceListRequest filtros de GET /api/invoices.
type InvoiceListRequest struct {
	Search              string `query:"search"`
	Status              string `query:"status"`
	ProviderID          string `query:"provider_id"`
	OfficeID            string `query:"office_id"`
	From                string `query:"from"`
	To                  string `query:"to"`
	OnlyWithoutContract bool   `query:"only_without_contract"`
	PageRequest
}

// InvoiceListResponse lista paginada de facturas.
type InvoiceListResponse struct {
	Items []InvoiceResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// InvoiceSummaryResponse conteos por estado.
type InvoiceSummaryResponse struct {
	Total           int `json:"total"`
	Pending         int `json:"pending"`
	Assigned        int `json:"assigned"`
	Paid            int `json:"paid"`
	WithoutContract int `json:"without_contract"`
	Discrepancies   int `json:"discrepancies"`
}
