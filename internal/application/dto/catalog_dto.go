package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProviderRequest body para POST /api/providers.
type CreateProviderRequest struct {
	TaxID string `json:"tax_id"`
	Name  string `json:"name"`
}

// ProviderResponse proveedor en respuestas.
type ProviderResponse struct {
	ID        string    `json:"id"`
	TaxID     string    `json:"tax_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateOfficeRequest body para POST /api/offices.
type CreateOfficeRequest struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	SiteType string `json:"site_type,omitempty"`
	Address  string `json:"address,omitempty"`
	City     string `json:"city,omitempty"`
	Zone     string `json:"zone,omitempty"`
}

// OfficeResponse oficina en respuestas.
type OfficeResponse struct {
	ID       string `json:"id"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	SiteType string `json:"site_type,omitempty"`
	Address  string `json:"address,omitempty"`
	City     string `json:"city,omitempty"`
	Zone     string `json:"zone,omitempty"`
}

// CreateContractRequest body para POST /api/contracts. Fechas en formato YYYY-MM-DD.
type CreateContractRequest struct {
	ProviderID     string          `json:"provider_id,omitempty"`
	OfficeID       string          `json:"office_id,omitempty"`
	Number         string          `json:"number"`
	HolderName     string          `json:"holder_name,omitempty"`
	HolderTaxID    string          `json:"holder_tax_id,omitempty"`
	Line           string          `json:"line,omitempty"`
	PlanType       string          `json:"plan_type,omitempty"`
	PaymentRef     string          `json:"payment_ref,omitempty"`
	MonthlyValue   decimal.Decimal `json:"monthly_value"`
	Status         string          `json:"status,omitempty"` // ACTIVO (defecto) | CANCELADO
	HasVAT         bool            `json:"has_vat"`
	HasWithholding bool            `json:"has_withholding"`
	WithholdingPct decimal.Decimal `json:"withholding_pct"`
	StartDate      string          `json:"start_date,omitempty"`
	EndDate        string          `json:"end_date,omitempty"`
	Notes          string          `json:"notes,omitempty"`
}

// ContractResponse contrato en respuestas.
type ContractResponse struct {
	ID             string          `json:"id"`
	ProviderID     string          `json:"provider_id,omitempty"`
	OfficeID       string          `json:"office_id,omitempty"`
	Number         string          `json:"number"`
	HolderName     string          `json:"holder_name,omitempty"`
	HolderTaxID    string          `json:"holder_tax_id,omitempty"`
	Line           string          `json:"line,omitempty"`
	PlanType       string          `json:"plan_type,omitempty"`
	PaymentRef     string          `json:"payment_ref,omitempty"`
	MonthlyValue   decimal.Decimal `json:"monthly_value"`
	Status         string          `json:"status"`
	HasVAT         bool            `json:"has_vat"`
	HasWithholding bool            `json:"has_withholding"`
	WithholdingPct decimal.Decimal `json:"withholding_pct"`
	StartDate      string          `json:"start_date,omitempty"`
	EndDate        string          `json:"end_date,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// ContractMatchResponse resultado de GET /api/contracts/match. Contract es nil si no hay coincidencia.
type ContractMatchResponse struct {
	ProviderID string            `json:"provider_id"`
	OfficeID   string            `json:"office_id"`
	Contract   *ContractResponse `json:"contract"`
}

// PendingContractResponse contrato activo sin factura en el período.
type PendingContractResponse struct {
	ContractResponse
	ProviderName  string `json:"provider_name,omitempty"`
	ProviderTaxID string `json:"provider_tax_id,omitempty"`
	OfficeCode    string `json:"office_code,omitempty"`
	OfficeName    string `json:"office_name,omitempty"`
}

// PendingInvoicesResponse respuesta de GET /api/contracts/pending.
type PendingInvoicesResponse struct {
	Year      int                       `json:"year"`
	Month     int                       `json:"month"`
	MonthName string                    `json:"month_name"`
	Total     int                       `json:"total"`
	Items     []PendingContractResponse `json:"items"`
}

// CatalogListRequest filtros comunes de los listados de catálogo.
type CatalogListRequest struct {
	Search string `query:"search"`
	PageRequest
}

// ContractListRequest filtros de GET /api/contracts.
type ContractListRequest struct {
	Search     string `query:"search"`
	ProviderID string `query:"provider_id"`
	OfficeID   string `query:"office_id"`
	Status     string `query:"status"`
	PageRequest
}

// ProviderListResponse lista paginada de proveedores.
type ProviderListResponse struct {
	Items []ProviderResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// OfficeListResponse lista paginada de oficinas.
type OfficeListResponse struct {
	Items []OfficeResponse `json:"items"`
	Page  PageResponse     `json:"page"`
}

// ContractListResponse lista paginada de contratos.
type ContractListResponse struct {
	Items []ContractResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
