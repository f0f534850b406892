package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ContractStatus estado comercial de un contrato.
type ContractStatus string

const (
	ContractActive    ContractStatus = "ACTIVO"
	ContractCancelled ContractStatus = "CANCELADO"
)

var contractStatusRank = map[ContractStatus]int{
	ContractActive:    2,
	ContractCancelled: 1,
}

// Rank devuelve la prioridad del estado al elegir entre contratos del mismo par proveedor/oficina.
// Estados desconocidos quedan al final.
func (s ContractStatus) Rank() int {
	return contractStatusRank[s]
}

// Contract acuerdo entre un proveedor y una oficina.
// ProviderID y OfficeID vacíos equivalen a NULL en la base.
type Contract struct {
	ID             string
	ProviderID     string
	OfficeID       string
	Number         string
	HolderName     string
	HolderTaxID    string
	Line           string
	PlanType       string
	PaymentRef     string
	MonthlyValue   decimal.Decimal
	Status         ContractStatus
	HasVAT         bool
	HasWithholding bool
	WithholdingPct decimal.Decimal
	StartDate      *time.Time
	EndDate        *time.Time
	Notes          string
	CreatedAt      time.Time
}

// IsActive indica si el contrato está vigente.
func (c *Contract) IsActive() bool {
	return c.Status == ContractActive
}

// Billable indica si el contrato debe recibir factura mensual (activo, con proveedor y oficina).
func (c *Contract) Billable() bool {
	return c.IsActive() && c.ProviderID != "" && c.OfficeID != ""
}

// EffectiveWithholdingPct porcentaje de retención aplicable (cero si el contrato no retiene).
func (c *Contract) EffectiveWithholdingPct() decimal.Decimal {
	if !c.HasWithholding {
		return decimal.Zero
	}
	return c.WithholdingPct
}
