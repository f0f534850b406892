package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus estado de una factura de proveedor.
type InvoiceStatus string

const (
	InvoicePending  InvoiceStatus = "PENDIENTE" // sin oficinas asignadas
	InvoiceAssigned InvoiceStatus = "ASIGNADA"  // al menos una oficina
	InvoicePaid     InvoiceStatus = "PAGADA"    // transición manual terminal
)

// Valid indica si el estado es uno de los reconocidos.
func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoicePending, InvoiceAssigned, InvoicePaid:
		return true
	}
	return false
}

// Invoice cabecera de una factura recibida de un proveedor.
// LegacyOfficeID/LegacyContractID son la referencia única histórica, independiente de las asignaciones.
type Invoice struct {
	ID               string
	ProviderID       string
	Number           string
	CUFE             string
	InvoiceDate      *time.Time
	DueDate          *time.Time
	Value            decimal.Decimal
	Status           InvoiceStatus
	URL              string
	Notes            string
	LegacyOfficeID   string
	LegacyContractID string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// EffectiveDate fecha de la factura o, si no existe, la de creación.
func (i *Invoice) EffectiveDate() time.Time {
	if i.InvoiceDate != nil {
		return *i.InvoiceDate
	}
	return i.CreatedAt
}
