package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// AssignmentStatus estado de pago de una asignación factura-oficina.
type AssignmentStatus string

const (
	AssignmentPending AssignmentStatus = "PENDIENTE"
	AssignmentPaid    AssignmentStatus = "PAGADA"
)

// Valid indica si el estado es uno de los reconocidos.
func (s AssignmentStatus) Valid() bool {
	return s == AssignmentPending || s == AssignmentPaid
}

// InvoiceOffice asignación de una factura a una oficina con su valor.
// ContractID se resuelve al momento de asignar y no se recalcula después.
type InvoiceOffice struct {
	ID         string
	InvoiceID  string
	OfficeID   string
	ContractID string
	Value      decimal.Decimal
	Status     AssignmentStatus
	Notes      string
	CreatedAt  time.Time
}
