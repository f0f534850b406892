package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Contratos-api/internal/domain/entity"
)

// InvoiceOfficeRepository define el puerto de persistencia para las asignaciones factura-oficina.
type InvoiceOfficeRepository interface {
	Create(ctx context.Context, a *entity.InvoiceOffice) error
	GetByID(ctx context.Context, id string) (*entity.InvoiceOffice, error)
	ListByInvoice(ctx context.Context, invoiceID string) ([]*entity.InvoiceOffice, error)
	ListByInvoices(ctx context.Context, invoiceIDs []string) ([]*entity.InvoiceOffice, error)
	Update(ctx context.Context, a *entity.InvoiceOffice) error
	// Delete retorna false si la asignación no existía.
	Delete(ctx context.Context, id string) (bool, error)
	DeleteByInvoice(ctx context.Context, invoiceID string) error
	CountByInvoice(ctx context.Context, invoiceID string) (int, error)
	// ContractIDsInvoicedBetween contratos con al menos una asignación cuya factura cae en [from, to).
	ContractIDsInvoicedBetween(ctx context.Context, from, to time.Time) ([]string, error)
}
