package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Contratos-api/internal/domain/entity"
)

// InvoiceFilter filtros del listado de facturas. From/To aplican sobre la fecha de factura
// o, si no existe, la de creación.
type InvoiceFilter struct {
	Search              string
	Status              entity.InvoiceStatus
	ProviderID          string
	OfficeID            string // oficina legacy o cualquier asignación
	From                *time.Time
	To                  *time.Time
	OnlyWithoutContract bool
	Limit               int
	Offset              int
}

// InvoiceSummary conteos para el tablero de facturas.
type InvoiceSummary struct {
	Total           int
	Pending         int
	Assigned        int
	Paid            int
	WithoutContract int
	Discrepancies   int // suma de asignaciones distinta del valor de la factura
}

// InvoiceRepository define el puerto de persistencia para Invoice.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	// GetByIDForUpdate bloquea la fila hasta el fin de la transacción.
	GetByIDForUpdate(ctx context.Context, id string) (*entity.Invoice, error)
	GetByIDs(ctx context.Context, ids []string) ([]*entity.Invoice, error)
	Update(ctx context.Context, invoice *entity.Invoice) error
	UpdateStatus(ctx context.Context, id string, status entity.InvoiceStatus, at time.Time) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f InvoiceFilter) ([]*entity.Invoice, int, error)
	Summary(ctx context.Context) (*InvoiceSummary, error)
}
