package invoicing

import (
	"context"

	"github.com/jhoicas/Contratos-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción con los repos de facturas y catálogo.
// Todas las mutaciones del motor de asignación pasan por aquí.
type TxRunner interface {
	RunInvoicing(ctx context.Context, fn func(
		invoiceRepo repository.InvoiceRepository,
		assignmentRepo repository.InvoiceOfficeRepository,
		contractRepo repository.ContractRepository,
		providerRepo repository.ProviderRepository,
		officeRepo repository.OfficeRepository,
	) error) error
}

// ProviderDirectory consulta el nombre de un proveedor por NIT en el directorio externo.
// Un error equivale a "no encontrado".
type ProviderDirectory interface {
	ProviderName(ctx context.Context, taxID string) (string, error)
}
