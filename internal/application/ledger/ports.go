package ledger

import (
	"context"

	"github.com/jhoicas/Contratos-api/internal/domain/accounting"
)

// Directory consultas contables al directorio corporativo.
type Directory interface {
	// CostCenter centro de costo de un subcódigo de oficina.
	CostCenter(ctx context.Context, subCode string) (string, error)
	// NextDocumentNumber siguiente NUMEDOC libre para el tipo y la clase de documento.
	NextDocumentNumber(ctx context.Context, docType, docClass string) (int, error)
}

// SheetWriter serializa el encabezado y las celdas al formato del importador.
type SheetWriter interface {
	Write(ctx context.Context, headers []string, rows [][]accounting.Cell) ([]byte, error)
}
