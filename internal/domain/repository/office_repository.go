package repository

import (
	"context"

	"github.com/jhoicas/Contratos-api/internal/domain/entity"
)

// OfficeRepository define el puerto de persistencia para Office.
type OfficeRepository interface {
	Create(ctx context.Context, office *entity.Office) error
	GetByID(ctx context.Context, id string) (*entity.Office, error)
	// GetByCode devuelve la primera oficina con ese código (el código no es único).
	GetByCode(ctx context.Context, code string) (*entity.Office, error)
	ListByIDs(ctx context.Context, ids []string) ([]*entity.Office, error)
	List(ctx context.Context, search string, limit, offset int) ([]*entity.Office, error)
}
