package repository

import (
	"context"

	"github.com/jhoicas/Contratos-api/internal/domain/entity"
)

// ProviderRepository define el puerto de persistencia para Provider.
type ProviderRepository interface {
	Create(ctx context.Context, provider *entity.Provider) error
	GetByID(ctx context.Context, id string) (*entity.Provider, error)
	GetByTaxID(ctx context.Context, taxID string) (*entity.Provider, error)
	List(ctx context.Context, search string, limit, offset int) ([]*entity.Provider, error)
	// Delete retorna domain.ErrConflict si hay contratos o facturas que lo referencian.
	Delete(ctx context.Context, id string) error
}
