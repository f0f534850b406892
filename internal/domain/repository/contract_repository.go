package repository

import (
	"context"

	"github.com/jhoicas/Contratos-api/internal/domain/entity"
)

// ContractFilter filtros del listado de contratos.
type ContractFilter struct {
	Search     string
	ProviderID string
	OfficeID   string
	Status     entity.ContractStatus
	Limit      int
	Offset     int
}

// ContractRepository define el puerto de persistencia para Contract.
type ContractRepository interface {
	Create(ctx context.Context, contract *entity.Contract) error
	GetByID(ctx context.Context, id string) (*entity.Contract, error)
	List(ctx context.Context, f ContractFilter) ([]*entity.Contract, error)
	// FindByProviderAndOffice devuelve todos los contratos del par, sin ordenar por preferencia.
	FindByProviderAndOffice(ctx context.Context, providerID, officeID string) ([]*entity.Contract, error)
	// ListBillable devuelve los contratos ACTIVO con proveedor y oficina.
	ListBillable(ctx context.Context) ([]*entity.Contract, error)
	ListByProvider(ctx context.Context, providerID string) ([]*entity.Contract, error)
}
