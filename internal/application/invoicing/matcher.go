package invoicing

import (
	"context"
	"fmt"

	"github.com/jhoicas/Contratos-api/internal/domain/contracts"
	"github.com/jhoicas/Contratos-api/internal/domain/entity"
	"github.com/jhoicas/Contratos-api/internal/domain/repository"
)

// ContractMatcher encuentra el contrato de un par proveedor/oficina. Solo lectura.
type ContractMatcher struct {
	repo repository.ContractRepository
}

// NewContractMatcher construye el matcher sobre el repo dado (pool o tx).
func NewContractMatcher(repo repository.ContractRepository) *ContractMatcher {
	return &ContractMatcher{repo: repo}
}

// FindContract devuelve el contrato preferido o nil si no hay. Sin proveedor u oficina no se busca.
func (m *ContractMatcher) FindContract(ctx context.Context, providerID, officeID string) (*entity.Contract, error) {
	if providerID == "" || officeID == "" {
		return nil, nil
	}
	candidates, err := m.repo.FindByProviderAndOffice(ctx, providerID, officeID)
	if err != nil {
		return nil, fmt.Errorf("buscar contrato: %w", err)
	}
	return contracts.Preferred(candidates), nil
}
