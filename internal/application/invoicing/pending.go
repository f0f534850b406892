package invoicing

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Contratos-api/internal/application/dto"
	"github.com/jhoicas/Contratos-api/internal/domain"
	"github.com/jhoicas/Contratos-api/internal/domain/accounting"
	"github.com/jhoicas/Contratos-api/internal/domain/entity"
	"github.com/jhoicas/Contratos-api/internal/domain/repository"
)

// PendingDetector busca contratos activos sin factura en un mes.
// Supone facturación mensual: un contrato trimestral aparece pendiente en los meses intermedios.
type PendingDetector struct {
	contractRepo   repository.ContractRepository
	assignmentRepo repository.InvoiceOfficeRepository
	providerRepo   repository.ProviderRepository
	officeRepo     repository.OfficeRepository
}

// NewPendingDetector construye el detector.
func NewPendingDetector(
	contractRepo repository.ContractRepository,
	assignmentRepo repository.InvoiceOfficeRepository,
	providerRepo repository.ProviderRepository,
	officeRepo repository.OfficeRepository,
) *PendingDetector {
	return &PendingDetector{
		contractRepo:   contractRepo,
		assignmentRepo: assignmentRepo,
		providerRepo:   providerRepo,
		officeRepo:     officeRepo,
	}
}

// FindMissingInvoices contratos ACTIVO con proveedor y oficina sin ninguna asignación (con contrato)
// cuya factura tenga fecha dentro del mes. Sin fecha de factura cuenta la de creación.
func (d *PendingDetector) FindMissingInvoices(ctx context.Context, year, month int) (*dto.PendingInvoicesResponse, error) {
	if year < 1 || month < 1 || month > 12 {
		return nil, fmt.Errorf("%w: período %d-%02d", domain.ErrInvalidInput, year, month)
	}
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	invoiced, err := d.assignmentRepo.ContractIDsInvoicedBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	covered := make(map[string]struct{}, len(invoiced))
	for _, id := range invoiced {
		covered[id] = struct{}{}
	}

	billable, err := d.contractRepo.ListBillable(ctx)
	if err != nil {
		return nil, err
	}
	var missing []*entity.Contract
	for _, c := range billable {
		if !c.Billable() {
			continue
		}
		if _, ok := covered[c.ID]; ok {
			continue
		}
		missing = append(missing, c)
	}

	items, err := d.describe(ctx, missing)
	if err != nil {
		return nil, err
	}
	return &dto.PendingInvoicesResponse{
		Year:      year,
		Month:     month,
		MonthName: accounting.MonthName(time.Month(month)),
		Total:     len(items),
		Items:     items,
	}, nil
}

func (d *PendingDetector) describe(ctx context.Context, list []*entity.Contract) ([]dto.PendingContractResponse, error) {
	out := make([]dto.PendingContractResponse, 0, len(list))
	if len(list) == 0 {
		return out, nil
	}
	officeIDs := make([]string, 0, len(list))
	for _, c := range list {
		officeIDs = append(officeIDs, c.OfficeID)
	}
	offices, err := d.officeRepo.ListByIDs(ctx, officeIDs)
	if err != nil {
		return nil, err
	}
	officeByID := make(map[string]*entity.Office, len(offices))
	for _, o := range offices {
		officeByID[o.ID] = o
	}
	providers := make(map[string]*entity.Provider)
	for _, c := range list {
		p, ok := providers[c.ProviderID]
		if !ok {
			if p, err = d.providerRepo.GetByID(ctx, c.ProviderID); err != nil {
				return nil, err
			}
			providers[c.ProviderID] = p
		}
		item := dto.PendingContractResponse{ContractResponse: dto.FromContract(c)}
		if p != nil {
			item.ProviderName = p.Name
			item.ProviderTaxID = p.TaxID
		}
		if o := officeByID[c.OfficeID]; o != nil {
			item.OfficeCode = o.Code
			item.OfficeName = o.Name
		}
		out = append(out, item)
	}
	return out, nil
}
