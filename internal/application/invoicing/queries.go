package invoicing

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Contratos-api/internal/application/dto"
	"github.com/jhoicas/Contratos-api/internal/domain"
	"github.com/jhoicas/Contratos-api/internal/domain/entity"
	"github.com/jhoicas/Contratos-api/internal/domain/repository"
)

// InvoiceQueries lecturas de facturas (sin transacción).
type InvoiceQueries struct {
	invoiceRepo    repository.InvoiceRepository
	assignmentRepo repository.InvoiceOfficeRepository
	providerRepo   repository.ProviderRepository
	officeRepo     repository.OfficeRepository
}

// NewInvoiceQueries construye el caso de uso de lectura.
func NewInvoiceQueries(
	invoiceRepo repository.InvoiceRepository,
	assignmentRepo repository.InvoiceOfficeRepository,
	providerRepo repository.ProviderRepository,
	officeRepo repository.OfficeRepository,
) *InvoiceQueries {
	return &InvoiceQueries{
		invoiceRepo:    invoiceRepo,
		assignmentRepo: assignmentRepo,
		providerRepo:   providerRepo,
		officeRepo:     officeRepo,
	}
}

// GetInvoice factura con asignaciones, nombres de oficina y bandera de discrepancia.
func (q *InvoiceQueries) GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := q.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	list, err := q.enrich(ctx, []*entity.Invoice{inv})
	if err != nil {
		return nil, err
	}
	return &list[0], nil
}

// ListInvoices listado filtrado y paginado.
func (q *InvoiceQueries) ListInvoices(ctx context.Context, in dto.InvoiceListRequest) (*dto.InvoiceListResponse, error) {
	in.DefaultPage()
	f := repository.InvoiceFilter{
		Search:              strings.TrimSpace(in.Search),
		ProviderID:          strings.TrimSpace(in.ProviderID),
		OfficeID:            strings.TrimSpace(in.OfficeID),
		OnlyWithoutContract: in.OnlyWithoutContract,
		Limit:               in.Limit,
		Offset:              in.Offset,
	}
	if s := strings.TrimSpace(in.Status); s != "" {
		f.Status = entity.InvoiceStatus(strings.ToUpper(s))
		if !f.Status.Valid() {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, in.Status)
		}
	}
	var err error
	if f.From, err = dto.ParseDate(in.From); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if f.To, err = dto.ParseDate(in.To); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	invoices, total, err := q.invoiceRepo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	items, err := q.enrich(ctx, invoices)
	if err != nil {
		return nil, err
	}
	return &dto.InvoiceListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset, Total: total},
	}, nil
}

// ListAssignments asignaciones de una factura.
func (q *InvoiceQueries) ListAssignments(ctx context.Context, invoiceID string) ([]dto.AssignmentResponse, error) {
	inv, err := q.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	return inv.Assignments, nil
}

// Summary conteos por estado.
func (q *InvoiceQueries) Summary(ctx context.Context) (*dto.InvoiceSummaryResponse, error) {
	s, err := q.invoiceRepo.Summary(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.InvoiceSummaryResponse{
		Total:           s.Total,
		Pending:         s.Pending,
		Assigned:        s.Assigned,
		Paid:            s.Paid,
		WithoutContract: s.WithoutContract,
		Discrepancies:   s.Discrepancies,
	}, nil
}

// enrich arma las respuestas con una consulta por tipo de entidad relacionada.
func (q *InvoiceQueries) enrich(ctx context.Context, invoices []*entity.Invoice) ([]dto.InvoiceResponse, error) {
	out := make([]dto.InvoiceResponse, 0, len(invoices))
	if len(invoices) == 0 {
		return out, nil
	}
	ids := make([]string, 0, len(invoices))
	for _, inv := range invoices {
		ids = append(ids, inv.ID)
	}
	assignments, err := q.assignmentRepo.ListByInvoices(ctx, ids)
	if err != nil {
		return nil, err
	}
	byInvoice := make(map[string][]*entity.InvoiceOffice, len(invoices))
	officeIDs := make([]string, 0, len(assignments))
	seen := make(map[string]struct{})
	for _, a := range assignments {
		byInvoice[a.InvoiceID] = append(byInvoice[a.InvoiceID], a)
		if _, ok := seen[a.OfficeID]; !ok {
			seen[a.OfficeID] = struct{}{}
			officeIDs = append(officeIDs, a.OfficeID)
		}
	}
	offices := make(map[string]*entity.Office, len(officeIDs))
	if len(officeIDs) > 0 {
		list, err := q.officeRepo.ListByIDs(ctx, officeIDs)
		if err != nil {
			return nil, err
		}
		for _, o := range list {
			offices[o.ID] = o
		}
	}

	providers := make(map[string]*entity.Provider)
	for _, inv := range invoices {
		p, ok := providers[inv.ProviderID]
		if !ok {
			if p, err = q.providerRepo.GetByID(ctx, inv.ProviderID); err != nil {
				return nil, err
			}
			providers[inv.ProviderID] = p
		}
		out = append(out, toInvoiceResponse(inv, p, byInvoice[inv.ID], offices))
	}
	return out, nil
}

func toInvoiceResponse(inv *entity.Invoice, p *entity.Provider, assignments []*entity.InvoiceOffice, offices map[string]*entity.Office) dto.InvoiceResponse {
	resp := dto.InvoiceResponse{
		ID:               inv.ID,
		ProviderID:       inv.ProviderID,
		Number:           inv.Number,
		CUFE:             inv.CUFE,
		InvoiceDate:      dto.FormatDate(inv.InvoiceDate),
		DueDate:          dto.FormatDate(inv.DueDate),
		Value:            inv.Value,
		Status:           string(inv.Status),
		URL:              inv.URL,
		Notes:            inv.Notes,
		LegacyOfficeID:   inv.LegacyOfficeID,
		LegacyContractID: inv.LegacyContractID,
		Assignments:      make([]dto.AssignmentResponse, 0, len(assignments)),
		CreatedAt:        inv.CreatedAt,
		UpdatedAt:        inv.UpdatedAt,
	}
	if p != nil {
		resp.ProviderTaxID = p.TaxID
		resp.ProviderName = p.Name
	}
	total := decimal.Zero
	for _, a := range assignments {
		resp.Assignments = append(resp.Assignments, dto.FromAssignment(a, offices[a.OfficeID]))
		total = total.Add(a.Value)
	}
	resp.AssignedTotal = total
	resp.HasDiscrepancy = len(assignments) > 0 && !total.Equal(inv.Value)
	return resp
}
