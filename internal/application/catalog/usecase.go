package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Contratos-api/internal/application/dto"
	"github.com/jhoicas/Contratos-api/internal/application/invoicing"
	"github.com/jhoicas/Contratos-api/internal/domain"
	"github.com/jhoicas/Contratos-api/internal/domain/contracts"
	"github.com/jhoicas/Contratos-api/internal/domain/entity"
	"github.com/jhoicas/Contratos-api/internal/domain/repository"
)

var hundred = decimal.NewFromInt(100)

// UseCase casos de uso de proveedores, oficinas y contratos.
type UseCase struct {
	providerRepo repository.ProviderRepository
	officeRepo   repository.OfficeRepository
	contractRepo repository.ContractRepository
	matcher      *invoicing.ContractMatcher
	now          func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	providerRepo repository.ProviderRepository,
	officeRepo repository.OfficeRepository,
	contractRepo repository.ContractRepository,
) *UseCase {
	return &UseCase{
		providerRepo: providerRepo,
		officeRepo:   officeRepo,
		contractRepo: contractRepo,
		matcher:      invoicing.NewContractMatcher(contractRepo),
		now:          time.Now,
	}
}

// ── proveedores ───────────────────────────────────────────────────────────────

// CreateProvider registra un proveedor. El NIT es único.
func (uc *UseCase) CreateProvider(ctx context.Context, in dto.CreateProviderRequest) (*dto.ProviderResponse, error) {
	taxID := strings.TrimSpace(in.TaxID)
	name := strings.TrimSpace(in.Name)
	if taxID == "" || name == "" {
		return nil, fmt.Errorf("%w: tax_id y name son requeridos", domain.ErrInvalidInput)
	}
	existing, err := uc.providerRepo.GetByTaxID(ctx, taxID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("proveedor %s: %w", taxID, domain.ErrDuplicate)
	}
	p := &entity.Provider{ID: uuid.New().String(), TaxID: taxID, Name: name, CreatedAt: uc.now()}
	if err := uc.providerRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	out := dto.FromProvider(p)
	return &out, nil
}

// GetProvider obtiene un proveedor por ID.
func (uc *UseCase) GetProvider(ctx context.Context, id string) (*dto.ProviderResponse, error) {
	p, err := uc.providerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	out := dto.FromProvider(p)
	return &out, nil
}

// ListProviders lista proveedores filtrando por nombre o NIT.
func (uc *UseCase) ListProviders(ctx context.Context, in dto.CatalogListRequest) (*dto.ProviderListResponse, error) {
	in.DefaultPage()
	list, err := uc.providerRepo.List(ctx, strings.TrimSpace(in.Search), in.Limit, in.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProviderResponse, 0, len(list))
	for _, p := range list {
		items = append(items, dto.FromProvider(p))
	}
	return &dto.ProviderListResponse{Items: items, Page: dto.PageResponse{Limit: in.Limit, Offset: in.Offset}}, nil
}

// DeleteProvider elimina un proveedor sin contratos ni facturas.
func (uc *UseCase) DeleteProvider(ctx context.Context, id string) error {
	p, err := uc.providerRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return domain.ErrNotFound
	}
	if err := uc.providerRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return fmt.Errorf("proveedor %s tiene contratos o facturas: %w", p.TaxID, err)
		}
		return err
	}
	return nil
}

// OfficesForProvider oficinas con contrato del proveedor, en orden de preferencia del contrato.
func (uc *UseCase) OfficesForProvider(ctx context.Context, providerID string) ([]dto.OfficeResponse, error) {
	if _, err := uc.GetProvider(ctx, providerID); err != nil {
		return nil, err
	}
	list, err := uc.contractRepo.ListByProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}
	contracts.SortByPreference(list)
	ids := make([]string, 0, len(list))
	seen := make(map[string]struct{}, len(list))
	for _, c := range list {
		if c.OfficeID == "" {
			continue
		}
		if _, ok := seen[c.OfficeID]; ok {
			continue
		}
		seen[c.OfficeID] = struct{}{}
		ids = append(ids, c.OfficeID)
	}
	out := make([]dto.OfficeResponse, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	offices, err := uc.officeRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*entity.Office, len(offices))
	for _, o := range offices {
		byID[o.ID] = o
	}
	for _, id := range ids {
		if o := byID[id]; o != nil {
			out = append(out, dto.FromOffice(o))
		}
	}
	return out, nil
}

// ── oficinas ──────────────────────────────────────────────────────────────────

// CreateOffice registra una oficina. El código es opcional y puede repetirse.
func (uc *UseCase) CreateOffice(ctx context.Context, in dto.CreateOfficeRequest) (*dto.OfficeResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name requerido", domain.ErrInvalidInput)
	}
	o := &entity.Office{
		ID:        uuid.New().String(),
		Code:      strings.TrimSpace(in.Code),
		Name:      name,
		SiteType:  strings.TrimSpace(in.SiteType),
		Address:   strings.TrimSpace(in.Address),
		City:      strings.TrimSpace(in.City),
		Zone:      strings.TrimSpace(in.Zone),
		CreatedAt: uc.now(),
	}
	if err := uc.officeRepo.Create(ctx, o); err != nil {
		return nil, err
	}
	out := dto.FromOffice(o)
	return &out, nil
}

// GetOffice obtiene una oficina por ID.
func (uc *UseCase) GetOffice(ctx context.Context, id string) (*dto.OfficeResponse, error) {
	o, err := uc.officeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.ErrNotFound
	}
	out := dto.FromOffice(o)
	return &out, nil
}

// ListOffices lista oficinas filtrando por código o nombre.
func (uc *UseCase) ListOffices(ctx context.Context, in dto.CatalogListRequest) (*dto.OfficeListResponse, error) {
	in.DefaultPage()
	list, err := uc.officeRepo.List(ctx, strings.TrimSpace(in.Search), in.Limit, in.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.OfficeResponse, 0, len(list))
	for _, o := range list {
		items = append(items, dto.FromOffice(o))
	}
	return &dto.OfficeListResponse{Items: items, Page: dto.PageResponse{Limit: in.Limit, Offset: in.Offset}}, nil
}

// ── contratos ─────────────────────────────────────────────────────────────────

// CreateContract registra un contrato. Proveedor y oficina son opcionales pero si llegan deben existir.
func (uc *UseCase) CreateContract(ctx context.Context, in dto.CreateContractRequest) (*dto.ContractResponse, error) {
	c, err := uc.contractFromRequest(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := uc.contractRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	out := dto.FromContract(c)
	return &out, nil
}

func (uc *UseCase) contractFromRequest(ctx context.Context, in dto.CreateContractRequest) (*entity.Contract, error) {
	number := strings.TrimSpace(in.Number)
	if number == "" {
		return nil, fmt.Errorf("%w: number requerido", domain.ErrInvalidInput)
	}
	status := entity.ContractActive
	if s := strings.ToUpper(strings.TrimSpace(in.Status)); s != "" {
		status = entity.ContractStatus(s)
		if status.Rank() == 0 {
			return nil, fmt.Errorf("%w: %q (ACTIVO o CANCELADO)", domain.ErrInvalidStatus, in.Status)
		}
	}
	if in.MonthlyValue.IsNegative() {
		return nil, domain.ErrNegativeValue
	}
	if in.WithholdingPct.IsNegative() || in.WithholdingPct.GreaterThan(hundred) {
		return nil, fmt.Errorf("%w: withholding_pct fuera de 0..100", domain.ErrInvalidInput)
	}
	start, err := dto.ParseDate(in.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	end, err := dto.ParseDate(in.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if start != nil && end != nil && end.Before(*start) {
		return nil, fmt.Errorf("%w: end_date anterior a start_date", domain.ErrInvalidInput)
	}

	providerID := strings.TrimSpace(in.ProviderID)
	if providerID != "" {
		if _, err := uc.GetProvider(ctx, providerID); err != nil {
			return nil, fmt.Errorf("proveedor %s: %w", providerID, err)
		}
	}
	officeID := strings.TrimSpace(in.OfficeID)
	if officeID != "" {
		if _, err := uc.GetOffice(ctx, officeID); err != nil {
			return nil, fmt.Errorf("oficina %s: %w", officeID, err)
		}
	}
	return &entity.Contract{
		ID:             uuid.New().String(),
		ProviderID:     providerID,
		OfficeID:       officeID,
		Number:         number,
		HolderName:     strings.TrimSpace(in.HolderName),
		HolderTaxID:    strings.TrimSpace(in.HolderTaxID),
		Line:           strings.TrimSpace(in.Line),
		PlanType:       strings.TrimSpace(in.PlanType),
		PaymentRef:     strings.TrimSpace(in.PaymentRef),
		MonthlyValue:   in.MonthlyValue,
		Status:         status,
		HasVAT:         in.HasVAT,
		HasWithholding: in.HasWithholding,
		WithholdingPct: in.WithholdingPct,
		StartDate:      start,
		EndDate:        end,
		Notes:          strings.TrimSpace(in.Notes),
		CreatedAt:      uc.now(),
	}, nil
}

// GetContract obtiene un contrato por ID.
func (uc *UseCase) GetContract(ctx context.Context, id string) (*dto.ContractResponse, error) {
	c, err := uc.contractRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	out := dto.FromContract(c)
	return &out, nil
}

// ListContracts listado filtrado de contratos.
func (uc *UseCase) ListContracts(ctx context.Context, in dto.ContractListRequest) (*dto.ContractListResponse, error) {
	in.DefaultPage()
	f := repository.ContractFilter{
		Search:     strings.TrimSpace(in.Search),
		ProviderID: strings.TrimSpace(in.ProviderID),
		OfficeID:   strings.TrimSpace(in.OfficeID),
		Limit:      in.Limit,
		Offset:     in.Offset,
	}
	if s := strings.ToUpper(strings.TrimSpace(in.Status)); s != "" {
		f.Status = entity.ContractStatus(s)
		if f.Status.Rank() == 0 {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, in.Status)
		}
	}
	list, err := uc.contractRepo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ContractResponse, 0, len(list))
	for _, c := range list {
		items = append(items, dto.FromContract(c))
	}
	return &dto.ContractListResponse{Items: items, Page: dto.PageResponse{Limit: in.Limit, Offset: in.Offset}}, nil
}

// MatchContract contrato preferido del par proveedor/oficina; Contract nil si no hay.
func (uc *UseCase) MatchContract(ctx context.Context, providerID, officeID string) (*dto.ContractMatchResponse, error) {
	providerID = strings.TrimSpace(providerID)
	officeID = strings.TrimSpace(officeID)
	if providerID == "" || officeID == "" {
		return nil, fmt.Errorf("%w: provider_id y office_id son requeridos", domain.ErrInvalidInput)
	}
	c, err := uc.matcher.FindContract(ctx, providerID, officeID)
	if err != nil {
		return nil, err
	}
	out := &dto.ContractMatchResponse{ProviderID: providerID, OfficeID: officeID}
	if c != nil {
		resp := dto.FromContract(c)
		out.Contract = &resp
	}
	return out, nil
}
