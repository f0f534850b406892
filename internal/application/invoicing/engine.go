package invoicing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Contratos-api/internal/application/dto"
	"github.com/jhoicas/Contratos-api/internal/domain"
	"github.com/jhoicas/Contratos-api/internal/domain/entity"
	"github.com/jhoicas/Contratos-api/internal/domain/repository"
	"github.com/jhoicas/Contratos-api/pkg/logger"
)

// AssignmentEngine mantiene las asignaciones factura-oficina y el estado de la factura.
// Invariante: PENDIENTE si y solo si la factura no tiene asignaciones (salvo la ruta legacy de oficina única).
type AssignmentEngine struct {
	tx        TxRunner
	reader    *InvoiceQueries
	directory ProviderDirectory
	log       *logger.Logger
	now       func() time.Time
}

// NewAssignmentEngine construye el motor. directory puede ser nil.
func NewAssignmentEngine(tx TxRunner, reader *InvoiceQueries, directory ProviderDirectory, log *logger.Logger) *AssignmentEngine {
	return &AssignmentEngine{
		tx:        tx,
		reader:    reader,
		directory: directory,
		log:       log.WithComponent("invoicing"),
		now:       time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (e *AssignmentEngine) WithClock(now func() time.Time) *AssignmentEngine {
	e.now = now
	return e
}

// providerRef resultado de resolver el proveedor fuera de la transacción.
type providerRef struct {
	existing *entity.Provider
	taxID    string
	name     string
}

func (e *AssignmentEngine) resolveProvider(ctx context.Context, providerRepo repository.ProviderRepository, in dto.CreateInvoiceRequest) (*providerRef, error) {
	if id := strings.TrimSpace(in.ProviderID); id != "" {
		p, err := providerRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, fmt.Errorf("proveedor %s: %w", id, domain.ErrNotFound)
		}
		return &providerRef{existing: p}, nil
	}
	taxID := strings.TrimSpace(in.ProviderTaxID)
	if taxID == "" {
		return nil, &domain.ProviderResolutionError{Hint: "indique provider_id o provider_tax_id"}
	}
	p, err := providerRepo.GetByTaxID(ctx, taxID)
	if err != nil {
		return nil, err
	}
	if p != nil {
		return &providerRef{existing: p}, nil
	}
	name := strings.TrimSpace(in.ProviderName)
	if name == "" && e.directory != nil {
		found, err := e.directory.ProviderName(ctx, taxID)
		if err != nil {
			e.log.Warn().Err(err).Str("nit", taxID).Msg("directorio sin nombre de proveedor")
		}
		name = strings.TrimSpace(found)
	}
	if name == "" {
		return nil, &domain.ProviderResolutionError{
			TaxID: taxID,
			Hint:  "proveedor no registrado; envíe provider_name para crearlo",
		}
	}
	return &providerRef{taxID: taxID, name: name}, nil
}

// ensureProvider crea el proveedor resuelto si aún no existe. Si otro proceso lo creó antes se reutiliza.
func (e *AssignmentEngine) ensureProvider(ctx context.Context, providerRepo repository.ProviderRepository, ref *providerRef, now time.Time) (*entity.Provider, error) {
	if ref.existing != nil {
		return ref.existing, nil
	}
	p := &entity.Provider{ID: uuid.New().String(), TaxID: ref.taxID, Name: ref.name, CreatedAt: now}
	err := providerRepo.Create(ctx, p)
	if errors.Is(err, domain.ErrDuplicate) {
		existing, gerr := providerRepo.GetByTaxID(ctx, ref.taxID)
		if gerr != nil {
			return nil, gerr
		}
		if existing != nil {
			return existing, nil
		}
	}
	if err != nil {
		return nil, fmt.Errorf("crear proveedor: %w", err)
	}
	e.log.Info().Str("nit", p.TaxID).Str("name", p.Name).Msg("proveedor creado")
	return p, nil
}

func validateAssignments(inputs []dto.OfficeAssignmentInput) error {
	for _, in := range inputs {
		if in.Value.IsNegative() {
			return domain.ErrNegativeValue
		}
		if strings.TrimSpace(in.OfficeID) == "" && strings.TrimSpace(in.OfficeCode) == "" {
			return fmt.Errorf("%w: office_id u office_code requerido", domain.ErrInvalidInput)
		}
	}
	return nil
}

// lookupOffice resuelve la oficina por ID o por código. nil si no existe.
func lookupOffice(ctx context.Context, officeRepo repository.OfficeRepository, in dto.OfficeAssignmentInput) (*entity.Office, error) {
	if id := strings.TrimSpace(in.OfficeID); id != "" {
		return officeRepo.GetByID(ctx, id)
	}
	return officeRepo.GetByCode(ctx, strings.TrimSpace(in.OfficeCode))
}

func officeLabel(in dto.OfficeAssignmentInput) string {
	if in.OfficeID != "" {
		return in.OfficeID
	}
	return in.OfficeCode
}

// newAssignment crea la asignación resolviendo el contrato con el proveedor de la factura.
func (e *AssignmentEngine) newAssignment(
	ctx context.Context,
	matcher *ContractMatcher,
	assignmentRepo repository.InvoiceOfficeRepository,
	inv *entity.Invoice,
	office *entity.Office,
	value decimal.Decimal,
	notes string,
) (*entity.InvoiceOffice, error) {
	contract, err := matcher.FindContract(ctx, inv.ProviderID, office.ID)
	if err != nil {
		return nil, err
	}
	a := &entity.InvoiceOffice{
		ID:        uuid.New().String(),
		InvoiceID: inv.ID,
		OfficeID:  office.ID,
		Value:     value,
		Status:    entity.AssignmentPending,
		Notes:     strings.TrimSpace(notes),
		CreatedAt: e.now(),
	}
	if contract != nil {
		a.ContractID = contract.ID
	}
	if err := assignmentRepo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// statusFor estado de la factura tras cambiar sus asignaciones. PAGADA se conserva mientras haya oficinas.
func statusFor(current entity.InvoiceStatus, assignments int) entity.InvoiceStatus {
	if assignments == 0 {
		return entity.InvoicePending
	}
	if current == entity.InvoicePaid {
		return entity.InvoicePaid
	}
	return entity.InvoiceAssigned
}

func missingOfficesNote(notes string, missing []string) string {
	if len(missing) == 0 {
		return notes
	}
	warn := fmt.Sprintf("[ADVERTENCIA: Oficinas no encontradas: %s]", strings.Join(missing, ", "))
	if strings.TrimSpace(notes) == "" {
		return warn
	}
	return notes + " " + warn
}

func lockInvoice(ctx context.Context, invoiceRepo repository.InvoiceRepository, id string) (*entity.Invoice, error) {
	inv, err := invoiceRepo.GetByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, fmt.Errorf("factura %s: %w", id, domain.ErrNotFound)
	}
	return inv, nil
}

// CreateInvoice registra la factura. Si llegan oficinas se crean sus asignaciones;
// las oficinas indicadas por código que no existen se omiten y se anotan en las observaciones.
// Una oficina indicada por ID inexistente aborta la operación.
func (e *AssignmentEngine) CreateInvoice(ctx context.Context, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	number := strings.TrimSpace(in.Number)
	if number == "" {
		return nil, fmt.Errorf("%w: number requerido", domain.ErrInvalidInput)
	}
	if in.Value.IsNegative() {
		return nil, domain.ErrNegativeValue
	}
	invoiceDate, err := dto.ParseDate(in.InvoiceDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	dueDate, err := dto.ParseDate(in.DueDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if err := validateAssignments(in.Offices); err != nil {
		return nil, err
	}
	ref, err := e.resolveProvider(ctx, e.reader.providerRepo, in)
	if err != nil {
		return nil, err
	}

	var invoiceID string
	err = e.tx.RunInvoicing(ctx, func(
		invoiceRepo repository.InvoiceRepository,
		assignmentRepo repository.InvoiceOfficeRepository,
		contractRepo repository.ContractRepository,
		providerRepo repository.ProviderRepository,
		officeRepo repository.OfficeRepository,
	) error {
		now := e.now()
		provider, err := e.ensureProvider(ctx, providerRepo, ref, now)
		if err != nil {
			return err
		}

		type pending struct {
			office *entity.Office
			input  dto.OfficeAssignmentInput
		}
		var (
			toCreate []pending
			missing  []string
		)
		for _, oi := range in.Offices {
			office, err := lookupOffice(ctx, officeRepo, oi)
			if err != nil {
				return err
			}
			if office == nil {
				if strings.TrimSpace(oi.OfficeID) != "" {
					return fmt.Errorf("oficina %s: %w", oi.OfficeID, domain.ErrNotFound)
				}
				missing = append(missing, officeLabel(oi))
				continue
			}
			toCreate = append(toCreate, pending{office: office, input: oi})
		}

		inv := &entity.Invoice{
			ID:          uuid.New().String(),
			ProviderID:  provider.ID,
			Number:      number,
			CUFE:        strings.TrimSpace(in.CUFE),
			InvoiceDate: invoiceDate,
			DueDate:     dueDate,
			Value:       in.Value,
			Status:      statusFor(entity.InvoicePending, len(toCreate)),
			URL:         strings.TrimSpace(in.URL),
			Notes:       missingOfficesNote(strings.TrimSpace(in.Notes), missing),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := invoiceRepo.Create(ctx, inv); err != nil {
			return err
		}
		matcher := NewContractMatcher(contractRepo)
		for _, p := range toCreate {
			if _, err := e.newAssignment(ctx, matcher, assignmentRepo, inv, p.office, p.input.Value, p.input.Notes); err != nil {
				return err
			}
		}
		if len(missing) > 0 {
			e.log.Warn().Str("invoice", inv.Number).Strs("codes", missing).Msg("oficinas no encontradas al crear factura")
		}
		invoiceID = inv.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return e.loadInvoice(ctx, invoiceID)
}

// AssignSingleOffice ruta legacy: fija la oficina y el contrato únicos de la factura y la marca ASIGNADA.
func (e *AssignmentEngine) AssignSingleOffice(ctx context.Context, invoiceID, officeID string) (*dto.InvoiceResponse, error) {
	if strings.TrimSpace(officeID) == "" {
		return nil, fmt.Errorf("%w: office_id requerido", domain.ErrInvalidInput)
	}
	err := e.tx.RunInvoicing(ctx, func(
		invoiceRepo repository.InvoiceRepository,
		_ repository.InvoiceOfficeRepository,
		contractRepo repository.ContractRepository,
		_ repository.ProviderRepository,
		officeRepo repository.OfficeRepository,
	) error {
		inv, err := lockInvoice(ctx, invoiceRepo, invoiceID)
		if err != nil {
			return err
		}
		office, err := officeRepo.GetByID(ctx, officeID)
		if err != nil {
			return err
		}
		if office == nil {
			return fmt.Errorf("oficina %s: %w", officeID, domain.ErrNotFound)
		}
		contract, err := NewContractMatcher(contractRepo).FindContract(ctx, inv.ProviderID, office.ID)
		if err != nil {
			return err
		}
		inv.LegacyOfficeID = office.ID
		inv.LegacyContractID = ""
		if contract != nil {
			inv.LegacyContractID = contract.ID
		}
		inv.Status = entity.InvoiceAssigned
		inv.UpdatedAt = e.now()
		return invoiceRepo.Update(ctx, inv)
	})
	if err != nil {
		return nil, err
	}
	return e.loadInvoice(ctx, invoiceID)
}

// AddOfficeAssignment agrega una oficina con su valor y deja la factura ASIGNADA; una factura PAGADA
// sigue PAGADA. La suma de valores no se valida contra el total.
func (e *AssignmentEngine) AddOfficeAssignment(ctx context.Context, invoiceID string, in dto.OfficeAssignmentInput) (*dto.AssignmentResponse, error) {
	if err := validateAssignments([]dto.OfficeAssignmentInput{in}); err != nil {
		return nil, err
	}
	var out dto.AssignmentResponse
	err := e.tx.RunInvoicing(ctx, func(
		invoiceRepo repository.InvoiceRepository,
		assignmentRepo repository.InvoiceOfficeRepository,
		contractRepo repository.ContractRepository,
		_ repository.ProviderRepository,
		officeRepo repository.OfficeRepository,
	) error {
		inv, err := lockInvoice(ctx, invoiceRepo, invoiceID)
		if err != nil {
			return err
		}
		office, err := lookupOffice(ctx, officeRepo, in)
		if err != nil {
			return err
		}
		if office == nil {
			return fmt.Errorf("oficina %s: %w", officeLabel(in), domain.ErrNotFound)
		}
		a, err := e.newAssignment(ctx, NewContractMatcher(contractRepo), assignmentRepo, inv, office, in.Value, in.Notes)
		if err != nil {
			return err
		}
		if status := statusFor(inv.Status, 1); status != inv.Status {
			if err := invoiceRepo.UpdateStatus(ctx, inv.ID, status, e.now()); err != nil {
				return err
			}
		}
		out = dto.FromAssignment(a, office)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoveOfficeAssignment elimina la asignación; si era la última la factura vuelve a PENDIENTE.
// Retorna false si la asignación no existía.
func (e *AssignmentEngine) RemoveOfficeAssignment(ctx context.Context, assignmentID string) (bool, error) {
	removed := false
	err := e.tx.RunInvoicing(ctx, func(
		invoiceRepo repository.InvoiceRepository,
		assignmentRepo repository.InvoiceOfficeRepository,
		_ repository.ContractRepository,
		_ repository.ProviderRepository,
		_ repository.OfficeRepository,
	) error {
		a, err := assignmentRepo.GetByID(ctx, assignmentID)
		if err != nil {
			return err
		}
		if a == nil {
			return nil
		}
		if _, err := lockInvoice(ctx, invoiceRepo, a.InvoiceID); err != nil {
			return err
		}
		ok, err := assignmentRepo.Delete(ctx, assignmentID)
		if err != nil || !ok {
			return err
		}
		removed = true
		left, err := assignmentRepo.CountByInvoice(ctx, a.InvoiceID)
		if err != nil {
			return err
		}
		if left == 0 {
			return invoiceRepo.UpdateStatus(ctx, a.InvoiceID, entity.InvoicePending, e.now())
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}

// ReplaceAllOfficeAssignments borra y recrea todas las asignaciones en una sola transacción.
// Con lista vacía la factura vuelve a PENDIENTE; si no, queda ASIGNADA, salvo que ya estuviera PAGADA,
// que se conserva. Cualquier oficina inexistente cancela el reemplazo completo.
func (e *AssignmentEngine) ReplaceAllOfficeAssignments(ctx context.Context, invoiceID string, inputs []dto.OfficeAssignmentInput) (*dto.InvoiceResponse, error) {
	if err := validateAssignments(inputs); err != nil {
		return nil, err
	}
	err := e.tx.RunInvoicing(ctx, func(
		invoiceRepo repository.InvoiceRepository,
		assignmentRepo repository.InvoiceOfficeRepository,
		contractRepo repository.ContractRepository,
		_ repository.ProviderRepository,
		officeRepo repository.OfficeRepository,
	) error {
		inv, err := lockInvoice(ctx, invoiceRepo, invoiceID)
		if err != nil {
			return err
		}
		offices := make([]*entity.Office, 0, len(inputs))
		for _, in := range inputs {
			office, err := lookupOffice(ctx, officeRepo, in)
			if err != nil {
				return err
			}
			if office == nil {
				return fmt.Errorf("oficina %s: %w", officeLabel(in), domain.ErrNotFound)
			}
			offices = append(offices, office)
		}
		if err := assignmentRepo.DeleteByInvoice(ctx, inv.ID); err != nil {
			return err
		}
		matcher := NewContractMatcher(contractRepo)
		for i, in := range inputs {
			if _, err := e.newAssignment(ctx, matcher, assignmentRepo, inv, offices[i], in.Value, in.Notes); err != nil {
				return err
			}
		}
		return invoiceRepo.UpdateStatus(ctx, inv.ID, statusFor(inv.Status, len(inputs)), e.now())
	})
	if err != nil {
		return nil, err
	}
	return e.loadInvoice(ctx, invoiceID)
}

// ChangeStatus cambio manual de estado. Rechaza valores desconocidos y estados que contradicen las asignaciones.
func (e *AssignmentEngine) ChangeStatus(ctx context.Context, invoiceID, newStatus string) (*dto.InvoiceResponse, error) {
	status := entity.InvoiceStatus(strings.ToUpper(strings.TrimSpace(newStatus)))
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q (PENDIENTE, ASIGNADA o PAGADA)", domain.ErrInvalidStatus, newStatus)
	}
	err := e.tx.RunInvoicing(ctx, func(
		invoiceRepo repository.InvoiceRepository,
		assignmentRepo repository.InvoiceOfficeRepository,
		_ repository.ContractRepository,
		_ repository.ProviderRepository,
		_ repository.OfficeRepository,
	) error {
		inv, err := lockInvoice(ctx, invoiceRepo, invoiceID)
		if err != nil {
			return err
		}
		n, err := assignmentRepo.CountByInvoice(ctx, inv.ID)
		if err != nil {
			return err
		}
		switch {
		case status == entity.InvoicePending && n > 0:
			return fmt.Errorf("%w: la factura tiene %d oficinas", domain.ErrStatusConflict, n)
		case status != entity.InvoicePending && n == 0 && inv.LegacyOfficeID == "":
			return fmt.Errorf("%w: la factura no tiene oficinas", domain.ErrStatusConflict)
		}
		if status == inv.Status {
			return nil
		}
		return invoiceRepo.UpdateStatus(ctx, inv.ID, status, e.now())
	})
	if err != nil {
		return nil, err
	}
	return e.loadInvoice(ctx, invoiceID)
}

// UpdateOfficeAssignment cambia valor, estado y notas de una asignación. El contrato no se recalcula.
func (e *AssignmentEngine) UpdateOfficeAssignment(ctx context.Context, assignmentID string, in dto.UpdateAssignmentRequest) (*dto.AssignmentResponse, error) {
	if in.Value.IsNegative() {
		return nil, domain.ErrNegativeValue
	}
	status := entity.AssignmentStatus(strings.ToUpper(strings.TrimSpace(in.Status)))
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: %q (PENDIENTE o PAGADA)", domain.ErrInvalidStatus, in.Status)
	}
	var out dto.AssignmentResponse
	err := e.tx.RunInvoicing(ctx, func(
		invoiceRepo repository.InvoiceRepository,
		assignmentRepo repository.InvoiceOfficeRepository,
		_ repository.ContractRepository,
		_ repository.ProviderRepository,
		officeRepo repository.OfficeRepository,
	) error {
		a, err := assignmentRepo.GetByID(ctx, assignmentID)
		if err != nil {
			return err
		}
		if a == nil {
			return fmt.Errorf("asignación %s: %w", assignmentID, domain.ErrNotFound)
		}
		if _, err := lockInvoice(ctx, invoiceRepo, a.InvoiceID); err != nil {
			return err
		}
		a.Value = in.Value
		if status != "" {
			a.Status = status
		}
		if in.Notes != nil {
			a.Notes = strings.TrimSpace(*in.Notes)
		}
		if err := assignmentRepo.Update(ctx, a); err != nil {
			return err
		}
		office, err := officeRepo.GetByID(ctx, a.OfficeID)
		if err != nil {
			return err
		}
		out = dto.FromAssignment(a, office)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateInvoice actualiza los campos de cabecera. Estado y asignaciones no se tocan aquí.
func (e *AssignmentEngine) UpdateInvoice(ctx context.Context, invoiceID string, in dto.UpdateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if in.Value != nil && in.Value.IsNegative() {
		return nil, domain.ErrNegativeValue
	}
	if in.Number != nil && strings.TrimSpace(*in.Number) == "" {
		return nil, fmt.Errorf("%w: number vacío", domain.ErrInvalidInput)
	}
	var invoiceDate, dueDate *time.Time
	var err error
	if in.InvoiceDate != nil {
		if invoiceDate, err = dto.ParseDate(*in.InvoiceDate); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
	}
	if in.DueDate != nil {
		if dueDate, err = dto.ParseDate(*in.DueDate); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
	}
	err = e.tx.RunInvoicing(ctx, func(
		invoiceRepo repository.InvoiceRepository,
		_ repository.InvoiceOfficeRepository,
		_ repository.ContractRepository,
		_ repository.ProviderRepository,
		_ repository.OfficeRepository,
	) error {
		inv, err := lockInvoice(ctx, invoiceRepo, invoiceID)
		if err != nil {
			return err
		}
		if in.Number != nil {
			inv.Number = strings.TrimSpace(*in.Number)
		}
		if in.CUFE != nil {
			inv.CUFE = strings.TrimSpace(*in.CUFE)
		}
		if in.InvoiceDate != nil {
			inv.InvoiceDate = invoiceDate
		}
		if in.DueDate != nil {
			inv.DueDate = dueDate
		}
		if in.Value != nil {
			inv.Value = *in.Value
		}
		if in.URL != nil {
			inv.URL = strings.TrimSpace(*in.URL)
		}
		if in.Notes != nil {
			inv.Notes = strings.TrimSpace(*in.Notes)
		}
		inv.UpdatedAt = e.now()
		return invoiceRepo.Update(ctx, inv)
	})
	if err != nil {
		return nil, err
	}
	return e.loadInvoice(ctx, invoiceID)
}

// DeleteInvoice elimina la factura y, en cascada, sus asignaciones.
func (e *AssignmentEngine) DeleteInvoice(ctx context.Context, invoiceID string) error {
	return e.tx.RunInvoicing(ctx, func(
		invoiceRepo repository.InvoiceRepository,
		assignmentRepo repository.InvoiceOfficeRepository,
		_ repository.ContractRepository,
		_ repository.ProviderRepository,
		_ repository.OfficeRepository,
	) error {
		inv, err := lockInvoice(ctx, invoiceRepo, invoiceID)
		if err != nil {
			return err
		}
		if err := assignmentRepo.DeleteByInvoice(ctx, inv.ID); err != nil {
			return err
		}
		return invoiceRepo.Delete(ctx, inv.ID)
	})
}

// loadInvoice lee la factura ya confirmada con sus asignaciones.
func (e *AssignmentEngine) loadInvoice(ctx context.Context, invoiceID string) (*dto.InvoiceResponse, error) {
	return e.reader.GetInvoice(ctx, invoiceID)
}
