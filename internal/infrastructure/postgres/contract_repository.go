package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Contratos-api/internal/domain/entity"
	"github.com/jhoicas/Contratos-api/internal/domain/repository"
)

var _ repository.ContractRepository = (*ContractRepo)(nil)

// ContractRepo implementación de ContractRepository (usable con pool o tx).
type ContractRepo struct {
	q Querier
}

// NewContractRepository construye el adaptador. Pasar pool o tx (Querier).
func NewContractRepository(q Querier) *ContractRepo {
	return &ContractRepo{q: q}
}

const contractColumns = `c.id::text, COALESCE(c.provider_id::text, ''), COALESCE(c.office_id::text, ''), c.number,
	COALESCE(c.holder_name, ''), COALESCE(c.holder_tax_id, ''), COALESCE(c.line, ''), COALESCE(c.plan_type, ''),
	COALESCE(c.payment_ref, ''), c.monthly_value, c.status, c.has_vat, c.has_withholding, c.withholding_pct,
	c.start_date, c.end_date, COALESCE(c.notes, ''), c.created_at`

func scanContract(row pgx.Row) (*entity.Contract, error) {
	var c entity.Contract
	var status string
	err := row.Scan(
		&c.ID, &c.ProviderID, &c.OfficeID, &c.Number,
		&c.HolderName, &c.HolderTaxID, &c.Line, &c.PlanType,
		&c.PaymentRef, &c.MonthlyValue, &status, &c.HasVAT, &c.HasWithholding, &c.WithholdingPct,
		&c.StartDate, &c.EndDate, &c.Notes, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Status = entity.ContractStatus(status)
	return &c, nil
}

// Create persiste un contrato.
func (r *ContractRepo) Create(ctx context.Context, c *entity.Contract) error {
	query := `
		INSERT INTO contracts (id, provider_id, office_id, number, holder_name, holder_tax_id, line, plan_type,
			payment_ref, monthly_value, status, has_vat, has_withholding, withholding_pct, start_date, end_date,
			notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err := r.q.Exec(ctx, query,
		c.ID, nullIfEmpty(c.ProviderID), nullIfEmpty(c.OfficeID), c.Number, nullIfEmpty(c.HolderName),
		nullIfEmpty(c.HolderTaxID), nullIfEmpty(c.Line), nullIfEmpty(c.PlanType), nullIfEmpty(c.PaymentRef),
		c.MonthlyValue, string(c.Status), c.HasVAT, c.HasWithholding, c.WithholdingPct, c.StartDate, c.EndDate,
		nullIfEmpty(c.Notes), c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert contract: %w", err)
	}
	return nil
}

// GetByID obtiene un contrato por ID.
func (r *ContractRepo) GetByID(ctx context.Context, id string) (*entity.Contract, error) {
	if !isUUID(id) {
		return nil, nil
	}
	c, err := scanContract(r.q.QueryRow(ctx, `SELECT `+contractColumns+` FROM contracts c WHERE c.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get contract: %w", err)
	}
	return c, nil
}

// List lista contratos con filtros opcionales.
func (r *ContractRepo) List(ctx context.Context, f repository.ContractFilter) ([]*entity.Contract, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.Search != "" {
		p := arg(likePattern(f.Search))
		where = append(where, fmt.Sprintf("(c.number ILIKE %[1]s OR c.holder_name ILIKE %[1]s OR c.line ILIKE %[1]s)", p))
	}
	if f.ProviderID != "" {
		where = append(where, "c.provider_id::text = "+arg(f.ProviderID))
	}
	if f.OfficeID != "" {
		where = append(where, "c.office_id::text = "+arg(f.OfficeID))
	}
	if f.Status != "" {
		where = append(where, "c.status = "+arg(string(f.Status)))
	}
	query := `SELECT ` + contractColumns + ` FROM contracts c`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY c.created_at DESC, c.id"
	if f.Limit > 0 {
		query += " LIMIT " + arg(f.Limit) + " OFFSET " + arg(f.Offset)
	}
	return r.list(ctx, query, args...)
}

// FindByProviderAndOffice todos los contratos del par. El orden de preferencia lo decide el matcher.
func (r *ContractRepo) FindByProviderAndOffice(ctx context.Context, providerID, officeID string) ([]*entity.Contract, error) {
	if !isUUID(providerID) || !isUUID(officeID) {
		return nil, nil
	}
	query := `SELECT ` + contractColumns + ` FROM contracts c WHERE c.provider_id = $1 AND c.office_id = $2`
	return r.list(ctx, query, providerID, officeID)
}

// ListBillable contratos ACTIVO con proveedor y oficina.
func (r *ContractRepo) ListBillable(ctx context.Context) ([]*entity.Contract, error) {
	query := `
		SELECT ` + contractColumns + ` FROM contracts c
		WHERE c.status = $1 AND c.provider_id IS NOT NULL AND c.office_id IS NOT NULL
		ORDER BY c.provider_id, c.office_id, c.created_at`
	return r.list(ctx, query, string(entity.ContractActive))
}

// ListByProvider contratos de un proveedor.
func (r *ContractRepo) ListByProvider(ctx context.Context, providerID string) ([]*entity.Contract, error) {
	if !isUUID(providerID) {
		return nil, nil
	}
	return r.list(ctx, `SELECT `+contractColumns+` FROM contracts c WHERE c.provider_id = $1`, providerID)
}

func (r *ContractRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Contract, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}
	defer rows.Close()
	var list []*entity.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contract: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}
