package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Contratos-api/internal/domain"
	"github.com/jhoicas/Contratos-api/internal/domain/entity"
	"github.com/jhoicas/Contratos-api/internal/domain/repository"
)

var _ repository.InvoiceOfficeRepository = (*InvoiceOfficeRepo)(nil)

// InvoiceOfficeRepo implementación de InvoiceOfficeRepository (usable con pool o tx).
type InvoiceOfficeRepo struct {
	q Querier
}

// NewInvoiceOfficeRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceOfficeRepository(q Querier) *InvoiceOfficeRepo {
	return &InvoiceOfficeRepo{q: q}
}

const assignmentColumns = `id::text, invoice_id::text, office_id::text, COALESCE(contract_id::text, ''), value, status,
	COALESCE(notes, ''), created_at`

func scanAssignment(row pgx.Row) (*entity.InvoiceOffice, error) {
	var a entity.InvoiceOffice
	var status string
	if err := row.Scan(&a.ID, &a.InvoiceID, &a.OfficeID, &a.ContractID, &a.Value, &status, &a.Notes, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.Status = entity.AssignmentStatus(status)
	return &a, nil
}

// Create persiste una asignación.
func (r *InvoiceOfficeRepo) Create(ctx context.Context, a *entity.InvoiceOffice) error {
	query := `
		INSERT INTO invoice_offices (id, invoice_id, office_id, contract_id, value, status, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		a.ID, a.InvoiceID, a.OfficeID, nullIfEmpty(a.ContractID), a.Value, string(a.Status), nullIfEmpty(a.Notes), a.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("insert invoice office: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("insert invoice office: %w", err)
	}
	return nil
}

// GetByID obtiene una asignación por ID.
func (r *InvoiceOfficeRepo) GetByID(ctx context.Context, id string) (*entity.InvoiceOffice, error) {
	if !isUUID(id) {
		return nil, nil
	}
	a, err := scanAssignment(r.q.QueryRow(ctx, `SELECT `+assignmentColumns+` FROM invoice_offices WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice office: %w", err)
	}
	return a, nil
}

// ListByInvoice asignaciones de una factura en orden de creación.
func (r *InvoiceOfficeRepo) ListByInvoice(ctx context.Context, invoiceID string) ([]*entity.InvoiceOffice, error) {
	return r.ListByInvoices(ctx, []string{invoiceID})
}

// ListByInvoices asignaciones de varias facturas en orden de creación.
func (r *InvoiceOfficeRepo) ListByInvoices(ctx context.Context, invoiceIDs []string) ([]*entity.InvoiceOffice, error) {
	invoiceIDs = validUUIDs(invoiceIDs)
	if len(invoiceIDs) == 0 {
		return nil, nil
	}
	query := `SELECT ` + assignmentColumns + ` FROM invoice_offices
		WHERE invoice_id = ANY($1::uuid[]) ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query, invoiceIDs)
	if err != nil {
		return nil, fmt.Errorf("list invoice offices: %w", err)
	}
	defer rows.Close()
	var list []*entity.InvoiceOffice
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice office: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// Update cambia valor, estado y notas. El contrato y la oficina no se modifican.
func (r *InvoiceOfficeRepo) Update(ctx context.Context, a *entity.InvoiceOffice) error {
	cmd, err := r.q.Exec(ctx, `UPDATE invoice_offices SET value = $2, status = $3, notes = $4 WHERE id = $1`,
		a.ID, a.Value, string(a.Status), nullIfEmpty(a.Notes))
	if err != nil {
		return fmt.Errorf("update invoice office: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina una asignación; false si no existía.
func (r *InvoiceOfficeRepo) Delete(ctx context.Context, id string) (bool, error) {
	if !isUUID(id) {
		return false, nil
	}
	cmd, err := r.q.Exec(ctx, `DELETE FROM invoice_offices WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete invoice office: %w", err)
	}
	return cmd.RowsAffected() > 0, nil
}

// DeleteByInvoice elimina todas las asignaciones de la factura.
func (r *InvoiceOfficeRepo) DeleteByInvoice(ctx context.Context, invoiceID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM invoice_offices WHERE invoice_id = $1`, invoiceID); err != nil {
		return fmt.Errorf("delete invoice offices: %w", err)
	}
	return nil
}

// CountByInvoice cantidad de asignaciones de la factura.
func (r *InvoiceOfficeRepo) CountByInvoice(ctx context.Context, invoiceID string) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM invoice_offices WHERE invoice_id = $1`, invoiceID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count invoice offices: %w", err)
	}
	return n, nil
}

// ContractIDsInvoicedBetween contratos con alguna asignación cuya factura cae en [from, to).
// Sin fecha de factura cuenta la de creación.
func (r *InvoiceOfficeRepo) ContractIDsInvoicedBetween(ctx context.Context, from, to time.Time) ([]string, error) {
	query := `
		SELECT DISTINCT io.contract_id::text
		FROM invoice_offices io
		JOIN invoices i ON i.id = io.invoice_id
		WHERE io.contract_id IS NOT NULL
		  AND ` + effectiveDate + ` >= $1::date
		  AND ` + effectiveDate + ` < $2::date`
	rows, err := r.q.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("contracts invoiced: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan contract id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
