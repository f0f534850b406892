package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Contratos-api/internal/domain"
	"github.com/jhoicas/Contratos-api/internal/domain/entity"
	"github.com/jhoicas/Contratos-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `i.id::text, i.provider_id::text, i.number, COALESCE(i.cufe, ''), i.invoice_date, i.due_date,
	i.value, i.status, COALESCE(i.url, ''), COALESCE(i.notes, ''), COALESCE(i.office_id::text, ''),
	COALESCE(i.contract_id::text, ''), i.created_at, i.updated_at`

// effectiveDate fecha de factura o, si falta, la de creación (en UTC).
const effectiveDate = `COALESCE(i.invoice_date, (i.created_at AT TIME ZONE 'UTC')::date)`

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var inv entity.Invoice
	var status string
	err := row.Scan(
		&inv.ID, &inv.ProviderID, &inv.Number, &inv.CUFE, &inv.InvoiceDate, &inv.DueDate,
		&inv.Value, &status, &inv.URL, &inv.Notes, &inv.LegacyOfficeID,
		&inv.LegacyContractID, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	inv.Status = entity.InvoiceStatus(status)
	return &inv, nil
}

// Create persiste la cabecera de la factura.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	query := `
		INSERT INTO invoices (id, provider_id, number, cufe, invoice_date, due_date, value, status, url, notes,
			office_id, contract_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		inv.ID, inv.ProviderID, inv.Number, nullIfEmpty(inv.CUFE), inv.InvoiceDate, inv.DueDate,
		inv.Value, string(inv.Status), nullIfEmpty(inv.URL), nullIfEmpty(inv.Notes),
		nullIfEmpty(inv.LegacyOfficeID), nullIfEmpty(inv.LegacyContractID), inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

func (r *InvoiceRepo) get(ctx context.Context, query, id string) (*entity.Invoice, error) {
	if !isUUID(id) {
		return nil, nil
	}
	inv, err := scanInvoice(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

// GetByID obtiene una factura por ID.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	return r.get(ctx, `SELECT `+invoiceColumns+` FROM invoices i WHERE i.id = $1`, id)
}

// GetByIDForUpdate obtiene la factura bloqueando la fila. Solo tiene efecto dentro de una tx.
func (r *InvoiceRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Invoice, error) {
	return r.get(ctx, `SELECT `+invoiceColumns+` FROM invoices i WHERE i.id = $1 FOR UPDATE`, id)
}

// GetByIDs obtiene varias facturas (sin orden garantizado).
func (r *InvoiceRepo) GetByIDs(ctx context.Context, ids []string) ([]*entity.Invoice, error) {
	ids = validUUIDs(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	list, _, err := r.list(ctx, false, `SELECT `+invoiceColumns+` FROM invoices i WHERE i.id = ANY($1::uuid[])`, ids)
	return list, err
}

// Update actualiza la cabecera completa (incluye estado y referencia legacy).
func (r *InvoiceRepo) Update(ctx context.Context, inv *entity.Invoice) error {
	query := `
		UPDATE invoices SET number = $2, cufe = $3, invoice_date = $4, due_date = $5, value = $6, status = $7,
			url = $8, notes = $9, office_id = $10, contract_id = $11, updated_at = $12
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		inv.ID, inv.Number, nullIfEmpty(inv.CUFE), inv.InvoiceDate, inv.DueDate, inv.Value, string(inv.Status),
		nullIfEmpty(inv.URL), nullIfEmpty(inv.Notes), nullIfEmpty(inv.LegacyOfficeID),
		nullIfEmpty(inv.LegacyContractID), inv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateStatus cambia solo el estado.
func (r *InvoiceRepo) UpdateStatus(ctx context.Context, id string, status entity.InvoiceStatus, at time.Time) error {
	cmd, err := r.q.Exec(ctx, `UPDATE invoices SET status = $2, updated_at = $3 WHERE id = $1`, id, string(status), at)
	if err != nil {
		return fmt.Errorf("update invoice status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina la factura; las asignaciones caen por ON DELETE CASCADE.
func (r *InvoiceRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	return nil
}

// List lista facturas filtradas y devuelve además el total sin paginar.
func (r *InvoiceRepo) List(ctx context.Context, f repository.InvoiceFilter) ([]*entity.Invoice, int, error) {
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
		where = append(where, fmt.Sprintf("(i.number ILIKE %[1]s OR i.cufe ILIKE %[1]s OR i.notes ILIKE %[1]s)", p))
	}
	if f.Status != "" {
		where = append(where, "i.status = "+arg(string(f.Status)))
	}
	if f.ProviderID != "" {
		where = append(where, "i.provider_id::text = "+arg(f.ProviderID))
	}
	if f.OfficeID != "" {
		p := arg(f.OfficeID)
		where = append(where, fmt.Sprintf(
			"(i.office_id::text = %[1]s OR EXISTS (SELECT 1 FROM invoice_offices io WHERE io.invoice_id = i.id AND io.office_id::text = %[1]s))", p))
	}
	if f.From != nil {
		where = append(where, effectiveDate+" >= "+arg(*f.From)+"::date")
	}
	if f.To != nil {
		where = append(where, effectiveDate+" <= "+arg(*f.To)+"::date")
	}
	if f.OnlyWithoutContract {
		where = append(where, `i.contract_id IS NULL AND NOT EXISTS (
			SELECT 1 FROM invoice_offices io WHERE io.invoice_id = i.id AND io.contract_id IS NOT NULL)`)
	}

	query := `SELECT ` + invoiceColumns + `, COUNT(*) OVER() FROM invoices i`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY " + effectiveDate + " DESC, i.created_at DESC"
	if f.Limit > 0 {
		query += " LIMIT " + arg(f.Limit) + " OFFSET " + arg(f.Offset)
	}
	return r.list(ctx, true, query, args...)
}

// list escanea facturas; withTotal indica que la última columna es COUNT(*) OVER().
func (r *InvoiceRepo) list(ctx context.Context, withTotal bool, query string, args ...any) ([]*entity.Invoice, int, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	var (
		list  []*entity.Invoice
		total int
	)
	for rows.Next() {
		var inv entity.Invoice
		var status string
		dest := []any{
			&inv.ID, &inv.ProviderID, &inv.Number, &inv.CUFE, &inv.InvoiceDate, &inv.DueDate,
			&inv.Value, &status, &inv.URL, &inv.Notes, &inv.LegacyOfficeID,
			&inv.LegacyContractID, &inv.CreatedAt, &inv.UpdatedAt,
		}
		if withTotal {
			dest = append(dest, &total)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, 0, fmt.Errorf("scan invoice: %w", err)
		}
		inv.Status = entity.InvoiceStatus(status)
		list = append(list, &inv)
	}
	if !withTotal {
		total = len(list)
	}
	return list, total, rows.Err()
}

// Summary conteos por estado, sin contrato y con discrepancia en una sola consulta.
func (r *InvoiceRepo) Summary(ctx context.Context) (*repository.InvoiceSummary, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE i.status = 'PENDIENTE'),
			COUNT(*) FILTER (WHERE i.status = 'ASIGNADA'),
			COUNT(*) FILTER (WHERE i.status = 'PAGADA'),
			COUNT(*) FILTER (WHERE i.contract_id IS NULL AND COALESCE(a.with_contract, 0) = 0),
			COUNT(*) FILTER (WHERE COALESCE(a.n, 0) > 0 AND a.total <> i.value)
		FROM invoices i
		LEFT JOIN (
			SELECT invoice_id, COUNT(*) AS n, SUM(value) AS total, COUNT(contract_id) AS with_contract
			FROM invoice_offices GROUP BY invoice_id
		) a ON a.invoice_id = i.id`
	var s repository.InvoiceSummary
	err := r.q.QueryRow(ctx, query).Scan(&s.Total, &s.Pending, &s.Assigned, &s.Paid, &s.WithoutContract, &s.Discrepancies)
	if err != nil {
		return nil, fmt.Errorf("invoice summary: %w", err)
	}
	return &s, nil
}
