package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Contratos-api/internal/domain/entity"
	"github.com/jhoicas/Contratos-api/internal/domain/repository"
)

var _ repository.OfficeRepository = (*OfficeRepo)(nil)

// OfficeRepo implementación de OfficeRepository (usable con pool o tx).
type OfficeRepo struct {
	q Querier
}

// NewOfficeRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOfficeRepository(q Querier) *OfficeRepo {
	return &OfficeRepo{q: q}
}

const officeColumns = `id::text, COALESCE(code, ''), name, COALESCE(site_type, ''), COALESCE(address, ''),
	COALESCE(city, ''), COALESCE(zone, ''), created_at`

func scanOffice(row pgx.Row) (*entity.Office, error) {
	var o entity.Office
	if err := row.Scan(&o.ID, &o.Code, &o.Name, &o.SiteType, &o.Address, &o.City, &o.Zone, &o.CreatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}

// Create persiste una oficina.
func (r *OfficeRepo) Create(ctx context.Context, o *entity.Office) error {
	query := `
		INSERT INTO offices (id, code, name, site_type, address, city, zone, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		o.ID, nullIfEmpty(o.Code), o.Name, nullIfEmpty(o.SiteType), nullIfEmpty(o.Address),
		nullIfEmpty(o.City), nullIfEmpty(o.Zone), o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert office: %w", err)
	}
	return nil
}

// GetByID obtiene una oficina por ID.
func (r *OfficeRepo) GetByID(ctx context.Context, id string) (*entity.Office, error) {
	if !isUUID(id) {
		return nil, nil
	}
	o, err := scanOffice(r.q.QueryRow(ctx, `SELECT `+officeColumns+` FROM offices WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get office: %w", err)
	}
	return o, nil
}

// GetByCode obtiene la oficina más antigua con ese código (el código puede repetirse).
func (r *OfficeRepo) GetByCode(ctx context.Context, code string) (*entity.Office, error) {
	if code == "" {
		return nil, nil
	}
	query := `SELECT ` + officeColumns + ` FROM offices WHERE code = $1 ORDER BY created_at, id LIMIT 1`
	o, err := scanOffice(r.q.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get office by code: %w", err)
	}
	return o, nil
}

// ListByIDs obtiene las oficinas indicadas (sin orden garantizado).
func (r *OfficeRepo) ListByIDs(ctx context.Context, ids []string) ([]*entity.Office, error) {
	ids = validUUIDs(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	return r.list(ctx, `SELECT `+officeColumns+` FROM offices WHERE id = ANY($1::uuid[])`, ids)
}

// List lista oficinas por código, nombre o ciudad.
func (r *OfficeRepo) List(ctx context.Context, search string, limit, offset int) ([]*entity.Office, error) {
	query := `
		SELECT ` + officeColumns + `
		FROM offices
		WHERE $1 = '' OR code ILIKE $2 OR name ILIKE $2 OR city ILIKE $2
		ORDER BY name LIMIT $3 OFFSET $4`
	return r.list(ctx, query, search, likePattern(search), limit, offset)
}

func (r *OfficeRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Office, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list offices: %w", err)
	}
	defer rows.Close()
	var list []*entity.Office
	for rows.Next() {
		o, err := scanOffice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan office: %w", err)
		}
		list = append(list, o)
	}
	return list, rows.Err()
}
