package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Contratos-api/internal/domain"
	"github.com/jhoicas/Contratos-api/internal/domain/entity"
	"github.com/jhoicas/Contratos-api/internal/domain/repository"
)

var _ repository.ProviderRepository = (*ProviderRepo)(nil)

// ProviderRepo implementación de ProviderRepository (usable con pool o tx).
type ProviderRepo struct {
	q Querier
}

// NewProviderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProviderRepository(q Querier) *ProviderRepo {
	return &ProviderRepo{q: q}
}

// Create persiste un proveedor. Un NIT repetido retorna ErrDuplicate sin abortar la transacción.
func (r *ProviderRepo) Create(ctx context.Context, p *entity.Provider) error {
	query := `
		INSERT INTO providers (id, tax_id, name, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (tax_id) DO NOTHING`
	cmd, err := r.q.Exec(ctx, query, p.ID, p.TaxID, p.Name, p.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert provider: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrDuplicate
	}
	return nil
}

const providerColumns = `id::text, tax_id, name, created_at`

func scanProvider(row pgx.Row) (*entity.Provider, error) {
	var p entity.Provider
	if err := row.Scan(&p.ID, &p.TaxID, &p.Name, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByID obtiene un proveedor por ID.
func (r *ProviderRepo) GetByID(ctx context.Context, id string) (*entity.Provider, error) {
	if !isUUID(id) {
		return nil, nil
	}
	p, err := scanProvider(r.q.QueryRow(ctx, `SELECT `+providerColumns+` FROM providers WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get provider: %w", err)
	}
	return p, nil
}

// GetByTaxID obtiene un proveedor por NIT.
func (r *ProviderRepo) GetByTaxID(ctx context.Context, taxID string) (*entity.Provider, error) {
	p, err := scanProvider(r.q.QueryRow(ctx, `SELECT `+providerColumns+` FROM providers WHERE tax_id = $1`, taxID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get provider by tax_id: %w", err)
	}
	return p, nil
}

// List lista proveedores por nombre o NIT.
func (r *ProviderRepo) List(ctx context.Context, search string, limit, offset int) ([]*entity.Provider, error) {
	query := `
		SELECT ` + providerColumns + `
		FROM providers
		WHERE $1 = '' OR name ILIKE $2 OR tax_id ILIKE $2
		ORDER BY name LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, search, likePattern(search), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list providers: %w", err)
	}
	defer rows.Close()
	var list []*entity.Provider
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, fmt.Errorf("scan provider: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Delete elimina un proveedor. Con contratos o facturas asociados retorna ErrConflict.
func (r *ProviderRepo) Delete(ctx context.Context, id string) error {
	if !isUUID(id) {
		return nil
	}
	_, err := r.q.Exec(ctx, `DELETE FROM providers WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("delete provider: %w", err)
	}
	return nil
}
