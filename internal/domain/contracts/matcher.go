package contracts

import (
	"sort"

	"github.com/jhoicas/Contratos-api/internal/domain/entity"
)

// Less ordena contratos del mismo par proveedor/oficina por preferencia:
// estado de mayor rango primero (ACTIVO antes que CANCELADO), luego el más antiguo, luego por ID.
func Less(a, b *entity.Contract) bool {
	if ra, rb := a.Status.Rank(), b.Status.Rank(); ra != rb {
		return ra > rb
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

// SortByPreference ordena in-place según Less.
func SortByPreference(list []*entity.Contract) {
	sort.SliceStable(list, func(i, j int) bool { return Less(list[i], list[j]) })
}

// Preferred devuelve el contrato preferido o nil si no hay candidatos.
func Preferred(candidates []*entity.Contract) *entity.Contract {
	var best *entity.Contract
	for _, c := range candidates {
		if c == nil {
			continue
		}
		if best == nil || Less(c, best) {
			best = c
		}
	}
	return best
}
