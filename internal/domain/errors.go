package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound       = errors.New("recurso no encontrado")
	ErrInvalidInput   = errors.New("entrada inválida")
	ErrInvalidStatus  = errors.New("estado no reconocido")
	ErrStatusConflict = errors.New("el estado no corresponde a las oficinas asignadas")
	ErrNegativeValue  = errors.New("el valor no puede ser negativo")
	ErrDuplicate      = errors.New("recurso duplicado")
	ErrUnauthorized   = errors.New("no autorizado")
	ErrForbidden      = errors.New("acceso denegado")
	ErrConflict       = errors.New("conflicto con el estado actual")

	ErrProviderResolution    = errors.New("no se pudo identificar el proveedor")
	ErrDirectoryUnavailable  = errors.New("directorio externo no disponible")
	ErrExportTemplateMissing = errors.New("plantilla de archivo plano no encontrada")
)

// ProviderResolutionError indica que no hay proveedor existente ni datos para crearlo.
// Hint sugiere al cliente cómo completar la información.
type ProviderResolutionError struct {
	TaxID string
	Hint  string
}

func (e *ProviderResolutionError) Error() string {
	if e.TaxID == "" {
		return fmt.Sprintf("%s: %s", ErrProviderResolution.Error(), e.Hint)
	}
	return fmt.Sprintf("%s (nit %s): %s", ErrProviderResolution.Error(), e.TaxID, e.Hint)
}

func (e *ProviderResolutionError) Unwrap() error { return ErrProviderResolution }
