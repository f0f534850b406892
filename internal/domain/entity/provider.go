package entity

import "time"

// Provider representa un proveedor externo que emite facturas (identificado por NIT).
type Provider struct {
	ID        string
	TaxID     string // NIT; clave de negocio inmutable
	Name      string
	CreatedAt time.Time
}
