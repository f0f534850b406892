package postgres

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS providers (
		id         UUID PRIMARY KEY,
		tax_id     TEXT NOT NULL UNIQUE,
		name       TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS offices (
		id         UUID PRIMARY KEY,
		code       TEXT,
		name       TEXT NOT NULL,
		site_type  TEXT,
		address    TEXT,
		city       TEXT,
		zone       TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_offices_code ON offices (code)`,
	`CREATE TABLE IF NOT EXISTS contracts (
		id              UUID PRIMARY KEY,
		provider_id     UUID REFERENCES providers (id) ON DELETE RESTRICT,
		office_id       UUID REFERENCES offices (id) ON DELETE RESTRICT,
		number          TEXT NOT NULL,
		holder_name     TEXT,
		holder_tax_id   TEXT,
		line            TEXT,
		plan_type       TEXT,
		payment_ref     TEXT,
		monthly_value   NUMERIC(18,2) NOT NULL DEFAULT 0 CHECK (monthly_value >= 0),
		status          TEXT NOT NULL DEFAULT 'ACTIVO' CHECK (status IN ('ACTIVO', 'CANCELADO')),
		has_vat         BOOLEAN NOT NULL DEFAULT false,
		has_withholding BOOLEAN NOT NULL DEFAULT false,
		withholding_pct NUMERIC(5,2) NOT NULL DEFAULT 0 CHECK (withholding_pct BETWEEN 0 AND 100),
		start_date      DATE,
		end_date        DATE,
		notes           TEXT,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_pair ON contracts (provider_id, office_id)`,
	`CREATE TABLE IF NOT EXISTS invoices (
		id           UUID PRIMARY KEY,
		provider_id  UUID NOT NULL REFERENCES providers (id) ON DELETE RESTRICT,
		number       TEXT NOT NULL,
		cufe         TEXT,
		invoice_date DATE,
		due_date     DATE,
		value        NUMERIC(18,2) NOT NULL DEFAULT 0 CHECK (value >= 0),
		status       TEXT NOT NULL DEFAULT 'PENDIENTE' CHECK (status IN ('PENDIENTE', 'ASIGNADA', 'PAGADA')),
		url          TEXT,
		notes        TEXT,
		office_id    UUID REFERENCES offices (id) ON DELETE SET NULL,
		contract_id  UUID REFERENCES contracts (id) ON DELETE SET NULL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_invoices_provider ON invoices (provider_id)`,
	`CREATE INDEX IF NOT EXISTS idx_invoices_date ON invoices (invoice_date)`,
	`CREATE TABLE IF NOT EXISTS invoice_offices (
		id          UUID PRIMARY KEY,
		invoice_id  UUID NOT NULL REFERENCES invoices (id) ON DELETE CASCADE,
		office_id   UUID NOT NULL REFERENCES offices (id) ON DELETE RESTRICT,
		contract_id UUID REFERENCES contracts (id) ON DELETE SET NULL,
		value       NUMERIC(18,2) NOT NULL DEFAULT 0 CHECK (value >= 0),
		status      TEXT NOT NULL DEFAULT 'PENDIENTE' CHECK (status IN ('PENDIENTE', 'PAGADA')),
		notes       TEXT,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_invoice_offices_invoice ON invoice_offices (invoice_id)`,
	`CREATE INDEX IF NOT EXISTS idx_invoice_offices_contract ON invoice_offices (contract_id)`,
}

// EnsureSchema crea tablas e índices si no existen. Idempotente.
func EnsureSchema(ctx context.Context, q Querier) error {
	for _, stmt := range schema {
		if _, err := q.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
