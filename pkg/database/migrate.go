package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// schema is applied idempotently at startup. The btree_gist extension backs
// the lease exclusion constraint: for a given unit, no two active leases may
// have overlapping date ranges, even under concurrent inserts the application
// check cannot see.
var schema = []string{
	`CREATE EXTENSION IF NOT EXISTS btree_gist`,

	`CREATE TABLE IF NOT EXISTS files (
		id          BIGSERIAL PRIMARY KEY,
		filename    TEXT NOT NULL,
		mimetype    TEXT NOT NULL DEFAULT 'application/octet-stream',
		size        BIGINT NOT NULL DEFAULT 0,
		data        BYTEA NOT NULL,
		uploaded_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS users (
		id                 BIGSERIAL PRIMARY KEY,
		first_name         TEXT NOT NULL DEFAULT '',
		last_name          TEXT NOT NULL DEFAULT '',
		username           TEXT NOT NULL UNIQUE,
		email              TEXT NOT NULL UNIQUE,
		hashed_password    TEXT NOT NULL,
		role               TEXT NOT NULL CHECK (role IN ('admin', 'owner', 'tenant')),
		is_active          BOOLEAN NOT NULL DEFAULT true,
		profile_picture_id BIGINT REFERENCES files(id) ON DELETE SET NULL,
		created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at         TIMESTAMPTZ
	)`,

	`CREATE TABLE IF NOT EXISTS properties (
		id          BIGSERIAL PRIMARY KEY,
		title       TEXT NOT NULL,
		description TEXT,
		address     TEXT NOT NULL DEFAULT '',
		price       NUMERIC(12, 2) NOT NULL DEFAULT 0,
		owner_id    BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at  TIMESTAMPTZ
	)`,

	`CREATE TABLE IF NOT EXISTS units (
		id           BIGSERIAL PRIMARY KEY,
		property_id  BIGINT NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
		name         TEXT NOT NULL,
		description  TEXT,
		monthly_rent NUMERIC(12, 2) NOT NULL DEFAULT 0,
		UNIQUE (property_id, name)
	)`,

	`CREATE TABLE IF NOT EXISTS leases (
		id         BIGSERIAL PRIMARY KEY,
		unit_id    BIGINT NOT NULL REFERENCES units(id) ON DELETE CASCADE,
		tenant_id  BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		start_date DATE NOT NULL,
		end_date   DATE,
		is_active  BOOLEAN NOT NULL DEFAULT true,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ,
		CHECK (end_date IS NULL OR end_date >= start_date),
		UNIQUE (unit_id, tenant_id, start_date),
		CONSTRAINT leases_no_active_overlap EXCLUDE USING gist (
			unit_id WITH =,
			daterange(start_date, COALESCE(end_date, 'infinity'::date), '[]') WITH &&
		) WHERE (is_active)
	)`,

	`CREATE TABLE IF NOT EXISTS payments (
		id              BIGSERIAL PRIMARY KEY,
		document_type   TEXT NOT NULL,
		gross_value     NUMERIC(12, 2) NOT NULL,
		due_date        DATE NOT NULL,
		receiver        TEXT NOT NULL DEFAULT '',
		description     TEXT,
		is_paid         BOOLEAN NOT NULL DEFAULT false,
		invoice_file_id BIGINT REFERENCES files(id) ON DELETE SET NULL,
		lease_id        BIGINT REFERENCES leases(id) ON DELETE SET NULL,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at      TIMESTAMPTZ
	)`,

	`CREATE INDEX IF NOT EXISTS idx_leases_unit_active ON leases (unit_id) WHERE is_active`,
	`CREATE INDEX IF NOT EXISTS idx_payments_lease ON payments (lease_id)`,
	`CREATE INDEX IF NOT EXISTS idx_payments_due_unpaid ON payments (due_date) WHERE NOT is_paid`,
	`CREATE INDEX IF NOT EXISTS idx_units_property ON units (property_id)`,
	`CREATE INDEX IF NOT EXISTS idx_properties_owner ON properties (owner_id)`,
}

// Migrate applies the schema statements in order
func Migrate(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration statement %d failed: %w", i+1, err)
		}
	}

	logger.Info("database schema applied", slog.Int("statements", len(schema)))
	return nil
}
