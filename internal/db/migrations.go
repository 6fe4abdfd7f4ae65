package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`CREATE TABLE IF NOT EXISTS plates (
		id              BIGSERIAL PRIMARY KEY,
		number          TEXT NOT NULL,
		normalized      TEXT NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_plates_normalized ON plates(normalized);`,
	`CREATE TABLE IF NOT EXISTS auto_capture_entries (
		id              BIGSERIAL PRIMARY KEY,
		plate_id        BIGINT REFERENCES plates(id),
		source_id       TEXT NOT NULL,
		source_model    TEXT,
		raw_plate       TEXT NOT NULL,
		vehicle_ref     TEXT NOT NULL,
		confidence      NUMERIC(5,2),
		location_id     UUID NOT NULL,
		entry_time      TIMESTAMPTZ NOT NULL,
		exit_time       TIMESTAMPTZ,
		entry_image_ref TEXT,
		exit_image_ref  TEXT,
		raw_payload     JSONB,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_capture_location_entry_time ON auto_capture_entries(location_id, entry_time);`,
	`CREATE INDEX IF NOT EXISTS idx_capture_open ON auto_capture_entries(location_id, vehicle_ref) WHERE exit_time IS NULL;`,
	`CREATE TABLE IF NOT EXISTS rate_rows (
		id                  BIGSERIAL PRIMARY KEY,
		vehicle_type        TEXT NOT NULL,
		service             TEXT NOT NULL,
		wheel_category_code TEXT,
		price               NUMERIC(12,2) NOT NULL CHECK (price >= 0)
	);`,
	`CREATE TABLE IF NOT EXISTS workshop_rate_rows (
		id               BIGSERIAL PRIMARY KEY,
		workshop         TEXT NOT NULL,
		vehicle_type     TEXT NOT NULL,
		price            NUMERIC(12,2) NOT NULL CHECK (price >= 0),
		discount_percent NUMERIC(5,2)
	);`,
	`CREATE TABLE IF NOT EXISTS vehicle_models (
		id                  UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		brand               TEXT NOT NULL,
		model               TEXT NOT NULL,
		wheel_category_code TEXT
	);`,
	`CREATE TABLE IF NOT EXISTS payment_accounts (
		id            UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		location_id   UUID,
		account_name  TEXT NOT NULL,
		identifier    TEXT NOT NULL,
		qr_asset_ref  TEXT,
		active        BOOLEAN NOT NULL DEFAULT true,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_payment_accounts_location ON payment_accounts(location_id) WHERE active;`,
	`CREATE TABLE IF NOT EXISTS staff_accounts (
		id                 UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		email              TEXT NOT NULL,
		password_hash      TEXT NOT NULL,
		email_confirmed_at TIMESTAMPTZ,
		role               TEXT NOT NULL DEFAULT 'operator',
		location_id        UUID,
		created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at         TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_staff_accounts_email ON staff_accounts(lower(email));`,
	`CREATE TABLE IF NOT EXISTS tickets (
		id                  UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		entry_type          TEXT NOT NULL CHECK (entry_type IN ('customer', 'workshop')),
		vehicle_plate       TEXT NOT NULL,
		plate_normalized    TEXT NOT NULL,
		vehicle_type        TEXT NOT NULL,
		wheel_category_code TEXT,
		services            JSONB NOT NULL DEFAULT '[]'::jsonb,
		workshop_name       TEXT,
		amount              NUMERIC(12,2) NOT NULL CHECK (amount >= 0),
		discount            NUMERIC(12,2) NOT NULL DEFAULT 0,
		payment_mode        TEXT NOT NULL CHECK (payment_mode IN ('cash', 'electronic_transfer', 'deferred')),
		payment_account_id  UUID REFERENCES payment_accounts(id),
		approval_status     TEXT NOT NULL DEFAULT 'pending' CHECK (approval_status IN ('pending', 'approved', 'rejected')),
		entry_time          TIMESTAMPTZ NOT NULL,
		exit_time           TIMESTAMPTZ,
		approved_at         TIMESTAMPTZ,
		payment_date        TIMESTAMPTZ,
		customer_name       TEXT,
		customer_phone      TEXT,
		customer_dob        DATE,
		customer_location   TEXT,
		vehicle_brand       TEXT,
		vehicle_model       TEXT,
		vehicle_model_id    UUID REFERENCES vehicle_models(id),
		remarks             TEXT,
		location_id         UUID NOT NULL,
		created_by          UUID NOT NULL,
		created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at          TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_tickets_location_entry_time ON tickets(location_id, entry_time);`,
	`CREATE INDEX IF NOT EXISTS idx_tickets_plate_normalized ON tickets(plate_normalized);`,
	`CREATE INDEX IF NOT EXISTS idx_tickets_created_at ON tickets(created_at DESC);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
