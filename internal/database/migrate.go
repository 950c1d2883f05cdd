package database

import (
	"fmt"

	"gorm.io/gorm"

	"queueless/internal/domain"
)

// Models lists every table owned by the service, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&domain.User{},
		&domain.Company{},
		&domain.CompanySettings{},
		&domain.WorkingHours{},
		&domain.WorkBreak{},
		&domain.CompanyMembership{},
		&domain.Service{},
		&domain.Reservation{},
		&domain.QueueEntry{},
		&domain.CompanyRegistration{},
	}
}

// Migrate creates/updates tables. On Postgres it also installs the
// exclusion constraint that keeps active reservations of one worker (or of
// the unassigned pool) from overlapping.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if db.Dialector.Name() != "postgres" {
		return nil
	}

	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS btree_gist`,
		`DO $$
BEGIN
	IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'reservations_no_overlap') THEN
		ALTER TABLE reservations ADD CONSTRAINT reservations_no_overlap
		EXCLUDE USING gist (
			company_id WITH =,
			(COALESCE(worker_id, 0)) WITH =,
			tstzrange(slot_start, slot_end, '[)') WITH &&
		) WHERE (status IN ('PENDING', 'CONFIRMED'));
	END IF;
END $$`,
		`DO $$
BEGIN
	IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'reservations_slot_order') THEN
		ALTER TABLE reservations ADD CONSTRAINT reservations_slot_order CHECK (slot_start < slot_end);
	END IF;
END $$`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("install constraints: %w", err)
		}
	}
	return nil
}
