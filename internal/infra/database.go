package infra

import (
	"fmt"

	"frota/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens a GORM connection backed by pgx and brings the schema up
// to date (AutoMigrate plus the idempotent patches GORM cannot express).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates or updates every table and applies the schema
// patches. Safe to run on every start.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Operador{},
		&model.Dataset{},
		&model.Veiculo{},
		&model.Utilizacao{},
		&model.Manutencao{},
		&model.UsuarioFrota{},
		&model.RegistroPonto{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applySchemaPatches runs DDL that struct tags cannot describe (expression
// and composite indexes). Every statement is idempotent.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// Login matches e-mail case-insensitively.
		{"operadores lower(email)",
			`CREATE INDEX IF NOT EXISTS idx_operadores_email_lower ON operadores (LOWER(email))`},
		// Per-user punch lookups inside one dataset.
		{"registros_ponto (dataset_id, utilizador)",
			`CREATE INDEX IF NOT EXISTS idx_registros_ponto_dataset_user ON registros_ponto (dataset_id, utilizador)`},
		{"manutencoes (dataset_id, vehicle_id)",
			`CREATE INDEX IF NOT EXISTS idx_manutencoes_dataset_vehicle ON manutencoes (dataset_id, vehicle_id)`},
		{"datasets.created_at",
			`CREATE INDEX IF NOT EXISTS idx_datasets_created_at ON datasets (created_at DESC)`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
