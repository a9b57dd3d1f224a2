// internal/database/connection.go
package database

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fieldserve/fieldserve-backend/internal/config"
	"github.com/fieldserve/fieldserve-backend/internal/models"
)

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var gormConfig *gorm.Config

	if cfg.LogLevel == "silent" {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		}
	} else {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Info),
		}
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.Info("Database connection established")
	return db, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		logrus.WithError(err).Error("Error getting underlying sql.DB")
		return
	}

	if err := sqlDB.Close(); err != nil {
		logrus.WithError(err).Error("Error closing database connection")
	} else {
		logrus.Info("Database connection closed")
	}
}

func RunMigrations(db *gorm.DB) error {
	logrus.Info("Running database migrations...")

	err := db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.MaintenanceRequest{},
		&models.MaintenanceRequestEquipment{},
		&models.ServiceReport{},
		&models.ReportItem{},
		&models.ReportImage{},
		&models.AuditLog{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	logrus.Info("Database migrations completed")
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_service_reports_created_at ON service_reports(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_service_reports_status ON service_reports(status)",
		"CREATE INDEX IF NOT EXISTS idx_report_items_report ON report_items(report_id)",

		// Backstop for the per-submission duplicate check: one
		// (product, serial) pair per report.
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_report_items_product_serial ON report_items(report_id, product_id, serial_number)",

		"CREATE INDEX IF NOT EXISTS idx_maintenance_requests_created_by ON maintenance_requests(created_by_id)",
		"CREATE INDEX IF NOT EXISTS idx_maintenance_requests_status ON maintenance_requests(status, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_request_equipment_request ON maintenance_request_equipments(request_id)",

		"CREATE INDEX IF NOT EXISTS idx_products_category ON products(category)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_user_action ON audit_logs(user_id, action)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_resource ON audit_logs(resource_type, resource_id)",

		// Full-text search over report listings.
		"CREATE INDEX IF NOT EXISTS idx_service_reports_search ON service_reports USING GIN(to_tsvector('english', coalesce(client_name, '') || ' ' || coalesce(location, '')))",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			logrus.WithError(err).Warnf("Failed to create index: %s", index)
			// Continue with other indexes instead of failing completely
		}
	}

	return nil
}

// SeedInitialData creates the default staff account on first boot.
func SeedInitialData(db *gorm.DB) error {
	var staffCount int64
	db.Model(&models.User{}).Where("user_type = ?", models.UserTypeStaff).Count(&staffCount)

	if staffCount == 0 {
		staff := &models.User{
			Username: "admin",
			Email:    "admin@fieldserve.local",
			UserType: models.UserTypeStaff,
			IsActive: true,
		}

		if err := staff.SetPassword("ChangeMe123"); err != nil {
			return fmt.Errorf("failed to set staff password: %w", err)
		}

		if err := db.Create(staff).Error; err != nil {
			return fmt.Errorf("failed to create staff user: %w", err)
		}

		logrus.Info("Default staff user created")
	}

	return nil
}
