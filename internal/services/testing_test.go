// internal/services/testing_test.go
package services

import (
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fieldserve/fieldserve-backend/internal/config"
	"github.com/fieldserve/fieldserve-backend/internal/models"
)

// setupTestDB opens a fresh in-memory database per test. The shared
// cache keeps the schema visible across the pool's connections.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// The local storage fallback writes under ./uploads.
	t.Cleanup(func() { os.RemoveAll("uploads") })

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.MaintenanceRequest{},
		&models.MaintenanceRequestEquipment{},
		&models.ServiceReport{},
		&models.ReportItem{},
		&models.ReportImage{},
		&models.AuditLog{},
	))

	return db
}

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		Server:      config.ServerConfig{Host: "localhost", Port: "8080"},
		JWT: config.JWTConfig{
			SecretKey:       "test-secret",
			AccessTokenTTL:  1,
			RefreshTokenTTL: 24,
		},
	}
}

func createUser(t *testing.T, db *gorm.DB, username string, userType models.UserType) *models.User {
	t.Helper()

	user := &models.User{
		Username: username,
		Email:    username + "@fieldserve.local",
		UserType: userType,
		IsActive: true,
	}
	require.NoError(t, user.SetPassword("Password123"))
	require.NoError(t, db.Create(user).Error)
	return user
}

func createProduct(t *testing.T, db *gorm.DB, name string) *models.Product {
	t.Helper()

	product := &models.Product{
		Name:         name,
		Category:     "Respiratory",
		Manufacturer: "Acme Medical",
		Model:        "MK-II",
		IsActive:     true,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func createRequest(t *testing.T, db *gorm.DB, createdBy *uuid.UUID, status models.RequestStatus) *models.MaintenanceRequest {
	t.Helper()

	request := &models.MaintenanceRequest{
		FacilityName:   "Tripoli General Hospital",
		Location:       "Tripoli",
		Donor:          "WHO",
		RequestDetails: "Ventilator will not power on",
		Urgency:        models.UrgencyHigh,
		Status:         status,
		BillingStatus:  models.BillingStatusWarranty,
		CreatedByID:    createdBy,
	}
	require.NoError(t, db.Create(request).Error)
	return request
}
