package testutil

import (
	"testing"

	"agrolink-backend/internal/database"
	"agrolink-backend/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDB gives each test its own in-memory sqlite database with the
// production schema.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// CreateUser inserts a user with a throwaway password hash.
func CreateUser(t *testing.T, db *gorm.DB, name string, role models.UserRole, status models.AccountStatus) *models.User {
	t.Helper()

	user := models.User{
		Name:         name,
		Email:        name + "@example.com",
		PasswordHash: "x",
		Role:         role,
		Status:       status,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return &user
}

// CreateAddress inserts a delivery address for a buyer.
func CreateAddress(t *testing.T, db *gorm.DB, buyerID uint) *models.DeliveryAddress {
	t.Helper()

	addr := models.DeliveryAddress{
		BuyerID:     buyerID,
		Label:       "Warehouse",
		AddressLine: "1 Market Rd",
		City:        "Kampala",
	}
	if err := db.Create(&addr).Error; err != nil {
		t.Fatalf("create address: %v", err)
	}
	return &addr
}
