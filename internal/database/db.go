package database

import (
	"log"

	"agrolink-backend/internal/config"
	"agrolink-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}

	log.Println("Database connected, migration complete")
}

// Migrate runs AutoMigrate for every model. Shared with the test helpers so
// the sqlite test schema matches production.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.FarmerProfile{},
		&models.BuyerProfile{},
		&models.DeliveryAddress{},
		&models.Order{},
		&models.DeliveryAssignment{},
		&models.WeeklyAvailability{},
		&models.FarmerPerformance{},
		&models.FarmerPerformanceBreakdown{},
		&models.FarmerPerformanceHistory{},
		&models.Payment{},
		&models.AuditLog{},
		&models.PasswordResetToken{},
	)
}
