package models

import "time"

// WeeklyAvailability is a farmer's supply declaration for one product in one
// week. One row per (farmer, week, product). IsLate is fixed at submission
// time from the Monday-Tuesday window and never recomputed.
type WeeklyAvailability struct {
	ID                uint      `gorm:"primaryKey"`
	FarmerID          uint      `gorm:"not null;uniqueIndex:idx_farmer_week_product"`
	Farmer            User      `gorm:"foreignKey:FarmerID"`
	WeekStartDate     time.Time `gorm:"not null;uniqueIndex:idx_farmer_week_product"` // always a Monday
	ProductType       string    `gorm:"size:100;not null;uniqueIndex:idx_farmer_week_product"`
	QuantityAvailable float64   `gorm:"not null"`
	AvgWeight         *float64  // per-head weight for livestock, nil for produce
	ReadyDate         time.Time `gorm:"not null"`
	IsLate            bool      `gorm:"not null"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
