package models

import "time"

type PerformanceTier string

const (
	TierProbationary PerformanceTier = "PROBATIONARY"
	TierStandard     PerformanceTier = "STANDARD"
	TierPreferred    PerformanceTier = "PREFERRED"
)

// FarmerPerformance is the current derived score for a farmer. Always
// recomputed, never user-writable.
type FarmerPerformance struct {
	ID        uint            `gorm:"primaryKey"`
	FarmerID  uint            `gorm:"uniqueIndex;not null"`
	Farmer    User            `gorm:"foreignKey:FarmerID"`
	Score     int             `gorm:"not null"`
	Tier      PerformanceTier `gorm:"size:20;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type FarmerPerformanceBreakdown struct {
	ID                          uint `gorm:"primaryKey"`
	FarmerID                    uint `gorm:"uniqueIndex;not null"`
	OnTimeDeliveryScore         int  `gorm:"not null"`
	QuantityAccuracyScore       int  `gorm:"not null"`
	QualityScore                int  `gorm:"not null"`
	AvailabilitySubmissionScore int  `gorm:"not null"`
	CreatedAt                   time.Time
	UpdatedAt                   time.Time
}

// FarmerPerformanceHistory is an append-only log; a row is written only when
// a recompute actually changes the score or tier.
type FarmerPerformanceHistory struct {
	ID                   uint            `gorm:"primaryKey"`
	FarmerID             uint            `gorm:"index;not null"`
	PreviousScore        int             `gorm:"not null"`
	NewScore             int             `gorm:"not null"`
	PreviousTier         PerformanceTier `gorm:"size:20;not null"`
	NewTier              PerformanceTier `gorm:"size:20;not null"`
	Reason               string          `gorm:"size:255"`
	DeliveryAssignmentID *uint
	CreatedBy            *uint
	CreatedAt            time.Time `gorm:"index"`
}
