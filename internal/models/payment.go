package models

import "time"

type PaymentStatus string

const (
	PaymentNotPaid       PaymentStatus = "NOT_PAID"
	PaymentPartiallyPaid PaymentStatus = "PARTIALLY_PAID"
	PaymentPaid          PaymentStatus = "PAID"
)

// Payment is one row of the append-only payment ledger. A farmer's
// outstanding balance is always sum(owed) - sum(paid) over their rows,
// recomputed at read time.
type Payment struct {
	ID                   uint `gorm:"primaryKey"`
	FarmerID             uint `gorm:"index;not null"`
	Farmer               User `gorm:"foreignKey:FarmerID"`
	DeliveryAssignmentID *uint
	AmountOwed           float64       `gorm:"not null"`
	AmountPaid           float64       `gorm:"not null"`
	PaymentStatus        PaymentStatus `gorm:"size:20;not null"`
	PaymentMethod        string        `gorm:"size:50"`
	PaymentDate          time.Time     `gorm:"not null;index"`
	RecordedBy           uint          `gorm:"not null"`
	Notes                string        `gorm:"size:500"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
