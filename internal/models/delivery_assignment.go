package models

import "time"

type AssignmentStatus string

const (
	AssignmentStatusPending   AssignmentStatus = "PENDING"
	AssignmentStatusDelivered AssignmentStatus = "DELIVERED"
	AssignmentStatusFailed    AssignmentStatus = "FAILED"
)

type QualityResult string

const (
	QualityPass    QualityResult = "PASS"
	QualityPartial QualityResult = "PARTIAL"
	QualityFail    QualityResult = "FAIL"
)

// DeliveryAssignment is one farmer's committed portion of an order.
// Created only by the allocation engine; mutated exactly once by delivery
// confirmation. Once status leaves PENDING the row is immutable.
type DeliveryAssignment struct {
	ID                uint             `gorm:"primaryKey"`
	OrderID           uint             `gorm:"index;not null"`
	Order             Order            `gorm:"foreignKey:OrderID"`
	FarmerID          uint             `gorm:"index;not null"`
	Farmer            User             `gorm:"foreignKey:FarmerID"`
	AssignedQuantity  float64          `gorm:"not null"`
	DeliveryDate      time.Time        `gorm:"not null"` // copied from the order at allocation
	DeliveryAddressID uint             `gorm:"not null"`
	Status            AssignmentStatus `gorm:"size:20;not null;index"`
	QuantityDelivered *float64
	QualityResult     *QualityResult `gorm:"size:10"`
	ConfirmationNotes string         `gorm:"size:500"`
	ConfirmedBy       *uint
	ConfirmedAt       *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
