package models

import "time"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusApproved   OrderStatus = "APPROVED" // declared but not produced by any transition, kept for stored data
	OrderStatusAllocation OrderStatus = "ALLOCATION"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusRejected   OrderStatus = "REJECTED"
	OrderStatusFailed     OrderStatus = "FAILED" // declared but not produced by any transition, kept for stored data
)

type OrderType string

const (
	OrderTypeOneTime  OrderType = "ONE_TIME"
	OrderTypeStanding OrderType = "STANDING"
)

// Order is a buyer demand record. Orders are never hard-deleted.
type Order struct {
	ID                uint            `gorm:"primaryKey"`
	BuyerID           uint            `gorm:"index;not null"`
	Buyer             User            `gorm:"foreignKey:BuyerID"`
	ProductType       string          `gorm:"size:100;not null;index"`
	Quantity          float64         `gorm:"not null"`
	OrderType         OrderType       `gorm:"size:20;not null"`
	DeliveryDate      time.Time       `gorm:"not null;index"`
	DeliveryAddressID uint            `gorm:"not null"`
	DeliveryAddress   DeliveryAddress `gorm:"foreignKey:DeliveryAddressID"`
	Status            OrderStatus     `gorm:"size:20;not null;index"`
	ApprovedAt        *time.Time
	ApprovedBy        *uint
	RejectionReason   string `gorm:"size:500"`
	Notes             string `gorm:"size:500"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
