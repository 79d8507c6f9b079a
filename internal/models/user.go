package models

import "time"

type UserRole string

const (
	RoleFarmer UserRole = "FARMER"
	RoleBuyer  UserRole = "BUYER"
	RoleAdmin  UserRole = "ADMIN"
)

type AccountStatus string

const (
	StatusApplied      AccountStatus = "APPLIED"
	StatusPending      AccountStatus = "PENDING"
	StatusActive       AccountStatus = "ACTIVE"
	StatusProbationary AccountStatus = "PROBATIONARY"
	StatusSuspended    AccountStatus = "SUSPENDED"
	StatusBlocked      AccountStatus = "BLOCKED"
)

type User struct {
	ID           uint          `gorm:"primaryKey"`
	Name         string        `gorm:"size:100;not null"`
	Email        string        `gorm:"size:100;uniqueIndex;not null"`
	PasswordHash string        `gorm:"size:255;not null"`
	Role         UserRole      `gorm:"size:20;not null;index"`
	Status       AccountStatus `gorm:"size:20;not null;index"`
	StatusReason string        `gorm:"size:500"` // set on reject/suspend
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CanSupply reports whether a farmer account may receive allocations
// and submit availability.
func (u *User) CanSupply() bool {
	return u.Role == RoleFarmer && (u.Status == StatusActive || u.Status == StatusProbationary)
}

type FarmerProfile struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"uniqueIndex;not null"`
	User      User   `gorm:"foreignKey:UserID"`
	FarmName  string `gorm:"size:150;not null"`
	Region    string `gorm:"size:100;index"`
	Phone     string `gorm:"size:30"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type BuyerProfile struct {
	ID          uint   `gorm:"primaryKey"`
	UserID      uint   `gorm:"uniqueIndex;not null"`
	User        User   `gorm:"foreignKey:UserID"`
	CompanyName string `gorm:"size:150;not null"`
	Region      string `gorm:"size:100;index"`
	Phone       string `gorm:"size:30"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type DeliveryAddress struct {
	ID          uint   `gorm:"primaryKey"`
	BuyerID     uint   `gorm:"index;not null"`
	Buyer       User   `gorm:"foreignKey:BuyerID"`
	Label       string `gorm:"size:100"`
	AddressLine string `gorm:"size:255;not null"`
	City        string `gorm:"size:100;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
