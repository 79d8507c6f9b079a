package models

import "time"

// PasswordResetToken is a short-lived single-use token. Kept in the database
// (not process memory) so it survives restarts and horizontally scaled
// instances; expired rows are swept on a fixed interval.
type PasswordResetToken struct {
	ID        uint      `gorm:"primaryKey"`
	Token     string    `gorm:"size:64;uniqueIndex;not null"`
	UserID    uint      `gorm:"index;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	CreatedAt time.Time
}
