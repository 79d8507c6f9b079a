package auth

import (
	"log"
	"strings"
	"time"

	"agrolink-backend/internal/apperr"
	"agrolink-backend/internal/clock"
	"agrolink-backend/internal/config"
	"agrolink-backend/internal/database"
	"agrolink-backend/internal/httpx"
	"agrolink-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// ForgotPasswordHandler issues a single-use reset token. The response does
// not reveal whether the email exists.
func ForgotPasswordHandler(cfg *config.Config, clk clock.Clock) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ForgotPasswordRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.BadRequest(apperr.CodeInvalidInput, "Invalid request body")
		}

		email := strings.TrimSpace(strings.ToLower(body.Email))
		if email == "" {
			return apperr.BadRequest(apperr.CodeInvalidInput, "email is required")
		}

		var user models.User
		if err := database.DB.Where("email = ?", email).First(&user).Error; err == nil {
			token := models.PasswordResetToken{
				Token:     uuid.NewString(),
				UserID:    user.ID,
				ExpiresAt: clk.Now().Add(cfg.ResetTokenTTL),
			}
			if err := database.DB.Create(&token).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Could not create reset token")
			}
			// A mail integration would send the token here; for now it is
			// only logged so operators can relay it manually.
			log.Printf("Password reset token issued for user %d", user.ID)
		}

		return httpx.OKMessage(c, nil, "If the email exists, a reset token has been issued")
	}
}

// ResetPasswordHandler consumes a token (delete-on-use) and sets the new
// password in the same transaction.
func ResetPasswordHandler(clk clock.Clock) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ResetPasswordRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.BadRequest(apperr.CodeInvalidInput, "Invalid request body")
		}
		if body.Token == "" {
			return apperr.BadRequest(apperr.CodeTokenInvalid, "token is required")
		}
		if len(body.NewPassword) < 8 {
			return apperr.BadRequest(apperr.CodeInvalidInput, "Password must be at least 8 characters")
		}

		err := database.DB.Transaction(func(tx *gorm.DB) error {
			var token models.PasswordResetToken
			if err := tx.Where("token = ?", body.Token).First(&token).Error; err != nil {
				return apperr.BadRequest(apperr.CodeTokenInvalid, "Reset token is invalid or expired")
			}
			if clk.Now().After(token.ExpiresAt) {
				tx.Delete(&token)
				return apperr.BadRequest(apperr.CodeTokenInvalid, "Reset token is invalid or expired")
			}

			hash, err := bcrypt.GenerateFromPassword([]byte(body.NewPassword), bcrypt.DefaultCost)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Could not hash password")
			}

			if err := tx.Model(&models.User{}).Where("id = ?", token.UserID).
				Update("password_hash", string(hash)).Error; err != nil {
				return err
			}
			return tx.Delete(&token).Error
		})
		if err != nil {
			return err
		}

		return httpx.OKMessage(c, nil, "Password has been reset")
	}
}

// StartResetTokenSweeper deletes expired reset tokens on a fixed interval.
// This is the only background goroutine in the process.
func StartResetTokenSweeper(cfg *config.Config, clk clock.Clock) {
	go func() {
		ticker := time.NewTicker(cfg.ResetSweepInterval)
		defer ticker.Stop()
		for range ticker.C {
			res := database.DB.Where("expires_at < ?", clk.Now()).Delete(&models.PasswordResetToken{})
			if res.Error != nil {
				log.Printf("Reset token sweep failed: %v", res.Error)
			} else if res.RowsAffected > 0 {
				log.Printf("Reset token sweep removed %d expired tokens", res.RowsAffected)
			}
		}
	}()
}
