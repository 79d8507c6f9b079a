package auth

import (
	"strings"

	"agrolink-backend/internal/apperr"
	"agrolink-backend/internal/config"
	"agrolink-backend/internal/database"
	"agrolink-backend/internal/httpx"
	"agrolink-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"` // FARMER or BUYER

	// Farmer fields
	FarmName string `json:"farm_name"`
	// Buyer fields
	CompanyName string `json:"company_name"`

	Region string `json:"region"`
	Phone  string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterHandler creates a FARMER or BUYER application. Accounts start in
// APPLIED and stay there until an admin reviews them.
func RegisterHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.BadRequest(apperr.CodeInvalidInput, "Invalid request body")
		}

		body.Email = strings.TrimSpace(strings.ToLower(body.Email))
		body.Name = strings.TrimSpace(body.Name)

		if body.Name == "" || body.Email == "" || body.Password == "" {
			return apperr.BadRequest(apperr.CodeInvalidInput, "Name, email and password are required")
		}
		if len(body.Password) < 8 {
			return apperr.BadRequest(apperr.CodeInvalidInput, "Password must be at least 8 characters")
		}

		role := models.UserRole(strings.ToUpper(strings.TrimSpace(body.Role)))
		switch role {
		case models.RoleFarmer:
			if strings.TrimSpace(body.FarmName) == "" {
				return apperr.BadRequest(apperr.CodeInvalidInput, "farm_name is required for farmer registration")
			}
		case models.RoleBuyer:
			if strings.TrimSpace(body.CompanyName) == "" {
				return apperr.BadRequest(apperr.CodeInvalidInput, "company_name is required for buyer registration")
			}
		default:
			return apperr.BadRequest(apperr.CodeInvalidInput, "role must be FARMER or BUYER")
		}

		var count int64
		database.DB.Model(&models.User{}).Where("email = ?", body.Email).Count(&count)
		if count > 0 {
			return apperr.Conflict(apperr.CodeDuplicateUser, "An account with this email already exists")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not hash password")
		}

		user := models.User{
			Name:         body.Name,
			Email:        body.Email,
			PasswordHash: string(hash),
			Role:         role,
			Status:       models.StatusApplied,
		}

		// User and role profile commit together or not at all.
		err = database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
			if role == models.RoleFarmer {
				profile := models.FarmerProfile{
					UserID:   user.ID,
					FarmName: strings.TrimSpace(body.FarmName),
					Region:   strings.TrimSpace(body.Region),
					Phone:    strings.TrimSpace(body.Phone),
				}
				return tx.Create(&profile).Error
			}
			profile := models.BuyerProfile{
				UserID:      user.ID,
				CompanyName: strings.TrimSpace(body.CompanyName),
				Region:      strings.TrimSpace(body.Region),
				Phone:       strings.TrimSpace(body.Phone),
			}
			return tx.Create(&profile).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create account")
		}

		return httpx.Created(c, fiber.Map{
			"id":     user.ID,
			"email":  user.Email,
			"role":   user.Role,
			"status": user.Status,
		})
	}
}

func LoginHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.BadRequest(apperr.CodeInvalidInput, "Invalid request body")
		}

		body.Email = strings.TrimSpace(strings.ToLower(body.Email))

		var user models.User
		if err := database.DB.Where("email = ?", body.Email).First(&user).Error; err != nil {
			return apperr.Unauthorized(apperr.CodeInvalidCredentials, "Email or password is incorrect")
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
			return apperr.Unauthorized(apperr.CodeInvalidCredentials, "Email or password is incorrect")
		}

		if user.Status == models.StatusBlocked {
			return apperr.Forbidden(apperr.CodeAccountNotActive, "This account has been blocked")
		}

		token, err := GenerateToken(cfg.JWTSecret, &user)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not generate token")
		}

		return httpx.OK(c, fiber.Map{
			"token": token,
			"user": fiber.Map{
				"id":     user.ID,
				"name":   user.Name,
				"email":  user.Email,
				"role":   user.Role,
				"status": user.Status,
			},
		})
	}
}

func MeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := CurrentUserID(c)
		if err != nil {
			return err
		}

		var user models.User
		if err := database.DB.First(&user, userID).Error; err != nil {
			return apperr.NotFound(apperr.CodeUserNotFound, "User not found")
		}

		resp := fiber.Map{
			"id":     user.ID,
			"name":   user.Name,
			"email":  user.Email,
			"role":   user.Role,
			"status": user.Status,
		}

		switch user.Role {
		case models.RoleFarmer:
			var profile models.FarmerProfile
			if err := database.DB.Where("user_id = ?", user.ID).First(&profile).Error; err == nil {
				resp["profile"] = fiber.Map{
					"farm_name": profile.FarmName,
					"region":    profile.Region,
					"phone":     profile.Phone,
				}
			}
		case models.RoleBuyer:
			var profile models.BuyerProfile
			if err := database.DB.Where("user_id = ?", user.ID).First(&profile).Error; err == nil {
				resp["profile"] = fiber.Map{
					"company_name": profile.CompanyName,
					"region":       profile.Region,
					"phone":        profile.Phone,
				}
			}
		}

		return httpx.OK(c, resp)
	}
}
