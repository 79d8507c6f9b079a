package orders

import (
	"strings"

	"agrolink-backend/internal/apperr"
	"agrolink-backend/internal/auth"
	"agrolink-backend/internal/database"
	"agrolink-backend/internal/httpx"
	"agrolink-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateAddressRequest struct {
	Label       string `json:"label"`
	AddressLine string `json:"address_line"`
	City        string `json:"city"`
}

// POST /api/addresses
func CreateAddressHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		buyerID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var body CreateAddressRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.BadRequest(apperr.CodeInvalidInput, "Invalid request body")
		}
		if strings.TrimSpace(body.AddressLine) == "" || strings.TrimSpace(body.City) == "" {
			return apperr.BadRequest(apperr.CodeInvalidInput, "address_line and city are required")
		}

		addr := models.DeliveryAddress{
			BuyerID:     buyerID,
			Label:       strings.TrimSpace(body.Label),
			AddressLine: strings.TrimSpace(body.AddressLine),
			City:        strings.TrimSpace(body.City),
		}
		if err := database.DB.Create(&addr).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not save address")
		}

		return httpx.Created(c, addr)
	}
}

// GET /api/addresses
func ListAddressesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		buyerID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var rows []models.DeliveryAddress
		if err := database.DB.Where("buyer_id = ?", buyerID).
			Order("id asc").Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list addresses")
		}

		return httpx.OK(c, rows)
	}
}
