package availability

import (
	"time"

	"agrolink-backend/internal/apperr"
	"agrolink-backend/internal/auth"
	"agrolink-backend/internal/clock"
	"agrolink-backend/internal/database"
	"agrolink-backend/internal/httpx"
	"agrolink-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type SubmitRequest struct {
	WeekStartDate     string   `json:"week_start_date"` // "2006-01-02", normalized to Monday
	ProductType       string   `json:"product_type"`
	QuantityAvailable float64  `json:"quantity_available"`
	AvgWeight         *float64 `json:"avg_weight"`
	ReadyDate         string   `json:"ready_date"`
}

type AvailabilityResponse struct {
	ID                uint     `json:"id"`
	WeekStartDate     string   `json:"week_start_date"`
	ProductType       string   `json:"product_type"`
	QuantityAvailable float64  `json:"quantity_available"`
	AvgWeight         *float64 `json:"avg_weight,omitempty"`
	ReadyDate         string   `json:"ready_date"`
	IsLate            bool     `json:"is_late"`
}

func toResponse(row models.WeeklyAvailability) AvailabilityResponse {
	return AvailabilityResponse{
		ID:                row.ID,
		WeekStartDate:     row.WeekStartDate.Format("2006-01-02"),
		ProductType:       row.ProductType,
		QuantityAvailable: row.QuantityAvailable,
		AvgWeight:         row.AvgWeight,
		ReadyDate:         row.ReadyDate.Format("2006-01-02"),
		IsLate:            row.IsLate,
	}
}

// POST /api/availability
func SubmitHandler(clk clock.Clock) fiber.Handler {
	return func(c *fiber.Ctx) error {
		farmerID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var body SubmitRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.BadRequest(apperr.CodeInvalidInput, "Invalid request body")
		}

		week, err := time.Parse("2006-01-02", body.WeekStartDate)
		if err != nil {
			return apperr.BadRequest(apperr.CodeInvalidInput, "week_start_date must be 'YYYY-MM-DD'")
		}
		ready, err := time.Parse("2006-01-02", body.ReadyDate)
		if err != nil {
			return apperr.BadRequest(apperr.CodeInvalidReadyDate, "ready_date must be 'YYYY-MM-DD'")
		}

		row, err := Submit(database.DB, clk, SubmitInput{
			FarmerID:          farmerID,
			WeekStartDate:     week,
			ProductType:       body.ProductType,
			QuantityAvailable: body.QuantityAvailable,
			AvgWeight:         body.AvgWeight,
			ReadyDate:         ready,
		})
		if err != nil {
			return err
		}

		return httpx.Created(c, toResponse(*row))
	}
}

// GET /api/availability?week=2006-01-02
func ListHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		farmerID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		crit := ListCriteria{FarmerID: farmerID}
		if w := c.Query("week"); w != "" {
			parsed, err := time.Parse("2006-01-02", w)
			if err != nil {
				return apperr.BadRequest(apperr.CodeInvalidInput, "week must be 'YYYY-MM-DD'")
			}
			crit.Week = &parsed
		}

		rows, err := List(database.DB, crit)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list availability")
		}

		resp := make([]AvailabilityResponse, 0, len(rows))
		for _, row := range rows {
			resp = append(resp, toResponse(row))
		}
		return httpx.OK(c, resp)
	}
}
