package performance

import (
	"time"

	"agrolink-backend/internal/auth"
	"agrolink-backend/internal/clock"
	"agrolink-backend/internal/database"
	"agrolink-backend/internal/httpx"
	"agrolink-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GET /api/farmers/performance
func GetPerformanceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		farmerID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		snapshot, err := Current(database.DB, farmerID)
		if err != nil {
			return err
		}

		return httpx.OK(c, snapshot)
	}
}

type HistoryEntryResponse struct {
	ID                   uint                   `json:"id"`
	PreviousScore        int                    `json:"previous_score"`
	NewScore             int                    `json:"new_score"`
	PreviousTier         models.PerformanceTier `json:"previous_tier"`
	NewTier              models.PerformanceTier `json:"new_tier"`
	Reason               string                 `json:"reason"`
	DeliveryAssignmentID *uint                  `json:"delivery_assignment_id,omitempty"`
	CreatedAt            string                 `json:"created_at"`
}

// GET /api/farmers/performance/history
func GetHistoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		farmerID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		rows, err := History(database.DB, farmerID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list performance history")
		}

		resp := make([]HistoryEntryResponse, 0, len(rows))
		for _, h := range rows {
			resp = append(resp, HistoryEntryResponse{
				ID:                   h.ID,
				PreviousScore:        h.PreviousScore,
				NewScore:             h.NewScore,
				PreviousTier:         h.PreviousTier,
				NewTier:              h.NewTier,
				Reason:               h.Reason,
				DeliveryAssignmentID: h.DeliveryAssignmentID,
				CreatedAt:            h.CreatedAt.Format(time.RFC3339),
			})
		}
		return httpx.OK(c, resp)
	}
}

// GET /api/farmers/performance/trend?days=30
func GetTrendHandler(clk clock.Clock) fiber.Handler {
	return func(c *fiber.Ctx) error {
		farmerID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		days := c.QueryInt("days", 30)
		points, err := Trend(database.DB, clk, farmerID, days)
		if err != nil {
			return err
		}

		return httpx.OK(c, points)
	}
}
