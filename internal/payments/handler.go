package payments

import (
	"fmt"
	"log"
	"time"

	"agrolink-backend/internal/apperr"
	"agrolink-backend/internal/audit"
	"agrolink-backend/internal/auth"
	"agrolink-backend/internal/clock"
	"agrolink-backend/internal/database"
	"agrolink-backend/internal/httpx"
	"agrolink-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type RecordPaymentRequest struct {
	FarmerID             uint     `json:"farmer_id"`
	DeliveryAssignmentID *uint    `json:"delivery_assignment_id"`
	AmountOwed           *float64 `json:"amount_owed"`
	AmountPaid           float64  `json:"amount_paid"`
	PaymentMethod        string   `json:"payment_method"`
	PaymentDate          string   `json:"payment_date"` // defaults to today
	Notes                string   `json:"notes"`
}

type PaymentResponse struct {
	ID                   uint    `json:"id"`
	FarmerID             uint    `json:"farmer_id"`
	DeliveryAssignmentID *uint   `json:"delivery_assignment_id,omitempty"`
	AmountOwed           float64 `json:"amount_owed"`
	AmountPaid           float64 `json:"amount_paid"`
	PaymentStatus        string  `json:"payment_status"`
	PaymentMethod        string  `json:"payment_method,omitempty"`
	PaymentDate          string  `json:"payment_date"`
	Notes                string  `json:"notes,omitempty"`
}

func toResponse(p models.Payment) PaymentResponse {
	return PaymentResponse{
		ID:                   p.ID,
		FarmerID:             p.FarmerID,
		DeliveryAssignmentID: p.DeliveryAssignmentID,
		AmountOwed:           p.AmountOwed,
		AmountPaid:           p.AmountPaid,
		PaymentStatus:        string(p.PaymentStatus),
		PaymentMethod:        p.PaymentMethod,
		PaymentDate:          p.PaymentDate.Format("2006-01-02"),
		Notes:                p.Notes,
	}
}

// POST /api/payments
func RecordPaymentHandler(clk clock.Clock) fiber.Handler {
	return func(c *fiber.Ctx) error {
		adminID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var body RecordPaymentRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.BadRequest(apperr.CodeInvalidInput, "Invalid request body")
		}

		paymentDate := clk.Now()
		if body.PaymentDate != "" {
			parsed, err := time.Parse("2006-01-02", body.PaymentDate)
			if err != nil {
				return apperr.BadRequest(apperr.CodeInvalidInput, "payment_date must be 'YYYY-MM-DD'")
			}
			paymentDate = parsed
		}

		payment, err := Record(database.DB, RecordInput{
			FarmerID:             body.FarmerID,
			DeliveryAssignmentID: body.DeliveryAssignmentID,
			AmountOwed:           body.AmountOwed,
			AmountPaid:           body.AmountPaid,
			PaymentMethod:        body.PaymentMethod,
			PaymentDate:          paymentDate,
			RecordedBy:           adminID,
			Notes:                body.Notes,
		})
		if err != nil {
			return err
		}

		var admin models.User
		database.DB.First(&admin, adminID)
		if err := audit.WriteLog(audit.LogOptions{
			UserID:      adminID,
			UserName:    admin.Name,
			EntityType:  "payment",
			EntityID:    payment.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Payment recorded for farmer %d: %.2f paid against %.2f owed", payment.FarmerID, payment.AmountPaid, payment.AmountOwed),
			After:       toResponse(*payment),
		}); err != nil {
			log.Printf("Audit log write failed: %v", err)
		}

		return httpx.Created(c, toResponse(*payment))
	}
}

// GET /api/payments/summary
func SummaryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		balances, err := Balances(database.DB)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not compute balances")
		}
		return httpx.OK(c, balances)
	}
}

// GET /api/farmers/payments — a farmer's own balance and ledger.
func FarmerPaymentsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		farmerID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		balance, ledger, err := BalanceFor(database.DB, farmerID)
		if err != nil {
			return err
		}

		rows := make([]PaymentResponse, 0, len(ledger))
		for _, p := range ledger {
			rows = append(rows, toResponse(p))
		}

		return httpx.OK(c, fiber.Map{
			"balance":  balance,
			"payments": rows,
		})
	}
}
