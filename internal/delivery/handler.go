package delivery

import (
	"fmt"
	"log"

	"agrolink-backend/internal/allocation"
	"agrolink-backend/internal/apperr"
	"agrolink-backend/internal/audit"
	"agrolink-backend/internal/auth"
	"agrolink-backend/internal/clock"
	"agrolink-backend/internal/database"
	"agrolink-backend/internal/httpx"
	"agrolink-backend/internal/models"
	"agrolink-backend/internal/performance"

	"github.com/gofiber/fiber/v2"
)

type ConfirmRequest struct {
	Delivered         bool     `json:"delivered"`
	QuantityDelivered *float64 `json:"quantity_delivered"`
	QualityResult     *string  `json:"quality_result"` // PASS, PARTIAL, FAIL
	Notes             string   `json:"notes"`
}

// GET /api/deliveries?status=...&order_id=...&farmer_id=...
func ListDeliveriesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		crit := ListCriteria{}
		if s := c.Query("status"); s != "" {
			status := models.AssignmentStatus(s)
			crit.Status = &status
		}
		if v := c.QueryInt("order_id"); v > 0 {
			id := uint(v)
			crit.OrderID = &id
		}
		if v := c.QueryInt("farmer_id"); v > 0 {
			id := uint(v)
			crit.FarmerID = &id
		}

		rows, err := List(database.DB, crit)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list deliveries")
		}

		resp := make([]allocation.AssignmentResponse, 0, len(rows))
		for _, a := range rows {
			resp = append(resp, allocation.ToAssignmentResponse(a))
		}
		return httpx.OK(c, resp)
	}
}

// POST /api/deliveries/:id/confirm
func ConfirmDeliveryHandler(clk clock.Clock) fiber.Handler {
	return func(c *fiber.Ctx) error {
		adminID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return apperr.BadRequest(apperr.CodeInvalidInput, "Invalid assignment id")
		}

		var body ConfirmRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.BadRequest(apperr.CodeInvalidInput, "Invalid request body")
		}

		in := ConfirmInput{
			Delivered:         body.Delivered,
			QuantityDelivered: body.QuantityDelivered,
			Notes:             body.Notes,
		}
		if body.QualityResult != nil {
			q := models.QualityResult(*body.QualityResult)
			in.QualityResult = &q
		}

		assignment, err := Confirm(database.DB, clk, uint(id), adminID, in)
		if err != nil {
			return err
		}

		// Confirmation is authoritative; scoring is a derived side effect.
		// A recompute failure is logged and the request still succeeds.
		assignmentID := assignment.ID
		if _, err := performance.Recompute(database.DB, assignment.FarmerID, performance.RecomputeOptions{
			Reason:               ScoringReason(assignment),
			DeliveryAssignmentID: &assignmentID,
			CreatedBy:            &adminID,
		}); err != nil {
			log.Printf("Performance recompute failed for farmer %d: %v", assignment.FarmerID, err)
		}

		writeConfirmationAudit(adminID, assignment)

		return httpx.OKMessage(c, allocation.ToAssignmentResponse(*assignment), "Delivery recorded")
	}
}

func writeConfirmationAudit(adminID uint, assignment *models.DeliveryAssignment) {
	var admin models.User
	database.DB.First(&admin, adminID)

	if err := audit.WriteLog(audit.LogOptions{
		UserID:      adminID,
		UserName:    admin.Name,
		EntityType:  "delivery_assignment",
		EntityID:    assignment.ID,
		Action:      models.AuditActionUpdate,
		Description: fmt.Sprintf("Assignment %d confirmed as %s", assignment.ID, assignment.Status),
		After: fiber.Map{
			"status":             assignment.Status,
			"quantity_delivered": assignment.QuantityDelivered,
			"quality_result":     assignment.QualityResult,
		},
	}); err != nil {
		log.Printf("Audit log write failed: %v", err)
	}
}
