package allocation

import (
	"fmt"
	"log"
	"time"

	"agrolink-backend/internal/apperr"
	"agrolink-backend/internal/audit"
	"agrolink-backend/internal/auth"
	"agrolink-backend/internal/availability"
	"agrolink-backend/internal/clock"
	"agrolink-backend/internal/database"
	"agrolink-backend/internal/httpx"
	"agrolink-backend/internal/models"
	"agrolink-backend/internal/orders"

	"github.com/gofiber/fiber/v2"
)

type AllocateRequest struct {
	OrderID     uint `json:"order_id"`
	Allocations []struct {
		FarmerID uint    `json:"farmer_id"`
		Quantity float64 `json:"quantity"`
	} `json:"allocations"`
}

type UpdateAssignmentRequest struct {
	Quantity float64 `json:"quantity"`
}

type AssignmentResponse struct {
	ID                uint     `json:"id"`
	OrderID           uint     `json:"order_id"`
	FarmerID          uint     `json:"farmer_id"`
	FarmerName        string   `json:"farmer_name,omitempty"`
	AssignedQuantity  float64  `json:"assigned_quantity"`
	DeliveryDate      string   `json:"delivery_date"`
	DeliveryAddressID uint     `json:"delivery_address_id"`
	Status            string   `json:"status"`
	QuantityDelivered *float64 `json:"quantity_delivered,omitempty"`
	QualityResult     *string  `json:"quality_result,omitempty"`
	ConfirmationNotes string   `json:"confirmation_notes,omitempty"`
	ConfirmedAt       *string  `json:"confirmed_at,omitempty"`
}

func ToAssignmentResponse(a models.DeliveryAssignment) AssignmentResponse {
	resp := AssignmentResponse{
		ID:                a.ID,
		OrderID:           a.OrderID,
		FarmerID:          a.FarmerID,
		FarmerName:        a.Farmer.Name,
		AssignedQuantity:  a.AssignedQuantity,
		DeliveryDate:      a.DeliveryDate.Format("2006-01-02"),
		DeliveryAddressID: a.DeliveryAddressID,
		Status:            string(a.Status),
		QuantityDelivered: a.QuantityDelivered,
		ConfirmationNotes: a.ConfirmationNotes,
	}
	if a.QualityResult != nil {
		s := string(*a.QualityResult)
		resp.QualityResult = &s
	}
	if a.ConfirmedAt != nil {
		s := a.ConfirmedAt.Format(time.RFC3339)
		resp.ConfirmedAt = &s
	}
	return resp
}

// GET /api/allocations — orders waiting for allocation plus this week's
// declared supply.
func OverviewHandler(clk clock.Clock) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status := models.OrderStatusAllocation
		pending, err := orders.List(database.DB, orders.ListCriteria{Status: &status})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list orders")
		}

		week, err := availability.ForWeek(database.DB, clk.Now())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list availability")
		}

		supply := make([]fiber.Map, 0, len(week))
		for _, row := range week {
			supply = append(supply, fiber.Map{
				"farmer_id":          row.FarmerID,
				"farmer_name":        row.Farmer.Name,
				"farmer_status":      row.Farmer.Status,
				"product_type":       row.ProductType,
				"quantity_available": row.QuantityAvailable,
				"ready_date":         row.ReadyDate.Format("2006-01-02"),
				"is_late":            row.IsLate,
			})
		}

		return httpx.OK(c, fiber.Map{
			"pending_orders":      pending,
			"weekly_availability": supply,
		})
	}
}

// POST /api/allocations
func AllocateHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		adminID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var body AllocateRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.BadRequest(apperr.CodeInvalidInput, "Invalid request body")
		}
		if body.OrderID == 0 {
			return apperr.BadRequest(apperr.CodeInvalidInput, "order_id is required")
		}

		rows := make([]AllocationRow, 0, len(body.Allocations))
		for _, a := range body.Allocations {
			rows = append(rows, AllocationRow{FarmerID: a.FarmerID, Quantity: a.Quantity})
		}

		result, err := Allocate(database.DB, body.OrderID, rows)
		if err != nil {
			return err
		}

		writeAllocationAudit(adminID, body.OrderID, models.AuditActionCreate,
			fmt.Sprintf("Allocated %.2f across %d farmers for order %d",
				result.TotalAssigned, len(result.Assignments), body.OrderID),
			result)

		assignments := make([]AssignmentResponse, 0, len(result.Assignments))
		for _, a := range result.Assignments {
			assignments = append(assignments, ToAssignmentResponse(a))
		}

		return httpx.Created(c, fiber.Map{
			"assignments":        assignments,
			"total_assigned":     result.TotalAssigned,
			"remaining_quantity": result.RemainingQuantity,
		})
	}
}

// PUT /api/allocations/:id
func UpdateAssignmentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		adminID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return apperr.BadRequest(apperr.CodeInvalidInput, "Invalid assignment id")
		}

		var body UpdateAssignmentRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.BadRequest(apperr.CodeInvalidInput, "Invalid request body")
		}

		assignment, err := UpdateQuantity(database.DB, uint(id), body.Quantity)
		if err != nil {
			return err
		}

		writeAllocationAudit(adminID, assignment.OrderID, models.AuditActionUpdate,
			fmt.Sprintf("Assignment %d quantity changed to %.2f", assignment.ID, assignment.AssignedQuantity),
			assignment)

		return httpx.OKMessage(c, ToAssignmentResponse(*assignment), "Assignment updated")
	}
}

// DELETE /api/allocations/:id
func DeleteAssignmentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		adminID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return apperr.BadRequest(apperr.CodeInvalidInput, "Invalid assignment id")
		}

		if err := Delete(database.DB, uint(id)); err != nil {
			return err
		}

		writeAllocationAudit(adminID, uint(id), models.AuditActionDelete,
			fmt.Sprintf("Assignment %d removed", id), nil)

		return c.SendStatus(fiber.StatusNoContent)
	}
}

func writeAllocationAudit(adminID, entityID uint, action models.AuditAction, desc string, after any) {
	var admin models.User
	database.DB.First(&admin, adminID)

	if err := audit.WriteLog(audit.LogOptions{
		UserID:      adminID,
		UserName:    admin.Name,
		EntityType:  "delivery_assignment",
		EntityID:    entityID,
		Action:      action,
		Description: desc,
		After:       after,
	}); err != nil {
		log.Printf("Audit log write failed: %v", err)
	}
}
