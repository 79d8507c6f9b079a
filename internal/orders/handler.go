package orders

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

type CreateOrderRequest struct {
	ProductType       string  `json:"product_type"`
	Quantity          float64 `json:"quantity"`
	OrderType         string  `json:"order_type"` // ONE_TIME or STANDING
	DeliveryDate      string  `json:"delivery_date"`
	DeliveryAddressID uint    `json:"delivery_address_id"`
	Notes             string  `json:"notes"`
}

type RejectOrderRequest struct {
	Reason string `json:"reason"`
}

type OrderResponse struct {
	ID                uint    `json:"id"`
	BuyerID           uint    `json:"buyer_id"`
	BuyerName         string  `json:"buyer_name,omitempty"`
	ProductType       string  `json:"product_type"`
	Quantity          float64 `json:"quantity"`
	OrderType         string  `json:"order_type"`
	DeliveryDate      string  `json:"delivery_date"`
	DeliveryAddressID uint    `json:"delivery_address_id"`
	Status            string  `json:"status"`
	ApprovedAt        *string `json:"approved_at,omitempty"`
	RejectionReason   string  `json:"rejection_reason,omitempty"`
	Notes             string  `json:"notes,omitempty"`
	CreatedAt         string  `json:"created_at"`
}

func toResponse(o models.Order) OrderResponse {
	resp := OrderResponse{
		ID:                o.ID,
		BuyerID:           o.BuyerID,
		BuyerName:         o.Buyer.Name,
		ProductType:       o.ProductType,
		Quantity:          o.Quantity,
		OrderType:         string(o.OrderType),
		DeliveryDate:      o.DeliveryDate.Format("2006-01-02"),
		DeliveryAddressID: o.DeliveryAddressID,
		Status:            string(o.Status),
		RejectionReason:   o.RejectionReason,
		Notes:             o.Notes,
		CreatedAt:         o.CreatedAt.Format(time.RFC3339),
	}
	if o.ApprovedAt != nil {
		s := o.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &s
	}
	return resp
}

// POST /api/orders
func CreateOrderHandler(clk clock.Clock) fiber.Handler {
	return func(c *fiber.Ctx) error {
		buyerID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var body CreateOrderRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.BadRequest(apperr.CodeInvalidInput, "Invalid request body")
		}

		deliveryDate, err := time.Parse("2006-01-02", body.DeliveryDate)
		if err != nil {
			return apperr.BadRequest(apperr.CodeInvalidDeliveryDate, "delivery_date must be 'YYYY-MM-DD'")
		}

		order, err := Create(database.DB, clk, CreateInput{
			BuyerID:           buyerID,
			ProductType:       body.ProductType,
			Quantity:          body.Quantity,
			OrderType:         models.OrderType(body.OrderType),
			DeliveryDate:      deliveryDate,
			DeliveryAddressID: body.DeliveryAddressID,
			Notes:             body.Notes,
		})
		if err != nil {
			return err
		}

		return httpx.Created(c, toResponse(*order))
	}
}

// GET /api/orders?status=...  (buyers see their own, admins see everything)
func ListOrdersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}
		role, err := auth.CurrentUserRole(c)
		if err != nil {
			return err
		}

		crit := ListCriteria{}
		if role == models.RoleBuyer {
			crit.BuyerID = &userID
		}
		if s := c.Query("status"); s != "" {
			status := models.OrderStatus(s)
			crit.Status = &status
		}
		if role == models.RoleAdmin {
			if b := c.QueryInt("buyer_id"); b > 0 {
				buyerID := uint(b)
				crit.BuyerID = &buyerID
			}
		}

		rows, err := List(database.DB, crit)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list orders")
		}

		resp := make([]OrderResponse, 0, len(rows))
		for _, o := range rows {
			resp = append(resp, toResponse(o))
		}
		return httpx.OK(c, resp)
	}
}

// GET /api/orders/:id
func GetOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}
		role, err := auth.CurrentUserRole(c)
		if err != nil {
			return err
		}

		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return apperr.BadRequest(apperr.CodeInvalidInput, "Invalid order id")
		}

		order, err := Get(database.DB, uint(id))
		if err != nil {
			return err
		}
		if role == models.RoleBuyer && order.BuyerID != userID {
			return apperr.NotFound(apperr.CodeOrderNotFound, "Order not found")
		}

		return httpx.OK(c, toResponse(*order))
	}
}

// POST /api/orders/:id/approve
func ApproveOrderHandler(clk clock.Clock) fiber.Handler {
	return func(c *fiber.Ctx) error {
		adminID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return apperr.BadRequest(apperr.CodeInvalidInput, "Invalid order id")
		}

		order, err := Approve(database.DB, clk, uint(id), adminID)
		if err != nil {
			return err
		}

		writeOrderAudit(c, adminID, order, models.AuditActionUpdate,
			fmt.Sprintf("Order %d approved for allocation", order.ID))

		return httpx.OKMessage(c, toResponse(*order), "Order approved")
	}
}

// POST /api/orders/:id/reject
func RejectOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		adminID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return apperr.BadRequest(apperr.CodeInvalidInput, "Invalid order id")
		}

		var body RejectOrderRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.BadRequest(apperr.CodeInvalidInput, "Invalid request body")
		}

		order, err := Reject(database.DB, uint(id), body.Reason)
		if err != nil {
			return err
		}

		writeOrderAudit(c, adminID, order, models.AuditActionUpdate,
			fmt.Sprintf("Order %d rejected: %s", order.ID, order.RejectionReason))

		return httpx.OKMessage(c, toResponse(*order), "Order rejected")
	}
}

func writeOrderAudit(c *fiber.Ctx, adminID uint, order *models.Order, action models.AuditAction, desc string) {
	var admin models.User
	database.DB.First(&admin, adminID)

	if err := audit.WriteLog(audit.LogOptions{
		UserID:      adminID,
		UserName:    admin.Name,
		EntityType:  "order",
		EntityID:    order.ID,
		Action:      action,
		Description: desc,
		After: fiber.Map{
			"status":           order.Status,
			"rejection_reason": order.RejectionReason,
		},
	}); err != nil {
		log.Printf("Audit log write failed: %v", err)
	}
}
