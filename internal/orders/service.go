package orders

import (
	"fmt"
	"strings"
	"time"

	"agrolink-backend/internal/apperr"
	"agrolink-backend/internal/clock"
	"agrolink-backend/internal/models"

	"gorm.io/gorm"
)

type CreateInput struct {
	BuyerID           uint
	ProductType       string
	Quantity          float64
	OrderType         models.OrderType
	DeliveryDate      time.Time
	DeliveryAddressID uint
	Notes             string
}

// Create records a buyer demand in status PENDING.
func Create(db *gorm.DB, clk clock.Clock, in CreateInput) (*models.Order, error) {
	var buyer models.User
	if err := db.First(&buyer, in.BuyerID).Error; err != nil {
		return nil, apperr.NotFound(apperr.CodeUserNotFound, "Buyer not found")
	}
	if buyer.Status != models.StatusActive {
		return nil, apperr.Forbidden(apperr.CodeBuyerNotActive, "Buyer account is not active")
	}

	if strings.TrimSpace(in.ProductType) == "" {
		return nil, apperr.BadRequest(apperr.CodeInvalidInput, "product_type is required")
	}
	if in.Quantity <= 0 {
		return nil, apperr.BadRequest(apperr.CodeInvalidQuantity, "quantity must be greater than zero")
	}
	if in.OrderType != models.OrderTypeOneTime && in.OrderType != models.OrderTypeStanding {
		return nil, apperr.BadRequest(apperr.CodeInvalidInput, "order_type must be ONE_TIME or STANDING")
	}
	if !in.DeliveryDate.After(clk.Now()) {
		return nil, apperr.BadRequest(apperr.CodeInvalidDeliveryDate, "delivery_date must be in the future")
	}

	var address models.DeliveryAddress
	if err := db.Where("id = ? AND buyer_id = ?", in.DeliveryAddressID, in.BuyerID).
		First(&address).Error; err != nil {
		return nil, apperr.NotFound(apperr.CodeAddressNotFound, "Delivery address not found")
	}

	order := models.Order{
		BuyerID:           in.BuyerID,
		ProductType:       strings.TrimSpace(in.ProductType),
		Quantity:          in.Quantity,
		OrderType:         in.OrderType,
		DeliveryDate:      in.DeliveryDate,
		DeliveryAddressID: in.DeliveryAddressID,
		Status:            models.OrderStatusPending,
		Notes:             strings.TrimSpace(in.Notes),
	}

	if err := db.Create(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// ListCriteria narrows order listings. Nil fields are ignored.
type ListCriteria struct {
	BuyerID *uint
	Status  *models.OrderStatus
}

func List(db *gorm.DB, crit ListCriteria) ([]models.Order, error) {
	dbq := db.Model(&models.Order{}).Preload("Buyer").Preload("DeliveryAddress")
	if crit.BuyerID != nil {
		dbq = dbq.Where("buyer_id = ?", *crit.BuyerID)
	}
	if crit.Status != nil {
		dbq = dbq.Where("status = ?", *crit.Status)
	}

	var rows []models.Order
	if err := dbq.Order("created_at desc, id desc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func Get(db *gorm.DB, id uint) (*models.Order, error) {
	var order models.Order
	if err := db.Preload("Buyer").Preload("DeliveryAddress").First(&order, id).Error; err != nil {
		return nil, apperr.NotFound(apperr.CodeOrderNotFound, "Order not found")
	}
	return &order, nil
}

// Approve moves an order PENDING -> ALLOCATION. The APPROVED status value is
// never produced; approval goes straight into allocation.
func Approve(db *gorm.DB, clk clock.Clock, orderID, adminID uint) (*models.Order, error) {
	var order models.Order
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, orderID).Error; err != nil {
			return apperr.NotFound(apperr.CodeOrderNotFound, "Order not found")
		}
		if order.Status != models.OrderStatusPending {
			return apperr.Conflict(apperr.CodeInvalidOrderStatus,
				fmt.Sprintf("Order cannot be approved from status %s", order.Status))
		}

		var buyer models.User
		if err := tx.First(&buyer, order.BuyerID).Error; err != nil {
			return apperr.NotFound(apperr.CodeUserNotFound, "Buyer not found")
		}
		if buyer.Status == models.StatusSuspended {
			return apperr.Conflict(apperr.CodeBuyerSuspended, "Buyer account is suspended")
		}

		now := clk.Now()
		order.Status = models.OrderStatusAllocation
		order.ApprovedAt = &now
		order.ApprovedBy = &adminID
		return tx.Save(&order).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Reject moves an order PENDING -> REJECTED with a mandatory reason.
func Reject(db *gorm.DB, orderID uint, reason string) (*models.Order, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperr.BadRequest(apperr.CodeInvalidInput, "A rejection reason is required")
	}

	var order models.Order
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, orderID).Error; err != nil {
			return apperr.NotFound(apperr.CodeOrderNotFound, "Order not found")
		}
		if order.Status != models.OrderStatusPending {
			return apperr.Conflict(apperr.CodeInvalidOrderStatus,
				fmt.Sprintf("Order cannot be rejected from status %s", order.Status))
		}

		order.Status = models.OrderStatusRejected
		order.RejectionReason = reason
		return tx.Save(&order).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}
