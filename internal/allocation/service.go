package allocation

import (
	"fmt"

	"agrolink-backend/internal/apperr"
	"agrolink-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AllocationRow struct {
	FarmerID uint
	Quantity float64
}

type Result struct {
	Assignments       []models.DeliveryAssignment
	TotalAssigned     float64
	RemainingQuantity float64
}

// lockOrder takes a FOR UPDATE row lock so two concurrent allocate calls on
// the same order serialize on the order row. sqlite has no FOR UPDATE and is
// single-writer anyway.
func lockOrder(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// Allocate splits an order's quantity across farmer delivery assignments.
// One-shot: an order that already has assignments cannot take a second
// batch. All rows are created in one transaction or none are. Partial
// allocation is legal; the remainder can be topped up via UpdateQuantity.
func Allocate(db *gorm.DB, orderID uint, rows []AllocationRow) (*Result, error) {
	if len(rows) == 0 {
		return nil, apperr.BadRequest(apperr.CodeInvalidQuantity, "At least one allocation row is required")
	}

	var result Result
	err := db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := lockOrder(tx).First(&order, orderID).Error; err != nil {
			return apperr.NotFound(apperr.CodeOrderNotFound, "Order not found")
		}
		if order.Status != models.OrderStatusAllocation {
			return apperr.Conflict(apperr.CodeInvalidOrderStatus,
				fmt.Sprintf("Order in status %s cannot be allocated", order.Status))
		}

		var existing int64
		if err := tx.Model(&models.DeliveryAssignment{}).
			Where("order_id = ?", order.ID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return apperr.Conflict(apperr.CodeAlreadyAllocated,
				"Order already has assignments; adjust them individually instead")
		}

		total := 0.0
		for _, row := range rows {
			if row.Quantity <= 0 {
				return apperr.BadRequest(apperr.CodeInvalidQuantity,
					"Every assigned quantity must be greater than zero")
			}
			total += row.Quantity
		}
		if total > order.Quantity {
			return apperr.BadRequest(apperr.CodeOverAllocation,
				fmt.Sprintf("Assigned total %.2f exceeds order quantity %.2f", total, order.Quantity))
		}

		for _, row := range rows {
			var farmer models.User
			if err := tx.First(&farmer, row.FarmerID).Error; err != nil {
				return apperr.NotFound(apperr.CodeFarmerNotFound,
					fmt.Sprintf("Farmer %d not found", row.FarmerID))
			}
			if !farmer.CanSupply() {
				return apperr.Conflict(apperr.CodeFarmerNotActive,
					fmt.Sprintf("Farmer %d is not eligible for allocation", row.FarmerID))
			}

			assignment := models.DeliveryAssignment{
				OrderID:           order.ID,
				FarmerID:          row.FarmerID,
				AssignedQuantity:  row.Quantity,
				DeliveryDate:      order.DeliveryDate,
				DeliveryAddressID: order.DeliveryAddressID,
				Status:            models.AssignmentStatusPending,
			}
			if err := tx.Create(&assignment).Error; err != nil {
				return err
			}
			result.Assignments = append(result.Assignments, assignment)
		}

		result.TotalAssigned = total
		result.RemainingQuantity = order.Quantity - total
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateQuantity changes a PENDING assignment's quantity, re-validating the
// conservation invariant against the order's other assignments.
func UpdateQuantity(db *gorm.DB, assignmentID uint, quantity float64) (*models.DeliveryAssignment, error) {
	if quantity <= 0 {
		return nil, apperr.BadRequest(apperr.CodeInvalidQuantity, "quantity must be greater than zero")
	}

	var assignment models.DeliveryAssignment
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&assignment, assignmentID).Error; err != nil {
			return apperr.NotFound(apperr.CodeAssignmentNotFound, "Assignment not found")
		}
		if assignment.Status != models.AssignmentStatusPending {
			return apperr.Conflict(apperr.CodeInvalidAssignmentStatus,
				"Confirmed assignments cannot be modified")
		}

		var order models.Order
		if err := lockOrder(tx).First(&order, assignment.OrderID).Error; err != nil {
			return apperr.NotFound(apperr.CodeOrderNotFound, "Order not found")
		}

		var othersTotal float64
		if err := tx.Model(&models.DeliveryAssignment{}).
			Where("order_id = ? AND id <> ?", order.ID, assignment.ID).
			Select("COALESCE(SUM(assigned_quantity), 0)").
			Scan(&othersTotal).Error; err != nil {
			return err
		}
		if othersTotal+quantity > order.Quantity {
			return apperr.BadRequest(apperr.CodeOverAllocation,
				fmt.Sprintf("Assigned total %.2f would exceed order quantity %.2f", othersTotal+quantity, order.Quantity))
		}

		assignment.AssignedQuantity = quantity
		return tx.Save(&assignment).Error
	})
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

// Delete removes a PENDING assignment. Confirmed assignments are
// undeletable.
func Delete(db *gorm.DB, assignmentID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var assignment models.DeliveryAssignment
		if err := tx.First(&assignment, assignmentID).Error; err != nil {
			return apperr.NotFound(apperr.CodeAssignmentNotFound, "Assignment not found")
		}
		if assignment.Status != models.AssignmentStatusPending {
			return apperr.Conflict(apperr.CodeInvalidAssignmentStatus,
				"Confirmed assignments cannot be deleted")
		}
		return tx.Delete(&assignment).Error
	})
}
