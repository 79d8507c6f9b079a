package delivery

import (
	"fmt"

	"agrolink-backend/internal/apperr"
	"agrolink-backend/internal/clock"
	"agrolink-backend/internal/models"

	"gorm.io/gorm"
)

type ConfirmInput struct {
	Delivered         bool
	QuantityDelivered *float64
	QualityResult     *models.QualityResult
	Notes             string
}

// Confirm records the outcome of one assignment and rolls the order up in
// the same transaction: when no assignment of the order remains PENDING the
// order becomes DELIVERED, even if every assignment failed. The assignment
// is immutable afterwards.
func Confirm(db *gorm.DB, clk clock.Clock, assignmentID, adminID uint, in ConfirmInput) (*models.DeliveryAssignment, error) {
	if in.QualityResult != nil {
		switch *in.QualityResult {
		case models.QualityPass, models.QualityPartial, models.QualityFail:
		default:
			return nil, apperr.BadRequest(apperr.CodeInvalidInput,
				"quality_result must be PASS, PARTIAL or FAIL")
		}
	}

	var assignment models.DeliveryAssignment
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&assignment, assignmentID).Error; err != nil {
			return apperr.NotFound(apperr.CodeAssignmentNotFound, "Assignment not found")
		}
		if assignment.Status != models.AssignmentStatusPending {
			return apperr.Conflict(apperr.CodeInvalidAssignmentStatus,
				fmt.Sprintf("Assignment has already been confirmed as %s", assignment.Status))
		}

		now := clk.Now()
		assignment.ConfirmedBy = &adminID
		assignment.ConfirmedAt = &now
		assignment.ConfirmationNotes = in.Notes

		if in.Delivered {
			qty := assignment.AssignedQuantity
			if in.QuantityDelivered != nil {
				if *in.QuantityDelivered < 0 || *in.QuantityDelivered > assignment.AssignedQuantity {
					return apperr.BadRequest(apperr.CodeInvalidQuantity,
						fmt.Sprintf("quantity_delivered must be between 0 and %.2f", assignment.AssignedQuantity))
				}
				qty = *in.QuantityDelivered
			}
			assignment.Status = models.AssignmentStatusDelivered
			assignment.QuantityDelivered = &qty
			assignment.QualityResult = in.QualityResult
		} else {
			assignment.Status = models.AssignmentStatusFailed
			assignment.QuantityDelivered = nil
			assignment.QualityResult = nil
		}

		if err := tx.Save(&assignment).Error; err != nil {
			return err
		}

		// Roll-up: order is done once every assignment has left PENDING.
		var pending int64
		if err := tx.Model(&models.DeliveryAssignment{}).
			Where("order_id = ? AND status = ?", assignment.OrderID, models.AssignmentStatusPending).
			Count(&pending).Error; err != nil {
			return err
		}
		if pending == 0 {
			if err := tx.Model(&models.Order{}).
				Where("id = ?", assignment.OrderID).
				Update("status", models.OrderStatusDelivered).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

// ScoringReason is the reason string attached to the performance history
// entry a confirmation triggers.
func ScoringReason(a *models.DeliveryAssignment) string {
	if a.Status == models.AssignmentStatusFailed {
		return "Delivery failed"
	}
	if a.QualityResult != nil {
		return fmt.Sprintf("Delivery confirmed: %s", *a.QualityResult)
	}
	return "Delivery confirmed"
}

// ListCriteria narrows assignment listings. Nil fields are ignored.
type ListCriteria struct {
	Status   *models.AssignmentStatus
	OrderID  *uint
	FarmerID *uint
}

func List(db *gorm.DB, crit ListCriteria) ([]models.DeliveryAssignment, error) {
	dbq := db.Model(&models.DeliveryAssignment{}).Preload("Farmer").Preload("Order")
	if crit.Status != nil {
		dbq = dbq.Where("status = ?", *crit.Status)
	}
	if crit.OrderID != nil {
		dbq = dbq.Where("order_id = ?", *crit.OrderID)
	}
	if crit.FarmerID != nil {
		dbq = dbq.Where("farmer_id = ?", *crit.FarmerID)
	}

	var rows []models.DeliveryAssignment
	if err := dbq.Order("delivery_date asc, id asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
