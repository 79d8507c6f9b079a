package payments

import (
	"strings"
	"time"

	"agrolink-backend/internal/apperr"
	"agrolink-backend/internal/models"

	"gorm.io/gorm"
)

// UnitPrice is a placeholder until a pricing engine exists. Amount owed for
// a delivered assignment is quantityDelivered * UnitPrice.
const UnitPrice = 2.50

// OwedFor computes the amount owed for a delivered assignment.
func OwedFor(a *models.DeliveryAssignment) float64 {
	if a.QuantityDelivered == nil {
		return 0
	}
	return *a.QuantityDelivered * UnitPrice
}

func statusFor(owed, paid float64) models.PaymentStatus {
	switch {
	case owed > 0 && paid >= owed:
		return models.PaymentPaid
	case paid > 0:
		return models.PaymentPartiallyPaid
	default:
		return models.PaymentNotPaid
	}
}

type RecordInput struct {
	FarmerID             uint
	DeliveryAssignmentID *uint
	AmountOwed           *float64 // nil derives from the assignment
	AmountPaid           float64
	PaymentMethod        string
	PaymentDate          time.Time
	RecordedBy           uint
	Notes                string
}

// Record appends one row to the payment ledger. Rows are never updated;
// balances are recomputed from the full ledger at read time.
func Record(db *gorm.DB, in RecordInput) (*models.Payment, error) {
	var farmer models.User
	if err := db.First(&farmer, in.FarmerID).Error; err != nil || farmer.Role != models.RoleFarmer {
		return nil, apperr.NotFound(apperr.CodeFarmerNotFound, "Farmer not found")
	}

	if in.AmountPaid < 0 {
		return nil, apperr.BadRequest(apperr.CodeInvalidInput, "amount_paid cannot be negative")
	}

	owed := 0.0
	if in.DeliveryAssignmentID != nil {
		var assignment models.DeliveryAssignment
		if err := db.Where("id = ? AND farmer_id = ?", *in.DeliveryAssignmentID, in.FarmerID).
			First(&assignment).Error; err != nil {
			return nil, apperr.NotFound(apperr.CodeAssignmentNotFound, "Assignment not found for this farmer")
		}
		if assignment.Status != models.AssignmentStatusDelivered {
			return nil, apperr.Conflict(apperr.CodeInvalidAssignmentStatus,
				"Payments can only be recorded against delivered assignments")
		}
		owed = OwedFor(&assignment)
	}
	if in.AmountOwed != nil {
		if *in.AmountOwed < 0 {
			return nil, apperr.BadRequest(apperr.CodeInvalidInput, "amount_owed cannot be negative")
		}
		owed = *in.AmountOwed
	}
	if in.DeliveryAssignmentID == nil && in.AmountOwed == nil && in.AmountPaid == 0 {
		return nil, apperr.BadRequest(apperr.CodeInvalidInput,
			"A payment needs an assignment, an amount owed or an amount paid")
	}

	payment := models.Payment{
		FarmerID:             in.FarmerID,
		DeliveryAssignmentID: in.DeliveryAssignmentID,
		AmountOwed:           owed,
		AmountPaid:           in.AmountPaid,
		PaymentStatus:        statusFor(owed, in.AmountPaid),
		PaymentMethod:        strings.TrimSpace(in.PaymentMethod),
		PaymentDate:          in.PaymentDate,
		RecordedBy:           in.RecordedBy,
		Notes:                strings.TrimSpace(in.Notes),
	}

	if err := db.Create(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

type FarmerBalance struct {
	FarmerID    uint                 `json:"farmer_id"`
	FarmerName  string               `json:"farmer_name"`
	TotalOwed   float64              `json:"total_owed"`
	TotalPaid   float64              `json:"total_paid"`
	Outstanding float64              `json:"outstanding"`
	Status      models.PaymentStatus `json:"status"`
}

// Balances computes every farmer's outstanding amount from the ledger.
func Balances(db *gorm.DB) ([]FarmerBalance, error) {
	type row struct {
		FarmerID  uint
		TotalOwed float64
		TotalPaid float64
	}
	var rows []row
	if err := db.Model(&models.Payment{}).
		Select("farmer_id, SUM(amount_owed) AS total_owed, SUM(amount_paid) AS total_paid").
		Group("farmer_id").
		Order("farmer_id asc").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	balances := make([]FarmerBalance, 0, len(rows))
	for _, r := range rows {
		var farmer models.User
		db.First(&farmer, r.FarmerID)
		balances = append(balances, FarmerBalance{
			FarmerID:    r.FarmerID,
			FarmerName:  farmer.Name,
			TotalOwed:   r.TotalOwed,
			TotalPaid:   r.TotalPaid,
			Outstanding: r.TotalOwed - r.TotalPaid,
			Status:      statusFor(r.TotalOwed, r.TotalPaid),
		})
	}
	return balances, nil
}

// BalanceFor computes one farmer's balance plus their ledger rows.
func BalanceFor(db *gorm.DB, farmerID uint) (*FarmerBalance, []models.Payment, error) {
	var farmer models.User
	if err := db.First(&farmer, farmerID).Error; err != nil {
		return nil, nil, apperr.NotFound(apperr.CodeFarmerNotFound, "Farmer not found")
	}

	var ledger []models.Payment
	if err := db.Where("farmer_id = ?", farmerID).
		Order("payment_date desc, id desc").
		Find(&ledger).Error; err != nil {
		return nil, nil, err
	}

	balance := FarmerBalance{FarmerID: farmerID, FarmerName: farmer.Name}
	for _, p := range ledger {
		balance.TotalOwed += p.AmountOwed
		balance.TotalPaid += p.AmountPaid
	}
	balance.Outstanding = balance.TotalOwed - balance.TotalPaid
	balance.Status = statusFor(balance.TotalOwed, balance.TotalPaid)

	return &balance, ledger, nil
}
