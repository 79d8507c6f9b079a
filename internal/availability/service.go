package availability

import (
	"fmt"
	"time"

	"agrolink-backend/internal/apperr"
	"agrolink-backend/internal/clock"
	"agrolink-backend/internal/models"

	"gorm.io/gorm"
)

// Farmers declare supply for a week during that week's Monday-Tuesday
// window; anything after Tuesday is recorded as late.
const submissionWindowDays = 2

type SubmitInput struct {
	FarmerID          uint
	WeekStartDate     time.Time
	ProductType       string
	QuantityAvailable float64
	AvgWeight         *float64
	ReadyDate         time.Time
}

// MondayOf normalizes t to the Monday of its week, at midnight.
func MondayOf(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7 // Monday=0 ... Sunday=6
	d := t.AddDate(0, 0, -offset)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, t.Location())
}

// Submit records one weekly declaration. IsLate is fixed here and never
// recomputed.
func Submit(db *gorm.DB, clk clock.Clock, in SubmitInput) (*models.WeeklyAvailability, error) {
	var farmer models.User
	if err := db.First(&farmer, in.FarmerID).Error; err != nil {
		return nil, apperr.NotFound(apperr.CodeFarmerNotFound, "Farmer not found")
	}
	if !farmer.CanSupply() {
		return nil, apperr.Forbidden(apperr.CodeFarmerNotActive, "Farmer account is not active")
	}

	if in.ProductType == "" {
		return nil, apperr.BadRequest(apperr.CodeInvalidInput, "product_type is required")
	}
	if in.QuantityAvailable <= 0 {
		return nil, apperr.BadRequest(apperr.CodeInvalidQuantity, "quantity_available must be greater than zero")
	}
	if in.AvgWeight != nil && *in.AvgWeight <= 0 {
		return nil, apperr.BadRequest(apperr.CodeInvalidQuantity, "avg_weight must be greater than zero")
	}

	week := MondayOf(in.WeekStartDate)
	weekEnd := week.AddDate(0, 0, 7)

	if in.ReadyDate.Before(week) || !in.ReadyDate.Before(weekEnd) {
		return nil, apperr.BadRequest(apperr.CodeInvalidReadyDate,
			fmt.Sprintf("ready_date must fall within the week starting %s", week.Format("2006-01-02")))
	}

	var count int64
	db.Model(&models.WeeklyAvailability{}).
		Where("farmer_id = ? AND week_start_date = ? AND product_type = ?", in.FarmerID, week, in.ProductType).
		Count(&count)
	if count > 0 {
		return nil, apperr.Conflict(apperr.CodeDuplicateSubmission,
			"Availability for this product and week has already been submitted")
	}

	cutoff := week.AddDate(0, 0, submissionWindowDays)
	isLate := !clk.Now().Before(cutoff)

	row := models.WeeklyAvailability{
		FarmerID:          in.FarmerID,
		WeekStartDate:     week,
		ProductType:       in.ProductType,
		QuantityAvailable: in.QuantityAvailable,
		AvgWeight:         in.AvgWeight,
		ReadyDate:         in.ReadyDate,
		IsLate:            isLate,
	}

	if err := db.Create(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// ListCriteria narrows a farmer's availability listing. Nil fields are
// ignored.
type ListCriteria struct {
	FarmerID uint
	Week     *time.Time
}

func List(db *gorm.DB, crit ListCriteria) ([]models.WeeklyAvailability, error) {
	dbq := db.Model(&models.WeeklyAvailability{}).Where("farmer_id = ?", crit.FarmerID)
	if crit.Week != nil {
		dbq = dbq.Where("week_start_date = ?", MondayOf(*crit.Week))
	}

	var rows []models.WeeklyAvailability
	if err := dbq.Order("week_start_date desc, product_type asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ForWeek returns every farmer's declarations for one week, farmer preloaded.
// The allocation overview feeds on this.
func ForWeek(db *gorm.DB, week time.Time) ([]models.WeeklyAvailability, error) {
	var rows []models.WeeklyAvailability
	err := db.Preload("Farmer").
		Where("week_start_date = ?", MondayOf(week)).
		Order("product_type asc, farmer_id asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
