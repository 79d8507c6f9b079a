package performance

import (
	"math"
	"time"

	"agrolink-backend/internal/apperr"
	"agrolink-backend/internal/clock"
	"agrolink-backend/internal/models"

	"gorm.io/gorm"
)

// Score weights. The 50 base is a floor: a farmer with zero history scores
// exactly 50 and lands in STANDARD, not PROBATIONARY.
const (
	baseScore          = 50
	weightOnTime       = 0.30
	weightQuantity     = 0.30
	weightQuality      = 0.25
	weightAvailability = 0.15

	// Submissions considered for the availability component.
	availabilityLookback = 8

	// A delivery confirmed within this much of its delivery date counts
	// as on time.
	onTimeGrace = 24 * time.Hour

	tierPreferredMin = 85
	tierStandardMin  = 50
)

type Breakdown struct {
	OnTimeDelivery         int `json:"on_time_delivery_score"`
	QuantityAccuracy       int `json:"quantity_accuracy_score"`
	Quality                int `json:"quality_score"`
	AvailabilitySubmission int `json:"availability_submission_score"`
}

type Snapshot struct {
	Score     int                    `json:"score"`
	Tier      models.PerformanceTier `json:"tier"`
	Breakdown Breakdown              `json:"breakdown"`
}

type RecomputeOptions struct {
	Reason               string
	DeliveryAssignmentID *uint
	CreatedBy            *uint
}

func TierForScore(score int) models.PerformanceTier {
	switch {
	case score >= tierPreferredMin:
		return models.TierPreferred
	case score >= tierStandardMin:
		return models.TierStandard
	default:
		return models.TierProbationary
	}
}

func roundPct(v float64) int {
	return int(math.Round(v))
}

// computeBreakdown derives the four component scores from confirmed
// assignments and the most recent availability submissions. Pure function of
// its inputs.
func computeBreakdown(confirmed []models.DeliveryAssignment, recent []models.WeeklyAvailability) Breakdown {
	var b Breakdown

	// On-time: delivered within grace of the delivery date, over ALL
	// confirmed assignments. A failed delivery counts against the farmer.
	if len(confirmed) > 0 {
		onTime := 0
		for _, a := range confirmed {
			if a.Status == models.AssignmentStatusDelivered && a.ConfirmedAt != nil &&
				!a.ConfirmedAt.After(a.DeliveryDate.Add(onTimeGrace)) {
				onTime++
			}
		}
		b.OnTimeDelivery = roundPct(100 * float64(onTime) / float64(len(confirmed)))
	}

	// Quantity accuracy: delivered/assigned capped at 100, averaged over
	// delivered assignments that recorded a quantity.
	sum, n := 0.0, 0
	for _, a := range confirmed {
		if a.Status == models.AssignmentStatusDelivered && a.QuantityDelivered != nil && a.AssignedQuantity > 0 {
			sum += math.Min(100, 100*(*a.QuantityDelivered)/a.AssignedQuantity)
			n++
		}
	}
	if n > 0 {
		b.QuantityAccuracy = roundPct(sum / float64(n))
	}

	// Quality: PASS=100, PARTIAL=50, FAIL=0 averaged over delivered
	// assignments with a recorded result.
	sum, n = 0.0, 0
	for _, a := range confirmed {
		if a.Status == models.AssignmentStatusDelivered && a.QualityResult != nil {
			switch *a.QualityResult {
			case models.QualityPass:
				sum += 100
			case models.QualityPartial:
				sum += 50
			}
			n++
		}
	}
	if n > 0 {
		b.Quality = roundPct(sum / float64(n))
	}

	// Availability: on-time fraction of the most recent submissions.
	if len(recent) > 0 {
		onTime := 0
		for _, row := range recent {
			if !row.IsLate {
				onTime++
			}
		}
		b.AvailabilitySubmission = roundPct(100 * float64(onTime) / float64(len(recent)))
	}

	return b
}

func aggregate(b Breakdown) int {
	score := roundPct(baseScore +
		weightOnTime*float64(b.OnTimeDelivery) +
		weightQuantity*float64(b.QuantityAccuracy) +
		weightQuality*float64(b.Quality) +
		weightAvailability*float64(b.AvailabilitySubmission))
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}

// Recompute rebuilds a farmer's score from confirmed deliveries and recent
// availability submissions. Idempotent: re-running with unchanged inputs
// writes no history row.
func Recompute(db *gorm.DB, farmerID uint, opts RecomputeOptions) (*Snapshot, error) {
	var farmer models.User
	if err := db.First(&farmer, farmerID).Error; err != nil {
		return nil, apperr.NotFound(apperr.CodeFarmerNotFound, "Farmer not found")
	}

	var confirmed []models.DeliveryAssignment
	if err := db.Where("farmer_id = ? AND status IN ? AND confirmed_at IS NOT NULL",
		farmerID, []models.AssignmentStatus{models.AssignmentStatusDelivered, models.AssignmentStatusFailed}).
		Order("confirmed_at asc, id asc").
		Find(&confirmed).Error; err != nil {
		return nil, err
	}

	var recent []models.WeeklyAvailability
	if err := db.Where("farmer_id = ?", farmerID).
		Order("week_start_date desc, id desc").
		Limit(availabilityLookback).
		Find(&recent).Error; err != nil {
		return nil, err
	}

	breakdown := computeBreakdown(confirmed, recent)
	score := aggregate(breakdown)
	tier := TierForScore(score)

	err := db.Transaction(func(tx *gorm.DB) error {
		// Previous stored value; a farmer with no row yet compares against
		// the 50/STANDARD baseline so the very first recompute of a blank
		// history writes nothing.
		prevScore, prevTier := baseScore, models.TierStandard
		var current models.FarmerPerformance
		found := tx.Where("farmer_id = ?", farmerID).First(&current).Error == nil
		if found {
			prevScore, prevTier = current.Score, current.Tier
		}

		if found {
			current.Score = score
			current.Tier = tier
			if err := tx.Save(&current).Error; err != nil {
				return err
			}
		} else {
			current = models.FarmerPerformance{FarmerID: farmerID, Score: score, Tier: tier}
			if err := tx.Create(&current).Error; err != nil {
				return err
			}
		}

		var stored models.FarmerPerformanceBreakdown
		if tx.Where("farmer_id = ?", farmerID).First(&stored).Error == nil {
			stored.OnTimeDeliveryScore = breakdown.OnTimeDelivery
			stored.QuantityAccuracyScore = breakdown.QuantityAccuracy
			stored.QualityScore = breakdown.Quality
			stored.AvailabilitySubmissionScore = breakdown.AvailabilitySubmission
			if err := tx.Save(&stored).Error; err != nil {
				return err
			}
		} else {
			stored = models.FarmerPerformanceBreakdown{
				FarmerID:                    farmerID,
				OnTimeDeliveryScore:         breakdown.OnTimeDelivery,
				QuantityAccuracyScore:       breakdown.QuantityAccuracy,
				QualityScore:                breakdown.Quality,
				AvailabilitySubmissionScore: breakdown.AvailabilitySubmission,
			}
			if err := tx.Create(&stored).Error; err != nil {
				return err
			}
		}

		if score != prevScore || tier != prevTier {
			history := models.FarmerPerformanceHistory{
				FarmerID:             farmerID,
				PreviousScore:        prevScore,
				NewScore:             score,
				PreviousTier:         prevTier,
				NewTier:              tier,
				Reason:               opts.Reason,
				DeliveryAssignmentID: opts.DeliveryAssignmentID,
				CreatedBy:            opts.CreatedBy,
			}
			if err := tx.Create(&history).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &Snapshot{Score: score, Tier: tier, Breakdown: breakdown}, nil
}

// Current returns the stored snapshot, computing a baseline one on first
// read.
func Current(db *gorm.DB, farmerID uint) (*Snapshot, error) {
	var perf models.FarmerPerformance
	if db.Where("farmer_id = ?", farmerID).First(&perf).Error != nil {
		return Recompute(db, farmerID, RecomputeOptions{Reason: "Initial score"})
	}

	var breakdown models.FarmerPerformanceBreakdown
	if err := db.Where("farmer_id = ?", farmerID).First(&breakdown).Error; err != nil {
		return Recompute(db, farmerID, RecomputeOptions{Reason: "Initial score"})
	}

	return &Snapshot{
		Score: perf.Score,
		Tier:  perf.Tier,
		Breakdown: Breakdown{
			OnTimeDelivery:         breakdown.OnTimeDeliveryScore,
			QuantityAccuracy:       breakdown.QuantityAccuracyScore,
			Quality:                breakdown.QualityScore,
			AvailabilitySubmission: breakdown.AvailabilitySubmissionScore,
		},
	}, nil
}

func History(db *gorm.DB, farmerID uint) ([]models.FarmerPerformanceHistory, error) {
	var rows []models.FarmerPerformanceHistory
	if err := db.Where("farmer_id = ?", farmerID).
		Order("created_at desc, id desc").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

type TrendPoint struct {
	Date  time.Time              `json:"date"`
	Score int                    `json:"score"`
	Tier  models.PerformanceTier `json:"tier"`
}

// Trend merges history rows within the lookback window with the current
// snapshot, ascending by time. Charting input, not a source of truth.
func Trend(db *gorm.DB, clk clock.Clock, farmerID uint, days int) ([]TrendPoint, error) {
	if days <= 0 {
		days = 30
	}
	since := clk.Now().AddDate(0, 0, -days)

	var history []models.FarmerPerformanceHistory
	if err := db.Where("farmer_id = ? AND created_at >= ?", farmerID, since).
		Order("created_at asc, id asc").
		Find(&history).Error; err != nil {
		return nil, err
	}

	points := make([]TrendPoint, 0, len(history)+1)
	for _, h := range history {
		points = append(points, TrendPoint{Date: h.CreatedAt, Score: h.NewScore, Tier: h.NewTier})
	}

	snapshot, err := Current(db, farmerID)
	if err != nil {
		return nil, err
	}
	points = append(points, TrendPoint{Date: clk.Now(), Score: snapshot.Score, Tier: snapshot.Tier})

	return points, nil
}
