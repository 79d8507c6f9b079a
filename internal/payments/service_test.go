package payments

import (
	"testing"
	"time"

	"agrolink-backend/internal/apperr"
	"agrolink-backend/internal/models"
	"agrolink-backend/internal/testutil"

	"gorm.io/gorm"
)

var payDate = time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)

func makeAssignment(t *testing.T, db *gorm.DB, farmerID uint, status models.AssignmentStatus, delivered *float64) *models.DeliveryAssignment {
	t.Helper()

	buyer := testutil.CreateUser(t, db, "buyer-"+t.Name(), models.RoleBuyer, models.StatusActive)
	addr := testutil.CreateAddress(t, db, buyer.ID)

	order := models.Order{
		BuyerID:           buyer.ID,
		ProductType:       "Eggs",
		Quantity:          100,
		OrderType:         models.OrderTypeOneTime,
		DeliveryDate:      payDate.AddDate(0, 0, -3),
		DeliveryAddressID: addr.ID,
		Status:            models.OrderStatusDelivered,
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("create order: %v", err)
	}

	a := models.DeliveryAssignment{
		OrderID:           order.ID,
		FarmerID:          farmerID,
		AssignedQuantity:  60,
		DeliveryDate:      order.DeliveryDate,
		DeliveryAddressID: addr.ID,
		Status:            status,
		QuantityDelivered: delivered,
	}
	if err := db.Create(&a).Error; err != nil {
		t.Fatalf("create assignment: %v", err)
	}
	return &a
}

func f64(v float64) *float64 { return &v }

func TestRecordDerivesOwedFromAssignment(t *testing.T) {
	db := testutil.OpenDB(t)
	farmer := testutil.CreateUser(t, db, "farmer", models.RoleFarmer, models.StatusActive)
	a := makeAssignment(t, db, farmer.ID, models.AssignmentStatusDelivered, f64(60))

	payment, err := Record(db, RecordInput{
		FarmerID:             farmer.ID,
		DeliveryAssignmentID: &a.ID,
		AmountPaid:           0,
		PaymentDate:          payDate,
		RecordedBy:           1,
	})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if payment.AmountOwed != 60*UnitPrice {
		t.Errorf("amount owed = %.2f, want %.2f", payment.AmountOwed, 60*UnitPrice)
	}
	if payment.PaymentStatus != models.PaymentNotPaid {
		t.Errorf("status = %s, want NOT_PAID", payment.PaymentStatus)
	}
}

func TestRecordStatusDerivation(t *testing.T) {
	db := testutil.OpenDB(t)
	farmer := testutil.CreateUser(t, db, "farmer", models.RoleFarmer, models.StatusActive)

	cases := []struct {
		owed, paid float64
		want       models.PaymentStatus
	}{
		{150, 150, models.PaymentPaid},
		{150, 200, models.PaymentPaid},
		{150, 50, models.PaymentPartiallyPaid},
		{150, 0, models.PaymentNotPaid},
		{0, 80, models.PaymentPartiallyPaid}, // advance with nothing owed yet
	}
	for _, tc := range cases {
		payment, err := Record(db, RecordInput{
			FarmerID:    farmer.ID,
			AmountOwed:  &tc.owed,
			AmountPaid:  tc.paid,
			PaymentDate: payDate,
			RecordedBy:  1,
		})
		if err != nil {
			t.Fatalf("Record(%v/%v) failed: %v", tc.owed, tc.paid, err)
		}
		if payment.PaymentStatus != tc.want {
			t.Errorf("owed %.0f paid %.0f: status = %s, want %s", tc.owed, tc.paid, payment.PaymentStatus, tc.want)
		}
	}
}

func TestRecordValidations(t *testing.T) {
	db := testutil.OpenDB(t)
	farmer := testutil.CreateUser(t, db, "farmer", models.RoleFarmer, models.StatusActive)
	buyer := testutil.CreateUser(t, db, "buyer", models.RoleBuyer, models.StatusActive)

	_, err := Record(db, RecordInput{FarmerID: 9999, AmountPaid: 10, PaymentDate: payDate})
	testutil.AssertCode(t, err, apperr.CodeFarmerNotFound)

	// A buyer id is not a farmer id.
	_, err = Record(db, RecordInput{FarmerID: buyer.ID, AmountPaid: 10, PaymentDate: payDate})
	testutil.AssertCode(t, err, apperr.CodeFarmerNotFound)

	_, err = Record(db, RecordInput{FarmerID: farmer.ID, AmountPaid: -5, PaymentDate: payDate})
	testutil.AssertCode(t, err, apperr.CodeInvalidInput)

	// An empty row carries no information.
	_, err = Record(db, RecordInput{FarmerID: farmer.ID, PaymentDate: payDate})
	testutil.AssertCode(t, err, apperr.CodeInvalidInput)
}

func TestRecordRequiresDeliveredAssignment(t *testing.T) {
	db := testutil.OpenDB(t)
	farmer := testutil.CreateUser(t, db, "farmer", models.RoleFarmer, models.StatusActive)
	other := testutil.CreateUser(t, db, "other", models.RoleFarmer, models.StatusActive)

	pending := makeAssignment(t, db, farmer.ID, models.AssignmentStatusPending, nil)
	_, err := Record(db, RecordInput{
		FarmerID:             farmer.ID,
		DeliveryAssignmentID: &pending.ID,
		AmountPaid:           10,
		PaymentDate:          payDate,
	})
	testutil.AssertCode(t, err, apperr.CodeInvalidAssignmentStatus)

	// Another farmer's assignment is invisible, not just invalid.
	_, err = Record(db, RecordInput{
		FarmerID:             other.ID,
		DeliveryAssignmentID: &pending.ID,
		AmountPaid:           10,
		PaymentDate:          payDate,
	})
	testutil.AssertCode(t, err, apperr.CodeAssignmentNotFound)
}

func TestBalanceForRecomputesFromLedger(t *testing.T) {
	db := testutil.OpenDB(t)
	farmer := testutil.CreateUser(t, db, "farmer", models.RoleFarmer, models.StatusActive)
	a := makeAssignment(t, db, farmer.ID, models.AssignmentStatusDelivered, f64(60))

	// 150 owed from the delivery, then two partial payments of 50.
	if _, err := Record(db, RecordInput{
		FarmerID:             farmer.ID,
		DeliveryAssignmentID: &a.ID,
		PaymentDate:          payDate,
		RecordedBy:           1,
	}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	for i := 0; i < 2; i++ {
		owed := 0.0
		if _, err := Record(db, RecordInput{
			FarmerID:    farmer.ID,
			AmountOwed:  &owed,
			AmountPaid:  50,
			PaymentDate: payDate.AddDate(0, 0, i+1),
			RecordedBy:  1,
		}); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	balance, ledger, err := BalanceFor(db, farmer.ID)
	if err != nil {
		t.Fatalf("BalanceFor failed: %v", err)
	}
	if len(ledger) != 3 {
		t.Errorf("ledger has %d rows, want 3", len(ledger))
	}
	if balance.TotalOwed != 150 || balance.TotalPaid != 100 {
		t.Errorf("totals = %.2f/%.2f, want 150/100", balance.TotalOwed, balance.TotalPaid)
	}
	if balance.Outstanding != 50 {
		t.Errorf("outstanding = %.2f, want 50", balance.Outstanding)
	}
	if balance.Status != models.PaymentPartiallyPaid {
		t.Errorf("status = %s, want PARTIALLY_PAID", balance.Status)
	}
}

func TestBalancesGroupsByFarmer(t *testing.T) {
	db := testutil.OpenDB(t)
	farmerA := testutil.CreateUser(t, db, "farmerA", models.RoleFarmer, models.StatusActive)
	farmerB := testutil.CreateUser(t, db, "farmerB", models.RoleFarmer, models.StatusActive)

	owedA, owedB := 100.0, 40.0
	if _, err := Record(db, RecordInput{FarmerID: farmerA.ID, AmountOwed: &owedA, AmountPaid: 100, PaymentDate: payDate}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if _, err := Record(db, RecordInput{FarmerID: farmerB.ID, AmountOwed: &owedB, AmountPaid: 10, PaymentDate: payDate}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	balances, err := Balances(db)
	if err != nil {
		t.Fatalf("Balances failed: %v", err)
	}
	if len(balances) != 2 {
		t.Fatalf("got %d balances, want 2", len(balances))
	}
	byID := map[uint]FarmerBalance{}
	for _, b := range balances {
		byID[b.FarmerID] = b
	}
	if b := byID[farmerA.ID]; b.Outstanding != 0 || b.Status != models.PaymentPaid {
		t.Errorf("farmer A balance = %+v", b)
	}
	if b := byID[farmerB.ID]; b.Outstanding != 30 || b.Status != models.PaymentPartiallyPaid {
		t.Errorf("farmer B balance = %+v", b)
	}
}

func TestOwedFor(t *testing.T) {
	if got := OwedFor(&models.DeliveryAssignment{QuantityDelivered: f64(60)}); got != 150 {
		t.Errorf("OwedFor(60) = %.2f, want 150", got)
	}
	if got := OwedFor(&models.DeliveryAssignment{}); got != 0 {
		t.Errorf("OwedFor(nil quantity) = %.2f, want 0", got)
	}
}
