package allocation

import (
	"testing"
	"time"

	"agrolink-backend/internal/apperr"
	"agrolink-backend/internal/models"
	"agrolink-backend/internal/testutil"

	"gorm.io/gorm"
)

func makeOrder(t *testing.T, db *gorm.DB, quantity float64, status models.OrderStatus) *models.Order {
	t.Helper()

	buyer := testutil.CreateUser(t, db, "buyer-"+string(status)+t.Name(), models.RoleBuyer, models.StatusActive)
	addr := testutil.CreateAddress(t, db, buyer.ID)

	order := models.Order{
		BuyerID:           buyer.ID,
		ProductType:       "Eggs",
		Quantity:          quantity,
		OrderType:         models.OrderTypeOneTime,
		DeliveryDate:      time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		DeliveryAddressID: addr.ID,
		Status:            status,
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("create order: %v", err)
	}
	return &order
}

func TestAllocateSplitsOrderAcrossFarmers(t *testing.T) {
	db := testutil.OpenDB(t)
	order := makeOrder(t, db, 100, models.OrderStatusAllocation)
	farmerA := testutil.CreateUser(t, db, "farmerA", models.RoleFarmer, models.StatusActive)
	farmerB := testutil.CreateUser(t, db, "farmerB", models.RoleFarmer, models.StatusProbationary)

	result, err := Allocate(db, order.ID, []AllocationRow{
		{FarmerID: farmerA.ID, Quantity: 60},
		{FarmerID: farmerB.ID, Quantity: 30},
	})
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	if result.TotalAssigned != 90 {
		t.Errorf("total assigned = %.2f, want 90", result.TotalAssigned)
	}
	if result.RemainingQuantity != 10 {
		t.Errorf("remaining = %.2f, want 10", result.RemainingQuantity)
	}
	if len(result.Assignments) != 2 {
		t.Fatalf("got %d assignments, want 2", len(result.Assignments))
	}
	for _, a := range result.Assignments {
		if a.Status != models.AssignmentStatusPending {
			t.Errorf("assignment %d status = %s, want PENDING", a.ID, a.Status)
		}
		if !a.DeliveryDate.Equal(order.DeliveryDate) {
			t.Errorf("assignment %d delivery date not copied from order", a.ID)
		}
		if a.DeliveryAddressID != order.DeliveryAddressID {
			t.Errorf("assignment %d address not copied from order", a.ID)
		}
	}
}

func TestAllocateEnforcesConservation(t *testing.T) {
	db := testutil.OpenDB(t)
	order := makeOrder(t, db, 100, models.OrderStatusAllocation)
	farmer := testutil.CreateUser(t, db, "farmer", models.RoleFarmer, models.StatusActive)

	_, err := Allocate(db, order.ID, []AllocationRow{{FarmerID: farmer.ID, Quantity: 101}})
	testutil.AssertCode(t, err, apperr.CodeOverAllocation)

	// The failed call must leave nothing behind.
	var count int64
	db.Model(&models.DeliveryAssignment{}).Where("order_id = ?", order.ID).Count(&count)
	if count != 0 {
		t.Errorf("over-allocation left %d assignments behind", count)
	}
}

func TestAllocateIsOneShot(t *testing.T) {
	db := testutil.OpenDB(t)
	order := makeOrder(t, db, 100, models.OrderStatusAllocation)
	farmer := testutil.CreateUser(t, db, "farmer", models.RoleFarmer, models.StatusActive)

	if _, err := Allocate(db, order.ID, []AllocationRow{{FarmerID: farmer.ID, Quantity: 40}}); err != nil {
		t.Fatalf("first Allocate failed: %v", err)
	}

	_, err := Allocate(db, order.ID, []AllocationRow{{FarmerID: farmer.ID, Quantity: 10}})
	testutil.AssertCode(t, err, apperr.CodeAlreadyAllocated)
}

func TestAllocateRejectsAtomically(t *testing.T) {
	db := testutil.OpenDB(t)
	order := makeOrder(t, db, 100, models.OrderStatusAllocation)
	farmer := testutil.CreateUser(t, db, "farmer", models.RoleFarmer, models.StatusActive)
	blocked := testutil.CreateUser(t, db, "blocked", models.RoleFarmer, models.StatusBlocked)

	// Second row fails, so the first row must not be written either.
	_, err := Allocate(db, order.ID, []AllocationRow{
		{FarmerID: farmer.ID, Quantity: 40},
		{FarmerID: blocked.ID, Quantity: 40},
	})
	testutil.AssertCode(t, err, apperr.CodeFarmerNotActive)

	var count int64
	db.Model(&models.DeliveryAssignment{}).Where("order_id = ?", order.ID).Count(&count)
	if count != 0 {
		t.Errorf("aborted batch left %d assignments behind", count)
	}
}

func TestAllocatePreconditions(t *testing.T) {
	db := testutil.OpenDB(t)
	farmer := testutil.CreateUser(t, db, "farmer", models.RoleFarmer, models.StatusActive)

	_, err := Allocate(db, 9999, []AllocationRow{{FarmerID: farmer.ID, Quantity: 10}})
	testutil.AssertCode(t, err, apperr.CodeOrderNotFound)

	pending := makeOrder(t, db, 100, models.OrderStatusPending)
	_, err = Allocate(db, pending.ID, []AllocationRow{{FarmerID: farmer.ID, Quantity: 10}})
	testutil.AssertCode(t, err, apperr.CodeInvalidOrderStatus)

	order := makeOrder(t, db, 100, models.OrderStatusAllocation)
	_, err = Allocate(db, order.ID, []AllocationRow{{FarmerID: farmer.ID, Quantity: 0}})
	testutil.AssertCode(t, err, apperr.CodeInvalidQuantity)

	_, err = Allocate(db, order.ID, nil)
	testutil.AssertCode(t, err, apperr.CodeInvalidQuantity)

	_, err = Allocate(db, order.ID, []AllocationRow{{FarmerID: 9999, Quantity: 10}})
	testutil.AssertCode(t, err, apperr.CodeFarmerNotFound)
}

func TestUpdateQuantityRevalidatesConservation(t *testing.T) {
	db := testutil.OpenDB(t)
	order := makeOrder(t, db, 100, models.OrderStatusAllocation)
	farmerA := testutil.CreateUser(t, db, "farmerA", models.RoleFarmer, models.StatusActive)
	farmerB := testutil.CreateUser(t, db, "farmerB", models.RoleFarmer, models.StatusActive)

	result, err := Allocate(db, order.ID, []AllocationRow{
		{FarmerID: farmerA.ID, Quantity: 60},
		{FarmerID: farmerB.ID, Quantity: 30},
	})
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}

	// 60 -> 70 keeps the sum at 100, exactly the order quantity.
	updated, err := UpdateQuantity(db, result.Assignments[0].ID, 70)
	if err != nil {
		t.Fatalf("UpdateQuantity failed: %v", err)
	}
	if updated.AssignedQuantity != 70 {
		t.Errorf("quantity = %.2f, want 70", updated.AssignedQuantity)
	}

	// 70 -> 71 would push the sum past the order quantity.
	_, err = UpdateQuantity(db, result.Assignments[0].ID, 71)
	testutil.AssertCode(t, err, apperr.CodeOverAllocation)

	_, err = UpdateQuantity(db, result.Assignments[0].ID, 0)
	testutil.AssertCode(t, err, apperr.CodeInvalidQuantity)
}

func TestConfirmedAssignmentsAreImmutable(t *testing.T) {
	db := testutil.OpenDB(t)
	order := makeOrder(t, db, 100, models.OrderStatusAllocation)
	farmer := testutil.CreateUser(t, db, "farmer", models.RoleFarmer, models.StatusActive)

	result, err := Allocate(db, order.ID, []AllocationRow{{FarmerID: farmer.ID, Quantity: 50}})
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	id := result.Assignments[0].ID

	now := time.Now()
	if err := db.Model(&models.DeliveryAssignment{}).Where("id = ?", id).
		Updates(map[string]any{"status": models.AssignmentStatusDelivered, "confirmed_at": now}).Error; err != nil {
		t.Fatalf("mark delivered: %v", err)
	}

	_, err = UpdateQuantity(db, id, 10)
	testutil.AssertCode(t, err, apperr.CodeInvalidAssignmentStatus)

	err = Delete(db, id)
	testutil.AssertCode(t, err, apperr.CodeInvalidAssignmentStatus)
}

func TestDeletePendingAssignment(t *testing.T) {
	db := testutil.OpenDB(t)
	order := makeOrder(t, db, 100, models.OrderStatusAllocation)
	farmer := testutil.CreateUser(t, db, "farmer", models.RoleFarmer, models.StatusActive)

	result, err := Allocate(db, order.ID, []AllocationRow{{FarmerID: farmer.ID, Quantity: 50}})
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}

	if err := Delete(db, result.Assignments[0].ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	var count int64
	db.Model(&models.DeliveryAssignment{}).Where("order_id = ?", order.ID).Count(&count)
	if count != 0 {
		t.Errorf("assignment still present after delete")
	}
}
