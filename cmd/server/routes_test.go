package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"testing"
	"time"

	"agrolink-backend/internal/auth"
	"agrolink-backend/internal/clock"
	"agrolink-backend/internal/config"
	"agrolink-backend/internal/database"
	"agrolink-backend/internal/models"
	"agrolink-backend/internal/orders"
	"agrolink-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
)

var serverTime = time.Date(2024, 2, 5, 9, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) (*fiber.App, *config.Config) {
	t.Helper()

	database.DB = testutil.OpenDB(t)
	cfg := &config.Config{
		JWTSecret:   "0123456789abcdef0123456789abcdef",
		CORSOrigins: "http://localhost:5173",
		AppEnv:      "test",
	}
	return newServer(cfg, clock.Fixed(serverTime)), cfg
}

func tokenFor(t *testing.T, cfg *config.Config, user *models.User) string {
	t.Helper()

	token, err := auth.GenerateToken(cfg.JWTSecret, user)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, path, &buf)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func TestBuyerCanCreateOrder(t *testing.T) {
	app, cfg := newTestServer(t)
	buyer := testutil.CreateUser(t, database.DB, "buyer", models.RoleBuyer, models.StatusActive)
	addr := testutil.CreateAddress(t, database.DB, buyer.ID)

	resp := doJSON(t, app, "POST", "/api/orders", tokenFor(t, cfg, buyer), fiber.Map{
		"product_type":        "Eggs",
		"quantity":            100,
		"order_type":          "ONE_TIME",
		"delivery_date":       "2024-03-01",
		"delivery_address_id": addr.ID,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST /api/orders as buyer = %d, want 201", resp.StatusCode)
	}
}

func TestFarmerCannotCreateOrder(t *testing.T) {
	app, cfg := newTestServer(t)
	farmer := testutil.CreateUser(t, database.DB, "farmer", models.RoleFarmer, models.StatusActive)

	resp := doJSON(t, app, "POST", "/api/orders", tokenFor(t, cfg, farmer), fiber.Map{
		"product_type": "Eggs",
		"quantity":     100,
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("POST /api/orders as farmer = %d, want 403", resp.StatusCode)
	}
}

func TestFarmerRoutesRejectOtherRoles(t *testing.T) {
	app, cfg := newTestServer(t)
	farmer := testutil.CreateUser(t, database.DB, "farmer", models.RoleFarmer, models.StatusActive)
	buyer := testutil.CreateUser(t, database.DB, "buyer", models.RoleBuyer, models.StatusActive)

	resp := doJSON(t, app, "GET", "/api/availability", tokenFor(t, cfg, farmer), nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /api/availability as farmer = %d, want 200", resp.StatusCode)
	}

	resp = doJSON(t, app, "GET", "/api/availability", tokenFor(t, cfg, buyer), nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("GET /api/availability as buyer = %d, want 403", resp.StatusCode)
	}
}

func TestAdminCanApproveOrder(t *testing.T) {
	app, cfg := newTestServer(t)
	buyer := testutil.CreateUser(t, database.DB, "buyer", models.RoleBuyer, models.StatusActive)
	addr := testutil.CreateAddress(t, database.DB, buyer.ID)
	admin := testutil.CreateUser(t, database.DB, "admin", models.RoleAdmin, models.StatusActive)

	order, err := orders.Create(database.DB, clock.Fixed(serverTime), orders.CreateInput{
		BuyerID:           buyer.ID,
		ProductType:       "Eggs",
		Quantity:          100,
		OrderType:         models.OrderTypeOneTime,
		DeliveryDate:      serverTime.AddDate(0, 0, 7),
		DeliveryAddressID: addr.ID,
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	path := "/api/orders/" + strconv.FormatUint(uint64(order.ID), 10) + "/approve"
	resp := doJSON(t, app, "POST", path, tokenFor(t, cfg, buyer), nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("approve as buyer = %d, want 403", resp.StatusCode)
	}

	resp = doJSON(t, app, "POST", path, tokenFor(t, cfg, admin), nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("approve as admin = %d, want 200", resp.StatusCode)
	}
}

func TestAdminRoutesRejectFarmers(t *testing.T) {
	app, cfg := newTestServer(t)
	farmer := testutil.CreateUser(t, database.DB, "farmer", models.RoleFarmer, models.StatusActive)
	admin := testutil.CreateUser(t, database.DB, "admin", models.RoleAdmin, models.StatusActive)

	resp := doJSON(t, app, "GET", "/api/deliveries", tokenFor(t, cfg, farmer), nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("GET /api/deliveries as farmer = %d, want 403", resp.StatusCode)
	}

	resp = doJSON(t, app, "GET", "/api/deliveries", tokenFor(t, cfg, admin), nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /api/deliveries as admin = %d, want 200", resp.StatusCode)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app, _ := newTestServer(t)

	resp := doJSON(t, app, "GET", "/api/orders", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("GET /api/orders without token = %d, want 401", resp.StatusCode)
	}

	// Public auth routes stay reachable without a token.
	resp = doJSON(t, app, "POST", "/api/auth/register", "", fiber.Map{
		"name":      "New Farmer",
		"email":     "new.farmer@example.com",
		"password":  "supersecret",
		"role":      "FARMER",
		"farm_name": "Green Acres",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("POST /api/auth/register = %d, want 201", resp.StatusCode)
	}
}
