package main

import (
	"errors"
	"log"
	"strings"

	"agrolink-backend/internal/admin"
	"agrolink-backend/internal/allocation"
	"agrolink-backend/internal/apperr"
	"agrolink-backend/internal/audit"
	"agrolink-backend/internal/auth"
	"agrolink-backend/internal/availability"
	"agrolink-backend/internal/clock"
	"agrolink-backend/internal/config"
	"agrolink-backend/internal/delivery"
	"agrolink-backend/internal/models"
	"agrolink-backend/internal/orders"
	"agrolink-backend/internal/payments"
	"agrolink-backend/internal/performance"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// newServer builds the Fiber app: error handler, CORS and every route.
// Role guards are attached per route, not via Use on an empty-prefix group:
// Fiber mounts Use middleware by path prefix, so a group built with
// Group("") would run its RequireRole against every route registered after
// it, locking buyers and admins out entirely.
func newServer(cfg *config.Config, clk clock.Clock) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler(cfg),
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register", auth.RegisterHandler())
	api.Post("/auth/login", auth.LoginHandler(cfg))
	api.Post("/auth/forgot-password", auth.ForgotPasswordHandler(cfg, clk))
	api.Post("/auth/reset-password", auth.ResetPasswordHandler(clk))

	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	farmerOnly := auth.RequireRole(models.RoleFarmer)
	buyerOnly := auth.RequireRole(models.RoleBuyer)
	adminOnly := auth.RequireRole(models.RoleAdmin)
	buyerOrAdmin := auth.RequireRole(models.RoleBuyer, models.RoleAdmin)

	protected.Get("/auth/me", auth.MeHandler())

	// Farmer routes
	protected.Post("/availability", farmerOnly, availability.SubmitHandler(clk))
	protected.Get("/availability", farmerOnly, availability.ListHandler())
	protected.Get("/farmers/performance", farmerOnly, performance.GetPerformanceHandler())
	protected.Get("/farmers/performance/history", farmerOnly, performance.GetHistoryHandler())
	protected.Get("/farmers/performance/trend", farmerOnly, performance.GetTrendHandler(clk))
	protected.Get("/farmers/payments", farmerOnly, payments.FarmerPaymentsHandler())

	// Buyer routes
	protected.Post("/orders", buyerOnly, orders.CreateOrderHandler(clk))
	protected.Post("/addresses", buyerOnly, orders.CreateAddressHandler())
	protected.Get("/addresses", buyerOnly, orders.ListAddressesHandler())

	// Shared order reads (buyers see their own, admins see everything)
	protected.Get("/orders", buyerOrAdmin, orders.ListOrdersHandler())
	protected.Get("/orders/:id", buyerOrAdmin, orders.GetOrderHandler())

	// Admin routes
	protected.Post("/orders/:id/approve", adminOnly, orders.ApproveOrderHandler(clk))
	protected.Post("/orders/:id/reject", adminOnly, orders.RejectOrderHandler())

	protected.Get("/allocations", adminOnly, allocation.OverviewHandler(clk))
	protected.Post("/allocations", adminOnly, allocation.AllocateHandler())
	protected.Put("/allocations/:id", adminOnly, allocation.UpdateAssignmentHandler())
	protected.Delete("/allocations/:id", adminOnly, allocation.DeleteAssignmentHandler())

	protected.Get("/deliveries", adminOnly, delivery.ListDeliveriesHandler())
	protected.Post("/deliveries/:id/confirm", adminOnly, delivery.ConfirmDeliveryHandler(clk))

	protected.Post("/payments", adminOnly, payments.RecordPaymentHandler(clk))
	protected.Get("/payments/summary", adminOnly, payments.SummaryHandler())
	protected.Get("/payments/export", adminOnly, payments.ExportHandler(clk))

	protected.Get("/admin/users", adminOnly, admin.ListUsersHandler())
	protected.Post("/admin/users/:id/approve", adminOnly, admin.ApproveUserHandler())
	protected.Post("/admin/users/:id/reject", adminOnly, admin.RejectUserHandler())
	protected.Post("/admin/users/:id/suspend", adminOnly, admin.SuspendUserHandler())
	protected.Post("/admin/users/:id/reactivate", adminOnly, admin.ReactivateUserHandler())
	protected.Get("/admin/audit-logs", adminOnly, audit.ListAuditLogsHandler())

	return app
}

func errorHandler(cfg *config.Config) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var domainErr *apperr.Error
		if errors.As(err, &domainErr) {
			return c.Status(domainErr.Status).JSON(fiber.Map{
				"error":   domainErr.Code,
				"message": domainErr.Message,
			})
		}
		var httpErr *fiber.Error
		if errors.As(err, &httpErr) {
			return c.Status(httpErr.Code).JSON(fiber.Map{
				"error":   "REQUEST_FAILED",
				"message": httpErr.Message,
			})
		}
		log.Println("Unexpected error:", err)
		resp := fiber.Map{
			"error":   "INTERNAL_ERROR",
			"message": "Unexpected server error",
		}
		if cfg.AppEnv != "production" {
			resp["details"] = err.Error()
		}
		return c.Status(fiber.StatusInternalServerError).JSON(resp)
	}
}
