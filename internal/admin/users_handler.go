package admin

import (
	"fmt"
	"log"
	"strings"

	"agrolink-backend/internal/apperr"
	"agrolink-backend/internal/audit"
	"agrolink-backend/internal/auth"
	"agrolink-backend/internal/database"
	"agrolink-backend/internal/httpx"
	"agrolink-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type ReviewRequest struct {
	Reason string `json:"reason"`
}

type UserResponse struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	Status       string `json:"status"`
	StatusReason string `json:"status_reason,omitempty"`
}

func toUserResponse(u models.User) UserResponse {
	return UserResponse{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Role:         string(u.Role),
		Status:       string(u.Status),
		StatusReason: u.StatusReason,
	}
}

// GET /api/admin/users?role=...&status=...
func ListUsersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.User{})
		if r := c.Query("role"); r != "" {
			dbq = dbq.Where("role = ?", strings.ToUpper(r))
		}
		if s := c.Query("status"); s != "" {
			dbq = dbq.Where("status = ?", strings.ToUpper(s))
		}

		var users []models.User
		if err := dbq.Order("created_at desc, id desc").Find(&users).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list users")
		}

		resp := make([]UserResponse, 0, len(users))
		for _, u := range users {
			resp = append(resp, toUserResponse(u))
		}
		return httpx.OK(c, resp)
	}
}

// transition moves a user between account statuses with a from-set guard.
func transition(c *fiber.Ctx, userID uint, from []models.AccountStatus, to models.AccountStatus, reason string) (*models.User, error) {
	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		return nil, apperr.NotFound(apperr.CodeUserNotFound, "User not found")
	}
	if user.Role == models.RoleAdmin {
		return nil, apperr.Forbidden(apperr.CodeForbidden, "Admin accounts cannot be reviewed")
	}

	allowed := false
	for _, s := range from {
		if user.Status == s {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, apperr.Conflict(apperr.CodeInvalidUserStatus,
			fmt.Sprintf("User in status %s cannot move to %s", user.Status, to))
	}

	before := user.Status
	user.Status = to
	user.StatusReason = strings.TrimSpace(reason)
	if err := database.DB.Save(&user).Error; err != nil {
		return nil, err
	}

	adminID, _ := auth.CurrentUserID(c)
	var admin models.User
	database.DB.First(&admin, adminID)
	if err := audit.WriteLog(audit.LogOptions{
		UserID:      adminID,
		UserName:    admin.Name,
		EntityType:  "user",
		EntityID:    user.ID,
		Action:      models.AuditActionUpdate,
		Description: fmt.Sprintf("User %d moved %s -> %s", user.ID, before, to),
		Before:      fiber.Map{"status": before},
		After:       fiber.Map{"status": to, "reason": user.StatusReason},
	}); err != nil {
		log.Printf("Audit log write failed: %v", err)
	}

	return &user, nil
}

func parseUserID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, apperr.BadRequest(apperr.CodeInvalidInput, "Invalid user id")
	}
	return uint(id), nil
}

// POST /api/admin/users/:id/approve — application accepted, account goes ACTIVE.
func ApproveUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseUserID(c)
		if err != nil {
			return err
		}
		user, err := transition(c, id,
			[]models.AccountStatus{models.StatusApplied, models.StatusPending},
			models.StatusActive, "")
		if err != nil {
			return err
		}
		return httpx.OKMessage(c, toUserResponse(*user), "Application approved")
	}
}

// POST /api/admin/users/:id/reject — application refused, account blocked.
func RejectUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseUserID(c)
		if err != nil {
			return err
		}
		var body ReviewRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.BadRequest(apperr.CodeInvalidInput, "Invalid request body")
		}
		if strings.TrimSpace(body.Reason) == "" {
			return apperr.BadRequest(apperr.CodeInvalidInput, "A rejection reason is required")
		}
		user, err := transition(c, id,
			[]models.AccountStatus{models.StatusApplied, models.StatusPending},
			models.StatusBlocked, body.Reason)
		if err != nil {
			return err
		}
		return httpx.OKMessage(c, toUserResponse(*user), "Application rejected")
	}
}

// POST /api/admin/users/:id/suspend
func SuspendUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseUserID(c)
		if err != nil {
			return err
		}
		var body ReviewRequest
		c.BodyParser(&body) // reason is optional here
		user, err := transition(c, id,
			[]models.AccountStatus{models.StatusActive, models.StatusProbationary},
			models.StatusSuspended, body.Reason)
		if err != nil {
			return err
		}
		return httpx.OKMessage(c, toUserResponse(*user), "Account suspended")
	}
}

// POST /api/admin/users/:id/reactivate
func ReactivateUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseUserID(c)
		if err != nil {
			return err
		}
		user, err := transition(c, id,
			[]models.AccountStatus{models.StatusSuspended},
			models.StatusActive, "")
		if err != nil {
			return err
		}
		return httpx.OKMessage(c, toUserResponse(*user), "Account reactivated")
	}
}
