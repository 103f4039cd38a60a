package handlers

import (
	"vaccitrack/internal/adapters/persistence/models"
	"vaccitrack/internal/core/services"
	"vaccitrack/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler handles dashboard endpoints
type DashboardHandler struct {
	dashboardService *services.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Stats returns role-appropriate dashboard statistics
// @Summary Get dashboard statistics
// @Description Parents get stats over their own children, doctors get the review queue, admins get portal-wide stats
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /dashboard [get]
func (h *DashboardHandler) Stats(c *fiber.Ctx) error {
	actor, ok := actorFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	switch actor.Role {
	case models.RoleAdmin:
		stats, err := h.dashboardService.GetAdminStats(c.Context())
		if err != nil {
			return response.InternalServerError(c, "Failed to load dashboard")
		}
		return response.Success(c, "Dashboard retrieved successfully", stats)

	case models.RoleDoctor:
		stats, err := h.dashboardService.GetDoctorStats(c.Context())
		if err != nil {
			return response.InternalServerError(c, "Failed to load dashboard")
		}
		return response.Success(c, "Dashboard retrieved successfully", stats)

	default:
		stats, err := h.dashboardService.GetParentStats(c.Context(), actor.UserID)
		if err != nil {
			return response.InternalServerError(c, "Failed to load dashboard")
		}
		return response.Success(c, "Dashboard retrieved successfully", stats)
	}
}
