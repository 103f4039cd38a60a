package handlers

import (
	"errors"

	"vaccitrack/internal/core/services"
	"vaccitrack/internal/pkg/pagination"
	"vaccitrack/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler handles doctor review and account administration endpoints
type AdminHandler struct {
	adminService *services.AdminService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminService *services.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// ApproveDoctorRequest represents doctor approval request body
type ApproveDoctorRequest struct {
	Notes string `json:"notes"`
}

// RejectDoctorRequest represents doctor rejection request body
type RejectDoctorRequest struct {
	Reason string `json:"reason"`
}

// DeactivateUserRequest represents account deactivation request body
type DeactivateUserRequest struct {
	Reason string `json:"reason"`
}

// ApproveDoctor approves a pending doctor account
// @Summary Approve a doctor
// @Description Approve a doctor registration so the account can log in
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Doctor user ID"
// @Param body body ApproveDoctorRequest false "Approval notes"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/doctors/{id}/approve [post]
func (h *AdminHandler) ApproveDoctor(c *fiber.Ctx) error {
	adminID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	doctorID, err := c.ParamsInt("id")
	if err != nil || doctorID <= 0 {
		return response.BadRequest(c, "Invalid doctor ID")
	}

	var req ApproveDoctorRequest
	_ = c.BodyParser(&req)

	user, err := h.adminService.ApproveDoctor(c.Context(), uint(doctorID), adminID, &services.ApproveDoctorInput{
		Notes: req.Notes,
	})
	if err != nil {
		return adminError(c, err, "Failed to approve doctor")
	}

	return response.Success(c, "Doctor approved successfully", fiber.Map{
		"doctor": user,
	})
}

// RejectDoctor rejects a pending doctor account and deactivates it
// @Summary Reject a doctor
// @Description Reject a doctor registration; the account is deactivated
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Doctor user ID"
// @Param body body RejectDoctorRequest true "Rejection reason"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/doctors/{id}/reject [post]
func (h *AdminHandler) RejectDoctor(c *fiber.Ctx) error {
	adminID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	doctorID, err := c.ParamsInt("id")
	if err != nil || doctorID <= 0 {
		return response.BadRequest(c, "Invalid doctor ID")
	}

	var req RejectDoctorRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Reason == "" {
		return response.BadRequest(c, "Rejection reason is required")
	}

	user, err := h.adminService.RejectDoctor(c.Context(), uint(doctorID), adminID, &services.RejectDoctorInput{
		Reason: req.Reason,
	})
	if err != nil {
		return adminError(c, err, "Failed to reject doctor")
	}

	return response.Success(c, "Doctor rejected", fiber.Map{
		"doctor": user,
	})
}

// ListDoctors lists doctor accounts
// @Summary List doctors
// @Description List doctor accounts, optionally filtered by approval state
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param approved query bool false "Filter by approval state"
// @Success 200 {object} response.Response
// @Router /admin/doctors [get]
func (h *AdminHandler) ListDoctors(c *fiber.Ctx) error {
	var approved *bool
	switch c.Query("approved") {
	case "true":
		v := true
		approved = &v
	case "false":
		v := false
		approved = &v
	}

	doctors, err := h.adminService.ListDoctors(c.Context(), approved)
	if err != nil {
		return response.InternalServerError(c, "Failed to list doctors")
	}

	return response.Success(c, "Doctors retrieved successfully", fiber.Map{
		"doctors": doctors,
		"count":   len(doctors),
	})
}

// ListPendingDoctors lists doctors awaiting review
// @Summary List pending doctors
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /admin/doctors/pending [get]
func (h *AdminHandler) ListPendingDoctors(c *fiber.Ctx) error {
	doctors, err := h.adminService.ListPendingDoctors(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list pending doctors")
	}

	return response.Success(c, "Pending doctors retrieved", fiber.Map{
		"doctors": doctors,
		"count":   len(doctors),
	})
}

// ListUsers lists all user accounts with pagination
// @Summary List users
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Response
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	users, total, err := h.adminService.ListUsers(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list users")
	}

	return response.Success(c, "Users retrieved successfully", pagination.NewResponse(users, params, total))
}

// DeactivateUser disables an account
// @Summary Deactivate a user
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body DeactivateUserRequest false "Deactivation reason"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/users/{id}/deactivate [post]
func (h *AdminHandler) DeactivateUser(c *fiber.Ctx) error {
	adminID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	userID, err := c.ParamsInt("id")
	if err != nil || userID <= 0 {
		return response.BadRequest(c, "Invalid user ID")
	}

	var req DeactivateUserRequest
	_ = c.BodyParser(&req)

	user, err := h.adminService.DeactivateUser(c.Context(), uint(userID), adminID, &services.DeactivateUserInput{
		Reason: req.Reason,
	})
	if err != nil {
		return adminError(c, err, "Failed to deactivate user")
	}

	return response.Success(c, "User deactivated", fiber.Map{
		"user": user,
	})
}

// ReactivateUser re-enables an account
// @Summary Reactivate a user
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/users/{id}/reactivate [post]
func (h *AdminHandler) ReactivateUser(c *fiber.Ctx) error {
	adminID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	userID, err := c.ParamsInt("id")
	if err != nil || userID <= 0 {
		return response.BadRequest(c, "Invalid user ID")
	}

	user, err := h.adminService.ReactivateUser(c.Context(), uint(userID), adminID)
	if err != nil {
		return adminError(c, err, "Failed to reactivate user")
	}

	return response.Success(c, "User reactivated", fiber.Map{
		"user": user,
	})
}

// adminError maps admin service errors to HTTP responses
func adminError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		return response.NotFound(c, "User not found")
	case errors.Is(err, services.ErrNotADoctor):
		return response.BadRequest(c, "User is not a doctor")
	case errors.Is(err, services.ErrDoctorAlreadyApproved):
		return response.Conflict(c, "Doctor is already approved")
	case errors.Is(err, services.ErrRejectionReasonNeeded):
		return response.BadRequest(c, "Rejection reason is required")
	case errors.Is(err, services.ErrCannotDeactivateAdmin):
		return response.Forbidden(c, "Admin accounts cannot be deactivated")
	case errors.Is(err, services.ErrUserAlreadyInactive):
		return response.Conflict(c, "User is already deactivated")
	case errors.Is(err, services.ErrUserAlreadyActive):
		return response.Conflict(c, "User is already active")
	default:
		return response.InternalServerError(c, fallback)
	}
}
