package handlers

import (
	"errors"
	"time"

	"vaccitrack/internal/adapters/persistence/repositories"
	"vaccitrack/internal/core/domain"
	"vaccitrack/internal/core/services"
	"vaccitrack/internal/pkg/pagination"
	"vaccitrack/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// VaccinationHandler handles completion request endpoints
type VaccinationHandler struct {
	vaccinationService *services.VaccinationService
}

// NewVaccinationHandler creates a new vaccination handler
func NewVaccinationHandler(vaccinationService *services.VaccinationService) *VaccinationHandler {
	return &VaccinationHandler{vaccinationService: vaccinationService}
}

// RequestCompletionRequest represents a parent's completion claim body
type RequestCompletionRequest struct {
	CompletionDate string `json:"completion_date"`
	Notes          string `json:"notes"`
	Attachment     string `json:"attachment"`
}

// ReviewRequest represents a doctor's review decision body
type ReviewRequest struct {
	Notes            string `json:"notes"`
	Reason           string `json:"reason"`
	AdministeredDate string `json:"administered_date"`
	HospitalName     string `json:"hospital_name"`
	AdministeredBy   string `json:"administered_by"`
	BatchNumber      string `json:"batch_number"`
	Manufacturer     string `json:"manufacturer"`
}

// RequestCompletion files a completion claim for a schedule entry
// @Summary Request vaccination completion
// @Description File a claim that a scheduled dose was administered
// @Tags Vaccinations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param childId path int true "Child ID"
// @Param entryId path int true "Schedule entry ID"
// @Param body body RequestCompletionRequest true "Completion details"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /children/{childId}/schedule/{entryId}/request [post]
func (h *VaccinationHandler) RequestCompletion(c *fiber.Ctx) error {
	actor, ok := actorFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	childID, err := c.ParamsInt("childId")
	if err != nil || childID <= 0 {
		return response.BadRequest(c, "Invalid child ID")
	}
	entryID, err := c.ParamsInt("entryId")
	if err != nil || entryID <= 0 {
		return response.BadRequest(c, "Invalid schedule entry ID")
	}

	var req RequestCompletionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	completionDate := time.Now()
	if req.CompletionDate != "" {
		completionDate, err = parseDate(req.CompletionDate)
		if err != nil {
			return response.BadRequest(c, "Invalid completion date (use YYYY-MM-DD)")
		}
	}

	input := &services.RequestCompletionInput{
		CompletionDate: completionDate,
		Notes:          req.Notes,
		Attachment:     req.Attachment,
	}

	request, err := h.vaccinationService.RequestCompletion(c.Context(), actor, uint(childID), uint(entryID), input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrChildNotFound):
			return response.NotFound(c, "Child not found")
		case errors.Is(err, services.ErrEntryNotFound):
			return response.NotFound(c, "Schedule entry not found")
		case errors.Is(err, services.ErrNotChildOwner):
			return response.Forbidden(c, "You do not have access to this child")
		case errors.Is(err, services.ErrEntryCompleted):
			return response.Conflict(c, "This vaccination is already completed")
		case errors.Is(err, services.ErrDuplicateRequest):
			return response.Conflict(c, "A completion request for this vaccination is already pending")
		case errors.Is(err, services.ErrCompletionInFuture):
			return response.BadRequest(c, "Completion date cannot be in the future")
		case errors.Is(err, domain.ErrPartialWrite):
			return response.InternalServerError(c, "Request saved but schedule update failed, please contact support")
		default:
			return response.InternalServerError(c, "Failed to file completion request")
		}
	}

	return response.Created(c, "Completion request submitted", fiber.Map{
		"request": request,
	})
}

// Approve confirms a completion claim
// @Summary Approve a completion request
// @Description Confirm a claim and mark the schedule entry completed
// @Tags Vaccinations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Param body body ReviewRequest true "Review details"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /vaccination-requests/{id}/approve [post]
func (h *VaccinationHandler) Approve(c *fiber.Ctx) error {
	actor, ok := actorFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	requestID, err := c.ParamsInt("id")
	if err != nil || requestID <= 0 {
		return response.BadRequest(c, "Invalid request ID")
	}

	var req ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	input := &services.ReviewInput{
		Notes:          req.Notes,
		HospitalName:   req.HospitalName,
		AdministeredBy: req.AdministeredBy,
		BatchNumber:    req.BatchNumber,
		Manufacturer:   req.Manufacturer,
	}
	if req.AdministeredDate != "" {
		administered, err := parseDate(req.AdministeredDate)
		if err != nil {
			return response.BadRequest(c, "Invalid administered date (use YYYY-MM-DD)")
		}
		input.AdministeredDate = &administered
	}

	request, err := h.vaccinationService.Approve(c.Context(), actor, uint(requestID), input)
	if err != nil {
		return reviewError(c, err, "Failed to approve request")
	}

	return response.Success(c, "Request approved", fiber.Map{
		"request": request,
	})
}

// Reject declines a completion claim
// @Summary Reject a completion request
// @Description Decline a claim; the schedule entry reverts to upcoming or overdue
// @Tags Vaccinations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Param body body ReviewRequest true "Review details with reason"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /vaccination-requests/{id}/reject [post]
func (h *VaccinationHandler) Reject(c *fiber.Ctx) error {
	actor, ok := actorFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	requestID, err := c.ParamsInt("id")
	if err != nil || requestID <= 0 {
		return response.BadRequest(c, "Invalid request ID")
	}

	var req ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	input := &services.ReviewInput{
		Notes:  req.Notes,
		Reason: req.Reason,
	}

	request, err := h.vaccinationService.Reject(c.Context(), actor, uint(requestID), input)
	if err != nil {
		if errors.Is(err, services.ErrReviewReasonRequired) {
			return response.BadRequest(c, "Rejection reason is required")
		}
		return reviewError(c, err, "Failed to reject request")
	}

	return response.Success(c, "Request rejected", fiber.Map{
		"request": request,
	})
}

// Cancel withdraws a pending claim
// @Summary Cancel a completion request
// @Description Withdraw a pending claim; the schedule entry reverts
// @Tags Vaccinations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /vaccination-requests/{id}/cancel [post]
func (h *VaccinationHandler) Cancel(c *fiber.Ctx) error {
	actor, ok := actorFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	requestID, err := c.ParamsInt("id")
	if err != nil || requestID <= 0 {
		return response.BadRequest(c, "Invalid request ID")
	}

	request, err := h.vaccinationService.Cancel(c.Context(), actor, uint(requestID))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRequestNotFound):
			return response.NotFound(c, "Request not found")
		case errors.Is(err, services.ErrNotRequestOwner):
			return response.Forbidden(c, "You do not have access to this request")
		case errors.Is(err, services.ErrAlreadyReviewed):
			return response.Conflict(c, "This request has already been reviewed")
		case errors.Is(err, domain.ErrPartialWrite):
			return response.InternalServerError(c, "Request update incomplete, please contact support")
		default:
			return response.InternalServerError(c, "Failed to cancel request")
		}
	}

	return response.Success(c, "Request cancelled", fiber.Map{
		"request": request,
	})
}

// Get returns a single request
// @Summary Get a completion request
// @Tags Vaccinations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /vaccination-requests/{id} [get]
func (h *VaccinationHandler) Get(c *fiber.Ctx) error {
	actor, ok := actorFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	requestID, err := c.ParamsInt("id")
	if err != nil || requestID <= 0 {
		return response.BadRequest(c, "Invalid request ID")
	}

	request, err := h.vaccinationService.GetRequest(c.Context(), actor, uint(requestID))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRequestNotFound):
			return response.NotFound(c, "Request not found")
		case errors.Is(err, services.ErrNotRequestOwner):
			return response.Forbidden(c, "You do not have access to this request")
		default:
			return response.InternalServerError(c, "Failed to get request")
		}
	}

	return response.Success(c, "Request retrieved successfully", fiber.Map{
		"request": request,
	})
}

// ListPending lists the review queue
// @Summary List pending completion requests
// @Description Pending requests ordered by priority, then oldest first
// @Tags Vaccinations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /vaccination-requests/pending [get]
func (h *VaccinationHandler) ListPending(c *fiber.Ctx) error {
	requests, err := h.vaccinationService.ListPending(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list pending requests")
	}

	return response.Success(c, "Pending requests retrieved", fiber.Map{
		"requests": requests,
		"count":    len(requests),
	})
}

// List lists requests with filters and pagination
// @Summary List completion requests
// @Tags Vaccinations
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Param priority query string false "Filter by priority"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Response
// @Router /vaccination-requests [get]
func (h *VaccinationHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	filter := &repositories.ListFilter{
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
	}

	requests, total, err := h.vaccinationService.ListRequests(c.Context(), filter, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list requests")
	}

	return response.Success(c, "Requests retrieved successfully", pagination.NewResponse(requests, params, total))
}

// ListMine lists the calling parent's requests
// @Summary List my completion requests
// @Tags Vaccinations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /vaccination-requests/mine [get]
func (h *VaccinationHandler) ListMine(c *fiber.Ctx) error {
	actor, ok := actorFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	requests, err := h.vaccinationService.ListParentRequests(c.Context(), actor)
	if err != nil {
		return response.InternalServerError(c, "Failed to list requests")
	}

	return response.Success(c, "Requests retrieved successfully", fiber.Map{
		"requests": requests,
		"count":    len(requests),
	})
}

// ChildHistory lists all requests filed for a child
// @Summary List a child's request history
// @Tags Vaccinations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Child ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /children/{id}/requests [get]
func (h *VaccinationHandler) ChildHistory(c *fiber.Ctx) error {
	actor, ok := actorFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	childID, err := c.ParamsInt("id")
	if err != nil || childID <= 0 {
		return response.BadRequest(c, "Invalid child ID")
	}

	requests, err := h.vaccinationService.ChildHistory(c.Context(), actor, uint(childID))
	if err != nil {
		return childError(c, err, "Failed to list request history")
	}

	return response.Success(c, "Request history retrieved", fiber.Map{
		"requests": requests,
		"count":    len(requests),
	})
}

// reviewError maps review errors to HTTP responses
func reviewError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, services.ErrRequestNotFound):
		return response.NotFound(c, "Request not found")
	case errors.Is(err, services.ErrNotRequestOwner):
		return response.Forbidden(c, "Only doctors and admins can review requests")
	case errors.Is(err, services.ErrAlreadyReviewed):
		return response.Conflict(c, "This request has already been reviewed")
	case errors.Is(err, domain.ErrPartialWrite):
		return response.InternalServerError(c, "Review saved but schedule update failed, please contact support")
	default:
		return response.InternalServerError(c, fallback)
	}
}
