package handlers

import (
	"errors"
	"time"

	"vaccitrack/internal/adapters/persistence/models"
	"vaccitrack/internal/core/services"
	"vaccitrack/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ChildHandler handles child and schedule endpoints
type ChildHandler struct {
	childService *services.ChildService
}

// NewChildHandler creates a new child handler
func NewChildHandler(childService *services.ChildService) *ChildHandler {
	return &ChildHandler{childService: childService}
}

// CreateChildRequest represents child registration request body
type CreateChildRequest struct {
	Name              string  `json:"name"`
	DateOfBirth       string  `json:"date_of_birth"`
	Gender            string  `json:"gender"`
	BloodGroup        string  `json:"blood_group"`
	BirthWeight       float64 `json:"birth_weight"`
	BirthHeight       float64 `json:"birth_height"`
	Allergies         string  `json:"allergies"`
	MedicalConditions string  `json:"medical_conditions"`
	SpecialNotes      string  `json:"special_notes"`
}

// UpdateChildRequest represents child update request body
type UpdateChildRequest struct {
	BloodGroup        *string `json:"blood_group"`
	Allergies         *string `json:"allergies"`
	MedicalConditions *string `json:"medical_conditions"`
	SpecialNotes      *string `json:"special_notes"`
}

// actorFromCtx builds the permission actor from auth middleware locals
func actorFromCtx(c *fiber.Ctx) (services.Actor, bool) {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return services.Actor{}, false
	}
	role, ok := c.Locals("role").(string)
	if !ok {
		return services.Actor{}, false
	}
	return services.Actor{UserID: userID, Role: role}, true
}

// parseDate accepts plain dates and RFC3339 timestamps
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

// Create handles child registration
// @Summary Register a child
// @Description Register a child and generate its vaccination schedule
// @Tags Children
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateChildRequest true "Child data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /children [post]
func (h *ChildHandler) Create(c *fiber.Ctx) error {
	actor, ok := actorFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req CreateChildRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Name == "" {
		return response.BadRequest(c, "Name is required")
	}
	if req.Gender == "" {
		return response.BadRequest(c, "Gender is required")
	}

	dob, err := parseDate(req.DateOfBirth)
	if err != nil {
		return response.BadRequest(c, "Invalid date of birth (use YYYY-MM-DD)")
	}

	input := &services.CreateChildInput{
		Name:              req.Name,
		DateOfBirth:       dob,
		Gender:            req.Gender,
		BloodGroup:        req.BloodGroup,
		BirthWeight:       req.BirthWeight,
		BirthHeight:       req.BirthHeight,
		Allergies:         req.Allergies,
		MedicalConditions: req.MedicalConditions,
		SpecialNotes:      req.SpecialNotes,
	}

	child, err := h.childService.CreateChild(c.Context(), actor, input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrParentsOnly):
			return response.Forbidden(c, "Only parents can register children")
		case errors.Is(err, services.ErrInvalidChildInput):
			return response.BadRequest(c, "Name, date of birth and gender are required")
		case errors.Is(err, services.ErrInvalidBirthDate):
			return response.BadRequest(c, "Date of birth must be in the past")
		default:
			return response.InternalServerError(c, "Failed to register child")
		}
	}

	return response.Created(c, "Child registered successfully", fiber.Map{
		"child": child,
	})
}

// List handles child listing
// @Summary List children
// @Description Parents see their own children; doctors and admins see all
// @Tags Children
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /children [get]
func (h *ChildHandler) List(c *fiber.Ctx) error {
	actor, ok := actorFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	children, err := h.childService.ListChildren(c.Context(), actor)
	if err != nil {
		return response.InternalServerError(c, "Failed to list children")
	}

	return response.Success(c, "Children retrieved successfully", fiber.Map{
		"children": children,
		"count":    len(children),
	})
}

// Get handles single child retrieval with full schedule
// @Summary Get a child
// @Description Get a child with its vaccination schedule
// @Tags Children
// @Produce json
// @Security BearerAuth
// @Param id path int true "Child ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /children/{id} [get]
func (h *ChildHandler) Get(c *fiber.Ctx) error {
	actor, ok := actorFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	childID, err := c.ParamsInt("id")
	if err != nil || childID <= 0 {
		return response.BadRequest(c, "Invalid child ID")
	}

	child, err := h.childService.GetChild(c.Context(), actor, uint(childID))
	if err != nil {
		return childError(c, err, "Failed to get child")
	}

	return response.Success(c, "Child retrieved successfully", fiber.Map{
		"child": child,
	})
}

// Update handles child metadata updates
// @Summary Update a child
// @Description Update a child's medical metadata
// @Tags Children
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Child ID"
// @Param body body UpdateChildRequest true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /children/{id} [put]
func (h *ChildHandler) Update(c *fiber.Ctx) error {
	actor, ok := actorFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	childID, err := c.ParamsInt("id")
	if err != nil || childID <= 0 {
		return response.BadRequest(c, "Invalid child ID")
	}

	var req UpdateChildRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	input := &services.UpdateChildInput{
		BloodGroup:        req.BloodGroup,
		Allergies:         req.Allergies,
		MedicalConditions: req.MedicalConditions,
		SpecialNotes:      req.SpecialNotes,
	}

	child, err := h.childService.UpdateChild(c.Context(), actor, uint(childID), input)
	if err != nil {
		return childError(c, err, "Failed to update child")
	}

	return response.Success(c, "Child updated successfully", fiber.Map{
		"child": child,
	})
}

// Delete handles child soft deletion
// @Summary Remove a child
// @Description Soft-delete a child record
// @Tags Children
// @Produce json
// @Security BearerAuth
// @Param id path int true "Child ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /children/{id} [delete]
func (h *ChildHandler) Delete(c *fiber.Ctx) error {
	actor, ok := actorFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	childID, err := c.ParamsInt("id")
	if err != nil || childID <= 0 {
		return response.BadRequest(c, "Invalid child ID")
	}

	if err := h.childService.DeleteChild(c.Context(), actor, uint(childID)); err != nil {
		return childError(c, err, "Failed to remove child")
	}

	return response.Success(c, "Child removed successfully", nil)
}

// Summary handles the per-child schedule summary
// @Summary Get vaccination summary
// @Description Get per-status counts over a child's schedule
// @Tags Children
// @Produce json
// @Security BearerAuth
// @Param id path int true "Child ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /children/{id}/summary [get]
func (h *ChildHandler) Summary(c *fiber.Ctx) error {
	actor, ok := actorFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	childID, err := c.ParamsInt("id")
	if err != nil || childID <= 0 {
		return response.BadRequest(c, "Invalid child ID")
	}

	summary, err := h.childService.GetSummary(c.Context(), actor, uint(childID))
	if err != nil {
		return childError(c, err, "Failed to get summary")
	}

	return response.Success(c, "Summary retrieved successfully", fiber.Map{
		"summary": summary,
	})
}

// Search handles name search for doctors and admins
// @Summary Search children by name
// @Description Case-insensitive substring search, minimum 2 characters
// @Tags Children
// @Produce json
// @Security BearerAuth
// @Param q query string true "Name fragment"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /children/search [get]
func (h *ChildHandler) Search(c *fiber.Ctx) error {
	actor, ok := actorFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	children, err := h.childService.SearchChildren(c.Context(), actor, c.Query("q"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSearchQueryShort):
			return response.BadRequest(c, "Search query must be at least 2 characters")
		case errors.Is(err, services.ErrNotChildOwner):
			return response.Forbidden(c, "You do not have permission to search children")
		default:
			return response.InternalServerError(c, "Failed to search children")
		}
	}

	results := make([]fiber.Map, 0, len(children))
	for _, child := range children {
		results = append(results, fiber.Map{
			"child":   child,
			"summary": models.Summarize(child.Schedule),
		})
	}

	return response.Success(c, "Search completed", fiber.Map{
		"results": results,
		"count":   len(results),
	})
}

// childError maps child service errors to HTTP responses
func childError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, services.ErrChildNotFound):
		return response.NotFound(c, "Child not found")
	case errors.Is(err, services.ErrNotChildOwner):
		return response.Forbidden(c, "You do not have access to this child")
	default:
		return response.InternalServerError(c, fallback)
	}
}
