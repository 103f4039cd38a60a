package handlers

import (
	"errors"

	"vaccitrack/internal/core/services"
	"vaccitrack/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// CertificateHandler handles vaccination certificate endpoints
type CertificateHandler struct {
	certificateService *services.CertificateService
}

// NewCertificateHandler creates a new certificate handler
func NewCertificateHandler(certificateService *services.CertificateService) *CertificateHandler {
	return &CertificateHandler{certificateService: certificateService}
}

// Get issues a certificate for a completed vaccination
// @Summary Get vaccination certificate
// @Description Issue a certificate for a completed schedule entry
// @Tags Certificates
// @Produce json
// @Security BearerAuth
// @Param childId path int true "Child ID"
// @Param entryId path int true "Schedule entry ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /children/{childId}/schedule/{entryId}/certificate [get]
func (h *CertificateHandler) Get(c *fiber.Ctx) error {
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

	cert, err := h.certificateService.IssueCertificate(c.Context(), actor, uint(childID), uint(entryID))
	if err != nil {
		return certificateError(c, err)
	}

	return response.Success(c, "Certificate issued", fiber.Map{
		"certificate": cert,
	})
}

// QR renders the certificate verification QR code as PNG
// @Summary Get certificate QR code
// @Description Render the certificate verification payload as a PNG QR code
// @Tags Certificates
// @Produce png
// @Security BearerAuth
// @Param childId path int true "Child ID"
// @Param entryId path int true "Schedule entry ID"
// @Success 200 {file} binary
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /children/{childId}/schedule/{entryId}/certificate/qr [get]
func (h *CertificateHandler) QR(c *fiber.Ctx) error {
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

	cert, err := h.certificateService.IssueCertificate(c.Context(), actor, uint(childID), uint(entryID))
	if err != nil {
		return certificateError(c, err)
	}

	png, err := h.certificateService.GenerateQR(cert)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate QR code")
	}

	c.Set("Content-Type", "image/png")
	return c.Send(png)
}

// certificateError maps certificate errors to HTTP responses
func certificateError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrChildNotFound):
		return response.NotFound(c, "Child not found")
	case errors.Is(err, services.ErrEntryNotFound):
		return response.NotFound(c, "Schedule entry not found")
	case errors.Is(err, services.ErrNotChildOwner):
		return response.Forbidden(c, "You do not have access to this child")
	case errors.Is(err, services.ErrEntryNotCompleted):
		return response.Conflict(c, "Certificate is only available for completed vaccinations")
	default:
		return response.InternalServerError(c, "Failed to issue certificate")
	}
}
