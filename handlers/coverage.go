package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/testpulse/testpulse/services"
	"github.com/testpulse/testpulse/utils"
)

// CoverageHandler handles the spec-file coverage endpoint.
type CoverageHandler struct {
	coverageService *services.CoverageService
}

// NewCoverageHandler creates a new coverage handler instance.
func NewCoverageHandler(coverageService *services.CoverageService) *CoverageHandler {
	return &CoverageHandler{coverageService: coverageService}
}

// GetFiles handles GET /api/coverage/files.
func (h *CoverageHandler) GetFiles(c *fiber.Ctx) error {
	report, err := h.coverageService.Files()
	if err != nil {
		if errors.Is(err, services.ErrNoTestsDir) {
			return utils.NotFoundResponse(c, "Test files")
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "COVERAGE_ERROR",
			"Failed to analyze coverage", map[string]string{
				"error": err.Error(),
			})
	}
	return utils.SuccessResponse(c, "Coverage analysis completed", report)
}
