package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/testpulse/testpulse/services"
	"github.com/testpulse/testpulse/utils"
)

// FlakyHandler handles the flaky-test detection endpoint.
type FlakyHandler struct {
	flakyService *services.FlakyService
}

// NewFlakyHandler creates a new flaky handler instance.
func NewFlakyHandler(flakyService *services.FlakyService) *FlakyHandler {
	return &FlakyHandler{flakyService: flakyService}
}

// GetFlakyTests handles GET /api/flaky-tests.
func (h *FlakyHandler) GetFlakyTests(c *fiber.Ctx) error {
	return utils.SuccessResponse(c, "Flaky test analysis completed", h.flakyService.Detect())
}
