package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/testpulse/testpulse/services"
	"github.com/testpulse/testpulse/utils"
)

// CaseTimesHandler handles the per-test duration endpoints.
type CaseTimesHandler struct {
	caseTimesService *services.CaseTimesService
}

// NewCaseTimesHandler creates a new case times handler instance.
func NewCaseTimesHandler(caseTimesService *services.CaseTimesService) *CaseTimesHandler {
	return &CaseTimesHandler{caseTimesService: caseTimesService}
}

// GetFiles handles GET /api/case-times/files - tests grouped per spec file.
func (h *CaseTimesHandler) GetFiles(c *fiber.Ctx) error {
	return utils.SuccessResponse(c, "Test files retrieved successfully", h.caseTimesService.Files())
}

// GetHistory handles GET /api/case-times/history?testId=<file>::<name>.
func (h *CaseTimesHandler) GetHistory(c *fiber.Ctx) error {
	testID := c.Query("testId")
	if testID == "" {
		return utils.BadRequestResponse(c, "Missing testId parameter", map[string]string{
			"testId": "testId query parameter is required",
		})
	}

	fileName, testName, err := utils.SplitTestID(testID)
	if err != nil {
		return utils.BadRequestResponse(c, "Invalid testId parameter", map[string]string{
			"testId": err.Error(),
		})
	}

	history := h.caseTimesService.History(fileName, testName)
	return utils.SuccessResponse(c, "Test history retrieved successfully", history)
}
