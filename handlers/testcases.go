package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/testpulse/testpulse/services"
	"github.com/testpulse/testpulse/utils"
)

// TestCaseHandler handles the parsed test-case catalog endpoint.
type TestCaseHandler struct {
	testCaseService *services.TestCaseService
}

// NewTestCaseHandler creates a new test case handler instance.
func NewTestCaseHandler(testCaseService *services.TestCaseService) *TestCaseHandler {
	return &TestCaseHandler{testCaseService: testCaseService}
}

// GetTestCases handles GET /api/test-cases.
func (h *TestCaseHandler) GetTestCases(c *fiber.Ctx) error {
	report, err := h.testCaseService.List()
	if err != nil {
		if errors.Is(err, services.ErrNoTestsDir) {
			return utils.NotFoundResponse(c, "Test files")
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "TESTCASE_ERROR",
			"Failed to parse test cases", map[string]string{
				"error": err.Error(),
			})
	}
	return utils.SuccessResponse(c, "Test cases retrieved successfully", report)
}
