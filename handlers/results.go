package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/testpulse/testpulse/services"
	"github.com/testpulse/testpulse/utils"
)

// ResultsHandler handles the test-results API endpoints.
type ResultsHandler struct {
	resultsService *services.ResultsService
	archiveService *services.ArchiveService
}

// NewResultsHandler creates a new results handler instance.
func NewResultsHandler(resultsService *services.ResultsService, archiveService *services.ArchiveService) *ResultsHandler {
	return &ResultsHandler{
		resultsService: resultsService,
		archiveService: archiveService,
	}
}

// GetResults handles GET /api/results - latest (or dated) run report.
func (h *ResultsHandler) GetResults(c *fiber.Ctx) error {
	date := c.Query("date")
	if date != "" {
		if err := utils.ValidateDateParam(date); err != nil {
			return utils.BadRequestResponse(c, "Invalid date parameter", map[string]string{
				"error": err.Error(),
			})
		}
	}

	report, err := h.resultsService.Latest(date)
	if err != nil {
		if errors.Is(err, services.ErrNoResults) {
			return utils.NotFoundResponse(c, "Test results")
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "RESULTS_ERROR",
			"Failed to load test results", map[string]string{
				"error": err.Error(),
			})
	}

	return utils.SuccessResponse(c, "Test results retrieved successfully", report)
}

// GetAllResults handles GET /api/results/all - raw dump of live files.
func (h *ResultsHandler) GetAllResults(c *fiber.Ctx) error {
	report, err := h.resultsService.AllResults()
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "RESULTS_ERROR",
			"Failed to load test results", map[string]string{
				"error": err.Error(),
			})
	}
	return utils.SuccessResponse(c, "All test results retrieved successfully", report)
}

// GetDates handles GET /api/results/dates - available run dates.
func (h *ResultsHandler) GetDates(c *fiber.Ctx) error {
	return utils.SuccessResponse(c, "Available dates retrieved successfully", h.resultsService.Dates())
}

// GetHistory handles GET /api/results/history - per-date run summaries.
func (h *ResultsHandler) GetHistory(c *fiber.Ctx) error {
	return utils.SuccessResponse(c, "Historical results retrieved successfully", h.resultsService.History())
}

// GetTrends handles GET /api/results/trends - pass/fail trend series.
func (h *ResultsHandler) GetTrends(c *fiber.Ctx) error {
	return utils.SuccessResponse(c, "Trend data retrieved successfully", h.resultsService.Trends())
}

// GetSuiteDurations handles GET /api/results/suite-durations.
func (h *ResultsHandler) GetSuiteDurations(c *fiber.Ctx) error {
	return utils.SuccessResponse(c, "Suite durations retrieved successfully", h.resultsService.SuiteDurations())
}

// ArchiveResults handles POST /api/results/archive - copy-or-merge live
// dated files into the archive.
func (h *ResultsHandler) ArchiveResults(c *fiber.Ctx) error {
	result, err := h.archiveService.Archive()
	if err != nil {
		if errors.Is(err, services.ErrNothingToArchive) {
			return utils.NotFoundResponse(c, "Results to archive")
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "ARCHIVE_ERROR",
			"Failed to archive results", map[string]string{
				"error": err.Error(),
			})
	}
	return utils.SuccessResponse(c, result.Message, result)
}
