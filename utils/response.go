package utils

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// StandardResponse represents a standard API response structure
type StandardResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     *ErrorInfo  `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id"`
}

// ErrorInfo represents detailed error information
type ErrorInfo struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// SuccessResponse creates a successful response
func SuccessResponse(c *fiber.Ctx, message string, data interface{}) error {
	response := StandardResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
		TraceID:   getTraceID(c),
	}
	return c.JSON(response)
}

// ErrorResponse creates an error response
func ErrorResponse(c *fiber.Ctx, statusCode int, code, message string, details map[string]string) error {
	response := StandardResponse{
		Success: false,
		Message: "Request failed",
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
			Details: details,
		},
		Timestamp: time.Now(),
		TraceID:   getTraceID(c),
	}
	return c.Status(statusCode).JSON(response)
}

// NotFoundResponse creates a not found error response
func NotFoundResponse(c *fiber.Ctx, resource string) error {
	return ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", resource+" not found", nil)
}

// BadRequestResponse creates a bad request error response
func BadRequestResponse(c *fiber.Ctx, message string, details map[string]string) error {
	if message == "" {
		message = "Bad request"
	}
	return ErrorResponse(c, fiber.StatusBadRequest, "BAD_REQUEST", message, details)
}

// InternalServerErrorResponse creates an internal server error response
func InternalServerErrorResponse(c *fiber.Ctx, message string) error {
	if message == "" {
		message = "Internal server error"
	}
	return ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", message, nil)
}

// getTraceID gets or generates a trace ID for request tracking
func getTraceID(c *fiber.Ctx) string {
	if traceID := c.Get("X-Trace-ID"); traceID != "" {
		return traceID
	}

	if traceID := c.Locals("trace_id"); traceID != nil {
		if id, ok := traceID.(string); ok {
			return id
		}
	}

	return uuid.New().String()
}

// SetTraceID sets a trace ID in the context
func SetTraceID(c *fiber.Ctx, traceID string) {
	c.Locals("trace_id", traceID)
}

// GetTraceID gets the trace ID from context
func GetTraceID(c *fiber.Ctx) string {
	return getTraceID(c)
}
