package middleware

import (
	"errors"
	"log"

	"cannashop/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse is the JSON body of every failed API request.
type ErrorResponse struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

// ErrorHandler maps service errors to HTTP status codes.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status, body := classify(err)

	rid, _ := c.Locals("requestid").(string)
	if status >= fiber.StatusInternalServerError {
		log.Printf("[error] req_id=%s %s %s: %v", rid, c.Method(), c.Path(), err)
		body.Message = "internal server error"
	} else {
		log.Printf("[warn] req_id=%s %s %s -> %d: %v", rid, c.Method(), c.Path(), status, err)
	}

	return c.Status(status).JSON(body)
}

func classify(err error) (int, ErrorResponse) {
	body := ErrorResponse{Status: "error", Message: err.Error()}

	var (
		notFound   *services.NotFoundError
		validation *services.ValidationError
		conflict   *services.ConflictError
		fiberErr   *fiber.Error
	)
	switch {
	case errors.As(err, &notFound):
		return fiber.StatusNotFound, body
	case errors.As(err, &validation):
		body.Message = "validation failed"
		body.Errors = validation.Problems
		return fiber.StatusBadRequest, body
	case errors.As(err, &conflict):
		return fiber.StatusConflict, body
	case errors.As(err, &fiberErr):
		body.Message = fiberErr.Message
		return fiberErr.Code, body
	default:
		return fiber.StatusInternalServerError, body
	}
}
