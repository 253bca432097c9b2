package server

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"

	"github.com/kavyakala/kavyakala/auth"
)

// ErrorResponse is the uniform error body. NeedsVerification mirrors the
// flag clients key their "resend verification" prompt on.
type ErrorResponse struct {
	Message           string            `json:"message"`
	TextCode          string            `json:"text_code,omitempty"`
	Fields            map[string]string `json:"fields,omitempty"`
	NeedsVerification bool              `json:"needs_verification,omitempty"`
}

// ErrorHandler converts rich errors into HTTP responses. Status comes from
// the error category, never from string matching.
func ErrorHandler(logger auth.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var vErrs validation.Errors
		if errors.As(err, &vErrs) {
			fields := make(map[string]string, len(vErrs))
			for name, ferr := range vErrs {
				if ferr != nil {
					fields[name] = ferr.Error()
				}
			}
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Message: "validation failed",
				Fields:  fields,
			})
		}

		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			status := statusFromCategory(richErr.Category)
			if status >= fiber.StatusInternalServerError {
				logger.Error("Request failed", "error", err, "path", c.Path())
				return c.Status(status).JSON(ErrorResponse{
					Message: "internal server error",
				})
			}

			return c.Status(status).JSON(ErrorResponse{
				Message:           richErr.Message,
				TextCode:          richErr.TextCode,
				NeedsVerification: richErr.TextCode == auth.TextCodeEmailNotVerified,
			})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(ErrorResponse{
				Message: fiberErr.Message,
			})
		}

		logger.Error("Unhandled request error", "error", err, "path", c.Path())
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Message: "internal server error",
		})
	}
}

func statusFromCategory(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryValidation, goerrors.CategoryBadInput:
		return fiber.StatusBadRequest
	case goerrors.CategoryAuth:
		return fiber.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return fiber.StatusForbidden
	case goerrors.CategoryNotFound:
		return fiber.StatusNotFound
	case goerrors.CategoryConflict:
		return fiber.StatusConflict
	case goerrors.CategoryRateLimit:
		return fiber.StatusTooManyRequests
	default:
		return fiber.StatusInternalServerError
	}
}
