package middleware

import (
	"capitalrise/apperrors"
	"capitalrise/ledger"

	"github.com/gofiber/fiber/v2"
)

func JsonResponse(c *fiber.Ctx, statusCode int, success bool, message string, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"success": success,
		"message": message,
		"data":    data,
	})
}

// ListResponse wraps one page of a listing with its pagination block.
func ListResponse(c *fiber.Ctx, message, key string, items interface{}, total int64, page ledger.Page) error {
	return JsonResponse(c, fiber.StatusOK, true, message, fiber.Map{
		key: items,
		"pagination": fiber.Map{
			"page":  page.Page,
			"limit": page.Limit,
			"total": total,
		},
	})
}

func ValidationErrorResponse(c *fiber.Ctx, errors map[string]string) error {
	return JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Validation failed!", errors)
}

// ErrorResponse writes err with the status of its kind. Internal causes are
// never sent to the client.
func ErrorResponse(c *fiber.Ctx, err error) error {
	appErr := apperrors.AsAppError(err)
	return c.Status(apperrors.HTTPStatus(appErr.Kind)).JSON(fiber.Map{
		"success": false,
		"message": appErr.Message,
		"code":    appErr.Code,
		"data":    nil,
	})
}

// ErrorHandler is the fiber.Config error handler. Unmatched routes and
// body-limit errors keep their fiber status.
func ErrorHandler(c *fiber.Ctx, err error) error {
	if e, ok := err.(*fiber.Error); ok {
		return JsonResponse(c, e.Code, false, e.Message, nil)
	}
	return ErrorResponse(c, err)
}
