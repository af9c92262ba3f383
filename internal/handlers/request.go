package handlers

import (
	"fmt"

	apperrors "wavvly/pkg/errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 50
)

var validate = validator.New()

// parseBody decodes the request body into req and validates its struct tags.
func parseBody(c *fiber.Ctx, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		return apperrors.Wrap(apperrors.KindValidation, "Invalid request body", err)
	}
	return validateStruct(req)
}

func validateStruct(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.Wrap(apperrors.KindValidation, "Validation failed", err)
	}
	errorMessages := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return apperrors.ValidationFields("Validation failed", errorMessages)
}

// pagination reads page and limit. Absent or non-numeric values take the
// defaults; numbers outside page >= 1 and 1 <= limit <= 50 are rejected.
func pagination(c *fiber.Ctx) (page, limit int, err error) {
	page = c.QueryInt("page", defaultPage)
	limit = c.QueryInt("limit", defaultLimit)

	fields := map[string]string{}
	if page < 1 {
		fields["page"] = "Page must be a positive integer"
	}
	if limit < 1 || limit > maxLimit {
		fields["limit"] = fmt.Sprintf("Limit must be between 1 and %d", maxLimit)
	}
	if len(fields) > 0 {
		return 0, 0, apperrors.ValidationFields("Invalid pagination parameters", fields)
	}
	return page, limit, nil
}
