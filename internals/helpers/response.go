package helper

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Validator dipakai bersama semua controller (validator.New() mahal kalau per request).
var Validator = validator.New()

// ValidationError mengubah validator.ValidationErrors jadi 422 per field.
// Error lain (bukan dari validator) dianggap 400 biasa.
func ValidationError(c *fiber.Ctx, err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return JsonError(c, fiber.StatusBadRequest, "Invalid input")
	}

	fields := make(map[string][]string, len(ve))
	for _, fe := range ve {
		name := strings.ToLower(fe.Field())
		fields[name] = append(fields[name], fe.Tag())
	}
	return JsonValidationError(c, fields)
}
