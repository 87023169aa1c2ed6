package auth

import (
	"strings"

	helper "gerejaku_backend/internals/helpers"

	"github.com/gofiber/fiber/v2"
)

// RoleMiddlewareWithCustomError validasi role (Locals "userRole") + custom error message
func RoleMiddlewareWithCustomError(allowedRoles []string, customForbiddenMessage string) fiber.Handler {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[strings.ToLower(strings.TrimSpace(r))] = struct{}{}
	}
	if customForbiddenMessage == "" {
		customForbiddenMessage = "Forbidden: you are not authorized to access this resource"
	}

	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("userRole").(string)
		if !ok || role == "" {
			return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized: missing role information")
		}
		if _, ok := allowed[role]; ok {
			return c.Next()
		}
		return helper.JsonError(c, fiber.StatusForbidden, customForbiddenMessage)
	}
}

// Shortcut biar lebih clean pemakaian
func OnlyRoles(customMessage string, roles ...string) fiber.Handler {
	return RoleMiddlewareWithCustomError(roles, customMessage)
}

// HasRole: cek role di handler (mis. force edit jadwal hanya admin).
func HasRole(c *fiber.Ctx, roles ...string) bool {
	role, _ := c.Locals("userRole").(string)
	for _, r := range roles {
		if strings.EqualFold(role, r) {
			return true
		}
	}
	return false
}
