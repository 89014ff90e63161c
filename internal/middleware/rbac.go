package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"

	"github.com/Marrwan/student-platform-backend-sub000/internal/models"
	"github.com/Marrwan/student-platform-backend-sub000/internal/utils"
)

// RequireRole ensures that the authenticated user possesses one of the allowed roles.
// A super-admin passes every role gate.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		normalized := strings.ToLower(strings.TrimSpace(role))
		if normalized != "" {
			allowed[normalized] = struct{}{}
		}
	}

	return func(c *fiber.Ctx) error {
		role := normalizeRoleValue(c.Locals("user_role"))
		if role == models.RoleSuperAdmin {
			return c.Next()
		}
		if _, ok := allowed[role]; !ok {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}

// RequirePermission resolves a capability for the token's identity. The
// ordered checks (super-admin bypass, direct grants, role-derived grants,
// legacy role fallback) live on the model so every caller resolves them the
// same way.
func RequirePermission(permission string, rolePermissions map[string][]string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := models.User{Role: normalizeRoleValue(c.Locals("user_role"))}
		if perms, ok := c.Locals("user_permissions").([]string); ok {
			user.Permissions = datatypes.JSONSlice[string](perms)
		}

		if user.HasPermission(permission, rolePermissions) {
			return c.Next()
		}

		return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
	}
}

func normalizeRoleValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		return strings.ToLower(strings.TrimSpace(v))
	case fmt.Stringer:
		return strings.ToLower(strings.TrimSpace(v.String()))
	default:
		if value == nil {
			return ""
		}
		return strings.ToLower(strings.TrimSpace(fmt.Sprintf("%v", value)))
	}
}
