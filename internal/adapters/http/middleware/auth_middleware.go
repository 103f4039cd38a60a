package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"vaccitrack/internal/pkg/jwt"
	"vaccitrack/internal/pkg/response"
)

// AuthMiddleware validates the access token and stores the caller's
// identity in locals for downstream handlers
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Cookie first, then Authorization header
		tokenString := c.Cookies("access_token")

		if tokenString == "" {
			authHeader := c.Get("Authorization")
			if authHeader == "" {
				return response.Unauthorized(c, "Missing authentication token")
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				return response.Unauthorized(c, "Invalid authorization header format")
			}
			tokenString = parts[1]
		}

		claims, err := jwt.ValidateAccessToken(tokenString, jwtSecret)
		if err != nil {
			if err == jwt.ErrTokenExpired {
				return response.Unauthorized(c, "Token has expired")
			}
			return response.Unauthorized(c, "Invalid token")
		}

		c.Locals("userID", claims.UserID)
		c.Locals("email", claims.Email)
		c.Locals("username", claims.Username)
		c.Locals("role", claims.Role)

		return c.Next()
	}
}

// RoleMiddleware restricts a route to the given roles. Must run after
// AuthMiddleware.
func RoleMiddleware(allowedRoles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("role").(string)
		if !ok || role == "" {
			return response.Unauthorized(c, "Missing authentication token")
		}

		for _, allowed := range allowedRoles {
			if role == allowed {
				return c.Next()
			}
		}

		return response.Forbidden(c, "You do not have permission to access this resource")
	}
}

// AdminOnly restricts a route to administrators
func AdminOnly() fiber.Handler {
	return RoleMiddleware("admin")
}

// DoctorOrAdmin restricts a route to doctors and administrators
func DoctorOrAdmin() fiber.Handler {
	return RoleMiddleware("doctor", "admin")
}
