package middleware

import (
	"slices"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/mansoorceksport/repflow/internal/domain"
)

// Locals keys set by VerifyToken.
const (
	UserIDKey = "userID"
	RolesKey  = "roles"
)

var hmacMethods = []string{
	jwt.SigningMethodHS256.Alg(),
	jwt.SigningMethodHS384.Alg(),
	jwt.SigningMethodHS512.Alg(),
}

// VerifyToken checks the bearer access token and stores its user id and roles
// in Locals. Tokens are issued by the auth service; this service only
// verifies them.
func VerifyToken(jwtSecret string) fiber.Handler {
	parser := jwt.NewParser(jwt.WithValidMethods(hmacMethods), jwt.WithExpirationRequired())
	key := []byte(jwtSecret)

	return func(c *fiber.Ctx) error {
		raw, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return authError(c, fiber.StatusUnauthorized, "Missing authorization token")
		}

		claims := new(domain.AccessClaims)
		_, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
			return key, nil
		})
		if err != nil {
			return authError(c, fiber.StatusUnauthorized, "Invalid or expired token")
		}
		if claims.UserID == "" {
			return authError(c, fiber.StatusUnauthorized, "Invalid token claims")
		}

		c.Locals(UserIDKey, claims.UserID)
		c.Locals(RolesKey, claims.Roles)
		return c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// AuthorizeRole lets the request through when the token carries any of
// allowedRoles. It must run after VerifyToken.
func AuthorizeRole(allowedRoles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		roles, _ := c.Locals(RolesKey).([]string)
		for _, role := range roles {
			if slices.Contains(allowedRoles, role) {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":          "Insufficient permissions",
			"required_roles": allowedRoles,
		})
	}
}

// UserID returns the authenticated user id, or "" outside VerifyToken.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(UserIDKey).(string)
	return id
}

func authError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}
