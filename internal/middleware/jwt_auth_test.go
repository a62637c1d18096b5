package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/mansoorceksport/repflow/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims domain.AccessClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func validClaims() domain.AccessClaims {
	return domain.AccessClaims{
		UserID: "athlete-1",
		Roles:  []string{domain.RoleAthlete},
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func newAuthApp() *fiber.App {
	app := fiber.New()
	app.Use(VerifyToken(testSecret))
	app.Get("/me", func(c *fiber.Ctx) error {
		return c.SendString(UserID(c))
	})
	app.Get("/trainer", AuthorizeRole(domain.RoleTrainer), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func authRequest(t *testing.T, app *fiber.App, path, header string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestVerifyToken(t *testing.T) {
	app := newAuthApp()

	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	noUser := validClaims()
	noUser.UserID = ""
	noExpiry := validClaims()
	noExpiry.ExpiresAt = nil
	valid := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims())

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid", "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims()), fiber.StatusOK},
		{"missing", "", fiber.StatusUnauthorized},
		{"wrong secret", "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte("other"), validClaims()), fiber.StatusUnauthorized},
		{"expired", "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), expired), fiber.StatusUnauthorized},
		{"no user id", "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), noUser), fiber.StatusUnauthorized},
		{"alg none", "Bearer " + signToken(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, validClaims()), fiber.StatusUnauthorized},
		{"garbage", "Bearer abc.def.ghi", fiber.StatusUnauthorized},
		{"no expiry", "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), noExpiry), fiber.StatusUnauthorized},
		{"lowercase scheme", "bearer " + valid, fiber.StatusOK},
		{"no scheme", valid, fiber.StatusUnauthorized},
		{"empty bearer", "Bearer ", fiber.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := authRequest(t, app, "/me", tt.header)
			defer resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestAuthorizeRole(t *testing.T) {
	app := newAuthApp()

	athlete := authRequest(t, app, "/trainer", "Bearer "+signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims()))
	defer athlete.Body.Close()
	assert.Equal(t, fiber.StatusForbidden, athlete.StatusCode)

	trainerClaims := validClaims()
	trainerClaims.Roles = []string{domain.RoleAthlete, domain.RoleTrainer}
	trainer := authRequest(t, app, "/trainer", "Bearer "+signToken(t, jwt.SigningMethodHS256, []byte(testSecret), trainerClaims))
	defer trainer.Body.Close()
	assert.Equal(t, fiber.StatusNoContent, trainer.StatusCode)
}
