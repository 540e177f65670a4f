package tokenware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillback/go-userauth/middleware/tokenware"
)

type stubClaims struct {
	subject string
}

func (s stubClaims) Subject() string { return s.subject }

func (s stubClaims) UserID() string { return s.subject }

// acceptToken validates any token matching want and records the raw value.
func acceptToken(want string, seen *string) tokenware.TokenValidator {
	return tokenware.TokenValidatorFunc(func(raw string) (tokenware.AuthClaims, error) {
		if seen != nil {
			*seen = raw
		}
		if raw != want {
			return nil, errors.New("bad token")
		}
		return stubClaims{subject: "user-123"}, nil
	})
}

func newProtectedApp(cfg tokenware.Config) *fiber.App {
	app := fiber.New()
	app.Get("/secure", tokenware.New(cfg), func(c *fiber.Ctx) error {
		claims, ok := c.Locals("user").(tokenware.AuthClaims)
		if !ok {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.SendString(claims.UserID())
	})
	return app
}

func TestNew(t *testing.T) {
	t.Run("missing token is unauthorized", func(t *testing.T) {
		app := newProtectedApp(tokenware.Config{
			TokenValidator: acceptToken("good", nil),
		})

		resp, err := app.Test(httptest.NewRequest("GET", "/secure", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("valid cookie token passes and claims land in locals", func(t *testing.T) {
		app := newProtectedApp(tokenware.Config{
			TokenValidator: acceptToken("good", nil),
		})

		req := httptest.NewRequest("GET", "/secure", nil)
		req.AddCookie(&http.Cookie{Name: "token", Value: "good"})

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("cookie wins over the header", func(t *testing.T) {
		var seen string
		app := newProtectedApp(tokenware.Config{
			TokenValidator: acceptToken("from-cookie", &seen),
		})

		req := httptest.NewRequest("GET", "/secure", nil)
		req.AddCookie(&http.Cookie{Name: "token", Value: "from-cookie"})
		req.Header.Set("Authorization", "Bearer from-header")

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "from-cookie", seen)
	})

	t.Run("header is used when the cookie is absent", func(t *testing.T) {
		var seen string
		app := newProtectedApp(tokenware.Config{
			TokenValidator: acceptToken("from-header", &seen),
		})

		req := httptest.NewRequest("GET", "/secure", nil)
		req.Header.Set("Authorization", "Bearer from-header")

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "from-header", seen)
	})

	t.Run("header without the auth scheme is rejected", func(t *testing.T) {
		app := newProtectedApp(tokenware.Config{
			TokenValidator: acceptToken("good", nil),
		})

		req := httptest.NewRequest("GET", "/secure", nil)
		req.Header.Set("Authorization", "good")

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("rejected token is unauthorized", func(t *testing.T) {
		app := newProtectedApp(tokenware.Config{
			TokenValidator: acceptToken("good", nil),
		})

		req := httptest.NewRequest("GET", "/secure", nil)
		req.AddCookie(&http.Cookie{Name: "token", Value: "forged"})

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("filter skips verification", func(t *testing.T) {
		app := fiber.New()
		app.Get("/secure", tokenware.New(tokenware.Config{
			Filter:         func(c *fiber.Ctx) bool { return true },
			TokenValidator: acceptToken("good", nil),
		}), func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusOK)
		})

		resp, err := app.Test(httptest.NewRequest("GET", "/secure", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("custom error handler receives the failure", func(t *testing.T) {
		var got error
		app := newProtectedApp(tokenware.Config{
			TokenValidator: acceptToken("good", nil),
			ErrorHandler: func(c *fiber.Ctx, err error) error {
				got = err
				return c.SendStatus(fiber.StatusTeapot)
			},
		})

		resp, err := app.Test(httptest.NewRequest("GET", "/secure", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusTeapot, resp.StatusCode)
		assert.ErrorIs(t, got, tokenware.ErrTokenMissing)
	})
}

func TestGetDefaultConfig(t *testing.T) {
	t.Run("panics without a validator", func(t *testing.T) {
		assert.Panics(t, func() {
			tokenware.GetDefaultConfig(tokenware.Config{})
		})
	})

	t.Run("fills in defaults", func(t *testing.T) {
		cfg := tokenware.GetDefaultConfig(tokenware.Config{
			TokenValidator: acceptToken("good", nil),
		})

		assert.Equal(t, "user", cfg.ContextKey)
		assert.Equal(t, "cookie:token,header:Authorization", cfg.TokenLookup)
		assert.Equal(t, "Bearer", cfg.AuthScheme)
		assert.NotNil(t, cfg.SuccessHandler)
		assert.NotNil(t, cfg.ErrorHandler)
	})
}

func TestGetExtractors(t *testing.T) {
	t.Run("parses carriers in order", func(t *testing.T) {
		extractors := tokenware.GetExtractors("cookie:token,header:Authorization,query:auth_token")
		assert.Len(t, extractors, 3)
	})

	t.Run("skips malformed entries", func(t *testing.T) {
		extractors := tokenware.GetExtractors("cookie:token,bogus,header:Authorization")
		assert.Len(t, extractors, 2)
	})

	t.Run("tolerates whitespace", func(t *testing.T) {
		extractors := tokenware.GetExtractors(" cookie: token , header: Authorization ")
		assert.Len(t, extractors, 2)
	})
}
