package userauth

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/quillback/go-userauth/middleware/tokenware"
)

// AuthControllerRoutes are the paths the controller mounts.
type AuthControllerRoutes struct {
	Register string
	Login    string
	Logout   string
	Auth     string
}

// AuthController is the HTTP boundary. It alone maps error categories to
// transport statuses; handlers below it speak the error taxonomy only.
type AuthController struct {
	Routes    AuthControllerRoutes
	Logger    Logger
	auther    Authenticator
	registrar *RegisterUserHandler
	cfg       Config
}

func NewAuthController(auther Authenticator, registrar *RegisterUserHandler, cfg Config) *AuthController {
	return &AuthController{
		Routes: AuthControllerRoutes{
			Register: "/register",
			Login:    "/login",
			Logout:   "/logout",
			Auth:     "/auth",
		},
		Logger:    defLogger{},
		auther:    auther,
		registrar: registrar,
		cfg:       cfg,
	}
}

func (a *AuthController) WithLogger(l Logger) *AuthController {
	a.Logger = l
	return a
}

// RegisterRoutes mounts the auth endpoints on the given app.
func (a *AuthController) RegisterRoutes(app *fiber.App) {
	app.Post(a.Routes.Register, a.RegistrationCreate)
	app.Post(a.Routes.Login, a.LoginPost)
	app.Post(a.Routes.Logout, a.Logout)
	app.Get(a.Routes.Auth, a.Protected(), a.AuthShow)
}

// Protected builds the session verifier middleware bound to this
// controller's token validator.
func (a *AuthController) Protected() fiber.Handler {
	return tokenware.New(tokenware.Config{
		ContextKey:  a.cfg.GetContextKey(),
		TokenLookup: a.cfg.GetTokenLookup(),
		AuthScheme:  a.cfg.GetAuthScheme(),
		TokenValidator: tokenware.TokenValidatorFunc(func(raw string) (tokenware.AuthClaims, error) {
			claims, err := a.auther.ValidateToken(raw)
			if err != nil {
				return nil, err
			}
			return claims, nil
		}),
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Rejection detail stays server side; clients get a generic 401.
			a.Logger.Info("request rejected by session verifier: %v", err)
			return unauthorized(c)
		},
	})
}

// LoginPayload carries a login request.
type LoginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (p LoginPayload) GetIdentifier() string { return p.Username }

func (p LoginPayload) GetPassword() string { return p.Password }

// RegistrationCreate handles POST /register.
func (a *AuthController) RegistrationCreate(c *fiber.Ctx) error {
	payload := RegisterUserMessage{}
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"response": fiber.StatusBadRequest,
			"data":     "invalid payload",
		})
	}

	if _, err := a.registrar.Execute(c.UserContext(), payload); err != nil {
		switch {
		case IsUsernameTaken(err):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"response": fiber.StatusConflict,
				"data":     "exists",
			})
		case isValidationError(err):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"response": fiber.StatusBadRequest,
				"data":     "invalid payload",
			})
		default:
			a.Logger.Error("registration failed: %v", err)
			return serverFault(c)
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"response": fiber.StatusCreated,
		"data":     "created user",
	})
}

// LoginPost handles POST /login. On success the signed token travels in the
// token cookie only, never in the response body.
func (a *AuthController) LoginPost(c *fiber.Ctx) error {
	payload := LoginPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return unauthorized(c)
	}

	token, err := a.auther.Login(c.UserContext(), payload.GetIdentifier(), payload.GetPassword())
	if err != nil {
		if IsStoreFault(err) {
			a.Logger.Error("login store fault: %v", err)
			return serverFault(c)
		}
		return unauthorized(c)
	}

	a.setCookieToken(c, token, a.cfg.GetSessionLifetime())

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"response": fiber.StatusOK,
		"data":     "ok",
	})
}

// Logout handles POST /logout by expiring the token cookie.
func (a *AuthController) Logout(c *fiber.Ctx) error {
	a.cookieDel(c, a.cfg.GetCookieName())
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"response": fiber.StatusOK,
		"data":     "ok",
	})
}

// AuthShow handles GET /auth behind the session verifier and echoes the
// verified subject id.
func (a *AuthController) AuthShow(c *fiber.Ctx) error {
	claims, ok := c.Locals(a.cfg.GetContextKey()).(tokenware.AuthClaims)
	if !ok {
		return unauthorized(c)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"response": fiber.StatusOK,
		"data": fiber.Map{
			"user_id": claims.UserID(),
		},
	})
}

func (a *AuthController) setCookieToken(c *fiber.Ctx, val string, duration time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     a.cfg.GetCookieName(),
		Value:    val,
		Path:     "/",
		Expires:  time.Now().Add(duration),
		HTTPOnly: true,
		SameSite: "Lax",
	})
}

func (a *AuthController) cookieDel(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		SameSite: "Lax",
	})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"response": fiber.StatusUnauthorized,
		"data":     "invalid credentials",
	})
}

func serverFault(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"response": fiber.StatusInternalServerError,
		"data":     "server error",
	})
}

func isValidationError(err error) bool {
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr.Category == errors.CategoryValidation
	}
	return false
}
