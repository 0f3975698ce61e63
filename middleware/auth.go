package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"
	"github.com/meinhoongagan/health-companion/auth"
	"github.com/meinhoongagan/health-companion/models"
	"github.com/meinhoongagan/health-companion/store"
	"go.uber.org/zap"
)

const (
	LocalUserID = "userID"
	LocalRole   = "role"
	LocalUser   = "currentUser"
	LocalClaims = "claims"

	tokenContextKey = "jwt"
)

// Gate authenticates requests with a bearer token taken from the
// Authorization header, the "token" cookie or a "token" field in a JSON
// body, in that order.
type Gate struct {
	tokens   *auth.TokenService
	users    store.UserStore
	denylist auth.Denylist
	logger   *zap.Logger
}

func NewGate(tokens *auth.TokenService, users store.UserStore, denylist auth.Denylist, logger *zap.Logger) *Gate {
	return &Gate{tokens: tokens, users: users, denylist: denylist, logger: logger}
}

// Protected admits verified users only.
func (g *Gate) Protected() fiber.Handler {
	return g.handler(false)
}

// AdminOnly admits verified users with the admin role.
func (g *Gate) AdminOnly() fiber.Handler {
	return g.handler(true)
}

// Optional resolves the caller when it can and never rejects the request.
func (g *Gate) Optional() fiber.Handler {
	verify := jwtware.New(g.config(
		func(c *fiber.Ctx, _ error) error { return c.Next() },
		func(c *fiber.Ctx) error {
			claims, ok := tokenClaims(c)
			if !ok {
				return c.Next()
			}
			if revoked, err := g.denylist.IsRevoked(c.UserContext(), claims.ID); err != nil || revoked {
				return c.Next()
			}
			u, err := g.users.GetByID(c.UserContext(), claims.UserID)
			if err == nil && u.IsVerified {
				setLocals(c, u, claims)
			}
			return c.Next()
		},
	))
	return func(c *fiber.Ctx) error {
		promoteBodyToken(c)
		return verify(c)
	}
}

func (g *Gate) handler(adminOnly bool) fiber.Handler {
	verify := jwtware.New(g.config(g.deny, func(c *fiber.Ctx) error {
		return g.admit(c, adminOnly)
	}))
	return func(c *fiber.Ctx) error {
		promoteBodyToken(c)
		return verify(c)
	}
}

func (g *Gate) config(onError fiber.ErrorHandler, onSuccess fiber.Handler) jwtware.Config {
	return jwtware.Config{
		SigningKey:     g.tokens.SigningKey(),
		SigningMethod:  "HS256",
		Claims:         &auth.Claims{},
		ContextKey:     tokenContextKey,
		TokenLookup:    "header:Authorization,cookie:token",
		AuthScheme:     "Bearer",
		ErrorHandler:   onError,
		SuccessHandler: onSuccess,
	}
}

// deny reports why the token was not accepted. Anything that is not a
// token validation error means no usable token was presented.
func (g *Gate) deny(c *fiber.Ctx, err error) error {
	var vErr *jwt.ValidationError
	if !errors.As(err, &vErr) {
		return unauthorized(c, "Access denied. No token provided.")
	}
	if errors.Is(auth.ClassifyError(err), auth.ErrTokenExpired) {
		return unauthorized(c, "Token expired.")
	}
	return unauthorized(c, "Invalid token.")
}

func (g *Gate) admit(c *fiber.Ctx, adminOnly bool) error {
	claims, ok := tokenClaims(c)
	if !ok {
		return unauthorized(c, "Invalid token.")
	}

	revoked, err := g.denylist.IsRevoked(c.UserContext(), claims.ID)
	if err != nil {
		g.logger.Error("denylist lookup failed", zap.Error(err))
		return serverError(c)
	}
	if revoked {
		return unauthorized(c, "Token has been revoked.")
	}

	u, err := g.users.GetByID(c.UserContext(), claims.UserID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return unauthorized(c, "Token is valid but user no longer exists.")
	case err != nil:
		g.logger.Error("user lookup failed", zap.Uint("user_id", claims.UserID), zap.Error(err))
		return serverError(c)
	}
	if !u.IsVerified {
		return unauthorized(c, "User account not verified.")
	}
	if adminOnly && u.Role != models.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Access denied. Admin privileges required.",
		})
	}

	setLocals(c, u, claims)
	return c.Next()
}

// promoteBodyToken copies a JSON body "token" field into the Authorization
// header when neither the header nor the cookie carries one.
func promoteBodyToken(c *fiber.Ctx) {
	if c.Get(fiber.HeaderAuthorization) != "" || c.Cookies("token") != "" || len(c.Body()) == 0 {
		return
	}
	var body struct {
		Token string `json:"token"`
	}
	if err := c.BodyParser(&body); err != nil || body.Token == "" {
		return
	}
	c.Request().Header.Set(fiber.HeaderAuthorization, "Bearer "+body.Token)
}

func tokenClaims(c *fiber.Ctx) (*auth.Claims, bool) {
	token, ok := c.Locals(tokenContextKey).(*jwt.Token)
	if !ok {
		return nil, false
	}
	claims, ok := token.Claims.(*auth.Claims)
	return claims, ok
}

func setLocals(c *fiber.Ctx, u *models.User, claims *auth.Claims) {
	c.Locals(LocalUserID, u.ID)
	c.Locals(LocalRole, string(u.Role))
	c.Locals(LocalUser, u)
	c.Locals(LocalClaims, claims)
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msg})
}

func serverError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Server error during authentication.",
	})
}

// UserID returns the authenticated user's id, or 0 for anonymous requests.
func UserID(c *fiber.Ctx) uint {
	id, _ := c.Locals(LocalUserID).(uint)
	return id
}

func CurrentUser(c *fiber.Ctx) *models.User {
	u, _ := c.Locals(LocalUser).(*models.User)
	return u
}

func Claims(c *fiber.Ctx) *auth.Claims {
	claims, _ := c.Locals(LocalClaims).(*auth.Claims)
	return claims
}
