package middleware

import (
	"errors"

	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"spendly/internal/auth"
	apperrors "spendly/internal/errors"
	"spendly/internal/model"
	"spendly/internal/repository"
)

const (
	// ContextUserKey is the echo context key holding the resolved *model.User.
	ContextUserKey = "currentUser"
	// ContextClaimsKey is the echo context key holding the session *auth.Claims.
	ContextClaimsKey = "sessionClaims"
)

// Gate authorizes requests: bearer token extraction, signature and expiry
// checks, revocation lookup, user resolution and the stale-session rule.
type Gate struct {
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
	users      repository.UserRepository
	dev        bool
}

// NewGate creates the authorization gate.
func NewGate(jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface, users repository.UserRepository, dev bool) *Gate {
	return &Gate{
		jwtService: jwtService,
		tokenStore: tokenStore,
		users:      users,
		dev:        dev,
	}
}

// SessionParser extracts the Authorization bearer token and verifies it.
// The parsed claims land in the context for Authenticate to pick up.
func (g *Gate) SessionParser() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, tokenString string) (interface{}, error) {
			return g.jwtService.ValidateToken(tokenString)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return g.reject(apperrors.ErrUnauthenticated)
		},
	})
}

// Authenticate resolves the verified claims against the user store. A token
// for a vanished user is rejected as unauthenticated, not as not-found, and
// a token issued before the last password change is rejected as stale.
func (g *Gate) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, ok := c.Get("user").(*auth.Claims)
		if !ok {
			return g.reject(apperrors.ErrUnauthenticated)
		}

		ctx := c.Request().Context()

		if revoked, _ := g.tokenStore.IsSessionRevoked(ctx, claims.ID); revoked {
			return g.reject(apperrors.ErrUnauthenticated)
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			return g.reject(apperrors.ErrUnauthenticated)
		}
		user, err := g.users.FindByID(ctx, userID)
		if err != nil {
			// A vanished user is an authentication failure; anything else is
			// an infrastructure problem and must not masquerade as one.
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return g.reject(apperrors.ErrUnauthenticated)
			}
			return g.reject(err)
		}

		if claims.IssuedAt != nil && user.PasswordChangedAfter(claims.IssuedAt.Time) {
			return g.reject(apperrors.ErrStaleToken)
		}

		c.Set(ContextUserKey, user)
		c.Set(ContextClaimsKey, claims)
		return next(c)
	}
}

// RequireRoles rejects authenticated users whose role is not in the allowed set.
func (g *Gate) RequireRoles(roles ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := CurrentUser(c)
			if !ok {
				return g.reject(apperrors.ErrUnauthenticated)
			}
			for _, role := range roles {
				if user.Role == role {
					return next(c)
				}
			}
			return g.reject(apperrors.ErrForbidden)
		}
	}
}

func (g *Gate) reject(err error) error {
	httpErr := apperrors.MapErrorToHTTP(err, g.dev)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

// CurrentUser returns the authenticated user attached by Authenticate.
func CurrentUser(c echo.Context) (*model.User, bool) {
	user, ok := c.Get(ContextUserKey).(*model.User)
	return user, ok
}

// SessionClaims returns the verified session claims attached by Authenticate.
func SessionClaims(c echo.Context) (*auth.Claims, bool) {
	claims, ok := c.Get(ContextClaimsKey).(*auth.Claims)
	return claims, ok
}
