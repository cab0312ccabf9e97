package middleware

import (
	"github.com/gin-gonic/gin"

	authz "github.com/yigit/learnhub/internal/app/auth"
	"github.com/yigit/learnhub/internal/pkg/apperrors"
	"github.com/yigit/learnhub/internal/pkg/auth"
	"github.com/yigit/learnhub/internal/pkg/logger"
)

// TokenValidator verifies access tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (*auth.Claims, error)
}

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	tokens   TokenValidator
	denylist auth.Denylist
	policy   *authz.Policy
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(tokens TokenValidator, denylist auth.Denylist, policy *authz.Policy) *AuthMiddleware {
	return &AuthMiddleware{
		tokens:   tokens,
		denylist: denylist,
		policy:   policy,
	}
}

// JWTAuth resolves the caller from the bearer token and stores the identity
// in the request context.
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := auth.ExtractBearerToken(c.GetHeader("Authorization"))
		if err != nil {
			HandleAPIError(c, err)
			return
		}

		claims, err := m.tokens.ValidateToken(tokenString)
		if err != nil {
			HandleAPIError(c, err)
			return
		}

		identity, err := auth.NewIdentity(claims)
		if err != nil {
			HandleAPIError(c, err)
			return
		}

		revoked, err := m.denylist.IsRevoked(c.Request.Context(), identity.TokenID)
		if err != nil {
			HandleAPIError(c, err)
			return
		}
		if revoked {
			HandleAPIError(c, apperrors.ErrTokenRevoked)
			return
		}

		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), identity))
		c.Next()
	}
}

// Authorize lets the request through only when the policy allows the
// caller's role on route. It must run after JWTAuth.
func (m *AuthMiddleware) Authorize(route authz.Route) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := auth.IdentityFromContext(c.Request.Context())
		if !ok {
			HandleAPIError(c, apperrors.ErrTokenNotFound)
			return
		}

		if !m.policy.Allowed(identity.Role, route) {
			logger.Debug().
				Int64("user_id", identity.UserID).
				Str("role", string(identity.Role)).
				Str("route", string(route)).
				Msg("Access denied")
			HandleAPIError(c, apperrors.ErrPermissionDenied)
			return
		}

		c.Next()
	}
}

// Gate returns the handler chain route needs before its handler; exempt
// routes need none.
func (m *AuthMiddleware) Gate(route authz.Route) []gin.HandlerFunc {
	requirement, ok := m.policy.Requirement(route)
	if ok && requirement == authz.Exempt {
		return nil
	}
	return []gin.HandlerFunc{m.JWTAuth(), m.Authorize(route)}
}
