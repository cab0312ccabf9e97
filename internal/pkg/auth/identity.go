package auth

import (
	"context"
	"time"

	"github.com/yigit/learnhub/internal/app/models"
)

// Identity is the authenticated caller of a request.
type Identity struct {
	UserID    int64
	Email     string
	Role      models.RoleType
	TokenID   string
	ExpiresAt time.Time
}

// IsAdmin reports whether the caller holds the admin role.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role.IsAdmin()
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying identity.
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFromContext returns the identity stored by WithIdentity.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(*Identity)
	return identity, ok && identity != nil
}

// NewIdentity builds the identity carried by validated claims.
func NewIdentity(claims *Claims) (*Identity, error) {
	userID, err := claims.UserID()
	if err != nil {
		return nil, err
	}

	identity := &Identity{
		UserID:  userID,
		Email:   claims.Email,
		Role:    models.RoleType(claims.RoleType),
		TokenID: claims.ID,
	}
	if claims.ExpiresAt != nil {
		identity.ExpiresAt = claims.ExpiresAt.Time
	}
	return identity, nil
}
