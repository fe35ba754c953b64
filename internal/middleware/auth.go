// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/carterperez-dev/templates/admin-dashboard/internal/core"
	"github.com/carterperez-dev/templates/admin-dashboard/internal/role"
)

const (
	IdentityKey    contextKey = "identity"
	PermissionsKey contextKey = "permissions"
)

// IdentityVerifier checks a bearer token issued by the external identity
// provider and returns the subject it vouches for.
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// Identity is what the provider vouches for. ExternalID is the token
// subject; the service does no credential checks of its own.
type Identity struct {
	ExternalID string
	SessionID  string
}

func Authenticator(verifier IdentityVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)

			if token == "" {
				core.JSONError(
					w,
					core.UnauthorizedError("missing authorization token"),
				)
				return
			}

			identity, err := verifier.Verify(r.Context(), token)
			if err != nil {
				handleAuthError(w, err)
				return
			}

			ctx := WithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth attaches an identity when a valid token is present and
// otherwise lets the request through anonymously.
func OptionalAuth(verifier IdentityVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := ExtractToken(r); token != "" {
				identity, err := verifier.Verify(r.Context(), token)
				if err == nil {
					r = r.WithContext(WithIdentity(r.Context(), identity))
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

func handleAuthError(w http.ResponseWriter, err error) {
	if core.IsAppError(err) {
		core.JSONError(w, err)
		return
	}

	switch {
	case errors.Is(err, core.ErrTokenExpired):
		core.JSONError(w, core.TokenExpiredError())
	default:
		core.JSONError(w, core.TokenInvalidError())
	}
}

func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, identity)
}

func GetIdentity(ctx context.Context) *Identity {
	if identity, ok := ctx.Value(IdentityKey).(*Identity); ok {
		return identity
	}
	return nil
}

func GetExternalID(ctx context.Context) string {
	if identity := GetIdentity(ctx); identity != nil {
		return identity.ExternalID
	}
	return ""
}

func IsAuthenticated(ctx context.Context) bool {
	return GetExternalID(ctx) != ""
}

func WithPermissions(
	ctx context.Context,
	perms *role.Permissions,
) context.Context {
	return context.WithValue(ctx, PermissionsKey, perms)
}

// GetPermissions returns the caller's resolved permissions, or nil when no
// resolver ran or the caller has no directory record.
func GetPermissions(ctx context.Context) *role.Permissions {
	if perms, ok := ctx.Value(PermissionsKey).(*role.Permissions); ok {
		return perms
	}
	return nil
}
