// AngelaMos | 2026
// middleware.go

package authz

import (
	"net/http"

	"github.com/carterperez-dev/templates/admin-dashboard/internal/core"
	"github.com/carterperez-dev/templates/admin-dashboard/internal/middleware"
	"github.com/carterperez-dev/templates/admin-dashboard/internal/role"
)

// Attach resolves the caller once and stores the result in the request
// context. Requests without a directory record pass through untouched.
func Attach(resolver *Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if middleware.GetPermissions(r.Context()) == nil {
				externalID := middleware.GetExternalID(r.Context())
				if perms := resolver.Resolve(r.Context(), externalID); perms != nil {
					r = r.WithContext(middleware.WithPermissions(r.Context(), perms))
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Require denies the request unless the caller's role satisfies policy.
func Require(
	resolver *Resolver,
	policy role.Policy,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			perms := middleware.GetPermissions(ctx)
			if perms == nil {
				perms = resolver.Resolve(ctx, middleware.GetExternalID(ctx))
			}

			if perms == nil {
				core.JSONError(w, core.UnprovisionedError(http.StatusForbidden))
				return
			}

			if !perms.Satisfies(policy) {
				core.JSONError(w, core.InsufficientRoleError(policy.Message))
				return
			}

			next.ServeHTTP(w, r.WithContext(middleware.WithPermissions(ctx, perms)))
		})
	}
}

func RequireAdmin(resolver *Resolver) func(http.Handler) http.Handler {
	return Require(resolver, role.AdminOrAbove)
}

func RequireSuperAdmin(resolver *Resolver) func(http.Handler) http.Handler {
	return Require(resolver, role.SuperAdminOrAbove)
}

func RequireOwner(resolver *Resolver) func(http.Handler) http.Handler {
	return Require(resolver, role.OwnerOnly)
}
