// AngelaMos | 2026
// resolver.go

package authz

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/templates/admin-dashboard/internal/core"
	"github.com/carterperez-dev/templates/admin-dashboard/internal/role"
	"github.com/carterperez-dev/templates/admin-dashboard/internal/user"
)

const tracerName = "admin-dashboard/authz"

type Directory interface {
	GetByExternalID(ctx context.Context, externalID string) (*user.User, error)
}

type Cache interface {
	Get(ctx context.Context, externalID string) (*role.Permissions, bool)
	Set(ctx context.Context, externalID string, perms *role.Permissions)
}

// Resolver maps an authenticated external id to the caller's permissions.
type Resolver struct {
	directory Directory
	cache     Cache
	logger    *slog.Logger
}

type Option func(*Resolver)

func WithCache(cache Cache) Option {
	return func(r *Resolver) {
		r.cache = cache
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

func NewResolver(directory Directory, opts ...Option) *Resolver {
	r := &Resolver{
		directory: directory,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns nil when externalID is empty, has no directory record, or
// the lookup fails. Failures are logged and otherwise look like not-found.
func (r *Resolver) Resolve(
	ctx context.Context,
	externalID string,
) *role.Permissions {
	if externalID == "" {
		return nil
	}

	ctx, span := core.StartSpan(ctx, tracerName, "authz.Resolve",
		attribute.String("identity.external_id", externalID),
	)
	defer span.End()

	if r.cache != nil {
		if perms, ok := r.cache.Get(ctx, externalID); ok {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return perms
		}
	}

	u, err := r.directory.GetByExternalID(ctx, externalID)
	if err != nil {
		if !errors.Is(err, core.ErrNotFound) {
			core.SetSpanError(ctx, err)
			r.logger.ErrorContext(ctx, "resolve permissions",
				"external_id", externalID,
				"error", err,
			)
		}
		return nil
	}

	perms := u.Permissions()
	if r.cache != nil {
		r.cache.Set(ctx, externalID, perms)
	}

	return perms
}
