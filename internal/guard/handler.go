// AngelaMos | 2026
// handler.go

package guard

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/templates/admin-dashboard/internal/core"
	"github.com/carterperez-dev/templates/admin-dashboard/internal/middleware"
	"github.com/carterperez-dev/templates/admin-dashboard/internal/role"
)

type PermissionResolver interface {
	Resolve(ctx context.Context, externalID string) *role.Permissions
}

// Handler evaluates the guard for the calling identity so dashboards can
// pick a screen without duplicating the rules.
type Handler struct {
	resolver PermissionResolver
}

func NewHandler(resolver PermissionResolver) *Handler {
	return &Handler{resolver: resolver}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	optionalAuth func(http.Handler) http.Handler,
) {
	r.With(optionalAuth).Get("/access", h.GetAccess)
}

type AccessResponse struct {
	Decision
	GrantedAckMS int64 `json:"grantedAckMs,omitempty"`
}

func (h *Handler) GetAccess(w http.ResponseWriter, r *http.Request) {
	req, err := RequirementsFor(r.URL.Query().Get("require"))
	if err != nil {
		core.BadRequest(w, core.ErrorMessage(err, core.ErrInvalidInput))
		return
	}

	if raw := r.URL.Query().Get("skipAnimations"); raw != "" {
		skip, parseErr := strconv.ParseBool(raw)
		if parseErr != nil {
			core.BadRequest(w, "skipAnimations must be a boolean")
			return
		}
		req.SkipAnimations = skip
	}

	externalID := middleware.GetExternalID(r.Context())
	in := Inputs{
		IdentityLoaded: true,
		Authenticated:  externalID != "",
	}
	if in.Authenticated {
		in.Record = h.resolver.Resolve(r.Context(), externalID)
	}

	decision := Evaluate(in, req)

	core.OK(w, AccessResponse{
		Decision:     decision,
		GrantedAckMS: decision.GrantedAck.Milliseconds(),
	})
}
