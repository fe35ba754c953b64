// AngelaMos | 2026
// handler.go

package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/templates/admin-dashboard/internal/core"
	"github.com/carterperez-dev/templates/admin-dashboard/internal/middleware"
	"github.com/carterperez-dev/templates/admin-dashboard/internal/role"
)

const (
	defaultListLimit      = 100
	defaultAdminListLimit = 50
)

// PermissionResolver turns the authenticated external id into permissions,
// or nil when the caller has no record.
type PermissionResolver interface {
	Resolve(ctx context.Context, externalID string) *role.Permissions
}

type Handler struct {
	service           *Service
	resolver          PermissionResolver
	validator         *validator.Validate
	defaultLimit      int
	adminDefaultLimit int
}

type HandlerOption func(*Handler)

func WithDefaultLimits(list, admin int) HandlerOption {
	return func(h *Handler) {
		h.defaultLimit = list
		h.adminDefaultLimit = admin
	}
}

func NewHandler(
	service *Service,
	resolver PermissionResolver,
	opts ...HandlerOption,
) *Handler {
	h := &Handler{
		service:           service,
		resolver:          resolver,
		validator:         validator.New(validator.WithRequiredStructEnabled()),
		defaultLimit:      defaultListLimit,
		adminDefaultLimit: defaultAdminListLimit,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes mounts the directory endpoints. mw runs after the
// authenticator, so it can key on the caller's identity.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	mw ...func(http.Handler) http.Handler,
) {
	r.Route("/users", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(mw...)

		r.Get("/", h.ListUsers)
		r.Get("/me", h.GetMe)
		r.Get("/{userID}", h.GetUser)
		r.Patch("/{userID}", h.UpdateUser)
		r.Delete("/{userID}", h.DeleteUser)
	})
}

// RegisterAdminRoutes mounts the dashboard listing on a router that already
// authenticates.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/users", h.ListAdminUsers)
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	h.listUsers(w, r, h.defaultLimit)
}

func (h *Handler) ListAdminUsers(w http.ResponseWriter, r *http.Request) {
	h.listUsers(w, r, h.adminDefaultLimit)
}

// listUsers rejects bad paging before the caller is resolved, and resolves
// the caller before the directory is read.
func (h *Handler) listUsers(
	w http.ResponseWriter,
	r *http.Request,
	defaultLimit int,
) {
	params, err := parseListParams(r, defaultLimit)
	if err == nil {
		err = params.Validate(h.service.MaxLimit())
	}
	if err != nil {
		core.BadRequest(w, core.ErrorMessage(err, core.ErrInvalidInput))
		return
	}

	if _, ok := h.authorize(w, r, role.AdminOrAbove); !ok {
		return
	}

	result, err := h.service.ListUsers(r.Context(), params)
	if err != nil {
		if errors.Is(err, core.ErrInvalidInput) {
			core.BadRequest(w, core.ErrorMessage(err, core.ErrInvalidInput))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(
		w,
		ToUserResponseList(result.Users),
		params.Page,
		params.Limit,
		result.Total,
	)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r, role.AdminOrAbove); !ok {
		return
	}

	user, err := h.service.GetUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	core.OK(w, ToUserResponse(user))
}

// UpdateUser is owner only no matter which fields are sent.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r, role.OwnerOnly); !ok {
		return
	}

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	patch, err := req.ToPatch(h.validator)
	if err != nil {
		core.BadRequest(w, core.ErrorMessage(err, core.ErrInvalidInput))
		return
	}

	user, err := h.service.UpdateUser(
		r.Context(),
		chi.URLParam(r, "userID"),
		patch,
	)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	if patch.ChangesRole() {
		logRoleChange(r.Context(), user)
	}

	core.OK(w, ToUserResponse(user))
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r, role.OwnerOnly); !ok {
		return
	}

	if err := h.service.DeleteUser(r.Context(), chi.URLParam(r, "userID")); err != nil {
		h.writeServiceError(w, err)
		return
	}

	core.Message(w, "User deleted successfully")
}

// logRoleChange records who changed a role and from which provider session.
func logRoleChange(ctx context.Context, user *User) {
	attrs := []any{
		"user_id", user.ID,
		"role", user.Role,
	}
	if actor := middleware.GetIdentity(ctx); actor != nil {
		attrs = append(attrs,
			"actor_external_id", actor.ExternalID,
			"actor_session_id", actor.SessionID,
		)
	}
	slog.InfoContext(ctx, "user role changed", attrs...)
}

// GetMe reports the caller's own role flags. A caller without a record is
// treated as unauthenticated here. The resolver reports a failed directory
// lookup the same way, so while the directory is down this answers 401
// UNPROVISIONED and clients see an account that is not set up.
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	perms := h.resolve(r)
	if perms == nil {
		core.JSONError(w, core.UnprovisionedError(http.StatusUnauthorized))
		return
	}

	core.OK(w, perms)
}

func (h *Handler) resolve(r *http.Request) *role.Permissions {
	if perms := middleware.GetPermissions(r.Context()); perms != nil {
		return perms
	}
	return h.resolver.Resolve(r.Context(), middleware.GetExternalID(r.Context()))
}

func (h *Handler) authorize(
	w http.ResponseWriter,
	r *http.Request,
	policy role.Policy,
) (*role.Permissions, bool) {
	perms := h.resolve(r)
	if perms == nil {
		core.JSONError(w, core.UnprovisionedError(http.StatusForbidden))
		return nil, false
	}

	if !perms.Satisfies(policy) {
		core.JSONError(w, core.InsufficientRoleError(policy.Message))
		return nil, false
	}

	return perms, true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "user")
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, core.ErrorMessage(err, core.ErrInvalidInput))
	case errors.Is(err, core.ErrDuplicateKey):
		core.JSONError(w, core.DuplicateError("user"))
	default:
		core.InternalServerError(w, err)
	}
}

func parseListParams(r *http.Request, defaultLimit int) (ListUsersParams, error) {
	page, err := parseIntQuery(r, "page", 1)
	if err != nil {
		return ListUsersParams{}, err
	}

	limit, err := parseIntQuery(r, "limit", defaultLimit)
	if err != nil {
		return ListUsersParams{}, err
	}

	return ListUsersParams{Page: page, Limit: limit}, nil
}

func parseIntQuery(r *http.Request, key string, defaultVal int) (int, error) {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal, nil
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, core.ErrInvalidInput)
	}

	return parsed, nil
}
