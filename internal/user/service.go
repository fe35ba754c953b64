// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/templates/admin-dashboard/internal/core"
	"github.com/carterperez-dev/templates/admin-dashboard/internal/role"
)

const tracerName = "admin-dashboard/user"

var ErrOwnerExists = errors.New("an owner already exists")

// CacheInvalidator drops any cached authorization for an external id after
// the matching record changed.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, externalID string)
}

type Service struct {
	repo        Repository
	invalidator CacheInvalidator
	maxLimit    int
}

type ServiceOption func(*Service)

func WithCacheInvalidator(inv CacheInvalidator) ServiceOption {
	return func(s *Service) {
		s.invalidator = inv
	}
}

func WithMaxLimit(limit int) ServiceOption {
	return func(s *Service) {
		s.maxLimit = limit
	}
}

func NewService(repo Repository, opts ...ServiceOption) *Service {
	s := &Service{
		repo:     repo,
		maxLimit: 1000,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) MaxLimit() int {
	return s.maxLimit
}

func (s *Service) GetByExternalID(
	ctx context.Context,
	externalID string,
) (*User, error) {
	return s.repo.GetByExternalID(ctx, externalID)
}

func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// ListUsers loads the whole directory, orders it by role rank and newest
// first, then cuts out the requested page. Sorting happens before slicing
// so page boundaries follow the role order.
func (s *Service) ListUsers(
	ctx context.Context,
	params ListUsersParams,
) (*ListUsersResult, error) {
	if err := params.Validate(s.maxLimit); err != nil {
		return nil, err
	}

	ctx, span := core.StartSpan(ctx, tracerName, "user.ListUsers",
		attribute.Int("page", params.Page),
		attribute.Int("limit", params.Limit),
	)
	defer span.End()

	users, err := s.repo.ListAll(ctx)
	if err != nil {
		core.SetSpanError(ctx, err)
		return nil, err
	}

	SortByRoleRank(users)

	return &ListUsersResult{
		Users: pageWindow(users, params),
		Total: len(users),
	}, nil
}

// SortByRoleRank orders users by role rank ascending, then creation time
// descending, then id so the order is total.
func SortByRoleRank(users []User) {
	slices.SortStableFunc(users, func(a, b User) int {
		if d := a.Role.Rank() - b.Role.Rank(); d != 0 {
			return d
		}
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

func pageWindow(users []User, params ListUsersParams) []User {
	if params.Page-1 >= core.TotalPages(len(users), params.Limit) {
		return []User{}
	}

	start := params.Offset()
	end := min(start+params.Limit, len(users))
	return users[start:end]
}

// UpdateUser applies patch to the record. An empty patch writes nothing and
// returns the stored record.
func (s *Service) UpdateUser(
	ctx context.Context,
	id string,
	patch Patch,
) (*User, error) {
	ctx, span := core.StartSpan(ctx, tracerName, "user.UpdateUser",
		attribute.String("user.id", id),
		attribute.Bool("patch.role", patch.ChangesRole()),
	)
	defer span.End()

	if patch.IsEmpty() {
		return s.repo.GetByID(ctx, id)
	}

	user, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		core.SetSpanError(ctx, err)
		return nil, err
	}

	s.invalidate(ctx, user.ExternalID)

	if patch.ChangesRole() {
		core.AddSpanEvent(ctx, "user.role_changed",
			attribute.String("user.role", string(user.Role)),
		)
	}

	return user, nil
}

func (s *Service) DeleteUser(ctx context.Context, id string) error {
	ctx, span := core.StartSpan(ctx, tracerName, "user.DeleteUser",
		attribute.String("user.id", id),
	)
	defer span.End()

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		core.SetSpanError(ctx, err)
		return err
	}

	s.invalidate(ctx, user.ExternalID)

	return nil
}

func (s *Service) CountByRole(
	ctx context.Context,
) (map[role.Role]int, error) {
	return s.repo.CountByRole(ctx)
}

func (s *Service) invalidate(ctx context.Context, externalID string) {
	if s.invalidator != nil && externalID != "" {
		s.invalidator.Invalidate(ctx, externalID)
	}
}

type ProvisionRequest struct {
	ExternalID string `validate:"required,max=255"`
	Email      string `validate:"required,email,max=255"`
	Name       string `validate:"omitempty,max=100"`
}

// ProvisionOwner makes the given identity the first owner. It promotes an
// existing record or creates one, and refuses when any owner exists. Run it
// inside a transaction.
func ProvisionOwner(
	ctx context.Context,
	repo Repository,
	req ProvisionRequest,
) (*User, error) {
	exists, err := repo.ExistsWithRole(ctx, role.Owner)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("provision owner: %w", ErrOwnerExists)
	}

	existing, err := repo.GetByExternalID(ctx, req.ExternalID)
	switch {
	case err == nil:
		owner := role.Owner
		return repo.Update(ctx, existing.ID, Patch{Role: &owner})
	case !errors.Is(err, core.ErrNotFound):
		return nil, err
	}

	user := &User{
		ID:         uuid.New().String(),
		ExternalID: req.ExternalID,
		Email:      NormalizeEmail(req.Email),
		Role:       role.Owner,
	}
	if req.Name != "" {
		name := req.Name
		user.Name = &name
	}

	if err := repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}
