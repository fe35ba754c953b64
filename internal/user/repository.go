// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/carterperez-dev/templates/admin-dashboard/internal/core"
	"github.com/carterperez-dev/templates/admin-dashboard/internal/role"
)

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByExternalID(ctx context.Context, externalID string) (*User, error)
	ListAll(ctx context.Context) ([]User, error)
	CountByRole(ctx context.Context) (map[role.Role]int, error)
	ExistsWithRole(ctx context.Context, r role.Role) (bool, error)
	Update(ctx context.Context, id string, patch Patch) (*User, error)
	Delete(ctx context.Context, id string) error
}

const userColumns = `id, external_id, name, email, image, role, created_at, updated_at`

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, external_id, name, email, image, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, user, query,
		user.ID,
		user.ExternalID,
		user.Name,
		user.Email,
		user.Image,
		string(user.Role),
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var user User
	err := r.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

func (r *repository) GetByExternalID(
	ctx context.Context,
	externalID string,
) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE external_id = $1`

	var user User
	err := r.db.GetContext(ctx, &user, query, externalID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user by external id: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user by external id: %w", err)
	}

	return &user, nil
}

func (r *repository) ListAll(ctx context.Context) ([]User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`

	var users []User
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	return users, nil
}

type roleCount struct {
	Role  role.Role `db:"role"`
	Total int       `db:"total"`
}

func (r *repository) CountByRole(ctx context.Context) (map[role.Role]int, error) {
	query := `SELECT role, COUNT(*) AS total FROM users GROUP BY role`

	var rows []roleCount
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("count users by role: %w", err)
	}

	counts := make(map[role.Role]int, len(role.All))
	for _, rl := range role.All {
		counts[rl] = 0
	}
	for _, row := range rows {
		counts[row.Role] = row.Total
	}

	return counts, nil
}

func (r *repository) ExistsWithRole(
	ctx context.Context,
	rl role.Role,
) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE role = $1)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, string(rl)); err != nil {
		return false, fmt.Errorf("check role exists: %w", err)
	}

	return exists, nil
}

// Update applies only the fields present in patch. The caller handles the
// empty patch; an empty SET list is never sent.
func (r *repository) Update(
	ctx context.Context,
	id string,
	patch Patch,
) (*User, error) {
	sets, args := buildPatchSet(patch)
	if len(sets) == 0 {
		return nil, fmt.Errorf(
			"update user: empty patch: %w",
			core.ErrInvalidInput,
		)
	}

	args = append(args, id)
	query := fmt.Sprintf(
		`UPDATE users SET %s, updated_at = NOW() WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "),
		len(args),
		userColumns,
	)

	var user User
	err := r.db.GetContext(ctx, &user, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update user: %w", core.ErrNotFound)
	}
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, fmt.Errorf("update user: %w", core.ErrDuplicateKey)
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	return &user, nil
}

func buildPatchSet(patch Patch) ([]string, []any) {
	var sets []string
	var args []any

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Email != nil {
		add("email", *patch.Email)
	}
	switch {
	case patch.ClearName:
		sets = append(sets, "name = NULL")
	case patch.Name != nil:
		add("name", *patch.Name)
	}
	if patch.Role != nil {
		add("role", string(*patch.Role))
	}
	switch {
	case patch.ClearImage:
		sets = append(sets, "image = NULL")
	case patch.Image != nil:
		add("image", *patch.Image)
	}

	return sets, args
}

func (r *repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete user: %w", core.ErrNotFound)
	}

	return nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
