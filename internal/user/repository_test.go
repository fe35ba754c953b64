// AngelaMos | 2026
// repository_test.go

package user

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/admin-dashboard/internal/core"
	"github.com/carterperez-dev/templates/admin-dashboard/internal/role"
)

var columns = []string{
	"id", "external_id", "name", "email", "image", "role", "created_at", "updated_at",
}

func newRepoWithMock(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close() //nolint:errcheck // test cleanup
	})

	return NewRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func TestRepositoryGetByExternalID(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT id, external_id, .* FROM users WHERE external_id = \$1`).
		WithArgs("ext_1").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("u1", "ext_1", "Ada", "ada@example.com", nil, "ADMIN", created, created))

	u, err := repo.GetByExternalID(context.Background(), "ext_1")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, role.Admin, u.Role)
	require.NotNil(t, u.Name)
	assert.Equal(t, "Ada", *u.Name)
	assert.Nil(t, u.Image)
	assert.True(t, created.Equal(u.CreatedAt))
}

func TestRepositoryGetByIDNotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM users WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRepositoryListAll(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT .* FROM users ORDER BY created_at DESC`).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("u1", "ext_1", nil, "a@example.com", nil, "GUEST", now, now).
			AddRow("u2", "ext_2", nil, "b@example.com", nil, "OWNER", now, now))

	users, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, role.Owner, users[1].Role)
}

func TestRepositoryCountByRoleFillsMissingRoles(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`SELECT role, COUNT\(\*\) AS total FROM users GROUP BY role`).
		WillReturnRows(sqlmock.NewRows([]string{"role", "total"}).
			AddRow("ADMIN", 3).
			AddRow("GUEST", 7))

	counts, err := repo.CountByRole(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[role.Role]int{
		role.Owner:      0,
		role.SuperAdmin: 0,
		role.Admin:      3,
		role.Guest:      7,
	}, counts)
}

func TestRepositoryUpdateBuildsPartialSet(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(
		`UPDATE users SET email = \$1, name = NULL, role = \$2, updated_at = NOW\(\) WHERE id = \$3 RETURNING id, external_id`,
	).
		WithArgs("new@example.com", "OWNER", "u1").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("u1", "ext_1", nil, "new@example.com", nil, "OWNER", now, now))

	email := "new@example.com"
	owner := role.Owner
	u, err := repo.Update(context.Background(), "u1", Patch{
		Email:     &email,
		ClearName: true,
		Role:      &owner,
	})
	require.NoError(t, err)
	assert.Equal(t, role.Owner, u.Role)
	assert.Nil(t, u.Name)
}

func TestRepositoryUpdateNotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`UPDATE users SET image = \$1, updated_at = NOW\(\) WHERE id = \$2`).
		WithArgs("https://img", "ghost").
		WillReturnError(sql.ErrNoRows)

	image := "https://img"
	_, err := repo.Update(context.Background(), "ghost", Patch{Image: &image})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRepositoryUpdateRejectsEmptyPatch(t *testing.T) {
	repo, _ := newRepoWithMock(t)

	_, err := repo.Update(context.Background(), "u1", Patch{})
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestRepositoryCreateDuplicate(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Create(context.Background(), &User{
		ID:         "u1",
		ExternalID: "ext_1",
		Email:      "a@example.com",
		Role:       role.Owner,
	})
	assert.ErrorIs(t, err, core.ErrDuplicateKey)
}

func TestRepositoryDelete(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`DELETE FROM users WHERE id = \$1`).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM users WHERE id = \$1`).
		WithArgs("u2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), "u1"))
	assert.ErrorIs(t, repo.Delete(context.Background(), "u2"), core.ErrNotFound)
}

func TestRepositoryExistsWithRole(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM users WHERE role = \$1\)`).
		WithArgs("OWNER").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsWithRole(context.Background(), role.Owner)
	require.NoError(t, err)
	assert.True(t, exists)
}
