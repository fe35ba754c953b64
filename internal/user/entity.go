// AngelaMos | 2026
// entity.go

package user

import (
	"time"

	"github.com/carterperez-dev/templates/admin-dashboard/internal/role"
)

type User struct {
	ID         string    `db:"id"`
	ExternalID string    `db:"external_id"`
	Name       *string   `db:"name"`
	Email      string    `db:"email"`
	Image      *string   `db:"image"`
	Role       role.Role `db:"role"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (u *User) Permissions() *role.Permissions {
	return role.NewPermissions(u.ID, u.Role)
}

// Patch holds the subset of mutable fields supplied by an update. A nil
// field is left untouched; ClearName and ClearImage null the column.
type Patch struct {
	Email      *string
	Name       *string
	ClearName  bool
	Role       *role.Role
	Image      *string
	ClearImage bool
}

func (p Patch) IsEmpty() bool {
	return p.Email == nil &&
		p.Name == nil && !p.ClearName &&
		p.Role == nil &&
		p.Image == nil && !p.ClearImage
}

func (p Patch) ChangesRole() bool {
	return p.Role != nil
}
