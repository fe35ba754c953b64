// AngelaMos | 2026
// permissions.go

package role

// Permissions is the resolved capability set of a caller. The flags are
// mutually exclusive; use Satisfies for "at least" checks.
type Permissions struct {
	UserID       string `json:"-"`
	Role         Role   `json:"role"`
	IsAdmin      bool   `json:"isAdmin"`
	IsSuperAdmin bool   `json:"isSuperAdmin"`
	IsOwner      bool   `json:"isOwner"`
}

func NewPermissions(userID string, r Role) *Permissions {
	return &Permissions{
		UserID:       userID,
		Role:         r,
		IsAdmin:      r == Admin,
		IsSuperAdmin: r == SuperAdmin,
		IsOwner:      r == Owner,
	}
}

func (p *Permissions) Satisfies(policy Policy) bool {
	return p != nil && p.Role.AtLeast(policy.Min)
}

// Policy is an "at least this rank" requirement.
type Policy struct {
	Name    string
	Min     Role
	Message string
}

var (
	AdminOrAbove = Policy{
		Name:    "admin",
		Min:     Admin,
		Message: "admin privileges required",
	}
	SuperAdminOrAbove = Policy{
		Name:    "superadmin",
		Min:     SuperAdmin,
		Message: "super admin privileges required",
	}
	OwnerOnly = Policy{
		Name:    "owner",
		Min:     Owner,
		Message: "owner privileges required",
	}
)
