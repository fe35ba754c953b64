// AngelaMos | 2026
// role.go

// Package role holds the closed role enumeration, its rank order and the
// capability flags derived from it.
package role

import (
	"fmt"

	"github.com/carterperez-dev/templates/admin-dashboard/internal/core"
)

type Role string

const (
	Guest      Role = "GUEST"
	Admin      Role = "ADMIN"
	SuperAdmin Role = "SUPERADMIN"
	Owner      Role = "OWNER"
)

// All lists the enumeration from most to least privileged.
var All = []Role{Owner, SuperAdmin, Admin, Guest}

const unknownRank = 999

var rank = map[Role]int{
	Owner:      0,
	SuperAdmin: 1,
	Admin:      2,
	Guest:      3,
}

func Parse(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("parse role %q: %w", s, core.ErrInvalidInput)
	}
	return r, nil
}

func (r Role) Valid() bool {
	_, ok := rank[r]
	return ok
}

// Rank orders roles for sorting, lower is more privileged. Unknown values
// sort after every known role.
func (r Role) Rank() int {
	if n, ok := rank[r]; ok {
		return n
	}
	return unknownRank
}

// AtLeast reports whether r is a known role ranked at or above min.
func (r Role) AtLeast(min Role) bool {
	return r.Valid() && r.Rank() <= min.Rank()
}

func (r Role) String() string {
	return string(r)
}
