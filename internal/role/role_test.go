// AngelaMos | 2026
// role_test.go

package role

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/admin-dashboard/internal/core"
)

func TestParse(t *testing.T) {
	for _, r := range All {
		got, err := Parse(string(r))
		require.NoError(t, err)
		assert.Equal(t, r, got)
	}

	for _, bad := range []string{"", "admin", "Owner", "ROOT", " GUEST"} {
		_, err := Parse(bad)
		require.Error(t, err, bad)
		assert.True(t, errors.Is(err, core.ErrInvalidInput))
	}
}

func TestRankOrder(t *testing.T) {
	assert.Less(t, Owner.Rank(), SuperAdmin.Rank())
	assert.Less(t, SuperAdmin.Rank(), Admin.Rank())
	assert.Less(t, Admin.Rank(), Guest.Rank())
	assert.Greater(t, Role("ROOT").Rank(), Guest.Rank())
}

func TestAtLeast(t *testing.T) {
	tests := []struct {
		role Role
		min  Role
		want bool
	}{
		{Owner, Owner, true},
		{SuperAdmin, Owner, false},
		{Owner, SuperAdmin, true},
		{SuperAdmin, SuperAdmin, true},
		{Admin, SuperAdmin, false},
		{Admin, Admin, true},
		{Guest, Admin, false},
		{Guest, Guest, true},
		{Role("ROOT"), Guest, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.role.AtLeast(tt.min), "%s >= %s", tt.role, tt.min)
	}
}

func TestNewPermissionsFlagsAreExclusive(t *testing.T) {
	for _, r := range All {
		p := NewPermissions("u1", r)

		set := 0
		for _, flag := range []bool{p.IsAdmin, p.IsSuperAdmin, p.IsOwner} {
			if flag {
				set++
			}
		}

		if r == Guest {
			assert.Zero(t, set)
		} else {
			assert.Equal(t, 1, set, r)
		}
	}
}

func TestSatisfies(t *testing.T) {
	var none *Permissions
	assert.False(t, none.Satisfies(AdminOrAbove))

	assert.True(t, NewPermissions("a", Admin).Satisfies(AdminOrAbove))
	assert.False(t, NewPermissions("g", Guest).Satisfies(AdminOrAbove))
	assert.False(t, NewPermissions("a", Admin).Satisfies(SuperAdminOrAbove))
	assert.True(t, NewPermissions("o", Owner).Satisfies(SuperAdminOrAbove))
	assert.False(t, NewPermissions("s", SuperAdmin).Satisfies(OwnerOnly))
	assert.True(t, NewPermissions("o", Owner).Satisfies(OwnerOnly))
}
