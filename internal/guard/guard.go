// AngelaMos | 2026
// guard.go

package guard

import (
	"fmt"
	"strings"
	"time"

	"github.com/carterperez-dev/templates/admin-dashboard/internal/core"
	"github.com/carterperez-dev/templates/admin-dashboard/internal/role"
)

type State string

const (
	StateLoading  State = "loading"
	StateChecking State = "checking"
	StateSuccess  State = "success"
	StateDenied   State = "denied"
	StateError    State = "error"
)

type Reason string

const (
	ReasonAuthenticationRequired Reason = "AUTHENTICATION_REQUIRED"
	ReasonAccountSetupRequired   Reason = "ACCOUNT_SETUP_REQUIRED"
	ReasonOwnerRequired          Reason = "OWNER_REQUIRED"
	ReasonSuperAdminRequired     Reason = "SUPERADMIN_REQUIRED"
	ReasonGuestUpgradeRequired   Reason = "GUEST_UPGRADE_REQUIRED"
)

type Affordance string

const (
	AffordanceLogin   Affordance = "login"
	AffordanceLogout  Affordance = "logout"
	AffordanceRecheck Affordance = "recheck"
)

const GrantedAckDuration = 2 * time.Second

// Inputs is everything the guard looks at. Record is nil when the
// directory has no entry for the caller.
type Inputs struct {
	IdentityLoaded   bool
	Authenticated    bool
	DirectoryLoading bool
	DirectoryError   error
	Record           *role.Permissions
}

type Requirements struct {
	RequireAdmin      bool
	RequireSuperAdmin bool
	RequireOwner      bool
	SkipAnimations    bool
}

func DefaultRequirements() Requirements {
	return Requirements{RequireAdmin: true}
}

// RequirementsFor maps a tier name to requirements. The empty name means
// the default admin tier.
func RequirementsFor(tier string) (Requirements, error) {
	req := DefaultRequirements()

	switch strings.ToLower(tier) {
	case "", "admin":
	case "superadmin":
		req.RequireSuperAdmin = true
	case "owner":
		req.RequireOwner = true
	default:
		return Requirements{}, fmt.Errorf(
			"unknown access tier %q: %w",
			tier,
			core.ErrInvalidInput,
		)
	}

	return req, nil
}

type Decision struct {
	State       State         `json:"state"`
	Reason      Reason        `json:"reason,omitempty"`
	Title       string        `json:"title,omitempty"`
	Message     string        `json:"message"`
	Detail      string        `json:"detail,omitempty"`
	Role        role.Role     `json:"role,omitempty"`
	Affordances []Affordance  `json:"affordances"`
	GrantedAck  time.Duration `json:"-"`
}

func (d Decision) Allows(a Affordance) bool {
	for _, have := range d.Affordances {
		if have == a {
			return true
		}
	}
	return false
}

// Evaluate is a pure function of its arguments. The checks run in a fixed
// order and the first one that applies wins.
func Evaluate(in Inputs, req Requirements) Decision {
	switch {
	case !in.IdentityLoaded:
		return loading()
	case !in.Authenticated:
		return Decision{
			State:       StateDenied,
			Reason:      ReasonAuthenticationRequired,
			Title:       "Authentication Required",
			Message:     "Please login to access the admin portal.",
			Affordances: []Affordance{AffordanceLogin},
		}
	case in.DirectoryLoading:
		return loading()
	case in.DirectoryError != nil:
		return Decision{
			State:       StateError,
			Title:       "Authentication Error",
			Message:     "An error occurred while verifying your identity. Please try again.",
			Detail:      in.DirectoryError.Error(),
			Affordances: []Affordance{AffordanceLogout, AffordanceRecheck},
		}
	case in.Record == nil:
		return Decision{
			State:       StateDenied,
			Reason:      ReasonAccountSetupRequired,
			Title:       "Account Setup Required",
			Message:     "Your account needs to be set up. Please contact an administrator.",
			Affordances: []Affordance{AffordanceLogout},
		}
	}

	r := in.Record.Role

	switch {
	case req.RequireOwner && r != role.Owner:
		return accessDenied(
			ReasonOwnerRequired,
			"You need owner privileges to access this page.",
		)
	case req.RequireSuperAdmin && !r.AtLeast(role.SuperAdmin):
		return accessDenied(
			ReasonSuperAdminRequired,
			"You need super admin privileges to access this page.",
		)
	case req.RequireAdmin && r == role.Guest:
		d := accessDenied(
			ReasonGuestUpgradeRequired,
			"You are a guest user and need admin access to view this page. "+
				"Please contact an administrator to upgrade your account.",
		)
		d.Affordances = append(d.Affordances, AffordanceRecheck)
		return d
	}

	d := Decision{
		State: StateSuccess,
		Title: "Access Granted",
		Message: fmt.Sprintf(
			"Welcome to the Admin Portal. You have %s privileges.",
			strings.ToLower(r.String()),
		),
		Role:        r,
		Affordances: []Affordance{AffordanceLogout},
	}
	if !req.SkipAnimations {
		d.GrantedAck = GrantedAckDuration
	}
	return d
}

func loading() Decision {
	return Decision{
		State:       StateLoading,
		Message:     "Verifying your identity...",
		Affordances: []Affordance{},
	}
}

func checking() Decision {
	return Decision{
		State:       StateChecking,
		Message:     "Verifying permissions...",
		Affordances: []Affordance{},
	}
}

func accessDenied(reason Reason, message string) Decision {
	return Decision{
		State:       StateDenied,
		Reason:      reason,
		Title:       "Access Denied",
		Message:     message,
		Affordances: []Affordance{AffordanceLogout},
	}
}
