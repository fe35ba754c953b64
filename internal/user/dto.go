// AngelaMos | 2026
// dto.go

package user

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/templates/admin-dashboard/internal/core"
	"github.com/carterperez-dev/templates/admin-dashboard/internal/role"
)

// OptionalString tells apart a field that was absent, explicitly null, or
// set to a value (including the empty string).
type OptionalString struct {
	Set   bool
	Null  bool
	Value string
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true

	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		return nil
	}

	return json.Unmarshal(data, &o.Value)
}

type UpdateUserRequest struct {
	Email OptionalString `json:"email"`
	Name  OptionalString `json:"name"`
	Role  OptionalString `json:"role"`
	Image OptionalString `json:"image"`
}

// ToPatch validates the supplied fields and converts them into a Patch.
func (r UpdateUserRequest) ToPatch(v *validator.Validate) (Patch, error) {
	var p Patch

	if r.Email.Set {
		if r.Email.Null {
			return Patch{}, invalidField("email", "must not be null")
		}
		if err := v.Var(r.Email.Value, "required,email,max=255"); err != nil {
			return Patch{}, invalidField("email", "must be a valid email")
		}
		email := NormalizeEmail(r.Email.Value)
		p.Email = &email
	}

	if r.Name.Set {
		if r.Name.Null {
			p.ClearName = true
		} else {
			if err := v.Var(r.Name.Value, "max=100"); err != nil {
				return Patch{}, invalidField("name", "must be at most 100")
			}
			name := r.Name.Value
			p.Name = &name
		}
	}

	if r.Role.Set {
		if r.Role.Null {
			return Patch{}, invalidField("role", "must not be null")
		}
		parsed, err := role.Parse(r.Role.Value)
		if err != nil {
			return Patch{}, invalidField(
				"role",
				"must be one of: GUEST ADMIN SUPERADMIN OWNER",
			)
		}
		p.Role = &parsed
	}

	if r.Image.Set {
		if r.Image.Null {
			p.ClearImage = true
		} else {
			if err := v.Var(r.Image.Value, "max=2048"); err != nil {
				return Patch{}, invalidField("image", "must be at most 2048")
			}
			image := r.Image.Value
			p.Image = &image
		}
	}

	return p, nil
}

func invalidField(field, reason string) error {
	return fmt.Errorf("%s %s: %w", field, reason, core.ErrInvalidInput)
}

type UserResponse struct {
	ID         string    `json:"id"`
	ExternalID string    `json:"externalId"`
	Name       *string   `json:"name,omitempty"`
	Email      string    `json:"email"`
	Role       role.Role `json:"role"`
	Image      *string   `json:"image,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type ListUsersParams struct {
	Page  int
	Limit int
}

// Offset is the index of the first record on the page. It saturates at
// math.MaxInt instead of wrapping for very large pages.
func (p ListUsersParams) Offset() int {
	if p.Page <= 1 || p.Limit <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Limit
}

// NormalizeEmail is applied to every email before it is stored.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate rejects a page below 1 or a limit outside [1, maxLimit].
func (p ListUsersParams) Validate(maxLimit int) error {
	if p.Page < 1 || p.Limit < 1 || p.Limit > maxLimit {
		return fmt.Errorf(
			"page must be >= 1, limit must be between 1 and %d: %w",
			maxLimit,
			core.ErrInvalidInput,
		)
	}
	return nil
}

type ListUsersResult struct {
	Users []User
	Total int
}

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		ExternalID: u.ExternalID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		Image:      u.Image,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

func ToUserResponseList(users []User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, ToUserResponse(&users[i]))
	}
	return responses
}
