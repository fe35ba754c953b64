// AngelaMos | 2026
// fake_test.go

package user

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/carterperez-dev/templates/admin-dashboard/internal/core"
	"github.com/carterperez-dev/templates/admin-dashboard/internal/role"
)

type fakeRepo struct {
	mu      sync.Mutex
	users   map[string]User
	listErr error
	reads   int
}

func newFakeRepo(users ...User) *fakeRepo {
	r := &fakeRepo{users: make(map[string]User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeRepo) Create(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.ExternalID == u.ExternalID {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	r.users[u.ID] = *u
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reads++
	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	return &u, nil
}

func (r *fakeRepo) GetByExternalID(_ context.Context, externalID string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reads++
	for _, u := range r.users {
		if u.ExternalID == externalID {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("get user by external id: %w", core.ErrNotFound)
}

func (r *fakeRepo) ListAll(_ context.Context) ([]User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reads++
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

func (r *fakeRepo) CountByRole(_ context.Context) (map[role.Role]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[role.Role]int)
	for _, u := range r.users {
		counts[u.Role]++
	}
	return counts, nil
}

func (r *fakeRepo) ExistsWithRole(_ context.Context, rl role.Role) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Role == rl {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) Update(_ context.Context, id string, p Patch) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("update user: %w", core.ErrNotFound)
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	switch {
	case p.ClearName:
		u.Name = nil
	case p.Name != nil:
		u.Name = p.Name
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	switch {
	case p.ClearImage:
		u.Image = nil
	case p.Image != nil:
		u.Image = p.Image
	}
	u.UpdatedAt = time.Now()
	r.users[id] = u
	return &u, nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return fmt.Errorf("delete user: %w", core.ErrNotFound)
	}
	delete(r.users, id)
	return nil
}

func (r *fakeRepo) readCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reads
}

type recordingInvalidator struct {
	mu  sync.Mutex
	ids []string
}

func (i *recordingInvalidator) Invalidate(_ context.Context, externalID string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.ids = append(i.ids, externalID)
}

var errDatabaseDown = errors.New("database down")

var baseTime = time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

func testUser(id string, r role.Role, age time.Duration) User {
	return User{
		ID:         id,
		ExternalID: "ext_" + id,
		Email:      id + "@example.com",
		Role:       r,
		CreatedAt:  baseTime.Add(-age),
		UpdatedAt:  baseTime.Add(-age),
	}
}
