// AngelaMos | 2026
// handler_test.go

package guard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/admin-dashboard/internal/middleware"
	"github.com/carterperez-dev/templates/admin-dashboard/internal/role"
)

type mapResolver map[string]role.Role

func (m mapResolver) Resolve(_ context.Context, externalID string) *role.Permissions {
	r, ok := m[externalID]
	if !ok {
		return nil
	}
	return role.NewPermissions("u_"+externalID, r)
}

func optionalSubject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sub := middleware.ExtractToken(r); sub != "" {
			r = r.WithContext(middleware.WithIdentity(
				r.Context(),
				&middleware.Identity{ExternalID: sub},
			))
		}
		next.ServeHTTP(w, r)
	})
}

func getAccess(t *testing.T, query, subject string) (*httptest.ResponseRecorder, AccessResponse) {
	t.Helper()

	r := chi.NewRouter()
	NewHandler(mapResolver{
		"ext_owner": role.Owner,
		"ext_admin": role.Admin,
		"ext_guest": role.Guest,
	}).RegisterRoutes(r, optionalSubject)

	req := httptest.NewRequest(http.MethodGet, "/access"+query, nil)
	if subject != "" {
		req.Header.Set("Authorization", "Bearer "+subject)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var body AccessResponse
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestGetAccess(t *testing.T) {
	tests := []struct {
		query   string
		subject string
		state   State
		reason  Reason
	}{
		{"", "", StateDenied, ReasonAuthenticationRequired},
		{"", "ext_nobody", StateDenied, ReasonAccountSetupRequired},
		{"", "ext_guest", StateDenied, ReasonGuestUpgradeRequired},
		{"", "ext_admin", StateSuccess, ""},
		{"?require=superadmin", "ext_admin", StateDenied, ReasonSuperAdminRequired},
		{"?require=owner", "ext_admin", StateDenied, ReasonOwnerRequired},
		{"?require=owner", "ext_owner", StateSuccess, ""},
	}

	for _, tt := range tests {
		rec, body := getAccess(t, tt.query, tt.subject)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, tt.state, body.State, "%s %s", tt.query, tt.subject)
		assert.Equal(t, tt.reason, body.Reason, "%s %s", tt.query, tt.subject)
	}
}

func TestGetAccessGrantedAck(t *testing.T) {
	_, body := getAccess(t, "", "ext_owner")
	assert.Equal(t, int64(2000), body.GrantedAckMS)
	assert.Equal(t, role.Owner, body.Role)

	_, body = getAccess(t, "?skipAnimations=true", "ext_owner")
	assert.Zero(t, body.GrantedAckMS)
}

func TestGetAccessBadQuery(t *testing.T) {
	rec, _ := getAccess(t, "?require=root", "ext_owner")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = getAccess(t, "?skipAnimations=maybe", "ext_owner")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
