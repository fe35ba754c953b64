// AngelaMos | 2026
// main_test.go

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/admin-dashboard/internal/config"
	"github.com/carterperez-dev/templates/admin-dashboard/internal/core"
	"github.com/carterperez-dev/templates/admin-dashboard/internal/guard"
	"github.com/carterperez-dev/templates/admin-dashboard/internal/identity"
	"github.com/carterperez-dev/templates/admin-dashboard/internal/role"
)

func TestKeygenThenToken(t *testing.T) {
	dir := t.TempDir()
	priv := filepath.Join(dir, "private.pem")
	pub := filepath.Join(dir, "public.pem")
	ctx := context.Background()

	var out bytes.Buffer
	require.Equal(t, exitOK, dispatch(ctx, "keygen", []string{"-private", priv, "-public", pub}, &out))

	out.Reset()
	code := dispatch(ctx, "token", []string{"-key", priv, "-sub", "ext_owner", "-iss", "idp"}, &out)
	require.Equal(t, exitOK, code)

	verifier, err := identity.NewVerifier(ctx, config.IdentityConfig{
		PublicKeyPath: pub,
		Issuer:        "idp",
	})
	require.NoError(t, err)

	id, err := verifier.Verify(ctx, strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "ext_owner", id.ExternalID)
}

func TestTokenRequiresSubject(t *testing.T) {
	var out bytes.Buffer
	assert.Equal(t, exitFailure, dispatch(context.Background(), "token", nil, &out))
	assert.Empty(t, out.String())
}

func TestUnknownCommand(t *testing.T) {
	assert.Equal(t, exitFailure, dispatch(context.Background(), "frobnicate", nil, &bytes.Buffer{}))
}

func TestAccessExitCodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get("Authorization") {
		case "Bearer owner":
			core.OK(w, role.NewPermissions("", role.Owner))
		case "Bearer guest":
			core.OK(w, role.NewPermissions("", role.Guest))
		default:
			core.InternalServerError(w, assert.AnError)
		}
	}))
	t.Cleanup(srv.Close)

	tests := []struct {
		name  string
		token string
		code  int
		state guard.State
	}{
		{"owner", "owner", exitOK, guard.StateSuccess},
		{"guest", "guest", exitDenied, guard.StateDenied},
		{"anonymous", "", exitDenied, guard.StateDenied},
		{"server failure", "broken", exitError, guard.StateError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			code := dispatch(context.Background(), "access", []string{
				"-url", srv.URL,
				"-token", tt.token,
				"-skip-animations",
			}, &out)
			require.Equal(t, tt.code, code)

			lines := strings.Split(strings.TrimSpace(out.String()), "\n")
			var last guard.Decision
			require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &last))
			assert.Equal(t, tt.state, last.State)
		})
	}
}

func TestAccessRejectsUnknownTier(t *testing.T) {
	code := dispatch(context.Background(), "access", []string{"-require", "root"}, &bytes.Buffer{})
	assert.Equal(t, exitFailure, code)
}
