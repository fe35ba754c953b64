// AngelaMos | 2026
// client.go

package guard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/carterperez-dev/templates/admin-dashboard/internal/core"
	"github.com/carterperez-dev/templates/admin-dashboard/internal/role"
)

const selfInfoPath = "/v1/users/me"

// HTTPLoader asks the API who the bearer of token is.
type HTTPLoader struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewHTTPLoader(baseURL, token string, client *http.Client) *HTTPLoader {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPLoader{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  client,
	}
}

type selfInfo struct {
	Role role.Role `json:"role"`
}

// Load maps the self-info response onto guard inputs. A 401 carrying the
// UNPROVISIONED code means the token is fine but no record exists; any
// other 401 means the token itself was rejected.
func (l *HTTPLoader) Load(ctx context.Context) (Lookup, error) {
	if l.token == "" {
		return Lookup{}, nil
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		l.baseURL+selfInfoPath,
		nil,
	)
	if err != nil {
		return Lookup{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+l.token)
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return Lookup{}, fmt.Errorf("fetch self info: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	switch resp.StatusCode {
	case http.StatusOK:
		var info selfInfo
		if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
			return Lookup{}, fmt.Errorf("decode self info: %w", err)
		}
		if !info.Role.Valid() {
			return Lookup{}, fmt.Errorf("unknown role %q", info.Role)
		}
		return Lookup{
			Authenticated: true,
			Record:        role.NewPermissions("", info.Role),
		}, nil

	case http.StatusUnauthorized:
		body := decodeErrorBody(resp)
		if body.Code == core.CodeUnprovisioned {
			return Lookup{Authenticated: true}, nil
		}
		return Lookup{}, nil

	default:
		body := decodeErrorBody(resp)
		if body.Message == "" {
			body.Message = http.StatusText(resp.StatusCode)
		}
		return Lookup{}, fmt.Errorf(
			"self info: status %d: %s",
			resp.StatusCode,
			body.Message,
		)
	}
}

func decodeErrorBody(resp *http.Response) core.ErrorBody {
	var envelope core.ErrorResponse
	//nolint:errcheck // an undecodable body leaves the zero value
	_ = json.NewDecoder(resp.Body).Decode(&envelope)
	return envelope.Error
}
