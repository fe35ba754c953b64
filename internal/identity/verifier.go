// AngelaMos | 2026
// verifier.go

package identity

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/carterperez-dev/templates/admin-dashboard/internal/config"
	"github.com/carterperez-dev/templates/admin-dashboard/internal/core"
	"github.com/carterperez-dev/templates/admin-dashboard/internal/middleware"
)

// Verifier validates bearer tokens minted by the external identity
// provider. It trusts the subject claim once the signature, issuer,
// audience and time claims check out.
type Verifier struct {
	keyOption jwt.ParseOption
	config    config.IdentityConfig
}

func NewVerifier(
	ctx context.Context,
	cfg config.IdentityConfig,
) (*Verifier, error) {
	if cfg.JWKSURL != "" {
		set, err := jwk.Fetch(ctx, cfg.JWKSURL)
		if err != nil {
			return nil, fmt.Errorf("fetch jwks: %w", err)
		}
		return &Verifier{keyOption: jwt.WithKeySet(set), config: cfg}, nil
	}

	keyPEM, err := os.ReadFile(cfg.PublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read public key: %w", err)
	}

	key, err := jwk.ParseKey(keyPEM, jwk.WithPEM(true))
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}

	return NewVerifierWithKey(key, cfg)
}

// NewVerifierWithKey verifies against a single key using the configured
// algorithm. Private keys are reduced to their public half.
func NewVerifierWithKey(
	key jwk.Key,
	cfg config.IdentityConfig,
) (*Verifier, error) {
	alg, err := SignatureAlgorithm(cfg.Algorithm)
	if err != nil {
		return nil, err
	}

	publicKey, err := key.PublicKey()
	if err != nil {
		return nil, fmt.Errorf("derive public key: %w", err)
	}

	return &Verifier{
		keyOption: jwt.WithKey(alg, publicKey),
		config:    cfg,
	}, nil
}

func SignatureAlgorithm(name string) (jwa.SignatureAlgorithm, error) {
	switch strings.ToUpper(name) {
	case "", "ES256":
		return jwa.ES256(), nil
	case "ES384":
		return jwa.ES384(), nil
	case "RS256":
		return jwa.RS256(), nil
	case "PS256":
		return jwa.PS256(), nil
	case "EDDSA":
		return jwa.EdDSA(), nil
	default:
		var none jwa.SignatureAlgorithm
		return none, fmt.Errorf(
			"unsupported signature algorithm %q",
			name,
		)
	}
}

func (v *Verifier) Verify(
	ctx context.Context,
	tokenString string,
) (*middleware.Identity, error) {
	opts := []jwt.ParseOption{
		v.keyOption,
		jwt.WithValidate(true),
	}
	if v.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.config.Issuer))
	}
	if v.config.Audience != "" {
		opts = append(opts, jwt.WithAudience(v.config.Audience))
	}

	token, err := jwt.Parse([]byte(tokenString), opts...)
	if err != nil {
		if isTokenExpiredError(err) {
			return nil, fmt.Errorf("verify token: %w", core.ErrTokenExpired)
		}
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenInvalid)
	}

	subject, ok := token.Subject()
	if !ok || subject == "" {
		return nil, fmt.Errorf(
			"verify token: missing subject: %w",
			core.ErrTokenInvalid,
		)
	}

	var sessionID string
	//nolint:errcheck // sid is optional
	_ = token.Get("sid", &sessionID)

	return &middleware.Identity{
		ExternalID: subject,
		SessionID:  sessionID,
	}, nil
}

func isTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "exp") &&
		strings.Contains(errStr, "not satisfied")
}

var _ middleware.IdentityVerifier = (*Verifier)(nil)
