// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/templates/admin-dashboard/internal/authz"
	"github.com/carterperez-dev/templates/admin-dashboard/internal/config"
	"github.com/carterperez-dev/templates/admin-dashboard/internal/core"
	"github.com/carterperez-dev/templates/admin-dashboard/internal/guard"
	"github.com/carterperez-dev/templates/admin-dashboard/internal/identity"
	"github.com/carterperez-dev/templates/admin-dashboard/internal/user"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitDenied  = 2
	exitError   = 3
)

const usage = `usage: adminctl <command> [flags]

commands:
  access            evaluate the admin access guard for a token
  bootstrap-owner   make an identity the first owner
  keygen            write a development signing key pair
  token             mint a development token for an external id
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(exitFailure)
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	code := dispatch(ctx, os.Args[1], os.Args[2:], os.Stdout)
	stop()
	os.Exit(code)
}

func dispatch(ctx context.Context, cmd string, args []string, out io.Writer) int {
	var err error
	code := exitOK

	switch cmd {
	case "access":
		code, err = runAccess(ctx, args, out)
	case "bootstrap-owner":
		err = runBootstrapOwner(ctx, args, out)
	case "keygen":
		err = runKeygen(args, out)
	case "token":
		err = runToken(args, out)
	default:
		fmt.Fprint(os.Stderr, usage)
		return exitFailure
	}

	if err != nil {
		slog.Error(cmd+" failed", "error", err)
		return exitFailure
	}
	return code
}

// runAccess drives a guard session against the API and prints every
// transition as a JSON line. With -watch, a guest denial is rechecked until
// it clears or the process is interrupted.
func runAccess(ctx context.Context, args []string, out io.Writer) (int, error) {
	fs := flag.NewFlagSet("access", flag.ContinueOnError)
	baseURL := fs.String("url", "http://localhost:8080", "API base URL")
	token := fs.String("token", os.Getenv("ADMINCTL_TOKEN"), "bearer token")
	tier := fs.String("require", "admin", "required tier: admin, superadmin or owner")
	skip := fs.Bool("skip-animations", false, "skip the access granted pause")
	watch := fs.Duration("watch", 0, "recheck interval while a recheck is offered")
	if err := fs.Parse(args); err != nil {
		return exitFailure, err
	}

	req, err := guard.RequirementsFor(*tier)
	if err != nil {
		return exitFailure, err
	}
	req.SkipAnimations = *skip

	session := guard.NewSession(
		guard.NewHTTPLoader(*baseURL, *token, nil),
		req,
	)

	enc := json.NewEncoder(out)
	session.Observe(func(d guard.Decision) {
		//nolint:errcheck // best-effort progress output
		_ = enc.Encode(d)
	})

	decision := session.Start(ctx)
	for *watch > 0 && decision.Allows(guard.AffordanceRecheck) {
		select {
		case <-ctx.Done():
			return exitCode(decision), nil
		case <-time.After(*watch):
		}
		decision = session.Recheck(ctx)
	}

	if decision.State == guard.StateSuccess && decision.GrantedAck > 0 {
		select {
		case <-ctx.Done():
		case <-time.After(decision.GrantedAck):
		}
	}

	return exitCode(decision), nil
}

func exitCode(d guard.Decision) int {
	switch d.State {
	case guard.StateSuccess:
		return exitOK
	case guard.StateDenied:
		return exitDenied
	default:
		return exitError
	}
}

func runBootstrapOwner(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("bootstrap-owner", flag.ContinueOnError)
	configPath := fs.String("config", "config.yaml", "path to config file")
	externalID := fs.String("external-id", "", "identity provider subject")
	email := fs.String("email", "", "owner email")
	name := fs.String("name", "", "owner display name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	req := user.ProvisionRequest{
		ExternalID: *externalID,
		Email:      *email,
		Name:       *name,
	}
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(req); err != nil {
		return errors.New(core.FormatValidationError(err))
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	logger := config.NewLogger(cfg.Log, os.Stderr)
	slog.SetDefault(logger)

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck // process exits right after

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			return err
		}
	}

	var owner *user.User
	err = core.InTxWithOptions(
		ctx,
		db.DB,
		&sql.TxOptions{Isolation: sql.LevelSerializable},
		func(tx *sqlx.Tx) error {
			var txErr error
			owner, txErr = user.ProvisionOwner(ctx, user.NewRepository(tx), req)
			return txErr
		},
	)
	if err != nil {
		return err
	}

	if cfg.Authz.CacheTTL > 0 {
		redis, redisErr := core.NewRedis(ctx, cfg.Redis)
		if redisErr != nil {
			logger.Warn("skipping authz cache invalidation", "error", redisErr)
		} else {
			authz.NewRedisCache(redis.Client, cfg.Authz.CacheTTL, logger).
				Invalidate(ctx, owner.ExternalID)
			_ = redis.Close() //nolint:errcheck // process exits right after
		}
	}

	logger.Info("owner provisioned",
		"user_id", owner.ID,
		"external_id", owner.ExternalID,
	)

	return json.NewEncoder(out).Encode(user.ToUserResponse(owner))
}

func runKeygen(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("keygen", flag.ContinueOnError)
	privatePath := fs.String("private", "keys/private.pem", "private key output path")
	publicPath := fs.String("public", "keys/public.pem", "public key output path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := identity.GenerateKeyPair(*privatePath, *publicPath); err != nil {
		return err
	}

	_, err := fmt.Fprintf(out, "wrote %s and %s\n", *privatePath, *publicPath)
	return err
}

func runToken(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	keyPath := fs.String("key", "keys/private.pem", "private key path")
	subject := fs.String("sub", "", "external id to put in the subject claim")
	issuer := fs.String("iss", "", "issuer claim")
	audience := fs.String("aud", "", "audience claim")
	ttl := fs.Duration("ttl", time.Hour, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *subject == "" {
		return errors.New("-sub is required")
	}

	signer, err := identity.LoadSigner(*keyPath, *issuer, *audience)
	if err != nil {
		return err
	}

	token, err := signer.Sign(*subject, *ttl)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(out, token)
	return err
}
