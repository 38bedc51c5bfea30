// SPDX-License-Identifier: Apache-2.0
package cmdutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/term"

	"github.com/Work-Fort/Intake/pkg/config"
	"github.com/Work-Fort/Intake/pkg/identity"
	"github.com/Work-Fort/Intake/pkg/metrics"
	"github.com/Work-Fort/Intake/pkg/registration"
	"github.com/Work-Fort/Intake/pkg/store"
)

// IsInteractive checks if stdin is connected to a terminal AND the user wants TUI mode
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && config.GetUseTUI()
}

// Services bundles the backends a command talks to
type Services struct {
	Store    store.Store
	Accounts *identity.Accounts
	Verifier *identity.Verifier
	Mailer   identity.Mailer
	Metrics  *metrics.Metrics
	Logger   *log.Logger
}

// ServiceOptions adjusts OpenServices
type ServiceOptions struct {
	// DryRun uses an in-memory store and tolerates a missing token secret
	DryRun bool
	Logger *log.Logger
	// Out receives dry-run mail; defaults to stdout
	Out io.Writer
}

// OpenServices builds the store, identity and metrics collaborators from config
func OpenServices(ctx context.Context, opts ServiceOptions) (*Services, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	cfg := store.Config{
		Backend:  config.GetStoreBackend(),
		NATSURL:  config.GetNATSURL(),
		NATSDir:  config.GetNATSDir(),
		RedisURL: config.GetRedisURL(),
	}
	if opts.DryRun {
		cfg.Backend = store.BackendMemory
	}
	log.Debugf("OpenServices: backend=%s", cfg.Backend)

	s, err := store.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Backend, err)
	}

	accounts := identity.NewAccounts(s, identity.WithHashCost(config.GetHashCost()), identity.WithLogger(logger))

	secret := config.GetTokenSecret()
	if secret == "" && opts.DryRun {
		// Links from a dry run are never delivered
		secret = uuid.NewString()
	}
	verifier, err := identity.NewVerifier(secret, config.GetVerifyURL(), config.GetTokenTTL(), accounts)
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("%w\n\nHint: intake config set --global identity.token-secret <at least 16 characters>\n"+
			"  or set INTAKE_IDENTITY_TOKEN_SECRET", err)
	}

	var mailer identity.Mailer = identity.NewOutboxMailer(s, logger)
	if opts.DryRun {
		out := opts.Out
		if out == nil {
			out = os.Stdout
		}
		mailer = printMailer(out)
	}

	return &Services{
		Store:    s,
		Accounts: accounts,
		Verifier: verifier,
		Mailer:   mailer,
		Metrics:  metrics.New(),
		Logger:   logger,
	}, nil
}

// Registration returns the collaborators the registration gateways need
func (s *Services) Registration() registration.Services {
	return registration.Services{
		Store:    s.Store,
		Accounts: s.Accounts,
		Verifier: s.Verifier,
		Mailer:   s.Mailer,
		Logger:   s.Logger,
	}
}

// ServeMetrics exposes /metrics and /healthz in the background when
// metrics.addr is configured. The server stops when ctx is cancelled.
func (s *Services) ServeMetrics(ctx context.Context) {
	addr := config.GetMetricsAddr()
	if addr == "" {
		return
	}
	go func() {
		if err := metrics.Serve(ctx, addr, s.Metrics); err != nil {
			s.Logger.Error("metrics server stopped", "addr", addr, "err", err)
		}
	}()
}

// Close releases the store
func (s *Services) Close() error {
	if s == nil || s.Store == nil {
		return nil
	}
	if err := s.Store.Close(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
