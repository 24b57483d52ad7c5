// ABOUTME: Shared wiring for commands: config, logger, client, token store and session
// ABOUTME: Also maps errors to exit codes and renders JSON output

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/Modhak129/WEB-freelance/internal/authz"
	"github.com/Modhak129/WEB-freelance/internal/client"
	"github.com/Modhak129/WEB-freelance/internal/config"
	"github.com/Modhak129/WEB-freelance/internal/forms"
	"github.com/Modhak129/WEB-freelance/internal/logger"
	"github.com/Modhak129/WEB-freelance/internal/session"
	"github.com/Modhak129/WEB-freelance/internal/tokenstore"
)

// Exit codes
const (
	exitOK      = 0
	exitRefused = 1
	exitError   = 2
)

const expiredMessage = "Your session has expired. Please log in again."

// env is everything a command needs to talk to the marketplace
type env struct {
	cfg     *config.Config
	log     zerolog.Logger
	closer  io.Closer
	store   tokenstore.Store
	api     *client.Client
	session *session.Manager
}

func newEnv(ctx context.Context) (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	log, closer, err := logger.New(logger.Options{Level: cfg.LogLevel, Dir: cfg.ConfigDir})
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}

	api := client.New(cfg.APIURL,
		client.WithTimeout(cfg.RequestTimeout),
		client.WithRateLimit(cfg.RateLimit, cfg.RateBurst),
		client.WithLogger(log),
	)

	store, err := tokenstore.Open(ctx, tokenstore.Options{
		Backend:   cfg.TokenStore,
		ConfigDir: cfg.ConfigDir,
		Profile:   cfg.Profile,
		Redis: tokenstore.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		},
	})
	if err != nil {
		closer.Close()
		return nil, err
	}

	log.Debug().
		Str("api_url", api.BaseURL()).
		Str("token_store", cfg.TokenStore).
		Msg("environment ready")

	return &env{
		cfg:     cfg,
		log:     log,
		closer:  closer,
		store:   store,
		api:     api,
		session: session.New(api, store, session.WithLogger(log)),
	}, nil
}

// Close releases the token store connection and the log file
func (e *env) Close() {
	if err := e.store.Close(); err != nil {
		e.log.Warn().Err(err).Msg("failed to close token store")
	}
	e.closer.Close()
}

// setup builds the env or reports why it could not
func setup(ctx context.Context, w io.Writer) (*env, int) {
	e, err := newEnv(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return nil, exitError
	}
	return e, exitOK
}

// authenticate restores the stored session. It prints the reason and
// returns a non-zero code when there is no usable session.
func (e *env) authenticate(ctx context.Context, w io.Writer) (session.Session, int) {
	err := e.session.Bootstrap(ctx)
	s := e.session.Current()
	switch {
	case s.Authenticated():
		return s, exitOK
	case errors.Is(err, session.ErrSessionInvalid):
		fmt.Fprintln(w, expiredMessage)
		return s, exitRefused
	case err != nil:
		fmt.Fprintf(w, "Error: %v\n", err)
		return s, exitError
	}
	fmt.Fprintln(w, authz.ReasonUnauthenticated.Message())
	return s, exitRefused
}

// authed binds an authenticated call to the current token. A rejection of
// that token clears the stored session.
func (e *env) authed(fn func(ctx context.Context, token string) (any, error)) func(ctx context.Context) (any, error) {
	mgr := e.session
	token := mgr.Token()
	return func(ctx context.Context) (any, error) {
		result, err := fn(ctx, token)
		mgr.CheckError(ctx, token, err)
		return result, err
	}
}

// fail prints err and returns its exit code
func fail(w io.Writer, err error) int {
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		fmt.Fprintln(w, expiredMessage)
	default:
		fmt.Fprintf(w, "Error: %v\n", err)
	}
	return exitCode(err)
}

// deny prints an authorization refusal
func deny(w io.Writer, d authz.Decision) int {
	fmt.Fprintln(w, d.Reason.Message())
	return exitRefused
}

// exitCode maps an error to the command's exit status
func exitCode(err error) int {
	var verr *forms.ValidationError
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &verr),
		errors.Is(err, session.ErrCredentials),
		errors.Is(err, client.ErrUnauthorized),
		errors.Is(err, client.ErrForbidden):
		return exitRefused
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode < 500 {
		return exitRefused
	}
	return exitError
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

func writeJSON(w io.Writer, v any) {
	data, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(w, string(data))
}
