// ABOUTME: Session state machine owning the bearer token and the signed-in user
// ABOUTME: Handles bootstrap validation, login, register, logout and forced invalidation

package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/Modhak129/WEB-freelance/internal/client"
	"github.com/Modhak129/WEB-freelance/internal/tokenstore"
)

// Status is the authentication state of a Session
type Status int

const (
	Initializing Status = iota
	Unauthenticated
	Validating
	Authenticated
	Invalid
)

func (s Status) String() string {
	switch s {
	case Initializing:
		return "initializing"
	case Unauthenticated:
		return "unauthenticated"
	case Validating:
		return "validating"
	case Authenticated:
		return "authenticated"
	case Invalid:
		return "invalid"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

var (
	// ErrCredentials means the server rejected a login or registration
	ErrCredentials = errors.New("credentials rejected")
	// ErrSessionInvalid means the stored token was rejected and has been purged
	ErrSessionInvalid = errors.New("session expired, please log in again")
	// ErrSuperseded means a logout or newer login replaced the operation's result
	ErrSuperseded = errors.New("session changed while the request was in flight")
)

// Session is a snapshot of the authentication state.
// User is non-nil iff Status is Authenticated.
type Session struct {
	Status Status
	Token  string
	User   *client.User
}

// Authenticated reports whether the session carries a validated user
func (s Session) Authenticated() bool {
	return s.Status == Authenticated && s.User != nil
}

// API is the subset of the marketplace client the session needs
type API interface {
	Profile(ctx context.Context, token string) (*client.User, error)
	Login(ctx context.Context, email, password string) (*client.LoginResponse, error)
	Register(ctx context.Context, req client.RegisterRequest) error
}

// Observer receives every status transition, including the transient Invalid
type Observer func(from, to Status)

// Option configures a Manager
type Option func(*Manager)

// WithObserver registers fn for status transitions
func WithObserver(fn Observer) Option {
	return func(m *Manager) {
		m.observers = append(m.observers, fn)
	}
}

// WithLogger attaches a logger
func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) {
		m.log = l
	}
}

// Manager owns the session. It is the only writer of the token, both in
// memory and in the store. Safe for concurrent use.
type Manager struct {
	api   API
	store tokenstore.Store
	log   zerolog.Logger

	mu        sync.Mutex
	state     Session
	epoch     uint64 // bumped by logout, login and invalidation
	validated string // last token value a bootstrap validation ran for
	observers []Observer

	sf singleflight.Group
}

// New creates a Manager in the Initializing state
func New(api API, store tokenstore.Store, opts ...Option) *Manager {
	m := &Manager{
		api:   api,
		store: store,
		log:   zerolog.Nop(),
		state: Session{Status: Initializing},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Observe adds an observer after construction
func (m *Manager) Observe(fn Observer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, fn)
}

// Current returns a copy of the session
func (m *Manager) Current() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.state
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// Token returns the bearer token to attach to requests, or "" when not authenticated
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Status != Authenticated {
		return ""
	}
	return m.state.Token
}

type transition struct{ from, to Status }

// setLocked replaces the state and records the transition. Caller holds mu.
func (m *Manager) setLocked(next Session, out []transition) []transition {
	from := m.state.Status
	m.state = next
	if from == next.Status {
		return out
	}
	m.log.Debug().Str("from", from.String()).Str("to", next.Status.String()).Msg("session transition")
	return append(out, transition{from, next.Status})
}

// notify runs observers outside the lock so they may read the session
func (m *Manager) notify(ts []transition) {
	if len(ts) == 0 {
		return
	}
	m.mu.Lock()
	observers := append([]Observer(nil), m.observers...)
	m.mu.Unlock()
	for _, t := range ts {
		for _, fn := range observers {
			fn(t.from, t.to)
		}
	}
}

// Bootstrap reads the stored token and validates it against GET /user/profile.
// With no stored token the session settles in Unauthenticated. A token value is
// validated at most once; concurrent callers share the in-flight validation.
func (m *Manager) Bootstrap(ctx context.Context) error {
	token, err := m.store.Load(ctx)
	if err != nil {
		m.log.Warn().Err(err).Msg("failed to read stored token")
		token = ""
	}

	if token == "" {
		m.mu.Lock()
		var ts []transition
		if m.state.Status == Initializing {
			ts = m.setLocked(Session{Status: Unauthenticated}, ts)
		}
		m.mu.Unlock()
		m.notify(ts)
		if err != nil {
			return fmt.Errorf("failed to read stored token: %w", err)
		}
		return nil
	}

	_, err, _ = m.sf.Do(token, func() (any, error) {
		m.mu.Lock()
		if m.validated == token || (m.state.Status == Authenticated && m.state.Token == token) {
			m.mu.Unlock()
			return nil, nil
		}
		m.validated = token
		epoch := m.epoch
		ts := m.setLocked(Session{Status: Validating, Token: token}, nil)
		m.mu.Unlock()
		m.notify(ts)

		return nil, m.validate(ctx, token, epoch)
	})
	return err
}

func (m *Manager) validate(ctx context.Context, token string, epoch uint64) error {
	user, err := m.api.Profile(ctx, token)

	m.mu.Lock()
	if m.epoch != epoch {
		m.mu.Unlock()
		m.log.Debug().Msg("discarding superseded token validation")
		return nil
	}
	if err != nil {
		ts := m.invalidateLocked(ctx)
		m.mu.Unlock()
		m.notify(ts)
		m.log.Info().Err(err).Msg("stored token rejected")
		return fmt.Errorf("%w: %v", ErrSessionInvalid, err)
	}
	ts := m.setLocked(Session{Status: Authenticated, Token: token, User: user}, nil)
	m.mu.Unlock()
	m.notify(ts)
	return nil
}

// invalidateLocked passes through Invalid, purging the token, and settles in
// Unauthenticated. Caller holds mu.
func (m *Manager) invalidateLocked(ctx context.Context) []transition {
	m.epoch++
	ts := m.setLocked(Session{Status: Invalid}, nil)
	if err := m.store.Clear(context.WithoutCancel(ctx)); err != nil {
		m.log.Error().Err(err).Msg("failed to clear stored token")
	}
	return m.setLocked(Session{Status: Unauthenticated}, ts)
}

// Login exchanges credentials for a token. The token is persisted before the
// session becomes Authenticated; on any failure the session is left as it was.
// The returned error carries the user-facing reason and wraps ErrCredentials
// when the server rejected the credentials.
func (m *Manager) Login(ctx context.Context, email, password string) (bool, error) {
	m.mu.Lock()
	epoch := m.epoch
	m.mu.Unlock()

	resp, err := m.api.Login(ctx, email, password)
	if err != nil {
		return false, credentialError(err)
	}

	m.mu.Lock()
	if m.epoch != epoch {
		m.mu.Unlock()
		return false, ErrSuperseded
	}
	if err := m.store.Save(ctx, resp.AccessToken); err != nil {
		m.mu.Unlock()
		return false, fmt.Errorf("failed to store token: %w", err)
	}
	m.epoch++
	m.validated = resp.AccessToken
	user := resp.User
	ts := m.setLocked(Session{Status: Authenticated, Token: resp.AccessToken, User: &user}, nil)
	m.mu.Unlock()
	m.notify(ts)

	m.log.Info().Int("user_id", user.ID).Msg("logged in")
	return true, nil
}

// Register creates an account. It never authenticates; callers follow up with Login.
func (m *Manager) Register(ctx context.Context, req client.RegisterRequest) (bool, error) {
	if err := m.api.Register(ctx, req); err != nil {
		return false, credentialError(err)
	}
	m.log.Info().Str("username", req.Username).Msg("registered account")
	return true, nil
}

// Logout clears the session immediately, regardless of in-flight requests.
// The state change is unconditional; the returned error only reports a
// failure to remove the persisted token.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	m.epoch++
	m.validated = ""
	ts := m.setLocked(Session{Status: Unauthenticated}, nil)
	err := m.store.Clear(ctx)
	m.mu.Unlock()
	m.notify(ts)

	if err != nil {
		return fmt.Errorf("failed to clear stored token: %w", err)
	}
	return nil
}

// Invalidate forces the Invalid transition for a token the server rejected on
// a later call. It does nothing if token is no longer the current one.
func (m *Manager) Invalidate(ctx context.Context, token string) bool {
	m.mu.Lock()
	if token == "" || m.state.Status != Authenticated || m.state.Token != token {
		m.mu.Unlock()
		return false
	}
	ts := m.invalidateLocked(ctx)
	m.validated = ""
	m.mu.Unlock()
	m.notify(ts)

	m.log.Info().Msg("session invalidated by server")
	return true
}

// CheckError invalidates the session when err says token was rejected.
// It reports whether the session was invalidated.
func (m *Manager) CheckError(ctx context.Context, token string, err error) bool {
	if err == nil || !errors.Is(err, client.ErrUnauthorized) {
		return false
	}
	return m.Invalidate(ctx, token)
}

// credentialError wraps 4xx rejections in ErrCredentials with the server's message
func credentialError(err error) error {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode >= http.StatusBadRequest && apiErr.StatusCode < http.StatusInternalServerError {
		return fmt.Errorf("%w: %s", ErrCredentials, apiErr.Error())
	}
	return err
}

// ExpiresAt reads the exp claim of a JWT without verifying it.
// For display only: the server remains the judge of validity.
func ExpiresAt(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
