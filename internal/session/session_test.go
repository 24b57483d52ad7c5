// ABOUTME: Tests for the session state machine
// ABOUTME: Covers bootstrap validation, login/logout, invalidation and validation dedup

package session

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Modhak129/WEB-freelance/internal/client"
	"github.com/Modhak129/WEB-freelance/internal/tokenstore"
)

type fakeAPI struct {
	profileCalls atomic.Int32
	profile      func(ctx context.Context, token string) (*client.User, error)
	login        func(ctx context.Context, email, password string) (*client.LoginResponse, error)
	register     func(ctx context.Context, req client.RegisterRequest) error
}

func (f *fakeAPI) Profile(ctx context.Context, token string) (*client.User, error) {
	f.profileCalls.Add(1)
	return f.profile(ctx, token)
}

func (f *fakeAPI) Login(ctx context.Context, email, password string) (*client.LoginResponse, error) {
	return f.login(ctx, email, password)
}

func (f *fakeAPI) Register(ctx context.Context, req client.RegisterRequest) error {
	return f.register(ctx, req)
}

type failingStore struct{ tokenstore.MemoryStore }

func (f *failingStore) Save(ctx context.Context, token string) error {
	return errors.New("disk full")
}

type recorder struct {
	mu  sync.Mutex
	got []Status
}

func (r *recorder) observe(from, to Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, to)
}

func (r *recorder) statuses() []Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Status(nil), r.got...)
}

// assertConsistent checks Authenticated <=> user set <=> token persisted
func assertConsistent(t *testing.T, m *Manager, store tokenstore.Store) {
	t.Helper()
	s := m.Current()
	stored, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("store.Load: %v", err)
	}
	authed := s.Status == Authenticated
	if authed != (s.User != nil) {
		t.Errorf("status %s but user set = %v", s.Status, s.User != nil)
	}
	if authed != (stored != "") {
		t.Errorf("status %s but stored token = %q", s.Status, stored)
	}
	if authed != (m.Token() != "") {
		t.Errorf("status %s but bearer token = %q", s.Status, m.Token())
	}
}

func TestLogin_Success(t *testing.T) {
	api := &fakeAPI{
		login: func(ctx context.Context, email, password string) (*client.LoginResponse, error) {
			if email != "a@b.com" || password != "pw" {
				t.Errorf("unexpected credentials %s/%s", email, password)
			}
			return &client.LoginResponse{AccessToken: "tokA", User: client.User{ID: 1, IsFreelancer: false}}, nil
		},
	}
	store := tokenstore.NewMemoryStore(0)
	m := New(api, store)
	m.Bootstrap(context.Background())

	ok, err := m.Login(context.Background(), "a@b.com", "pw")
	if !ok || err != nil {
		t.Fatalf("Login() = %v, %v", ok, err)
	}

	s := m.Current()
	if s.Status != Authenticated {
		t.Errorf("expected authenticated, got %s", s.Status)
	}
	if s.User == nil || s.User.ID != 1 {
		t.Errorf("expected user 1, got %+v", s.User)
	}
	if stored, _ := store.Load(context.Background()); stored != "tokA" {
		t.Errorf("expected tokA persisted, got %q", stored)
	}
	if m.Token() != "tokA" {
		t.Errorf("expected bearer tokA, got %q", m.Token())
	}
	assertConsistent(t, m, store)
}

func TestLogin_RejectedCredentials(t *testing.T) {
	api := &fakeAPI{
		login: func(ctx context.Context, email, password string) (*client.LoginResponse, error) {
			return nil, &client.APIError{StatusCode: http.StatusUnauthorized, Message: "Bad username or password"}
		},
	}
	store := tokenstore.NewMemoryStore(0)
	m := New(api, store)
	m.Bootstrap(context.Background())

	ok, err := m.Login(context.Background(), "a@b.com", "wrong")
	if ok {
		t.Fatal("expected login to fail")
	}
	if !errors.Is(err, ErrCredentials) {
		t.Errorf("expected ErrCredentials, got %v", err)
	}
	if m.Current().Status != Unauthenticated {
		t.Errorf("expected unauthenticated, got %s", m.Current().Status)
	}
	assertConsistent(t, m, store)
}

func TestLogin_NetworkErrorIsNotCredentialError(t *testing.T) {
	api := &fakeAPI{
		login: func(ctx context.Context, email, password string) (*client.LoginResponse, error) {
			return nil, client.ErrTimeout
		},
	}
	m := New(api, tokenstore.NewMemoryStore(0))

	_, err := m.Login(context.Background(), "a@b.com", "pw")
	if errors.Is(err, ErrCredentials) {
		t.Error("timeout should not be reported as a credential error")
	}
	if !errors.Is(err, client.ErrTimeout) {
		t.Errorf("expected ErrTimeout, got %v", err)
	}
}

func TestLogin_StorageFailureLeavesUnauthenticated(t *testing.T) {
	api := &fakeAPI{
		login: func(ctx context.Context, email, password string) (*client.LoginResponse, error) {
			return &client.LoginResponse{AccessToken: "tokA", User: client.User{ID: 1}}, nil
		},
	}
	store := &failingStore{}
	m := New(api, store)
	m.Bootstrap(context.Background())

	ok, err := m.Login(context.Background(), "a@b.com", "pw")
	if ok || err == nil {
		t.Fatalf("expected failure, got %v, %v", ok, err)
	}
	if m.Current().Status != Unauthenticated {
		t.Errorf("expected unauthenticated, got %s", m.Current().Status)
	}
	if m.Token() != "" {
		t.Error("expected no bearer token")
	}
}

func TestBootstrap_NoStoredToken(t *testing.T) {
	api := &fakeAPI{}
	rec := &recorder{}
	m := New(api, tokenstore.NewMemoryStore(0), WithObserver(rec.observe))

	if m.Current().Status != Initializing {
		t.Fatalf("expected initializing, got %s", m.Current().Status)
	}
	if err := m.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap() error: %v", err)
	}
	if m.Current().Status != Unauthenticated {
		t.Errorf("expected unauthenticated, got %s", m.Current().Status)
	}
	if api.profileCalls.Load() != 0 {
		t.Error("expected no validation request without a token")
	}
	if got := rec.statuses(); len(got) != 1 || got[0] != Unauthenticated {
		t.Errorf("unexpected transitions %v", got)
	}
}

func TestBootstrap_ValidToken(t *testing.T) {
	api := &fakeAPI{
		profile: func(ctx context.Context, token string) (*client.User, error) {
			if token != "tokA" {
				t.Errorf("expected tokA, got %q", token)
			}
			return &client.User{ID: 7, Username: "alice"}, nil
		},
	}
	store := tokenstore.NewMemoryStore(0)
	store.Save(context.Background(), "tokA")
	m := New(api, store)

	if err := m.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap() error: %v", err)
	}
	s := m.Current()
	if s.Status != Authenticated || s.User.ID != 7 {
		t.Errorf("expected authenticated user 7, got %s %+v", s.Status, s.User)
	}
	assertConsistent(t, m, store)
}

func TestBootstrap_RejectedTokenIsPurged(t *testing.T) {
	api := &fakeAPI{
		profile: func(ctx context.Context, token string) (*client.User, error) {
			return nil, &client.APIError{StatusCode: http.StatusUnauthorized, Authenticated: true}
		},
	}
	store := tokenstore.NewMemoryStore(0)
	store.Save(context.Background(), "expired")
	rec := &recorder{}
	m := New(api, store, WithObserver(rec.observe))

	err := m.Bootstrap(context.Background())
	if !errors.Is(err, ErrSessionInvalid) {
		t.Errorf("expected ErrSessionInvalid, got %v", err)
	}
	if m.Current().Status != Unauthenticated {
		t.Errorf("expected unauthenticated, got %s", m.Current().Status)
	}
	if stored, _ := store.Load(context.Background()); stored != "" {
		t.Errorf("expected storage cleared, got %q", stored)
	}
	if m.Token() != "" {
		t.Error("expected no bearer token after rejection")
	}

	want := []Status{Validating, Invalid, Unauthenticated}
	got := rec.statuses()
	if len(got) != len(want) {
		t.Fatalf("expected transitions %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("transition %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestBootstrap_ValidatesTokenOnce(t *testing.T) {
	release := make(chan struct{})
	api := &fakeAPI{
		profile: func(ctx context.Context, token string) (*client.User, error) {
			<-release
			return &client.User{ID: 1}, nil
		},
	}
	store := tokenstore.NewMemoryStore(0)
	store.Save(context.Background(), "tokA")
	m := New(api, store)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Bootstrap(context.Background())
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	m.Bootstrap(context.Background())

	if got := api.profileCalls.Load(); got != 1 {
		t.Errorf("expected 1 validation request, got %d", got)
	}
	if m.Current().Status != Authenticated {
		t.Errorf("expected authenticated, got %s", m.Current().Status)
	}
}

func TestLogout_DuringValidationWins(t *testing.T) {
	release := make(chan struct{})
	validating := make(chan struct{}, 1)
	api := &fakeAPI{
		profile: func(ctx context.Context, token string) (*client.User, error) {
			<-release
			return &client.User{ID: 1}, nil
		},
	}
	store := tokenstore.NewMemoryStore(0)
	store.Save(context.Background(), "tokA")
	m := New(api, store, WithObserver(func(from, to Status) {
		if to == Validating {
			validating <- struct{}{}
		}
	}))

	done := make(chan struct{})
	go func() {
		defer close(done)
		m.Bootstrap(context.Background())
	}()
	<-validating

	if err := m.Logout(context.Background()); err != nil {
		t.Fatalf("Logout() error: %v", err)
	}
	if m.Current().Status == Authenticated {
		t.Fatal("expected logout to take effect immediately")
	}

	close(release)
	<-done

	if m.Current().Status != Unauthenticated {
		t.Errorf("expected late validation to be discarded, got %s", m.Current().Status)
	}
	assertConsistent(t, m, store)
}

func TestLogout_ClearsSession(t *testing.T) {
	api := &fakeAPI{
		login: func(ctx context.Context, email, password string) (*client.LoginResponse, error) {
			return &client.LoginResponse{AccessToken: "tokA", User: client.User{ID: 1}}, nil
		},
	}
	store := tokenstore.NewMemoryStore(0)
	m := New(api, store)
	m.Login(context.Background(), "a@b.com", "pw")

	m.Logout(context.Background())

	s := m.Current()
	if s.Status != Unauthenticated || s.User != nil || s.Token != "" {
		t.Errorf("expected empty unauthenticated session, got %+v", s)
	}
	assertConsistent(t, m, store)
}

func TestInvalidate_OnlyCurrentToken(t *testing.T) {
	api := &fakeAPI{
		login: func(ctx context.Context, email, password string) (*client.LoginResponse, error) {
			return &client.LoginResponse{AccessToken: "tokB", User: client.User{ID: 2}}, nil
		},
	}
	store := tokenstore.NewMemoryStore(0)
	rec := &recorder{}
	m := New(api, store, WithObserver(rec.observe))
	m.Login(context.Background(), "b@b.com", "pw")

	if m.Invalidate(context.Background(), "tokA") {
		t.Error("expected stale token invalidation to be ignored")
	}
	if m.Current().Status != Authenticated {
		t.Fatalf("expected still authenticated, got %s", m.Current().Status)
	}

	if !m.Invalidate(context.Background(), "tokB") {
		t.Error("expected current token to be invalidated")
	}
	if m.Current().Status != Unauthenticated {
		t.Errorf("expected unauthenticated, got %s", m.Current().Status)
	}
	got := rec.statuses()
	if len(got) < 2 || got[len(got)-2] != Invalid {
		t.Errorf("expected to pass through invalid, got %v", got)
	}
	assertConsistent(t, m, store)
}

func TestCheckError(t *testing.T) {
	api := &fakeAPI{
		login: func(ctx context.Context, email, password string) (*client.LoginResponse, error) {
			return &client.LoginResponse{AccessToken: "tokA", User: client.User{ID: 1}}, nil
		},
	}
	m := New(api, tokenstore.NewMemoryStore(0))
	m.Login(context.Background(), "a@b.com", "pw")

	if m.CheckError(context.Background(), "tokA", &client.APIError{StatusCode: http.StatusBadGateway}) {
		t.Error("server errors must not invalidate the session")
	}
	if m.CheckError(context.Background(), "tokA", &client.APIError{StatusCode: http.StatusForbidden, Authenticated: true}) {
		t.Error("403 must not invalidate the session")
	}
	if !m.CheckError(context.Background(), "tokA", &client.APIError{StatusCode: http.StatusUnprocessableEntity, Authenticated: true}) {
		t.Error("expected malformed-token rejection to invalidate")
	}
}

func TestRegister_DoesNotAuthenticate(t *testing.T) {
	api := &fakeAPI{
		register: func(ctx context.Context, req client.RegisterRequest) error {
			if !req.IsFreelancer || req.Username != "bob" {
				t.Errorf("unexpected request %+v", req)
			}
			return nil
		},
	}
	m := New(api, tokenstore.NewMemoryStore(0))
	m.Bootstrap(context.Background())

	ok, err := m.Register(context.Background(), client.RegisterRequest{Username: "bob", Email: "b@b.com", Password: "pw", IsFreelancer: true})
	if !ok || err != nil {
		t.Fatalf("Register() = %v, %v", ok, err)
	}
	if m.Current().Status != Unauthenticated {
		t.Errorf("expected unauthenticated after register, got %s", m.Current().Status)
	}
}

func TestRegister_Rejected(t *testing.T) {
	api := &fakeAPI{
		register: func(ctx context.Context, req client.RegisterRequest) error {
			return &client.APIError{StatusCode: http.StatusBadRequest, Message: "Email already registered"}
		},
	}
	m := New(api, tokenstore.NewMemoryStore(0))

	ok, err := m.Register(context.Background(), client.RegisterRequest{Email: "a@b.com"})
	if ok || !errors.Is(err, ErrCredentials) {
		t.Errorf("expected credential error, got %v, %v", ok, err)
	}
}

func TestExpiresAt(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "1",
		"exp": exp.Unix(),
	}).SignedString([]byte("any-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	got, ok := ExpiresAt(token)
	if !ok {
		t.Fatal("expected expiry to be readable")
	}
	if !got.Equal(exp) {
		t.Errorf("expected %v, got %v", exp, got)
	}

	if _, ok := ExpiresAt("not-a-jwt"); ok {
		t.Error("expected opaque token to have no expiry")
	}
	if _, ok := ExpiresAt(""); ok {
		t.Error("expected empty token to have no expiry")
	}
}
