// ABOUTME: In-memory marketplace API server used to exercise the client in tests
// ABOUTME: Mirrors the REST routes, error bodies and JWT behaviour of the real backend

package fakeapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/Modhak129/WEB-freelance/internal/client"
)

// Prefix is the path prefix every route lives under
const Prefix = "/api"

// Request is one request the server received
type Request struct {
	Method        string
	Path          string
	Authorization string
}

type user struct {
	ID           int
	Username     string
	Email        string
	PasswordHash []byte
	IsFreelancer bool
	Bio          *string
	Skills       *string
	RankingScore float64
}

type bid struct {
	ID           int
	Amount       float64
	Proposal     string
	ProjectID    int
	FreelancerID int
	CreatedAt    time.Time
}

type review struct {
	ID         int
	Rating     int
	Comment    string
	ProjectID  int
	ReviewerID int
	RevieweeID int
	CreatedAt  time.Time
}

type project struct {
	ID           int
	Title        string
	Description  string
	Budget       float64
	Status       client.ProjectStatus
	ClientID     int
	FreelancerID int
	CreatedAt    time.Time
}

// Server is a fake marketplace backend. The zero value is not usable; call New.
type Server struct {
	e      *echo.Echo
	secret []byte
	ttl    time.Duration
	log    zerolog.Logger
	now    func() time.Time

	mu       sync.Mutex
	seq      int
	users    map[int]*user
	projects map[int]*project
	bids     []*bid
	reviews  []*review
	requests []Request
}

// Option configures a Server
type Option func(*Server)

// WithLogger attaches a logger
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// New builds a Server with an empty store
func New(opts ...Option) *Server {
	s := &Server{
		secret:   []byte("fakeapi-secret"),
		ttl:      time.Hour,
		log:      zerolog.Nop(),
		now:      time.Now,
		users:    make(map[int]*user),
		projects: make(map[int]*project),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.e = s.router()
	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.e.ServeHTTP(w, r)
}

func (s *Server) router() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = s.errorHandler
	e.Use(echomiddleware.Recover())
	e.Use(s.record)

	api := e.Group(Prefix)
	api.POST("/auth/register", s.register)
	api.POST("/auth/login", s.login)

	api.GET("/user/profile", s.myProfile, s.auth)
	api.PUT("/user/profile", s.updateProfile, s.auth)
	api.GET("/user/:id", s.getUser)

	api.GET("/projects", s.listProjects)
	api.POST("/projects", s.createProject, s.auth)
	api.GET("/project/:id", s.getProject)
	api.PUT("/project/:id", s.updateProject, s.auth)
	api.POST("/project/:id/bid", s.placeBid, s.auth)
	api.POST("/project/:id/accept_bid", s.acceptBid, s.auth)
	api.POST("/project/:id/review", s.postReview, s.auth)
	return e
}

// errorHandler renders every error as {"msg": ...}
func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code, msg := http.StatusInternalServerError, "internal server error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code, msg = he.Code, fmt.Sprintf("%v", he.Message)
	} else {
		s.log.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
	}
	_ = c.JSON(code, client.ErrorResponse{Msg: msg})
}

func (s *Server) record(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		r := c.Request()
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
		})
		s.mu.Unlock()
		return next(c)
	}
}

// auth mirrors flask-jwt-extended: 401 for a missing header or an expired
// token, 422 for a malformed or badly signed one
func (s *Server) auth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get("Authorization")
		if header == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization Header")
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, "Bad Authorization header. Expected 'Authorization: Bearer <JWT>'")
		}

		claims := jwt.RegisteredClaims{}
		_, err := jwt.ParseWithClaims(parts[1], &claims, func(token *jwt.Token) (interface{}, error) {
			if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, jwt.ErrTokenSignatureInvalid
			}
			return s.secret, nil
		})
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return echo.NewHTTPError(http.StatusUnauthorized, "Token has expired")
		case errors.Is(err, jwt.ErrTokenMalformed):
			return echo.NewHTTPError(http.StatusUnprocessableEntity, "Not enough segments")
		case err != nil:
			return echo.NewHTTPError(http.StatusUnprocessableEntity, "Signature verification failed")
		}

		id, err := strconv.Atoi(claims.Subject)
		s.mu.Lock()
		u, ok := s.users[id]
		s.mu.Unlock()
		if err != nil || !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
		}
		c.Set("user", u)
		return next(c)
	}
}

func currentUser(c echo.Context) *user {
	u, _ := c.Get("user").(*user)
	return u
}

// Token issues a signed access token for userID
func (s *Server) Token(userID int) string {
	return s.sign(userID, s.now().Add(s.ttl))
}

// ExpiredToken issues a token that expired a minute ago
func (s *Server) ExpiredToken(userID int) string {
	return s.sign(userID, s.now().Add(-time.Minute))
}

func (s *Server) sign(userID int, exp time.Time) string {
	claims := jwt.RegisteredClaims{
		Subject:   strconv.Itoa(userID),
		IssuedAt:  jwt.NewNumericDate(s.now()),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		panic(fmt.Sprintf("fakeapi: sign token: %v", err))
	}
	return token
}

func (s *Server) nextID() int {
	s.seq++
	return s.seq
}

// AddUser seeds an account and returns its id
func (s *Server) AddUser(username, email, password string, freelancer bool) int {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(fmt.Sprintf("fakeapi: hash password: %v", err))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &user{ID: s.nextID(), Username: username, Email: email, PasswordHash: hash, IsFreelancer: freelancer}
	s.users[u.ID] = u
	return u.ID
}

// AddProject seeds an open project owned by clientID and returns its id
func (s *Server) AddProject(clientID int, title, description string, budget float64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &project{
		ID:          s.nextID(),
		Title:       title,
		Description: description,
		Budget:      budget,
		Status:      client.StatusOpen,
		ClientID:    clientID,
		CreatedAt:   s.now(),
	}
	s.projects[p.ID] = p
	return p.ID
}

// AddBid seeds a bid and returns its id
func (s *Server) AddBid(projectID, freelancerID int, amount float64, proposal string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := &bid{ID: s.nextID(), Amount: amount, Proposal: proposal, ProjectID: projectID, FreelancerID: freelancerID, CreatedAt: s.now()}
	s.bids = append(s.bids, b)
	return b.ID
}

// SetStatus forces a project's status
func (s *Server) SetStatus(projectID int, status client.ProjectStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.projects[projectID]; ok {
		p.Status = status
	}
}

// Requests returns the requests received so far
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}
