// ABOUTME: Route handlers of the fake marketplace server
// ABOUTME: Business rules follow the real backend: one bid per freelancer, owner-only accept, reviews after completion

package fakeapi

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/Modhak129/WEB-freelance/internal/client"
)

const timeLayout = "2006-01-02T15:04:05"

type publicUser struct {
	ID           int     `json:"id"`
	Username     string  `json:"username"`
	IsFreelancer bool    `json:"is_freelancer"`
	RankingScore float64 `json:"ranking_score"`
}

type userView struct {
	ID              int          `json:"id"`
	Username        string       `json:"username"`
	Email           string       `json:"email"`
	IsFreelancer    bool         `json:"is_freelancer"`
	Bio             *string      `json:"bio"`
	Skills          *string      `json:"skills"`
	RankingScore    float64      `json:"ranking_score"`
	ReviewsReceived []reviewView `json:"reviews_received"`
}

type reviewView struct {
	ID         int         `json:"id"`
	Rating     int         `json:"rating"`
	Comment    string      `json:"comment"`
	CreatedAt  string      `json:"created_at"`
	ProjectID  int         `json:"project_id"`
	ReviewerID int         `json:"reviewer_id"`
	RevieweeID int         `json:"reviewee_id"`
	Reviewer   *publicUser `json:"reviewer"`
	Reviewee   *publicUser `json:"reviewee"`
}

type bidView struct {
	ID           int         `json:"id"`
	Amount       float64     `json:"amount"`
	Proposal     string      `json:"proposal"`
	CreatedAt    string      `json:"created_at"`
	ProjectID    int         `json:"project_id"`
	FreelancerID int         `json:"freelancer_id"`
	Freelancer   *publicUser `json:"freelancer"`
}

type projectView struct {
	ID           int                  `json:"id"`
	Title        string               `json:"title"`
	Description  string               `json:"description"`
	Budget       float64              `json:"budget"`
	Status       client.ProjectStatus `json:"status"`
	CreatedAt    string               `json:"created_at"`
	ClientID     int                  `json:"client_id"`
	FreelancerID *int                 `json:"freelancer_id"`
	Client       *publicUser          `json:"client"`
	Freelancer   *publicUser          `json:"freelancer"`
	Bids         []bidView            `json:"bids"`
	Reviews      []reviewView         `json:"reviews"`
}

// The view builders below expect s.mu to be held.

func (s *Server) publicLocked(id int) *publicUser {
	u, ok := s.users[id]
	if !ok {
		return nil
	}
	return &publicUser{ID: u.ID, Username: u.Username, IsFreelancer: u.IsFreelancer, RankingScore: u.RankingScore}
}

func (s *Server) reviewLocked(r *review) reviewView {
	return reviewView{
		ID:         r.ID,
		Rating:     r.Rating,
		Comment:    r.Comment,
		CreatedAt:  r.CreatedAt.Format(timeLayout),
		ProjectID:  r.ProjectID,
		ReviewerID: r.ReviewerID,
		RevieweeID: r.RevieweeID,
		Reviewer:   s.publicLocked(r.ReviewerID),
		Reviewee:   s.publicLocked(r.RevieweeID),
	}
}

func (s *Server) userLocked(u *user) userView {
	v := userView{
		ID:              u.ID,
		Username:        u.Username,
		Email:           u.Email,
		IsFreelancer:    u.IsFreelancer,
		Bio:             u.Bio,
		Skills:          u.Skills,
		RankingScore:    u.RankingScore,
		ReviewsReceived: []reviewView{},
	}
	for _, r := range s.reviews {
		if r.RevieweeID == u.ID {
			v.ReviewsReceived = append(v.ReviewsReceived, s.reviewLocked(r))
		}
	}
	return v
}

func (s *Server) projectLocked(p *project) projectView {
	v := projectView{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Budget:      p.Budget,
		Status:      p.Status,
		CreatedAt:   p.CreatedAt.Format(timeLayout),
		ClientID:    p.ClientID,
		Client:      s.publicLocked(p.ClientID),
		Bids:        []bidView{},
		Reviews:     []reviewView{},
	}
	if p.FreelancerID != 0 {
		id := p.FreelancerID
		v.FreelancerID = &id
		v.Freelancer = s.publicLocked(id)
	}
	for _, b := range s.bids {
		if b.ProjectID == p.ID {
			v.Bids = append(v.Bids, bidView{
				ID:           b.ID,
				Amount:       b.Amount,
				Proposal:     b.Proposal,
				CreatedAt:    b.CreatedAt.Format(timeLayout),
				ProjectID:    b.ProjectID,
				FreelancerID: b.FreelancerID,
				Freelancer:   s.publicLocked(b.FreelancerID),
			})
		}
	}
	for _, r := range s.reviews {
		if r.ProjectID == p.ID {
			v.Reviews = append(v.Reviews, s.reviewLocked(r))
		}
	}
	return v
}

func (s *Server) projectParam(c echo.Context) (*project, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusNotFound, "Not Found")
	}
	p, ok := s.projects[id]
	if !ok {
		return nil, echo.NewHTTPError(http.StatusNotFound, "Not Found")
	}
	return p, nil
}

// --- auth ---

func (s *Server) register(c echo.Context) error {
	var req client.RegisterRequest
	if err := c.Bind(&req); err != nil || req.Email == "" || req.Username == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing required fields")
	}

	s.mu.Lock()
	for _, u := range s.users {
		if u.Email == req.Email || u.Username == req.Username {
			s.mu.Unlock()
			return echo.NewHTTPError(http.StatusBadRequest, "Email or username already exists")
		}
	}
	s.mu.Unlock()

	id := s.AddUser(req.Username, req.Email, req.Password, req.IsFreelancer)

	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(http.StatusCreated, s.userLocked(s.users[id]))
}

func (s *Server) login(c echo.Context) error {
	var req client.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing required fields")
	}

	s.mu.Lock()
	var found *user
	for _, u := range s.users {
		if u.Email == req.Email {
			found = u
			break
		}
	}
	s.mu.Unlock()

	if found == nil || bcrypt.CompareHashAndPassword(found.PasswordHash, []byte(req.Password)) != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Bad username or password")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(http.StatusOK, map[string]any{
		"access_token": s.sign(found.ID, s.now().Add(s.ttl)),
		"user":         s.userLocked(found),
	})
}

// --- users ---

func (s *Server) myProfile(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(http.StatusOK, s.userLocked(currentUser(c)))
}

func (s *Server) updateProfile(c echo.Context) error {
	var req client.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid payload")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u := currentUser(c)
	if req.Bio != nil {
		u.Bio = req.Bio
	}
	if req.Skills != nil {
		u.Skills = req.Skills
	}
	return c.JSON(http.StatusOK, s.userLocked(u))
}

func (s *Server) getUser(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if err != nil || !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Not Found")
	}
	return c.JSON(http.StatusOK, s.userLocked(u))
}

// --- projects ---

func (s *Server) listProjects(c echo.Context) error {
	skill := strings.ToLower(c.QueryParam("skill"))

	s.mu.Lock()
	defer s.mu.Unlock()
	var open []*project
	for _, p := range s.projects {
		if p.Status != client.StatusOpen {
			continue
		}
		if skill != "" && !strings.Contains(strings.ToLower(p.Description), skill) {
			continue
		}
		open = append(open, p)
	}
	sort.Slice(open, func(i, j int) bool {
		if !open[i].CreatedAt.Equal(open[j].CreatedAt) {
			return open[i].CreatedAt.After(open[j].CreatedAt)
		}
		return open[i].ID > open[j].ID
	})

	out := make([]projectView, 0, len(open))
	for _, p := range open {
		out = append(out, s.projectLocked(p))
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) createProject(c echo.Context) error {
	var req client.CreateProjectRequest
	if err := c.Bind(&req); err != nil || req.Title == "" || req.Description == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing required fields")
	}

	id := s.AddProject(currentUser(c).ID, req.Title, req.Description, req.Budget)

	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(http.StatusCreated, s.projectLocked(s.projects[id]))
}

func (s *Server) getProject(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.projectParam(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s.projectLocked(p))
}

func (s *Server) updateProject(c echo.Context) error {
	var req client.UpdateProjectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid payload")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.projectParam(c)
	if err != nil {
		return err
	}
	if p.ClientID != currentUser(c).ID {
		return echo.NewHTTPError(http.StatusForbidden, "Not authorized")
	}
	if req.Title != nil {
		p.Title = *req.Title
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Budget != nil {
		p.Budget = *req.Budget
	}
	if req.Status != nil {
		p.Status = *req.Status
	}
	return c.JSON(http.StatusOK, s.projectLocked(p))
}

func (s *Server) placeBid(c echo.Context) error {
	var req client.PlaceBidRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid payload")
	}

	s.mu.Lock()
	p, err := s.projectParam(c)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	u := currentUser(c)
	if !u.IsFreelancer {
		s.mu.Unlock()
		return echo.NewHTTPError(http.StatusForbidden, "Only freelancers can bid")
	}
	if p.Status != client.StatusOpen {
		s.mu.Unlock()
		return echo.NewHTTPError(http.StatusBadRequest, "Project is not open for bidding")
	}
	for _, b := range s.bids {
		if b.ProjectID == p.ID && b.FreelancerID == u.ID {
			s.mu.Unlock()
			return echo.NewHTTPError(http.StatusBadRequest, "You have already placed a bid on this project")
		}
	}
	s.mu.Unlock()

	id := s.AddBid(p.ID, u.ID, req.Amount, req.Proposal)
	return c.JSON(http.StatusCreated, map[string]int{"id": id})
}

func (s *Server) acceptBid(c echo.Context) error {
	var req client.AcceptBidRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid payload")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.projectParam(c)
	if err != nil {
		return err
	}
	if p.ClientID != currentUser(c).ID {
		return echo.NewHTTPError(http.StatusForbidden, "Not authorized")
	}
	if p.Status != client.StatusOpen {
		return echo.NewHTTPError(http.StatusBadRequest, "Project is not open for bidding")
	}
	var accepted *bid
	for _, b := range s.bids {
		if b.ID == req.BidID {
			accepted = b
			break
		}
	}
	if accepted == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Not Found")
	}
	if accepted.ProjectID != p.ID {
		return echo.NewHTTPError(http.StatusBadRequest, "Bid does not belong to this project")
	}
	p.FreelancerID = accepted.FreelancerID
	p.Status = client.StatusInProgress
	return c.JSON(http.StatusOK, s.projectLocked(p))
}

func (s *Server) postReview(c echo.Context) error {
	var req client.PostReviewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid payload")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.projectParam(c)
	if err != nil {
		return err
	}
	if p.Status != client.StatusCompleted {
		return echo.NewHTTPError(http.StatusBadRequest, "Project must be completed to leave a review")
	}

	u := currentUser(c)
	var revieweeID int
	switch u.ID {
	case p.ClientID:
		revieweeID = p.FreelancerID
	case p.FreelancerID:
		revieweeID = p.ClientID
	default:
		return echo.NewHTTPError(http.StatusForbidden, "You are not part of this project")
	}
	if revieweeID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot review this project (no freelancer assigned)")
	}
	for _, r := range s.reviews {
		if r.ProjectID == p.ID && r.ReviewerID == u.ID {
			return echo.NewHTTPError(http.StatusBadRequest, "You have already reviewed this project")
		}
	}

	r := &review{
		ID:         s.nextID(),
		Rating:     req.Rating,
		Comment:    req.Comment,
		ProjectID:  p.ID,
		ReviewerID: u.ID,
		RevieweeID: revieweeID,
		CreatedAt:  s.now(),
	}
	s.reviews = append(s.reviews, r)
	s.rankLocked(revieweeID)
	return c.JSON(http.StatusCreated, s.reviewLocked(r))
}

// rankLocked recomputes a user's average rating, rounded to two decimals
func (s *Server) rankLocked(userID int) {
	u, ok := s.users[userID]
	if !ok {
		return
	}
	total, n := 0, 0
	for _, r := range s.reviews {
		if r.RevieweeID == userID {
			total += r.Rating
			n++
		}
	}
	if n == 0 {
		u.RankingScore = 0
		return
	}
	avg := float64(total) / float64(n)
	u.RankingScore = float64(int(avg*100+0.5)) / 100
}
