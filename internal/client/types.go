// ABOUTME: Wire types for the marketplace API (users, projects, bids, reviews)
// ABOUTME: Mirrors the server's JSON shapes; the client treats them as read-mostly snapshots

package client

import (
	"encoding/json"
	"strings"
)

// ProjectStatus is the server-authoritative lifecycle state of a project
type ProjectStatus string

const (
	StatusOpen       ProjectStatus = "open"
	StatusInProgress ProjectStatus = "in_progress"
	StatusCompleted  ProjectStatus = "completed"
	StatusCancelled  ProjectStatus = "cancelled"
)

// Label returns a display label for the status
func (s ProjectStatus) Label() string {
	switch s {
	case StatusOpen:
		return "Open"
	case StatusInProgress:
		return "In progress"
	case StatusCompleted:
		return "Completed"
	case StatusCancelled:
		return "Cancelled"
	default:
		return string(s)
	}
}

// Skills is an ordered skill list. The server stores skills as comma-separated
// text, so it decodes from either a JSON string or a JSON array.
type Skills []string

// UnmarshalJSON accepts "Go,React", ["Go","React"] or null
func (s *Skills) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = nil
		return nil
	}
	if len(data) > 0 && data[0] == '[' {
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*s = list
		return nil
	}
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return err
	}
	*s = SplitSkills(text)
	return nil
}

// String joins the skills the way the server stores them
func (s Skills) String() string {
	return strings.Join(s, ",")
}

// SplitSkills splits comma-separated text, trimming blanks and dropping empties
func SplitSkills(text string) Skills {
	var out Skills
	for _, part := range strings.Split(text, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// User is a marketplace account as returned by the server
type User struct {
	ID              int      `json:"id"`
	Username        string   `json:"username"`
	Email           string   `json:"email,omitempty"`
	IsFreelancer    bool     `json:"is_freelancer"`
	Bio             *string  `json:"bio,omitempty"`
	Skills          Skills   `json:"skills,omitempty"`
	RankingScore    *float64 `json:"ranking_score,omitempty"`
	ReviewsReceived []Review `json:"reviews_received,omitempty"`
}

// Role returns "freelancer" or "client"
func (u User) Role() string {
	if u.IsFreelancer {
		return "freelancer"
	}
	return "client"
}

// Bid is a freelancer's offer on a project
type Bid struct {
	ID         int     `json:"id"`
	Amount     float64 `json:"amount"`
	Proposal   string  `json:"proposal"`
	ProjectID  int     `json:"project_id,omitempty"`
	CreatedAt  string  `json:"created_at,omitempty"`
	Freelancer User    `json:"freelancer"`
}

// Review is a rating left by one project participant for the other
type Review struct {
	ID        int    `json:"id"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
	ProjectID int    `json:"project_id,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	Reviewer  User   `json:"reviewer"`
	Reviewee  *User  `json:"reviewee,omitempty"`
}

// Project is a client's posted job with its bids
type Project struct {
	ID          int           `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Budget      float64       `json:"budget"`
	Status      ProjectStatus `json:"status"`
	CreatedAt   string        `json:"created_at,omitempty"`
	Client      User          `json:"client"`
	Freelancer  *User         `json:"freelancer,omitempty"`
	Bids        []Bid         `json:"bids"`
	Reviews     []Review      `json:"reviews,omitempty"`
}

// LoginRequest carries credentials for POST /auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the success body of POST /auth/login
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}

// RegisterRequest is the body of POST /auth/register
type RegisterRequest struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	IsFreelancer bool   `json:"is_freelancer"`
}

// CreateProjectRequest is the body of POST /projects
type CreateProjectRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Budget      float64 `json:"budget"`
}

// UpdateProjectRequest is the body of PUT /project/{id}; nil fields are left unchanged
type UpdateProjectRequest struct {
	Title       *string        `json:"title,omitempty"`
	Description *string        `json:"description,omitempty"`
	Budget      *float64       `json:"budget,omitempty"`
	Status      *ProjectStatus `json:"status,omitempty"`
}

// CompleteProjectRequest builds the update that closes out a project
func CompleteProjectRequest() UpdateProjectRequest {
	status := StatusCompleted
	return UpdateProjectRequest{Status: &status}
}

// PlaceBidRequest is the body of POST /project/{id}/bid
type PlaceBidRequest struct {
	Amount   float64 `json:"amount"`
	Proposal string  `json:"proposal"`
}

// AcceptBidRequest is the body of POST /project/{id}/accept_bid
type AcceptBidRequest struct {
	BidID int `json:"bid_id"`
}

// UpdateProfileRequest is the body of PUT /user/profile.
// Skills travel as the server's comma-separated text.
type UpdateProfileRequest struct {
	Bio    *string `json:"bio,omitempty"`
	Skills *string `json:"skills,omitempty"`
}

// PostReviewRequest is the body of POST /project/{id}/review
type PostReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}
