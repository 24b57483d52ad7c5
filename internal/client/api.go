// ABOUTME: Marketplace API operations: auth, projects, bids, profiles, reviews
// ABOUTME: One method per endpoint; authenticated calls take the bearer token explicitly

package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Profile calls GET /user/profile with the given token
func (c *Client) Profile(ctx context.Context, token string) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/user/profile", token, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login calls POST /auth/login
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var resp LoginResponse
	req := LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", req, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("invalid response from marketplace: missing access token")
	}
	return &resp, nil
}

// Register calls POST /auth/register. The created account is not logged in.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	return c.do(ctx, http.MethodPost, "/auth/register", "", req, nil)
}

// ListProjects calls GET /projects, optionally filtered by a skill keyword
func (c *Client) ListProjects(ctx context.Context, skill string) ([]Project, error) {
	path := "/projects"
	if skill != "" {
		path += "?skill=" + url.QueryEscape(skill)
	}
	projects := []Project{}
	if err := c.do(ctx, http.MethodGet, path, "", nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// GetProject calls GET /project/{id}
func (c *Client) GetProject(ctx context.Context, id int) (*Project, error) {
	var project Project
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/project/%d", id), "", nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// CreateProject calls POST /projects
func (c *Client) CreateProject(ctx context.Context, token string, req CreateProjectRequest) (*Project, error) {
	var project Project
	if err := c.do(ctx, http.MethodPost, "/projects", token, req, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// UpdateProject calls PUT /project/{id}
func (c *Client) UpdateProject(ctx context.Context, token string, id int, req UpdateProjectRequest) (*Project, error) {
	var project Project
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/project/%d", id), token, req, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// PlaceBid calls POST /project/{id}/bid
func (c *Client) PlaceBid(ctx context.Context, token string, projectID int, req PlaceBidRequest) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/project/%d/bid", projectID), token, req, nil)
}

// AcceptBid calls POST /project/{id}/accept_bid
func (c *Client) AcceptBid(ctx context.Context, token string, projectID, bidID int) error {
	req := AcceptBidRequest{BidID: bidID}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/project/%d/accept_bid", projectID), token, req, nil)
}

// GetUser calls GET /user/{id}
func (c *Client) GetUser(ctx context.Context, id int) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/user/%d", id), "", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile calls PUT /user/profile
func (c *Client) UpdateProfile(ctx context.Context, token string, req UpdateProfileRequest) error {
	return c.do(ctx, http.MethodPut, "/user/profile", token, req, nil)
}

// PostReview calls POST /project/{id}/review
func (c *Client) PostReview(ctx context.Context, token string, projectID int, req PostReviewRequest) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/project/%d/review", projectID), token, req, nil)
}
