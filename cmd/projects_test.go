// ABOUTME: Tests for the project commands
// ABOUTME: Covers listing, posting, bidding, accepting and reviewing against the fake server

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/Modhak129/WEB-freelance/internal/client"
	"github.com/Modhak129/WEB-freelance/internal/forms"
)

func TestProjectsEmpty(t *testing.T) {
	setupCLI(t)

	var buf bytes.Buffer
	if code := runProjects(context.Background(), &buf, ""); code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, buf.String())
	}
	if strings.TrimSpace(buf.String()) != "No open projects found." {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestProjectsHumanAndJSON(t *testing.T) {
	srv, _ := setupCLI(t)
	clientID := srv.AddUser("carol", "c@b.com", "pw", false)
	srv.AddProject(clientID, "Build an API", "Go service", 5000)

	var buf bytes.Buffer
	if code := runProjects(context.Background(), &buf, ""); code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	for _, want := range []string{"Build an API", "$5,000.00", "carol"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, buf.String())
		}
	}

	jsonOutput = true
	buf.Reset()
	if code := runProjects(context.Background(), &buf, ""); code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	var list []client.Project
	if err := json.Unmarshal(buf.Bytes(), &list); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(list) != 1 || list[0].Title != "Build an API" {
		t.Errorf("unexpected projects: %+v", list)
	}
}

func TestProjectShowUnknown(t *testing.T) {
	setupCLI(t)

	var buf bytes.Buffer
	if code := runProjectShow(context.Background(), &buf, "999"); code != 2 {
		t.Errorf("expected exit 2, got %d", code)
	}
	if code := runProjectShow(context.Background(), &buf, "abc"); code != 2 {
		t.Errorf("expected exit 2 for a bad id, got %d", code)
	}
}

func TestPostProject(t *testing.T) {
	srv, _ := setupCLI(t)
	srv.AddUser("carol", "c@b.com", "pw", false)
	loginAs(t, "c@b.com")

	var buf bytes.Buffer
	form := forms.ProjectForm{Title: "Landing page", Description: "Marketing site", Budget: "800"}
	if code := runProjectPost(context.Background(), &buf, form); code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, buf.String())
	}
	if !strings.Contains(buf.String(), "Posted project #") || !strings.Contains(buf.String(), "Landing page") {
		t.Errorf("unexpected output: %s", buf.String())
	}
}

func TestPostProjectRefusals(t *testing.T) {
	srv, _ := setupCLI(t)
	srv.AddUser("alice", "a@b.com", "pw", true)
	form := forms.ProjectForm{Title: "Landing page", Description: "Marketing site", Budget: "800"}

	var buf bytes.Buffer
	if code := runProjectPost(context.Background(), &buf, form); code != 1 {
		t.Errorf("expected exit 1 when logged out, got %d", code)
	}

	loginAs(t, "a@b.com")
	buf.Reset()
	if code := runProjectPost(context.Background(), &buf, form); code != 1 {
		t.Errorf("expected exit 1 for a freelancer, got %d", code)
	}
	if !strings.Contains(buf.String(), "Only clients can post projects.") {
		t.Errorf("unexpected output: %s", buf.String())
	}

	buf.Reset()
	form.Budget = "-5"
	if code := runProjectPost(context.Background(), &buf, form); code != 1 {
		t.Errorf("expected exit 1 for a bad budget, got %d", code)
	}
	if !strings.Contains(buf.String(), "budget must be greater than 0") {
		t.Errorf("unexpected output: %s", buf.String())
	}
}

func TestBidRefetchesProject(t *testing.T) {
	srv, _ := setupCLI(t)
	clientID := srv.AddUser("carol", "c@b.com", "pw", false)
	projectID := srv.AddProject(clientID, "Build an API", "Go service", 5000)
	srv.AddUser("alice", "a@b.com", "pw", true)
	loginAs(t, "a@b.com")
	arg := fmt.Sprint(projectID)

	var buf bytes.Buffer
	form := forms.BidForm{Amount: "4500", Proposal: "I can do it"}
	if code := runBid(context.Background(), &buf, arg, form); code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, buf.String())
	}
	for _, want := range []string{"Bid of $4,500.00 placed", "Bids (1)", "alice"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, buf.String())
		}
	}

	buf.Reset()
	if code := runBid(context.Background(), &buf, arg, form); code != 1 {
		t.Errorf("expected exit 1 for a second bid, got %d", code)
	}
	if !strings.Contains(buf.String(), "already placed a bid") {
		t.Errorf("unexpected output: %s", buf.String())
	}
}

func TestClientCannotBid(t *testing.T) {
	srv, _ := setupCLI(t)
	clientID := srv.AddUser("carol", "c@b.com", "pw", false)
	projectID := srv.AddProject(clientID, "Build an API", "Go service", 5000)
	loginAs(t, "c@b.com")

	var buf bytes.Buffer
	form := forms.BidForm{Amount: "100", Proposal: "me"}
	if code := runBid(context.Background(), &buf, fmt.Sprint(projectID), form); code != 1 {
		t.Errorf("expected exit 1, got %d", code)
	}
	if !strings.Contains(buf.String(), "Only freelancers can bid on projects.") {
		t.Errorf("unexpected output: %s", buf.String())
	}
}

func TestAcceptThenReview(t *testing.T) {
	srv, _ := setupCLI(t)
	clientID := srv.AddUser("carol", "c@b.com", "pw", false)
	projectID := srv.AddProject(clientID, "Build an API", "Go service", 5000)
	freelancerID := srv.AddUser("alice", "a@b.com", "pw", true)
	bidID := srv.AddBid(projectID, freelancerID, 4500, "I can do it")
	loginAs(t, "c@b.com")
	arg := fmt.Sprint(projectID)

	var buf bytes.Buffer
	if code := runAccept(context.Background(), &buf, arg, bidID+100); code != 1 {
		t.Errorf("expected exit 1 for an unknown bid, got %d", code)
	}

	buf.Reset()
	if code := runAccept(context.Background(), &buf, arg, bidID); code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, buf.String())
	}
	for _, want := range []string{"Accepted alice's bid", "In progress", "Hired:    alice"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, buf.String())
		}
	}

	buf.Reset()
	review := forms.ReviewForm{Rating: "4", Comment: "Solid work"}
	if code := runReview(context.Background(), &buf, arg, review); code != 1 {
		t.Errorf("expected exit 1 before completion, got %d", code)
	}

	buf.Reset()
	if code := runProjectComplete(context.Background(), &buf, arg); code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, buf.String())
	}
	for _, want := range []string{`Marked "Build an API" completed.`, "[Completed]"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, buf.String())
		}
	}

	buf.Reset()
	if code := runReview(context.Background(), &buf, arg, review); code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, buf.String())
	}
	if !strings.Contains(buf.String(), "Solid work") {
		t.Errorf("expected refreshed project with the review, got:\n%s", buf.String())
	}

	buf.Reset()
	if code := runReview(context.Background(), &buf, arg, review); code != 1 {
		t.Errorf("expected exit 1 for a second review, got %d", code)
	}
}

func TestFreelancerCannotAccept(t *testing.T) {
	srv, _ := setupCLI(t)
	clientID := srv.AddUser("carol", "c@b.com", "pw", false)
	projectID := srv.AddProject(clientID, "Build an API", "Go service", 5000)
	freelancerID := srv.AddUser("alice", "a@b.com", "pw", true)
	bidID := srv.AddBid(projectID, freelancerID, 4500, "I can do it")
	loginAs(t, "a@b.com")

	var buf bytes.Buffer
	if code := runAccept(context.Background(), &buf, fmt.Sprint(projectID), bidID); code != 1 {
		t.Errorf("expected exit 1, got %d", code)
	}
	if !strings.Contains(buf.String(), "Only the owner can do that.") {
		t.Errorf("unexpected output: %s", buf.String())
	}
}

func TestCompleteRefusals(t *testing.T) {
	srv, _ := setupCLI(t)
	clientID := srv.AddUser("carol", "c@b.com", "pw", false)
	projectID := srv.AddProject(clientID, "Build an API", "Go service", 5000)
	freelancerID := srv.AddUser("alice", "a@b.com", "pw", true)
	bidID := srv.AddBid(projectID, freelancerID, 4500, "I can do it")
	arg := fmt.Sprint(projectID)

	var buf bytes.Buffer
	if code := runProjectComplete(context.Background(), &buf, arg); code != 1 {
		t.Errorf("expected exit 1 when logged out, got %d", code)
	}

	loginAs(t, "c@b.com")
	buf.Reset()
	if code := runProjectComplete(context.Background(), &buf, arg); code != 1 {
		t.Errorf("expected exit 1 for an open project, got %d", code)
	}
	if !strings.Contains(buf.String(), "Only a project in progress can be marked completed.") {
		t.Errorf("unexpected output: %s", buf.String())
	}

	buf.Reset()
	if code := runAccept(context.Background(), &buf, arg, bidID); code != 0 {
		t.Fatalf("accept failed (%d): %s", code, buf.String())
	}

	loginAs(t, "a@b.com")
	buf.Reset()
	if code := runProjectComplete(context.Background(), &buf, arg); code != 1 {
		t.Errorf("expected exit 1 for the hired freelancer, got %d", code)
	}
	if !strings.Contains(buf.String(), "Only the owner can do that.") {
		t.Errorf("unexpected output: %s", buf.String())
	}
}
