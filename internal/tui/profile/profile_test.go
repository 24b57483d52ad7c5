// ABOUTME: Tests for the profile screen
// ABOUTME: Validates details, reviews, edit permission and stale profile detection

package profile

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Modhak129/WEB-freelance/internal/client"
	"github.com/Modhak129/WEB-freelance/internal/resource"
	"github.com/Modhak129/WEB-freelance/internal/session"
)

func alice() client.User {
	bio := "Go developer"
	score := 4.5
	return client.User{
		ID:           2,
		Username:     "alice",
		IsFreelancer: true,
		Bio:          &bio,
		Skills:       client.Skills{"Go", "SQL"},
		RankingScore: &score,
		ReviewsReceived: []client.Review{
			{ID: 1, Rating: 4, Comment: "Solid", Reviewer: client.User{Username: "carol"}},
			{ID: 2, Rating: 5, Comment: "Great", Reviewer: client.User{Username: "dave"}},
		},
	}
}

func loaded(t *testing.T, u client.User) *Model {
	t.Helper()
	m := New(func(ctx context.Context, id int) (client.User, error) { return u, nil })
	if !m.Apply(m.Activate(u.ID)().(resource.Fetched[int, client.User])) {
		t.Fatal("expected fetch to apply")
	}
	return m
}

func TestViewShowsProfile(t *testing.T) {
	m := loaded(t, alice())
	view := m.View(session.Session{Status: session.Unauthenticated})

	for _, want := range []string{"alice", "Freelancer", "4.50 / 5", "Go developer", "Go", "SQL", "Reviews (2)", "Solid", "dave"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
	if strings.Contains(view, "Edit profile") {
		t.Error("expected no edit action for a visitor")
	}
}

func TestEditActionOnlyForOwner(t *testing.T) {
	m := loaded(t, alice())

	me := alice()
	if view := m.View(session.Session{Status: session.Authenticated, Token: "t", User: &me}); !strings.Contains(view, "Edit profile") {
		t.Error("expected edit action on own profile")
	}
	someone := client.User{ID: 9}
	if view := m.View(session.Session{Status: session.Authenticated, Token: "t", User: &someone}); strings.Contains(view, "Edit profile") {
		t.Error("expected no edit action on another profile")
	}
}

func TestEmptyProfile(t *testing.T) {
	m := loaded(t, client.User{ID: 5, Username: "newbie"})
	view := m.View(session.Session{})

	for _, want := range []string{"Client", "No ratings yet", "No bio yet", "No skills listed", "No reviews yet"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}

func TestUserMatchesKey(t *testing.T) {
	m := loaded(t, alice())

	if _, ok := m.User(2); !ok {
		t.Error("expected user 2 to be loaded")
	}
	if _, ok := m.User(3); ok {
		t.Error("expected no data for user 3")
	}
}

func TestLoadingText(t *testing.T) {
	m := New(func(ctx context.Context, id int) (client.User, error) { return client.User{}, nil })
	m.Activate(1)

	if !strings.Contains(m.View(session.Session{}), "Loading profile...") {
		t.Error("expected loading text")
	}
}

func TestFailedRefreshKeepsProfile(t *testing.T) {
	var failing bool
	m := New(func(ctx context.Context, id int) (client.User, error) {
		if failing {
			return client.User{}, errors.New("server unavailable")
		}
		return alice(), nil
	})
	m.Apply(m.Activate(2)().(resource.Fetched[int, client.User]))

	failing = true
	if !m.Apply(m.Refresh()().(resource.Fetched[int, client.User])) {
		t.Fatal("expected refresh result to apply")
	}

	view := m.View(session.Session{Status: session.Unauthenticated})
	for _, want := range []string{"alice", "Go developer", "Reviews (2)", "Error: server unavailable", "press r to retry"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q, got:\n%s", want, view)
		}
	}
	if _, ok := m.User(2); !ok {
		t.Error("expected the last loaded profile to be kept")
	}
}
