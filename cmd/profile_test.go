// ABOUTME: Tests for the profile commands
// ABOUTME: Verifies profile display and partial edits against the fake server

package cmd

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
)

func TestProfileShowOwnAndOther(t *testing.T) {
	srv, _ := setupCLI(t)
	carolID := srv.AddUser("carol", "c@b.com", "pw", false)
	srv.AddUser("alice", "a@b.com", "pw", true)

	var buf bytes.Buffer
	if code := runProfileShow(context.Background(), &buf, ""); code != 1 {
		t.Errorf("expected exit 1 without a session, got %d", code)
	}

	buf.Reset()
	if code := runProfileShow(context.Background(), &buf, fmt.Sprint(carolID)); code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, buf.String())
	}
	if !strings.Contains(buf.String(), "carol (client)") || !strings.Contains(buf.String(), "No ratings yet") {
		t.Errorf("unexpected output: %s", buf.String())
	}

	loginAs(t, "a@b.com")
	buf.Reset()
	if code := runProfileShow(context.Background(), &buf, ""); code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, buf.String())
	}
	if !strings.Contains(buf.String(), "alice (freelancer)") {
		t.Errorf("expected own profile, got: %s", buf.String())
	}
}

func TestProfileEditKeepsUnsetFields(t *testing.T) {
	srv, _ := setupCLI(t)
	srv.AddUser("alice", "a@b.com", "pw", true)
	loginAs(t, "a@b.com")

	bio := "Go developer"
	var buf bytes.Buffer
	if code := runProfileEdit(context.Background(), &buf, &bio, nil); code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, buf.String())
	}

	skills := "Go, SQL ,"
	buf.Reset()
	if code := runProfileEdit(context.Background(), &buf, nil, &skills); code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, buf.String())
	}
	for _, want := range []string{"Profile updated.", "Go developer", "Skills:   Go, SQL"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, buf.String())
		}
	}
}

func TestProfileEditNothingToChange(t *testing.T) {
	setupCLI(t)

	var buf bytes.Buffer
	if code := runProfileEdit(context.Background(), &buf, nil, nil); code != 1 {
		t.Errorf("expected exit 1, got %d", code)
	}
}
