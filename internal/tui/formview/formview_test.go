// ABOUTME: Tests for marketplace forms
// ABOUTME: Validates request building, validation errors, steps and cancellation

package formview

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Modhak129/WEB-freelance/internal/client"
	"github.com/Modhak129/WEB-freelance/internal/forms"
)

func submitted(t *testing.T, cmd tea.Cmd) SubmittedMsg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg, ok := cmd().(SubmittedMsg)
	if !ok {
		t.Fatalf("expected SubmittedMsg, got %T", msg)
	}
	return msg
}

func TestNewDefaults(t *testing.T) {
	f := New(KindRegister, Values{})

	if f.values.Role != RoleFreelancer {
		t.Errorf("expected default role freelancer, got %q", f.values.Role)
	}
	if f.step != 1 {
		t.Errorf("expected step 1, got %d", f.step)
	}

	r := New(KindReview, Values{})
	if r.values.Rating != "5" {
		t.Errorf("expected default rating 5, got %q", r.values.Rating)
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindLogin, "Log in"},
		{KindRegister, "Create an account"},
		{KindPostProject, "Post a project"},
		{KindEditProfile, "Edit profile"},
		{KindBid, "Place a bid"},
		{KindReview, "Leave a review"},
		{Kind(99), "Form"},
	}

	for _, tc := range tests {
		if got := tc.kind.String(); got != tc.want {
			t.Errorf("expected %q, got %q", tc.want, got)
		}
	}
}

func TestSubmitLogin(t *testing.T) {
	f := New(KindLogin, Values{Email: " a@b.com ", Password: "pw"})

	msg := submitted(t, f.Submit())
	req, ok := msg.Request.(forms.LoginForm)
	if !ok {
		t.Fatalf("expected forms.LoginForm, got %T", msg.Request)
	}
	if req.Email != "a@b.com" || req.Password != "pw" {
		t.Errorf("unexpected request %+v", req)
	}
}

func TestSubmitRegisterAsClient(t *testing.T) {
	f := New(KindRegister, Values{Username: "bob", Email: "bob@example.com", Password: "secret1", Role: RoleClient})

	msg := submitted(t, f.Submit())
	req := msg.Request.(client.RegisterRequest)
	if req.IsFreelancer {
		t.Error("expected client registration")
	}
	if req.Username != "bob" {
		t.Errorf("expected username bob, got %q", req.Username)
	}
}

func TestSubmitPostProjectRejectsNegativeBudget(t *testing.T) {
	f := New(KindPostProject, Values{Title: "Site", Description: "Build it", Budget: "-5"})
	f.step = 2

	f.Submit()

	if !strings.Contains(f.Err(), "budget must be greater than 0") {
		t.Errorf("expected budget error, got %q", f.Err())
	}
	if f.step != 1 {
		t.Errorf("expected form reopened at step 1, got %d", f.step)
	}
	if f.Values().Title != "Site" {
		t.Error("expected entered values to be kept")
	}
}

func TestSubmitBid(t *testing.T) {
	f := New(KindBid, Values{Amount: "1200.50", Proposal: "I can do it"})

	msg := submitted(t, f.Submit())
	req := msg.Request.(client.PlaceBidRequest)
	if req.Amount != 1200.50 || req.Proposal != "I can do it" {
		t.Errorf("unexpected request %+v", req)
	}
}

func TestSubmitBidRejectsNonNumeric(t *testing.T) {
	f := New(KindBid, Values{Amount: "abc", Proposal: "x"})
	f.Submit()

	if !strings.Contains(f.Err(), "amount must be a number") {
		t.Errorf("expected amount error, got %q", f.Err())
	}
}

func TestSubmitReview(t *testing.T) {
	f := New(KindReview, Values{Rating: "4", Comment: "Great work"})

	msg := submitted(t, f.Submit())
	req := msg.Request.(client.PostReviewRequest)
	if req.Rating != 4 || req.Comment != "Great work" {
		t.Errorf("unexpected request %+v", req)
	}
}

func TestSubmitEditProfileNormalizesSkills(t *testing.T) {
	f := New(KindEditProfile, Values{Bio: "Hi", Skills: "Go, React ,,"})

	msg := submitted(t, f.Submit())
	req := msg.Request.(client.UpdateProfileRequest)
	if req.Skills == nil || *req.Skills != "Go,React" {
		t.Errorf("expected normalized skills, got %v", req.Skills)
	}
}

func TestAdvanceStepMovesToNextStep(t *testing.T) {
	f := New(KindRegister, Values{Username: "bob", Email: "bob@example.com", Password: "secret1"})

	f.advanceStep()
	if f.step != 2 {
		t.Fatalf("expected step 2, got %d", f.step)
	}

	_, cmd := f.advanceStep()
	msg := submitted(t, cmd)
	if msg.Kind != KindRegister {
		t.Errorf("expected register kind, got %v", msg.Kind)
	}
}

func TestEscCancels(t *testing.T) {
	f := New(KindBid, Values{})

	_, cmd := f.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg, ok := cmd().(CancelledMsg)
	if !ok || msg.Kind != KindBid {
		t.Errorf("expected CancelledMsg for bid, got %#v", msg)
	}
}

func TestSubmittingIgnoresInput(t *testing.T) {
	f := New(KindLogin, Values{})
	f.SetSubmitting(true)

	if _, cmd := f.Update(tea.KeyMsg{Type: tea.KeyEsc}); cmd != nil {
		t.Error("expected input to be ignored while submitting")
	}
	if !strings.Contains(f.View(), "Submitting...") {
		t.Error("expected submitting indicator")
	}
}

func TestFailShowsError(t *testing.T) {
	f := New(KindLogin, Values{Email: "a@b.com"})
	f.SetSubmitting(true)
	f.Fail("Bad username or password")

	if f.submitting {
		t.Error("expected submitting to be cleared")
	}
	if !strings.Contains(f.View(), "Bad username or password") {
		t.Error("expected error in view")
	}
}

func TestProgressOnlyForMultiStepForms(t *testing.T) {
	if !strings.Contains(New(KindPostProject, Values{}).View(), "Details") {
		t.Error("expected step names on post project form")
	}
	if strings.Contains(New(KindBid, Values{}).View(), "┌─ Place a bid") {
		t.Error("expected no progress box on single step form")
	}
}

func TestProfileValues(t *testing.T) {
	bio := "Gopher"
	v := ProfileValues(client.User{Bio: &bio, Skills: client.Skills{"Go", "SQL"}})

	if v.Bio != "Gopher" || v.Skills != "Go, SQL" {
		t.Errorf("unexpected values %+v", v)
	}
}
