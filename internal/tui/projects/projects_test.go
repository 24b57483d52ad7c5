// ABOUTME: Tests for the project list screen
// ABOUTME: Validates loading, empty and error states, navigation and the skill filter

package projects

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Modhak129/WEB-freelance/internal/client"
	"github.com/Modhak129/WEB-freelance/internal/resource"
	"github.com/Modhak129/WEB-freelance/internal/tui/recent"
)

func sample() []client.Project {
	return []client.Project{
		{ID: 1, Title: "Logo design", Budget: 300, Client: client.User{Username: "carol"}},
		{ID: 2, Title: "Mobile app", Budget: 5000, Client: client.User{Username: "dave"}, Bids: []client.Bid{{ID: 7}}},
	}
}

// load runs cmd and applies its result
func load(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a fetch command")
	}
	msg, ok := cmd().(resource.Fetched[string, []client.Project])
	if !ok {
		t.Fatalf("expected Fetched message, got %T", msg)
	}
	if !m.Apply(msg) {
		t.Fatal("expected fetch to be applied")
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestLoadingState(t *testing.T) {
	m := New(func(ctx context.Context, skill string) ([]client.Project, error) { return nil, nil }, nil)
	m.Activate()

	if !strings.Contains(m.View(), "Loading projects...") {
		t.Errorf("expected loading text, got %q", m.View())
	}
}

func TestEmptyList(t *testing.T) {
	m := New(func(ctx context.Context, skill string) ([]client.Project, error) {
		return []client.Project{}, nil
	}, nil)
	load(t, m, m.Activate())

	if !strings.Contains(m.View(), EmptyMessage) {
		t.Errorf("expected %q, got %q", EmptyMessage, m.View())
	}
}

func TestListRendersProjects(t *testing.T) {
	m := New(func(ctx context.Context, skill string) ([]client.Project, error) { return sample(), nil }, nil)
	load(t, m, m.Activate())

	view := m.View()
	for _, want := range []string{"Logo design", "Mobile app", "$5,000.00", "1 bid", "carol"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}

func TestErrorStateOffersRetry(t *testing.T) {
	m := New(func(ctx context.Context, skill string) ([]client.Project, error) {
		return nil, errors.New("boom")
	}, nil)
	load(t, m, m.Activate())

	view := m.View()
	if !strings.Contains(view, "Error: boom") || !strings.Contains(view, "Press r to retry") {
		t.Errorf("unexpected view %q", view)
	}
}

func TestNavigateAndSelect(t *testing.T) {
	m := New(func(ctx context.Context, skill string) ([]client.Project, error) { return sample(), nil }, nil)
	load(t, m, m.Activate())

	m.Update(key("down"))
	if m.cursor != 1 {
		t.Fatalf("expected cursor 1, got %d", m.cursor)
	}
	m.Update(key("down"))
	if m.cursor != 1 {
		t.Errorf("expected cursor to stop at last item, got %d", m.cursor)
	}

	_, cmd := m.Update(key("enter"))
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if msg, ok := cmd().(SelectedMsg); !ok || msg.ID != 2 {
		t.Errorf("expected SelectedMsg{2}, got %#v", msg)
	}
}

func TestEnterOnEmptyListDoesNothing(t *testing.T) {
	m := New(func(ctx context.Context, skill string) ([]client.Project, error) { return nil, nil }, nil)

	if _, cmd := m.Update(key("enter")); cmd != nil {
		t.Error("expected no command")
	}
}

func TestFilterActivatesSkillKey(t *testing.T) {
	var got []string
	searches := recent.New(t.TempDir())
	m := New(func(ctx context.Context, skill string) ([]client.Project, error) {
		got = append(got, skill)
		return sample(), nil
	}, searches)

	m.Update(key("/"))
	if !m.Filtering() {
		t.Fatal("expected filter input to have focus")
	}
	for _, r := range "React" {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	_, cmd := m.Update(key("enter"))
	load(t, m, cmd)

	if m.Filter() != "React" {
		t.Errorf("expected filter React, got %q", m.Filter())
	}
	if len(got) != 1 || got[0] != "React" {
		t.Errorf("expected one fetch for React, got %v", got)
	}
	if list := searches.List(); len(list) != 1 || list[0] != "React" {
		t.Errorf("expected React in recent searches, got %v", list)
	}

	// x clears the filter
	_, cmd = m.Update(key("x"))
	load(t, m, cmd)
	if m.Filter() != "" || got[len(got)-1] != "" {
		t.Errorf("expected filter cleared, got %q", m.Filter())
	}
}

func TestFilterRecallsRecentSearches(t *testing.T) {
	searches := recent.New("")
	searches.Add("Go")
	searches.Add("Design")
	m := New(func(ctx context.Context, skill string) ([]client.Project, error) { return nil, nil }, searches)

	m.Update(key("/"))
	m.Update(key("up"))
	if m.input.Value() != "Design" {
		t.Errorf("expected most recent search, got %q", m.input.Value())
	}
	m.Update(key("up"))
	if m.input.Value() != "Go" {
		t.Errorf("expected older search, got %q", m.input.Value())
	}
	m.Update(key("down"))
	m.Update(key("down"))
	if m.input.Value() != "" {
		t.Errorf("expected input cleared, got %q", m.input.Value())
	}

	m.Update(key("esc"))
	if m.Filtering() {
		t.Error("expected esc to leave the filter")
	}
}

func TestCursorClampedAfterShorterList(t *testing.T) {
	calls := 0
	m := New(func(ctx context.Context, skill string) ([]client.Project, error) {
		calls++
		if calls == 1 {
			return sample(), nil
		}
		return sample()[:1], nil
	}, nil)
	load(t, m, m.Activate())
	m.cursor = 1

	load(t, m, m.Refresh())
	if m.cursor != 0 {
		t.Errorf("expected cursor clamped to 0, got %d", m.cursor)
	}
}

func TestFailedRefreshKeepsList(t *testing.T) {
	var failing bool
	m := New(func(ctx context.Context, skill string) ([]client.Project, error) {
		if failing {
			return nil, errors.New("server unavailable")
		}
		return sample(), nil
	}, nil)
	load(t, m, m.Activate())

	failing = true
	load(t, m, m.Refresh())

	view := m.View()
	for _, want := range []string{"Logo design", "Mobile app", "Error: server unavailable", "press r to retry"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q, got:\n%s", want, view)
		}
	}
	if _, ok := m.Selected(); !ok {
		t.Error("expected the kept list to stay selectable")
	}
}
