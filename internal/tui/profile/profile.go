// ABOUTME: Profile screen showing a user's details, ranking and received reviews
// ABOUTME: Owns the profile synchronizer keyed by user id; also backs the edit-profile form

package profile

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Modhak129/WEB-freelance/internal/authz"
	"github.com/Modhak129/WEB-freelance/internal/client"
	"github.com/Modhak129/WEB-freelance/internal/resource"
	"github.com/Modhak129/WEB-freelance/internal/session"
	"github.com/Modhak129/WEB-freelance/internal/tui/icons"
	"github.com/Modhak129/WEB-freelance/internal/tui/styles"
	"github.com/Modhak129/WEB-freelance/internal/tui/widgets"
)

// Model displays one user profile
type Model struct {
	sync  *resource.Synchronizer[int, client.User]
	width int
}

// New creates the profile screen
func New(fetch resource.Fetcher[int, client.User], opts ...resource.Option) *Model {
	return &Model{sync: resource.New(fetch, opts...)}
}

// Activate loads user id
func (m *Model) Activate(id int) tea.Cmd {
	return m.sync.Activate(id)
}

// Refresh re-fetches the current user
func (m *Model) Refresh() tea.Cmd {
	return m.sync.Refresh()
}

// Apply commits a fetch result if it is the latest one
func (m *Model) Apply(msg resource.Fetched[int, client.User]) bool {
	return m.sync.Apply(msg)
}

// Mutate runs a profile update; on success the profile is fetched again
func (m *Model) Mutate(fn func(ctx context.Context) (any, error)) tea.Cmd {
	return m.sync.Mutate(fn)
}

// ApplyMutation handles a finished update
func (m *Model) ApplyMutation(msg resource.Mutated) tea.Cmd {
	return m.sync.ApplyMutation(msg)
}

// Owns reports whether msg came from this screen's synchronizer
func (m *Model) Owns(msg resource.Mutated) bool {
	return m.sync.Owns(msg)
}

// State returns the synchronizer state
func (m *Model) State() resource.State[client.User] {
	return m.sync.State()
}

// User returns the loaded user if it is the one identified by id
func (m *Model) User(id int) (client.User, bool) {
	key, ok := m.sync.Key()
	data := m.sync.State().Data
	if !ok || key != id || data == nil {
		return client.User{}, false
	}
	return *data, true
}

// SetWidth sets the render width
func (m *Model) SetWidth(width int) {
	m.width = width
}

// View renders the profile for the given session
func (m *Model) View(s session.Session) string {
	state := m.sync.State()

	switch {
	case state.Data == nil && state.Loading:
		return styles.Subtitle.Render("Loading profile...")
	case state.Data == nil && state.Err != "":
		return styles.StatusCritical.Render("Error: "+state.Err) + "\n" + styles.Help.Render("Press r to retry")
	case state.Data == nil:
		return ""
	}

	u := *state.Data
	var sb strings.Builder

	sb.WriteString(styles.Title.UnsetMarginBottom().Render(icons.User.String()+" "+u.Username) + "  " + widgets.RoleBadge(u))
	sb.WriteString("\n\n")

	colWidth := 40
	if m.width > 84 {
		colWidth = (m.width - 4) / 2
	}

	left := m.renderDetails(s, u)
	right := renderReviews(u.ReviewsReceived)

	leftLines := strings.Split(left, "\n")
	rightLines := strings.Split(right, "\n")
	rows := max(len(leftLines), len(rightLines))
	for i := 0; i < rows; i++ {
		l, r := "", ""
		if i < len(leftLines) {
			l = leftLines[i]
		}
		if i < len(rightLines) {
			r = rightLines[i]
		}
		sb.WriteString(lipgloss.NewStyle().Width(colWidth).Render(l))
		sb.WriteString("  ")
		sb.WriteString(r)
		sb.WriteString("\n")
	}

	if state.Loading {
		sb.WriteString(styles.Subtitle.Render("Refreshing..."))
	}
	if state.Err != "" {
		sb.WriteString(styles.StatusCritical.Render("Error: "+state.Err) + " " + styles.Subtitle.UnsetMarginBottom().Render("(showing last loaded, press r to retry)") + "\n")
	}
	if state.MutationErr != "" {
		sb.WriteString(styles.StatusCritical.Render("Error: " + state.MutationErr))
	}

	return sb.String()
}

func (m *Model) renderDetails(s session.Session, u client.User) string {
	var sb strings.Builder

	if u.Email != "" {
		sb.WriteString(styles.Subtitle.UnsetMarginBottom().Render(u.Email))
		sb.WriteString("\n")
	}

	sb.WriteString(styles.ValueStyle.Render(icons.Star.String() + " Ranking"))
	sb.WriteString("\n")
	if u.RankingScore != nil && len(u.ReviewsReceived) > 0 {
		sb.WriteString(widgets.RankingBar(*u.RankingScore, 10))
	} else {
		sb.WriteString(styles.Subtitle.UnsetMarginBottom().Render("No ratings yet"))
	}
	sb.WriteString("\n\n")

	sb.WriteString(styles.ValueStyle.Render("Bio"))
	sb.WriteString("\n")
	if u.Bio != nil && *u.Bio != "" {
		sb.WriteString(*u.Bio)
	} else {
		sb.WriteString(styles.Subtitle.UnsetMarginBottom().Render("No bio yet"))
	}
	sb.WriteString("\n\n")

	sb.WriteString(styles.ValueStyle.Render(icons.Skill.String() + " Skills"))
	sb.WriteString("\n")
	if len(u.Skills) > 0 {
		tags := make([]string, len(u.Skills))
		for i, skill := range u.Skills {
			tags[i] = widgets.Badge(skill, widgets.StatusNeutral)
		}
		sb.WriteString(strings.Join(tags, " "))
	} else {
		sb.WriteString(styles.Subtitle.UnsetMarginBottom().Render("No skills listed"))
	}

	if authz.ShowEditProfileAction(s, u.ID).Allowed {
		sb.WriteString("\n\n")
		sb.WriteString(styles.KeyStyle.Render("e") + " Edit profile")
	}

	return sb.String()
}

func renderReviews(reviews []client.Review) string {
	var sb strings.Builder
	sb.WriteString(styles.ValueStyle.Render(fmt.Sprintf("%s Reviews (%d)", icons.Review.String(), len(reviews))))
	sb.WriteString("\n")

	if len(reviews) == 0 {
		sb.WriteString(styles.Subtitle.UnsetMarginBottom().Render("No reviews yet"))
		return sb.String()
	}

	ratings := make([]int, len(reviews))
	for i, r := range reviews {
		ratings[i] = r.Rating
	}
	sb.WriteString("Trend " + widgets.RatingTrend(ratings, 12))
	sb.WriteString("\n")

	for _, r := range reviews {
		sb.WriteString(fmt.Sprintf("%s  %s\n", widgets.Stars(r.Rating), r.Reviewer.Username))
		if r.Comment != "" {
			sb.WriteString("  " + styles.Subtitle.UnsetMarginBottom().Render(r.Comment) + "\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
