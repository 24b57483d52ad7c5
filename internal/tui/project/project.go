// ABOUTME: Project detail screen: description, bids, reviews and the available actions
// ABOUTME: Owns the detail synchronizer keyed by project id; actions are gated by authz

package project

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

// Model displays one project
type Model struct {
	sync   *resource.Synchronizer[int, client.Project]
	cursor int // selected bid
	width  int
	height int
}

// New creates the detail screen
func New(fetch resource.Fetcher[int, client.Project], opts ...resource.Option) *Model {
	return &Model{sync: resource.New(fetch, opts...)}
}

// Activate loads project id. Switching projects resets the bid cursor.
func (m *Model) Activate(id int) tea.Cmd {
	if current, ok := m.sync.Key(); !ok || current != id {
		m.cursor = 0
	}
	return m.sync.Activate(id)
}

// Refresh re-fetches the current project
func (m *Model) Refresh() tea.Cmd {
	return m.sync.Refresh()
}

// Apply commits a fetch result if it is the latest one
func (m *Model) Apply(msg resource.Fetched[int, client.Project]) bool {
	if !m.sync.Apply(msg) {
		return false
	}
	if p := m.sync.State().Data; p != nil && m.cursor >= len(p.Bids) {
		m.cursor = max(0, len(p.Bids)-1)
	}
	return true
}

// Mutate runs a project action; on success the project is fetched again
func (m *Model) Mutate(fn func(ctx context.Context) (any, error)) tea.Cmd {
	return m.sync.Mutate(fn)
}

// ApplyMutation handles a finished action
func (m *Model) ApplyMutation(msg resource.Mutated) tea.Cmd {
	return m.sync.ApplyMutation(msg)
}

// Owns reports whether msg came from this screen's synchronizer
func (m *Model) Owns(msg resource.Mutated) bool {
	return m.sync.Owns(msg)
}

// State returns the synchronizer state
func (m *Model) State() resource.State[client.Project] {
	return m.sync.State()
}

// Project returns the loaded project, if any
func (m *Model) Project() (client.Project, bool) {
	if p := m.sync.State().Data; p != nil {
		return *p, true
	}
	return client.Project{}, false
}

// SelectedBid returns the bid under the cursor
func (m *Model) SelectedBid() (client.Bid, bool) {
	p, ok := m.Project()
	if !ok || m.cursor < 0 || m.cursor >= len(p.Bids) {
		return client.Bid{}, false
	}
	return p.Bids[m.cursor], true
}

// SetSize updates the screen dimensions
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Update moves the bid cursor
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	p, loaded := m.Project()
	if !loaded {
		return m, nil
	}
	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(p.Bids)-1 {
			m.cursor++
		}
	}
	return m, nil
}

// View renders the project for the given session
func (m *Model) View(s session.Session) string {
	state := m.sync.State()

	switch {
	case state.Data == nil && state.Loading:
		return styles.Subtitle.Render("Loading project...")
	case state.Data == nil && state.Err != "":
		return styles.StatusCritical.Render("Error: "+state.Err) + "\n" + styles.Help.Render("Press r to retry")
	case state.Data == nil:
		return ""
	}

	p := *state.Data
	var sb strings.Builder

	sb.WriteString(styles.Title.UnsetMarginBottom().Render(icons.Project.String()+" "+p.Title) + "  " + widgets.ProjectBadge(p.Status))
	sb.WriteString("\n")
	posted := icons.Client.String() + " Posted by " + p.Client.Username
	if p.CreatedAt != "" {
		posted += " on " + displayDate(p.CreatedAt)
	}
	sb.WriteString(styles.Subtitle.Render(posted))
	sb.WriteString("\n")

	blocks := []string{
		widgets.MetricBlock(icons.Budget, "Budget", styles.FormatAmount(p.Budget), "fixed price", 24),
		widgets.CountBlock(icons.Bid, "Bids", len(p.Bids), "received", 24),
	}
	if p.Freelancer != nil {
		blocks = append(blocks, widgets.MetricBlock(icons.User, "Hired", p.Freelancer.Username, "freelancer", 24))
	}
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, spaced(blocks)...))
	sb.WriteString("\n\n")

	desc := p.Description
	if m.width > 8 {
		desc = lipgloss.NewStyle().Width(m.width - 4).Render(desc)
	}
	sb.WriteString(desc)
	sb.WriteString("\n\n")

	sb.WriteString(m.viewBids(s, p))
	if len(p.Reviews) > 0 {
		sb.WriteString("\n")
		sb.WriteString(viewReviews(p.Reviews))
	}

	sb.WriteString("\n")
	sb.WriteString(m.viewActions(s, p))

	if state.Submitting {
		sb.WriteString("\n" + styles.Subtitle.Render("Submitting..."))
	} else if state.Loading {
		sb.WriteString("\n" + styles.Subtitle.Render("Refreshing..."))
	}
	if state.Err != "" {
		// a failed refresh keeps the last loaded project on screen
		sb.WriteString("\n" + styles.StatusCritical.Render("Error: "+state.Err) + " " + styles.Subtitle.UnsetMarginBottom().Render("(showing last loaded, press r to retry)"))
	}
	if state.MutationErr != "" {
		sb.WriteString("\n" + styles.StatusCritical.Render("Error: "+state.MutationErr))
	}

	return sb.String()
}

func (m *Model) viewBids(s session.Session, p client.Project) string {
	var sb strings.Builder
	sb.WriteString(styles.ValueStyle.Render(fmt.Sprintf("Bids (%d)", len(p.Bids))))
	sb.WriteString("\n")

	if len(p.Bids) == 0 {
		sb.WriteString(styles.Subtitle.Render("No bids yet."))
		sb.WriteString("\n")
		return sb.String()
	}

	canAccept := authz.ShowAcceptBidAction(s, p).Allowed
	for i, b := range p.Bids {
		cursor := "  "
		style := styles.Normal
		if i == m.cursor {
			cursor = "> "
			style = styles.Selected
		}
		line := fmt.Sprintf("%s  %s", styles.Amount(b.Amount), style.Render(b.Freelancer.Username))
		if p.Freelancer != nil && p.Freelancer.ID == b.Freelancer.ID {
			line += "  " + widgets.Badge("Hired", widgets.StatusOK)
		}
		sb.WriteString(cursor + line + "\n")
		if b.Proposal != "" {
			sb.WriteString("    " + styles.Subtitle.UnsetMarginBottom().Render(b.Proposal) + "\n")
		}
	}
	if canAccept {
		sb.WriteString(styles.Help.Render("Press a to accept the selected bid"))
		sb.WriteString("\n")
	}
	return sb.String()
}

func viewReviews(reviews []client.Review) string {
	var sb strings.Builder
	sb.WriteString(styles.ValueStyle.Render(fmt.Sprintf("Reviews (%d)", len(reviews))))
	sb.WriteString("\n")
	for _, r := range reviews {
		sb.WriteString(fmt.Sprintf("  %s  %s", widgets.Stars(r.Rating), r.Reviewer.Username))
		if r.Comment != "" {
			sb.WriteString(": " + r.Comment)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// viewActions lists what the session may do here. Denials that the user can
// act on are explained; the rest stay hidden.
func (m *Model) viewActions(s session.Session, p client.Project) string {
	var lines []string

	bid := authz.ShowBidForm(s, p)
	switch {
	case bid.Allowed:
		lines = append(lines, styles.KeyStyle.Render("b")+" Place a bid")
	case bid.Reason == authz.ReasonAlreadyBid:
		lines = append(lines, widgets.StatusText(bid.Reason.Message(), widgets.StatusInfo))
	case bid.Reason == authz.ReasonUnauthenticated && p.Status == client.StatusOpen:
		lines = append(lines, styles.Subtitle.UnsetMarginBottom().Render(icons.Lock.String()+" Log in as a freelancer to bid on this project."))
	}

	if authz.ShowCompleteAction(s, p).Allowed {
		lines = append(lines, styles.KeyStyle.Render("d")+" Mark completed")
	}
	if authz.ShowReviewForm(s, p).Allowed {
		lines = append(lines, styles.KeyStyle.Render("v")+" Leave a review")
	}

	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n")
}

func spaced(blocks []string) []string {
	out := make([]string, 0, len(blocks)*2)
	for i, b := range blocks {
		if i > 0 {
			out = append(out, " ")
		}
		out = append(out, b)
	}
	return out
}

// displayDate trims a server timestamp like 2024-05-01T10:00:00 to its date
func displayDate(ts string) string {
	if i := strings.IndexByte(ts, 'T'); i > 0 {
		return ts[:i]
	}
	return ts
}
