// ABOUTME: Project list screen with a skill filter and recent searches
// ABOUTME: Owns the list's synchronizer keyed by the active skill filter

package projects

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Modhak129/WEB-freelance/internal/client"
	"github.com/Modhak129/WEB-freelance/internal/resource"
	"github.com/Modhak129/WEB-freelance/internal/tui/icons"
	"github.com/Modhak129/WEB-freelance/internal/tui/recent"
	"github.com/Modhak129/WEB-freelance/internal/tui/styles"
)

// EmptyMessage is shown when the server returns no projects
const EmptyMessage = "No open projects found."

type state int

const (
	stateList state = iota
	stateFilter
)

// SelectedMsg is sent when a project is chosen
type SelectedMsg struct {
	ID int
}

// Model is the project list screen
type Model struct {
	sync     *resource.Synchronizer[string, []client.Project]
	searches *recent.Searches
	filter   string
	cursor   int
	recentAt int // index into the recent searches while filtering, -1 for none
	state    state
	input    textinput.Model
	width    int
	height   int
}

// New creates the list screen. searches may be nil.
func New(fetch resource.Fetcher[string, []client.Project], searches *recent.Searches, opts ...resource.Option) *Model {
	ti := textinput.New()
	ti.Placeholder = "skill, e.g. React"
	ti.CharLimit = 64
	ti.Width = 40
	ti.Prompt = icons.Search.String() + " "

	if searches == nil {
		searches = recent.New("")
	}

	return &Model{
		sync:     resource.New(fetch, opts...),
		searches: searches,
		recentAt: -1,
		state:    stateList,
		input:    ti,
	}
}

// Activate fetches the list for the current filter
func (m *Model) Activate() tea.Cmd {
	return m.sync.Activate(m.filter)
}

// Refresh re-fetches the current filter
func (m *Model) Refresh() tea.Cmd {
	return m.Activate()
}

// Apply commits a fetch result if it is the latest one
func (m *Model) Apply(msg resource.Fetched[string, []client.Project]) bool {
	if !m.sync.Apply(msg) {
		return false
	}
	if n := len(m.items()); m.cursor >= n {
		m.cursor = max(0, n-1)
	}
	return true
}

// State returns the synchronizer state
func (m *Model) State() resource.State[[]client.Project] {
	return m.sync.State()
}

// Filter returns the active skill filter
func (m *Model) Filter() string {
	return m.filter
}

// Filtering reports whether the filter input has focus
func (m *Model) Filtering() bool {
	return m.state == stateFilter
}

// SetSize updates the screen dimensions
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) items() []client.Project {
	if data := m.sync.State().Data; data != nil {
		return *data
	}
	return nil
}

// Selected returns the project under the cursor
func (m *Model) Selected() (client.Project, bool) {
	items := m.items()
	if m.cursor < 0 || m.cursor >= len(items) {
		return client.Project{}, false
	}
	return items[m.cursor], true
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if m.state == stateFilter {
			return m.updateFilter(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m *Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items())-1 {
			m.cursor++
		}
	case "enter":
		if p, ok := m.Selected(); ok {
			return m, func() tea.Msg { return SelectedMsg{ID: p.ID} }
		}
	case "/":
		m.state = stateFilter
		m.recentAt = -1
		m.input.SetValue(m.filter)
		m.input.CursorEnd()
		return m, m.input.Focus()
	case "x":
		if m.filter != "" {
			m.filter = ""
			m.cursor = 0
			return m, m.Activate()
		}
	case "r":
		return m, m.Refresh()
	}
	return m, nil
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	recentList := m.searches.List()

	switch msg.String() {
	case "esc":
		m.state = stateList
		m.input.Blur()
		return m, nil
	case "enter":
		m.state = stateList
		m.input.Blur()
		m.filter = strings.TrimSpace(m.input.Value())
		m.cursor = 0
		m.searches.Add(m.filter)
		return m, m.Activate()
	case "up":
		if len(recentList) > 0 {
			if m.recentAt < len(recentList)-1 {
				m.recentAt++
			}
			m.input.SetValue(recentList[m.recentAt])
			m.input.CursorEnd()
		}
		return m, nil
	case "down":
		if m.recentAt > 0 {
			m.recentAt--
			m.input.SetValue(recentList[m.recentAt])
		} else {
			m.recentAt = -1
			m.input.SetValue("")
		}
		m.input.CursorEnd()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View implements tea.Model
func (m *Model) View() string {
	var b strings.Builder

	title := icons.Project.String() + " Open projects"
	if m.filter != "" {
		title += styles.Subtitle.Render(fmt.Sprintf("  skill: %s", m.filter))
	}
	b.WriteString(styles.Title.Render(title))
	b.WriteString("\n")

	if m.state == stateFilter {
		b.WriteString(m.viewFilter())
		b.WriteString("\n")
	}

	state := m.sync.State()
	switch {
	case state.Data == nil && state.Loading:
		b.WriteString(styles.Subtitle.Render("Loading projects..."))
	case state.Data == nil && state.Err != "":
		b.WriteString(styles.StatusCritical.Render("Error: " + state.Err))
		b.WriteString("\n")
		b.WriteString(styles.Help.Render("Press r to retry"))
	case state.Data == nil:
	case len(*state.Data) == 0:
		b.WriteString(styles.Subtitle.Render(EmptyMessage))
	default:
		b.WriteString(m.viewList(*state.Data))
	}

	if state.Data != nil && state.Err != "" {
		b.WriteString("\n")
		b.WriteString(styles.StatusCritical.Render("Error: " + state.Err))
		b.WriteString(" ")
		b.WriteString(styles.Subtitle.UnsetMarginBottom().Render("(showing last loaded, press r to retry)"))
	}

	return b.String()
}

func (m *Model) viewList(items []client.Project) string {
	var b strings.Builder

	titleWidth := 36
	if m.width > 100 {
		titleWidth = m.width - 64
	}

	for i, p := range items {
		cursor := "  "
		style := styles.Normal
		if i == m.cursor {
			cursor = "> "
			style = styles.Selected
		}

		bids := fmt.Sprintf("%d bids", len(p.Bids))
		if len(p.Bids) == 1 {
			bids = "1 bid"
		}
		row := fmt.Sprintf("%-*s", titleWidth, truncate(p.Title, titleWidth))
		b.WriteString(cursor + style.Render(row) + "  " +
			lipgloss.NewStyle().Width(12).Render(styles.Amount(p.Budget)) + "  " +
			styles.Subtitle.UnsetMarginBottom().Render(fmt.Sprintf("%-8s %s", bids, p.Client.Username)) + "\n")
	}

	return b.String()
}

func (m *Model) viewFilter() string {
	var b strings.Builder
	b.WriteString(m.input.View())
	b.WriteString("\n")

	recentList := m.searches.List()
	if len(recentList) > 0 {
		b.WriteString(styles.Subtitle.UnsetMarginBottom().Render("Recent (↑/↓):"))
		for i, s := range recentList {
			style := styles.Normal
			if i == m.recentAt {
				style = styles.Selected
			}
			b.WriteString(" " + style.Render(s))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// truncate shortens s to maxLen runes with an ellipsis
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
