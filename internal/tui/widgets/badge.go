// ABOUTME: Status badge widgets for quick visual status indication
// ABOUTME: Renders project lifecycle badges and role badges as colored inline labels

package widgets

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/Modhak129/WEB-freelance/internal/client"
	"github.com/Modhak129/WEB-freelance/internal/tui/icons"
)

// StatusLevel represents the tone of a badge
type StatusLevel int

const (
	StatusOK StatusLevel = iota
	StatusWarning
	StatusCritical
	StatusInfo
	StatusNeutral
)

// Badge colors
var (
	BadgeOKBg      = lipgloss.Color("#10B981")
	BadgeOKFg      = lipgloss.Color("#FFFFFF")
	BadgeWarnBg    = lipgloss.Color("#F59E0B")
	BadgeWarnFg    = lipgloss.Color("#000000")
	BadgeCritBg    = lipgloss.Color("#EF4444")
	BadgeCritFg    = lipgloss.Color("#FFFFFF")
	BadgeInfoBg    = lipgloss.Color("#3B82F6")
	BadgeInfoFg    = lipgloss.Color("#FFFFFF")
	BadgeNeutralBg = lipgloss.Color("#6B7280")
	BadgeNeutralFg = lipgloss.Color("#FFFFFF")
)

func colors(level StatusLevel) (bg, fg lipgloss.Color) {
	switch level {
	case StatusOK:
		return BadgeOKBg, BadgeOKFg
	case StatusWarning:
		return BadgeWarnBg, BadgeWarnFg
	case StatusCritical:
		return BadgeCritBg, BadgeCritFg
	case StatusInfo:
		return BadgeInfoBg, BadgeInfoFg
	default:
		return BadgeNeutralBg, BadgeNeutralFg
	}
}

// Badge renders a colored badge
func Badge(text string, level StatusLevel) string {
	bg, fg := colors(level)
	return lipgloss.NewStyle().
		Background(bg).
		Foreground(fg).
		Padding(0, 1).
		Bold(true).
		Render(text)
}

// ProjectLevel maps a project status to a badge tone
func ProjectLevel(status client.ProjectStatus) StatusLevel {
	switch status {
	case client.StatusOpen:
		return StatusOK
	case client.StatusInProgress:
		return StatusInfo
	case client.StatusCompleted:
		return StatusNeutral
	case client.StatusCancelled:
		return StatusCritical
	default:
		return StatusWarning
	}
}

// ProjectBadge renders the badge for a project's status
func ProjectBadge(status client.ProjectStatus) string {
	return Badge(status.Label(), ProjectLevel(status))
}

// RoleBadge renders "Freelancer" or "Client"
func RoleBadge(u client.User) string {
	if u.IsFreelancer {
		return Badge("Freelancer", StatusInfo)
	}
	return Badge("Client", StatusNeutral)
}

// StatusIcon returns the icon for a status level
func StatusIcon(level StatusLevel) string {
	bg, _ := colors(level)
	style := lipgloss.NewStyle().Foreground(bg)
	switch level {
	case StatusOK:
		return style.Render(icons.CheckOK.String())
	case StatusWarning:
		return style.Render(icons.Warning.String())
	case StatusCritical:
		return style.Render(icons.Critical.String())
	case StatusInfo:
		return style.Render(icons.Info.String())
	default:
		return style.Render("•")
	}
}

// StatusText returns styled status text with icon
func StatusText(text string, level StatusLevel) string {
	bg, _ := colors(level)
	return fmt.Sprintf("%s %s", StatusIcon(level), lipgloss.NewStyle().Foreground(bg).Render(text))
}
