// ABOUTME: Compact metric block widget for project and profile summaries
// ABOUTME: Draws an icon title in the top border over a value and a subtitle

package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Modhak129/WEB-freelance/internal/tui/icons"
	"github.com/Modhak129/WEB-freelance/internal/tui/styles"
)

// DefaultBlockWidth is used when a caller passes a non-positive width
const DefaultBlockWidth = 22

// MetricBlock renders a compact metric display block.
// value may already carry styling; padding is computed from its display width.
func MetricBlock(icon icons.Icon, title, value, subtitle string, width int) string {
	if width <= 0 {
		width = DefaultBlockWidth
	}
	innerWidth := width - 4

	titleStr := truncate(fmt.Sprintf("%s %s", icon.String(), title), innerWidth-1)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary)
	topBorder := fmt.Sprintf("┌─ %s %s┐",
		titleStyle.Render(titleStr),
		strings.Repeat("─", max(0, innerWidth-lipgloss.Width(titleStr)-1)))

	valueLine := "│  " + pad(lipgloss.NewStyle().Foreground(styles.Text).Bold(true).Render(value), innerWidth) + "│"
	subtitleLine := "│  " + pad(lipgloss.NewStyle().Foreground(styles.Muted).Render(truncate(subtitle, innerWidth)), innerWidth) + "│"
	bottomBorder := fmt.Sprintf("└%s┘", strings.Repeat("─", width-2))

	border := lipgloss.NewStyle().Foreground(styles.Muted)
	return strings.Join([]string{
		border.Render(topBorder),
		valueLine,
		subtitleLine,
		border.Render(bottomBorder),
	}, "\n")
}

// CountBlock renders a simple count metric such as the number of bids
func CountBlock(icon icons.Icon, title string, count int, label string, width int) string {
	return MetricBlock(icon, title, fmt.Sprintf("%d", count), label, width)
}

// pad right-fills s with spaces up to width display cells
func pad(s string, width int) string {
	return s + strings.Repeat(" ", max(0, width-lipgloss.Width(s)))
}

// truncate shortens a string to maxLen runes with ellipsis if needed
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
