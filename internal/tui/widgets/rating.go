// ABOUTME: Rating widgets: star strings, a ranking bar and a trend sparkline
// ABOUTME: Ratings are 1..5; ranking scores are averages over received reviews

package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Modhak129/WEB-freelance/internal/tui/styles"
)

// MaxRating is the top of the review scale
const MaxRating = 5

// SparklineBlocks are the Unicode block characters for different heights
var SparklineBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Stars renders a 1..5 rating as filled and empty stars
func Stars(rating int) string {
	if rating < 0 {
		rating = 0
	}
	if rating > MaxRating {
		rating = MaxRating
	}
	filled := lipgloss.NewStyle().Foreground(styles.Star).Render(strings.Repeat("★", rating))
	empty := lipgloss.NewStyle().Foreground(styles.Surface).Render(strings.Repeat("☆", MaxRating-rating))
	return filled + empty
}

// RankingBar renders a ranking score as a bar of the given width followed by "4.50 / 5"
func RankingBar(score float64, width int) string {
	if width <= 0 {
		width = 10
	}
	if score < 0 {
		score = 0
	}
	if score > MaxRating {
		score = MaxRating
	}

	filled := int(score / MaxRating * float64(width))
	bar := lipgloss.NewStyle().Foreground(styles.Star).Render(strings.Repeat("▓", filled)) +
		lipgloss.NewStyle().Foreground(styles.Surface).Render(strings.Repeat("░", width-filled))
	return fmt.Sprintf("%s %.2f / %d", bar, score, MaxRating)
}

// RatingTrend renders ratings (oldest first) as a sparkline on a fixed 1..5 scale.
// At most width ratings are shown, the most recent ones.
func RatingTrend(ratings []int, width int) string {
	if len(ratings) == 0 || width <= 0 {
		return ""
	}
	if len(ratings) > width {
		ratings = ratings[len(ratings)-width:]
	}

	result := make([]rune, len(ratings))
	for i, r := range ratings {
		result[i] = ratingToBlock(r)
	}
	return lipgloss.NewStyle().Foreground(styles.Star).Render(string(result))
}

func ratingToBlock(r int) rune {
	if r < 1 {
		r = 1
	}
	if r > MaxRating {
		r = MaxRating
	}
	idx := (r - 1) * (len(SparklineBlocks) - 1) / (MaxRating - 1)
	return SparklineBlocks[idx]
}
