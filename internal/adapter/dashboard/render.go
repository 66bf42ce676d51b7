package dashboard

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"teamassist/internal/domain"
)

var toneColors = map[domain.Tone]lipgloss.Color{
	domain.TonePrimary: lipgloss.Color("#667eea"),
	domain.ToneSuccess: lipgloss.Color("#11998e"),
	domain.ToneAlt:     lipgloss.Color("#f093fb"),
	domain.ToneDanger:  lipgloss.Color("#f5576c"),
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#764ba2")).MarginBottom(1)
	sectionStyle = lipgloss.NewStyle().Bold(true).Underline(true).MarginTop(1)
	cardTitle    = lipgloss.NewStyle().Bold(true)
	badgeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Padding(0, 1)
)

// Render draws a dashboard as bordered cards no wider than width.
func Render(d domain.Dashboard, width int) string {
	if width < 30 {
		width = 30
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(d.Title))
	b.WriteString("\n")
	for _, s := range d.Sections {
		b.WriteString(sectionStyle.Render(s.Title))
		b.WriteString("\n")
		for _, c := range s.Cards {
			b.WriteString(renderCard(c, width))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func renderCard(c domain.Card, width int) string {
	tone := c.Tone
	if tone == "" {
		tone = domain.TonePrimary
	}
	color, ok := toneColors[tone]
	if !ok {
		color = toneColors[domain.TonePrimary]
	}

	header := cardTitle.Render(c.Title)
	if c.Badge != "" {
		header = lipgloss.JoinHorizontal(lipgloss.Top, header, " ", badgeStyle.Background(color).Render(c.Badge))
	}

	body := header
	if text := strings.TrimSpace(c.Body); text != "" {
		body = lipgloss.JoinVertical(lipgloss.Left, header, text)
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(0, 1).
		Width(width - 2).
		Render(body)
}
