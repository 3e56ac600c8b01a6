package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/orderdesk/orderdesk/internal/order"
)

var (
	// Colors
	colorPrimary   = lipgloss.Color("#7C3AED")
	colorSecondary = lipgloss.Color("#A78BFA")
	colorSuccess   = lipgloss.Color("#22C55E")
	colorWarning   = lipgloss.Color("#F59E0B")
	colorDanger    = lipgloss.Color("#EF4444")
	colorMuted     = lipgloss.Color("#6B7280")
	colorBorder    = lipgloss.Color("#374151")

	// Base styles
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			Padding(0, 1)

	styleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(colorPrimary).
			Padding(0, 1)

	styleHelp = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 1)

	// Stage indicators
	styleDone = lipgloss.NewStyle().
			Foreground(colorSuccess).
			Bold(true)

	stylePending = lipgloss.NewStyle().
			Foreground(colorWarning).
			Bold(true)

	styleDanger = lipgloss.NewStyle().
			Foreground(colorDanger).
			Bold(true)

	// Table styles
	styleTableHeader = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FFFFFF")).
				Background(colorPrimary).
				Padding(0, 1)

	styleTableRow = lipgloss.NewStyle().
			Padding(0, 1)

	styleTableRowSelected = lipgloss.NewStyle().
				Background(lipgloss.Color("#1F2937")).
				Foreground(lipgloss.Color("#FFFFFF")).
				Padding(0, 1)

	// Box styles
	styleBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(1, 2)

	styleDetailBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(1, 2)

	// Label styles
	styleLabel = lipgloss.NewStyle().
			Foreground(colorMuted).
			Width(16)

	styleValue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	// Progress bar styles
	styleProgressFilled = lipgloss.NewStyle().
				Foreground(colorSuccess)

	styleProgressEmpty = lipgloss.NewStyle().
				Foreground(colorMuted)
)

// StageStyle picks the colour of a stage label.
func StageStyle(status string) lipgloss.Style {
	switch order.Stage(status) {
	case order.StageRejected:
		return styleDanger
	case order.StageDelivered:
		return styleDone
	case order.StagePending:
		return stylePending
	default:
		if _, ok := order.ParseStage(status); ok {
			return lipgloss.NewStyle().Foreground(colorSecondary).Bold(true)
		}
		return styleMuted()
	}
}

// StageIcon returns a short coloured marker for a status.
func StageIcon(status string) string {
	switch order.Stage(status) {
	case order.StageRejected:
		return styleDanger.Render("✗")
	case order.StageDelivered:
		return styleDone.Render("●")
	case order.StagePending:
		return stylePending.Render("○")
	default:
		if _, ok := order.ParseStage(status); ok {
			return StageStyle(status).Render("◐")
		}
		return styleMuted().Render("?")
	}
}

func styleMuted() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorMuted)
}

// ProgressBar renders a simple progress bar
func ProgressBar(percent float64, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	if width <= 0 {
		width = 20
	}

	filled := int(float64(width) * percent / 100)
	return styleProgressFilled.Render(strings.Repeat("█", filled)) +
		styleProgressEmpty.Render(strings.Repeat("░", width-filled))
}
