package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/hanzalatafzeel/path-craft/pkg/api"
)

// Color palette
var (
	ColorPurple      = lipgloss.Color("#7D56F4")
	ColorGreen       = lipgloss.Color("#25A065")
	ColorBlue        = lipgloss.Color("#4285F4")
	ColorRed         = lipgloss.Color("#E05252")
	ColorYellow      = lipgloss.Color("#E5C07B")
	ColorGray        = lipgloss.Color("#626262")
	ColorGrayDim     = lipgloss.Color("#404040")
	ColorWhite       = lipgloss.Color("#FFFFFF")
	ColorOffWhite    = lipgloss.Color("#D0D0D0")
	ColorSelectionBg = lipgloss.Color("#2D3B4D")
	ColorCyan        = lipgloss.Color("#56B6C2")
)

// Header styles
var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPurple)

	HeaderCountStyle = lipgloss.NewStyle().
				Foreground(ColorGray)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	StatusLineStyle = lipgloss.NewStyle().
			Foreground(ColorYellow)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed)
)

// Tree item styles
var (
	SelectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorWhite).
			Background(ColorSelectionBg)

	NormalStyle = lipgloss.NewStyle()

	CompleteStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	InProgressStyle = lipgloss.NewStyle().
			Foreground(ColorYellow)

	PendingStyle = lipgloss.NewStyle().
			Foreground(ColorOffWhite)

	CancelledStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	LoadingStyle = lipgloss.NewStyle().
			Foreground(ColorGray).
			Italic(true)

	DepthIndent = "  "
)

// Calendar styles
var (
	CalendarTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorPurple)

	CalendarWeekdayStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorGray)

	CalendarDayStyle = lipgloss.NewStyle().
				Foreground(ColorOffWhite)

	CalendarTodayStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorWhite).
				Background(ColorPurple)

	CalendarSelectedStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorWhite).
				Background(ColorSelectionBg)

	CalendarTaskStyle = lipgloss.NewStyle().
				Foreground(ColorCyan)

	CalendarOverflowStyle = lipgloss.NewStyle().
				Foreground(ColorGray)

	CalendarCellStyle = lipgloss.NewStyle().
				Border(lipgloss.NormalBorder()).
				BorderForeground(ColorGrayDim)
)

// Panel styles
var (
	PanelBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorGrayDim)

	DetailPanelStyle = lipgloss.NewStyle().
				Padding(0, 1)
)

// Modal styles
var (
	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPurple).
			Padding(1, 2)

	ModalTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPurple)

	ModalLabelStyle = lipgloss.NewStyle().
			Foreground(ColorGray).
			Width(14)

	ModalValueStyle = lipgloss.NewStyle().
			Foreground(ColorWhite)
)

// Input styles
var (
	InputPromptStyle = lipgloss.NewStyle().
				Foreground(ColorPurple).
				Bold(true)

	InputStyle = lipgloss.NewStyle().
			Foreground(ColorWhite)
)

// Status icons
const (
	IconComplete   = "✓"
	IconInProgress = "◐"
	IconPending    = "○"
	IconCancelled  = "✗"
	IconExpanded   = "▼"
	IconCollapsed  = "▶"
	IconSpinner    = "…"
)

// StatusIcon returns the tree icon for a task or subtask status.
func StatusIcon(s api.Status) string {
	switch s {
	case api.StatusCompleted:
		return IconComplete
	case api.StatusInProgress:
		return IconInProgress
	case api.StatusCancelled:
		return IconCancelled
	default:
		return IconPending
	}
}

// StatusStyle returns the text style for a task or subtask status.
func StatusStyle(s api.Status) lipgloss.Style {
	switch s {
	case api.StatusCompleted:
		return CompleteStyle
	case api.StatusInProgress:
		return InProgressStyle
	case api.StatusCancelled:
		return CancelledStyle
	default:
		return PendingStyle
	}
}
