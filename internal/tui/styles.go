package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette
var (
	Primary   = lipgloss.Color("#D97706") // Amber 600
	Secondary = lipgloss.Color("#0EA5E9") // Sky 500
	Success   = lipgloss.Color("#22C55E") // Green 500
	Warning   = lipgloss.Color("#EAB308") // Yellow 500
	Error     = lipgloss.Color("#DC2626") // Red 600

	BgCard    = lipgloss.Color("#1C1917") // Stone 900
	BgHover   = lipgloss.Color("#44403C") // Stone 700
	BgSidebar = lipgloss.Color("#0C0A09") // Stone 950
	BgConsole = lipgloss.Color("#292524") // Stone 800

	colorTextBright = lipgloss.Color("#FAFAF9")
	colorTextNormal = lipgloss.Color("#D6D3D1")
	colorTextMuted  = lipgloss.Color("#78716C")
)

var TextMuted = lipgloss.NewStyle().Foreground(colorTextMuted)

var (
	SidebarStyle = lipgloss.NewStyle().
			Background(BgSidebar).
			Foreground(colorTextNormal).
			Padding(1, 0).
			BorderRight(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(BgHover)

	SidebarItemStyle = lipgloss.NewStyle().
				Foreground(colorTextMuted)

	SidebarActiveStyle = lipgloss.NewStyle().
				Foreground(colorTextBright).
				Background(Primary).
				Bold(true)

	ContentStyle = lipgloss.NewStyle().
			Padding(1, 2)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorTextBright).
			Background(Primary).
			Padding(0, 2).
			MarginBottom(1)

	LogoStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			PaddingLeft(1)

	CardTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Secondary).
			MarginBottom(1)

	ListItemStyle = lipgloss.NewStyle().
			Foreground(colorTextNormal).
			PaddingLeft(2)

	SelectedItemStyle = lipgloss.NewStyle().
				Foreground(colorTextBright).
				Background(BgHover).
				Bold(true).
				PaddingLeft(2)

	statusOnline  = lipgloss.NewStyle().Foreground(Success).SetString("●")
	statusOffline = lipgloss.NewStyle().Foreground(Error).SetString("●")
	statusUnknown = lipgloss.NewStyle().Foreground(Warning).SetString("●")

	InputFocusedStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(Primary).
				Padding(0, 1)

	InputLabelFocusedStyle = lipgloss.NewStyle().
				Foreground(Secondary).
				Bold(true)

	helpStyle    = lipgloss.NewStyle().Foreground(colorTextMuted)
	helpKeyStyle = lipgloss.NewStyle().Foreground(Secondary).Bold(true)

	SuccessStyle = lipgloss.NewStyle().Foreground(Success)
	ErrorStyle   = lipgloss.NewStyle().Foreground(Error)
	InfoStyle    = lipgloss.NewStyle().Foreground(Secondary)

	SpinnerStyle = lipgloss.NewStyle().Foreground(Primary)
)

func RenderKey(key string) string {
	return helpKeyStyle.Render(key)
}

func RenderHelp(key, desc string) string {
	return RenderKey(key) + helpStyle.Render(" "+desc)
}

// StatusIcon maps printer and job states to a colored dot
func StatusIcon(status string) string {
	switch status {
	case "connected", "ready", "available", "configured", "completed":
		return statusOnline.String()
	case "failed", "not-found", "access-denied", "timeout", "write-error":
		return statusOffline.String()
	default:
		return statusUnknown.String()
	}
}

// Truncate shortens s to at most max runes, marking the cut with "..."
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
