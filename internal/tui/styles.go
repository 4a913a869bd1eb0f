package tui

import "github.com/charmbracelet/lipgloss"

// Styles
var (
	baseFg    = lipgloss.Color("#E9D5FF")
	baseDimFg = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#8B85A8"}
	accentFg  = lipgloss.Color("#C084FC")
	starFg    = lipgloss.Color("#FDE047")
	amberFg   = lipgloss.Color("#F59E0B")
	errorFg   = lipgloss.Color("#F87171")
	borderCol = lipgloss.Color("#4C3F6B")

	appStyle    = lipgloss.NewStyle().Foreground(baseFg)
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(borderCol).Padding(0, 1)
	titleStyle  = lipgloss.NewStyle().Foreground(accentFg).Bold(true)
	italicStyle = lipgloss.NewStyle().Foreground(accentFg).Italic(true)
	dimStyle    = lipgloss.NewStyle().Foreground(baseDimFg)
	noticeStyle = lipgloss.NewStyle().Foreground(errorFg).Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(baseFg).Background(lipgloss.Color("#111827"))
)

// ink is the color class of a map cell. Higher inks win when layers overlap.
type ink uint8

const (
	inkNone ink = iota
	inkTrailDim
	inkTrail
	inkPoint
	inkPicked
	inkLabel
	inkHover
	inkUser
)

var inkStyles = map[ink]lipgloss.Style{
	inkTrailDim: lipgloss.NewStyle().Foreground(lipgloss.Color("#6B4A8C")),
	inkTrail:    lipgloss.NewStyle().Foreground(accentFg),
	inkPoint:    lipgloss.NewStyle().Foreground(lipgloss.Color("#A89B5A")),
	inkPicked:   lipgloss.NewStyle().Foreground(starFg).Bold(true),
	inkLabel:    labelStyle,
	inkHover:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500")).Bold(true),
	inkUser:     lipgloss.NewStyle().Foreground(amberFg).Bold(true),
}
