package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/slietar/okolab"
	"github.com/slietar/okolab/internal/tui/colors"
)

var (
	// Header styles
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Mauve).
			Background(colors.Surface0).
			Padding(0, 1)

	// Connection state styles
	StateConnectedStyle = lipgloss.NewStyle().
				Foreground(colors.Green).
				Bold(true)

	StateDisconnectedStyle = lipgloss.NewStyle().
				Foreground(colors.Red).
				Bold(true)

	StateConnectingStyle = lipgloss.NewStyle().
				Foreground(colors.Yellow).
				Bold(true)

	// Channel status styles
	StatusOkStyle = lipgloss.NewStyle().
			Foreground(colors.Green)

	StatusTransientStyle = lipgloss.NewStyle().
				Foreground(colors.Yellow)

	StatusAlarmStyle = lipgloss.NewStyle().
				Foreground(colors.Peach).
				Bold(true)

	StatusErrorStyle = lipgloss.NewStyle().
				Foreground(colors.Red).
				Bold(true)

	StatusDisabledStyle = lipgloss.NewStyle().
				Foreground(colors.Overlay0)

	// Content area styles
	ContentBorderStyle = lipgloss.NewStyle().
				BorderTop(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(colors.Surface1)

	// Reading styles
	TemperatureStyle = lipgloss.NewStyle().
				Foreground(colors.Teal).
				Bold(true)

	SetpointStyle = lipgloss.NewStyle().
			Foreground(colors.Blue)

	// Error styles
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Red).
			Align(lipgloss.Center)
)

// GetStateStyle returns the style for a connection state.
func GetStateStyle(state okolab.State) lipgloss.Style {
	switch state {
	case okolab.StateConnected:
		return StateConnectedStyle
	case okolab.StateConnecting:
		return StateConnectingStyle
	default:
		return StateDisconnectedStyle
	}
}

// GetStatusStyle returns the style for a channel status.
func GetStatusStyle(status okolab.Status) lipgloss.Style {
	switch status {
	case okolab.StatusOk:
		return StatusOkStyle
	case okolab.StatusTransient:
		return StatusTransientStyle
	case okolab.StatusAlarm:
		return StatusAlarmStyle
	case okolab.StatusError:
		return StatusErrorStyle
	case okolab.StatusDisabled:
		return StatusDisabledStyle
	default:
		return StatusDisabledStyle
	}
}
