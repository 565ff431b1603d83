package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/slietar/okolab"
	"github.com/slietar/okolab/internal/tui/colors"
)

// StatusBar is the single-line bar at the bottom of the watch dashboard.
type StatusBar struct {
	address string
	state   okolab.State
	err     error
	width   int
}

func NewStatusBar(address string) *StatusBar {
	return &StatusBar{
		address: address,
		state:   okolab.StateDisconnected,
	}
}

func (sb *StatusBar) SetWidth(width int) {
	sb.width = width
}

func (sb *StatusBar) SetState(state okolab.State) {
	sb.state = state
}

func (sb *StatusBar) SetError(err error) {
	sb.err = err
}

// View renders the bar: address and connection indicator on the left,
// connection detail and clock on the right.
func (sb *StatusBar) View(timestamp string) string {
	width := sb.width
	if width <= 0 {
		width = 80
	}

	addressStyle := lipgloss.NewStyle().
		Foreground(colors.Mauve).
		Bold(true).
		Padding(0, 1)
	address := addressStyle.Render(sb.address)

	var indicator string
	var indicatorStyle lipgloss.Style
	switch {
	case sb.err != nil:
		indicatorStyle = lipgloss.NewStyle().Foreground(colors.Red)
		indicator = "✗"
	case sb.state == okolab.StateConnected:
		indicatorStyle = lipgloss.NewStyle().Foreground(colors.Green)
		indicator = "●"
	case sb.state == okolab.StateConnecting:
		indicatorStyle = lipgloss.NewStyle().Foreground(colors.Yellow)
		indicator = "○"
	default:
		indicatorStyle = lipgloss.NewStyle().Foreground(colors.Red)
		indicator = "○"
	}
	connectionIndicator := indicatorStyle.Render(indicator)

	detail := sb.state.String()
	if sb.err != nil {
		detail = fmt.Sprintf("%s: %v", sb.state, sb.err)
	}
	detailStyle := lipgloss.NewStyle().
		Foreground(colors.Subtext0).
		Padding(0, 1)
	stateDetail := detailStyle.Render(detail)

	timeStyle := lipgloss.NewStyle().
		Foreground(colors.Subtext1).
		Padding(0, 1)
	clock := timeStyle.Render(timestamp)

	dividerStyle := lipgloss.NewStyle().
		Foreground(colors.Surface2).
		Padding(0, 1)
	divider := dividerStyle.Render("│")

	leftSide := lipgloss.JoinHorizontal(lipgloss.Left, address, connectionIndicator)
	rightSide := lipgloss.JoinHorizontal(lipgloss.Left, stateDetail, divider, clock)

	spacerWidth := width - lipgloss.Width(leftSide) - lipgloss.Width(rightSide)
	if spacerWidth < 1 {
		spacerWidth = 1
	}
	spacer := lipgloss.NewStyle().Width(spacerWidth).Render("")

	barStyle := lipgloss.NewStyle().
		Foreground(colors.Text).
		Background(colors.Surface0).
		Width(width)

	return barStyle.Render(lipgloss.JoinHorizontal(lipgloss.Left, leftSide, spacer, rightSide))
}
