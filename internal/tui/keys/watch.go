package keys

import "github.com/charmbracelet/bubbles/key"

// WatchKeys are the key bindings of the watch dashboard.
type WatchKeys struct {
	Quit       key.Binding
	Help       key.Binding
	Refresh    key.Binding
	Reconnect  key.Binding
	SetpointUp key.Binding
	SetpointDn key.Binding
	Channel    key.Binding
}

func NewWatchKeys() WatchKeys {
	return WatchKeys{
		Quit: key.NewBinding(
			key.WithKeys("q", "Q", "ctrl+c"),
			key.WithHelp("q/ctrl+c", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh now"),
		),
		Reconnect: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "force reconnect"),
		),
		SetpointUp: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "setpoint +0.5°C"),
		),
		SetpointDn: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "setpoint -0.5°C"),
		),
		Channel: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "select channel"),
		),
	}
}

func (k WatchKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Channel, k.SetpointUp, k.SetpointDn, k.Quit}
}

func (k WatchKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Channel, k.SetpointUp, k.SetpointDn},
		{k.Refresh, k.Reconnect},
		{k.Help, k.Quit},
	}
}
