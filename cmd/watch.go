package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/evertras/bubble-table/table"
	"github.com/slietar/okolab"
	"github.com/slietar/okolab/internal/tui/components"
	"github.com/slietar/okolab/internal/tui/keys"
	"github.com/slietar/okolab/internal/tui/models"
	"github.com/slietar/okolab/internal/tui/styles"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch [port]",
	Short: "Watch a controller live",
	Long: `Watch a controller live in a dashboard.

The dashboard polls both channels at a fixed interval and shows status,
temperature and setpoint for each. The setpoint of the selected channel
can be adjusted with + and -. Lost connections are retried automatically
until the controller reappears.

Examples:
  okolab watch
  okolab watch /dev/ttyACM0
  okolab watch /dev/ttyACM0 --interval 500ms`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		interval := viper.GetDuration("interval")
		if interval <= 0 {
			interval = time.Second
		}

		address, err := resolveAddress(args)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if err := runWatchTUI(address, interval); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().DurationP("interval", "i", time.Second, "Poll interval")
	viper.BindPFlag("interval", watchCmd.Flags().Lookup("interval"))
}

const (
	columnKeyChannel     = "channel"
	columnKeyDevice      = "device"
	columnKeyStatus      = "status"
	columnKeyTemperature = "temperature"
	columnKeySetpoint    = "setpoint"
	columnKeyRange       = "range"
)

// pollTickMsg asks the update loop to start the next poll.
type pollTickMsg time.Time

// watchModel is the Bubble Tea model for the watch command
type watchModel struct {
	*models.WatchModel
	table     table.Model
	statusBar *components.StatusBar
	spinner   spinner.Model
	help      help.Model
	keys      keys.WatchKeys
	interval  time.Duration
	width     int
}

func runWatchTUI(address string, interval time.Duration) error {
	watch := models.NewWatchModel(address)

	channelTable := table.New([]table.Column{
		table.NewColumn(columnKeyChannel, "Channel", 9),
		table.NewColumn(columnKeyDevice, "Device", 8),
		table.NewColumn(columnKeyStatus, "Status", 11),
		table.NewColumn(columnKeyTemperature, "Temp", 9),
		table.NewColumn(columnKeySetpoint, "Setpoint", 9),
		table.NewColumn(columnKeyRange, "Range", 15),
	}).
		WithBaseStyle(lipgloss.NewStyle().Align(lipgloss.Left)).
		BorderRounded()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.StateConnectingStyle

	m := watchModel{
		WatchModel: watch,
		table:      channelTable,
		statusBar:  components.NewStatusBar(address),
		spinner:    sp,
		help:       help.New(),
		keys:       keys.NewWatchKeys(),
		interval:   interval,
	}
	m.statusBar.SetState(okolab.StateConnecting)

	p := tea.NewProgram(&m, tea.WithAltScreen())

	// Connect in the background so the spinner shows immediately.
	go func() {
		device, err := okolab.NewDevice(address, append(deviceOptions(),
			okolab.WithOnConnection(func(reconnection bool) {
				p.Send(models.ConnectionMsg{State: okolab.StateConnected})
			}),
			okolab.WithOnDisconnection(func(lost bool) {
				if lost {
					p.Send(models.ConnectionMsg{State: okolab.StateDisconnected, Err: okolab.ErrDisconnected})
				}
			}),
		)...)
		if err != nil {
			p.Send(models.ConnectionMsg{State: okolab.StateDisconnected, Err: err})
			return
		}

		watch.SetDevice(device)

		if err := device.Connect(); err != nil {
			// Keep retrying until the controller shows up or the user quits.
			if task, taskErr := device.Reconnect(2 * time.Second); taskErr == nil {
				task.Wait(watch.GetContext())
			} else {
				p.Send(models.ConnectionMsg{State: okolab.StateDisconnected, Err: err})
			}
		}
	}()

	_, err := p.Run()

	m.Cleanup()
	return err
}

func (m *watchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.scheduleTick())
}

func (m *watchModel) scheduleTick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return pollTickMsg(t)
	})
}

func (m *watchModel) pollCmd() tea.Cmd {
	return func() tea.Msg {
		return m.Poll()
	}
}

// reconnectCmd starts a background reconnect loop when none is running.
func (m *watchModel) reconnectCmd() tea.Cmd {
	return func() tea.Msg {
		device := m.GetDevice()
		if device == nil {
			return nil
		}
		task, err := device.Reconnect(2 * time.Second)
		if err != nil {
			// A loop is already running.
			if errors.Is(err, okolab.ErrReconnectActive) {
				return nil
			}
			return models.ConnectionMsg{State: okolab.StateDisconnected, Err: err}
		}
		task.Wait(m.GetContext())
		return nil
	}
}

func (m *watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.statusBar.SetWidth(msg.Width)
		m.table = m.table.WithTargetWidth(msg.Width)
		m.SetReady(true)

	case models.ConnectionMsg:
		m.SetState(msg.State, msg.Err)
		m.statusBar.SetState(msg.State)
		m.statusBar.SetError(msg.Err)
		if msg.State == okolab.StateConnected {
			cmds = append(cmds, m.pollCmd())
		} else if msg.Err != nil {
			cmds = append(cmds, m.reconnectCmd())
		}

	case pollTickMsg:
		device := m.GetDevice()
		if device != nil && device.Connected() {
			cmds = append(cmds, m.pollCmd())
		} else {
			cmds = append(cmds, m.scheduleTick())
		}

	case models.ReadingsMsg:
		m.ApplyReadings(msg)
		if msg.Err == nil {
			m.SetState(okolab.StateConnected, nil)
			m.statusBar.SetState(okolab.StateConnected)
			m.statusBar.SetError(nil)
			m.table = m.table.WithRows(m.channelRows())
		}
		cmds = append(cmds, m.scheduleTick())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.Cancel()
			return m, tea.Quit

		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll

		case key.Matches(msg, m.keys.Refresh):
			cmds = append(cmds, m.pollCmd())

		case key.Matches(msg, m.keys.Reconnect):
			device := m.GetDevice()
			if device != nil {
				device.Disconnect()
			}
			cmds = append(cmds, m.reconnectCmd())

		case key.Matches(msg, m.keys.Channel):
			m.ToggleChannel()
			m.table = m.table.WithRows(m.channelRows())

		case key.Matches(msg, m.keys.SetpointUp):
			cmds = append(cmds, m.setpointCmd(0.5))

		case key.Matches(msg, m.keys.SetpointDn):
			cmds = append(cmds, m.setpointCmd(-0.5))
		}
	}

	return m, tea.Batch(cmds...)
}

func (m *watchModel) setpointCmd(delta float64) tea.Cmd {
	return func() tea.Msg {
		if err := m.AdjustSetpoint(delta); err != nil {
			return models.ConnectionMsg{State: m.GetState(), Err: err}
		}
		return m.Poll()
	}
}

func (m *watchModel) channelRows() []table.Row {
	channels := m.GetChannels()
	selected := m.SelectedChannel()

	rows := make([]table.Row, 0, len(channels))
	for index, channel := range channels {
		name := fmt.Sprintf("  %d", index+1)
		if index == selected {
			name = fmt.Sprintf("▸ %d", index+1)
		}

		if !channel.Enabled {
			rows = append(rows, table.NewRow(table.RowData{
				columnKeyChannel:     name,
				columnKeyDevice:      "-",
				columnKeyStatus:      styles.StatusDisabledStyle.Render("Disabled"),
				columnKeyTemperature: "-",
				columnKeySetpoint:    "-",
				columnKeyRange:       "-",
			}))
			continue
		}

		temperature := "?"
		if channel.TemperatureOK {
			temperature = fmt.Sprintf("%.1f°C", channel.Temperature)
		}

		rows = append(rows, table.NewRow(table.RowData{
			columnKeyChannel:     name,
			columnKeyDevice:      fmt.Sprintf("%d", channel.DeviceType),
			columnKeyStatus:      styles.GetStatusStyle(channel.Status).Render(channel.Status.String()),
			columnKeyTemperature: styles.TemperatureStyle.Render(temperature),
			columnKeySetpoint:    styles.SetpointStyle.Render(fmt.Sprintf("%.1f°C", channel.Setpoint)),
			columnKeyRange:       fmt.Sprintf("%.1f-%.1f°C", channel.SetpointMin, channel.SetpointMax),
		}))
	}
	return rows
}

func (m *watchModel) View() string {
	controller := m.GetController()

	var header string
	if controller.ProductName != "" {
		header = styles.TitleStyle.Render(controller.ProductName) +
			lipgloss.NewStyle().Padding(0, 1).Render(fmt.Sprintf(
				"S/N %s  Board %.1f°C  Up %s",
				controller.SerialNumber,
				controller.BoardTemperature,
				controller.Uptime,
			))
	} else {
		header = styles.TitleStyle.Render("Okolab") + " " + m.spinner.View() + " waiting for controller..."
	}

	var content string
	if m.IsReady() && m.GetState() == okolab.StateConnected {
		content = m.table.View()
	} else if err := m.GetError(); err != nil {
		content = styles.ErrorStyle.Render(fmt.Sprintf("Connection lost: %v", err)) +
			"\n" + m.spinner.View() + " reconnecting..."
	} else {
		content = m.spinner.View() + " connecting..."
	}

	helpView := m.help.View(m.keys)
	timestamp := time.Now().Format("15:04:05")
	if !m.GetLastPoll().IsZero() {
		timestamp = m.GetLastPoll().Format("15:04:05")
	}
	statusBar := m.statusBar.View(timestamp)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		styles.ContentBorderStyle.Render(content),
		helpView,
		statusBar,
	)
}
