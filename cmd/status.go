package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/slietar/okolab"
	"github.com/spf13/cobra"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show a summary of every attached controller",
	Long: `Show a hierarchical summary of every attached controller and its
two channels: product name, serial number, uptime, and per-channel
status, temperature and setpoint. Channels whose heating device is
disabled are shown as <disabled>.

Examples:
  okolab status
  okolab status /dev/ttyACM0`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var devices []okolab.DeviceInfo
		if len(args) == 1 {
			devices = []okolab.DeviceInfo{{Address: args[0]}}
		} else {
			var err error
			devices, err = okolab.ListDevices(false)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error listing controllers: %v\n", err)
				os.Exit(1)
			}
		}

		if len(devices) == 0 {
			fmt.Println("No controller found")
			return
		}

		root := &hierarchyNode{lines: []string{titleStyle.Render("System")}}
		for _, info := range devices {
			node, err := describeController(info)
			if err != nil {
				node = &hierarchyNode{lines: []string{
					info.Address,
					errorStyle.Render(fmt.Sprintf("Error: %v", err)),
				}}
			}
			root.children = append(root.children, node)
		}

		fmt.Println(root.format(""))
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// hierarchyNode is a node of the status tree. Extra lines of a node are
// printed below its first line at the same depth.
type hierarchyNode struct {
	lines    []string
	children []*hierarchyNode
}

func (n *hierarchyNode) format(prefix string) string {
	var b strings.Builder
	b.WriteString(strings.Join(n.lines, "\n"+prefix))

	for index, child := range n.children {
		last := index == len(n.children)-1
		connector := "├── "
		childPrefix := prefix + "│   "
		if last {
			connector = "└── "
			childPrefix = prefix + "    "
		}
		b.WriteString("\n" + prefix + connector + child.format(childPrefix))
	}
	return b.String()
}

// describeController connects to one controller and collects its summary.
func describeController(info okolab.DeviceInfo) (*hierarchyNode, error) {
	var node *hierarchyNode

	err := withDevice(info.Address, func(device *okolab.Device) error {
		ctx := context.Background()

		productName, err := device.GetProductName(ctx)
		if err != nil {
			return err
		}
		serialNumber, err := device.GetSerialNumber(ctx)
		if err != nil {
			return err
		}
		uptime, err := device.GetUptime(ctx)
		if err != nil {
			return err
		}
		clock, err := device.GetTime(ctx)
		if err != nil {
			return err
		}

		node = &hierarchyNode{lines: []string{
			titleStyle.Render(productName),
			dimStyle.Render("Address: ") + info.Address,
			dimStyle.Render("Serial number: ") + serialNumber,
			dimStyle.Render("Uptime: ") + uptime.String(),
			dimStyle.Render("Time: ") + clock.Format("2006-01-02 15:04:05"),
		}}

		channel1, err := describeChannel(ctx, device, 1)
		if err != nil {
			return err
		}
		channel2, err := describeChannel(ctx, device, 2)
		if err != nil {
			return err
		}
		node.children = append(node.children, channel1, channel2)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return node, nil
}

func describeChannel(ctx context.Context, device *okolab.Device, channel int) (*hierarchyNode, error) {
	getDevice := device.GetDevice1
	getStatus := device.GetStatus1
	getTemperature := device.GetTemperature1
	getSetpoint := device.GetTemperatureSetpoint1
	if channel == 2 {
		getDevice = device.GetDevice2
		getStatus = device.GetStatus2
		getTemperature = device.GetTemperature2
		getSetpoint = device.GetTemperatureSetpoint2
	}

	_, enabled, err := getDevice(ctx)
	if err != nil {
		return nil, err
	}
	if !enabled {
		return &hierarchyNode{lines: []string{dimStyle.Render("<disabled>")}}, nil
	}

	status, err := getStatus(ctx)
	if err != nil {
		return nil, err
	}
	setpoint, err := getSetpoint(ctx)
	if err != nil {
		return nil, err
	}

	temperatureText := "?"
	if temperature, ok, err := getTemperature(ctx); err != nil {
		return nil, err
	} else if ok {
		temperatureText = fmt.Sprintf("%.1f°C", temperature)
	}

	return &hierarchyNode{lines: []string{
		titleStyle.Render(fmt.Sprintf("Channel %d", channel)),
		dimStyle.Render("Status: ") + status.String(),
		dimStyle.Render("Temperature: ") + temperatureText,
		dimStyle.Render("Setpoint: ") + fmt.Sprintf("%.1f°C", setpoint),
	}}, nil
}
