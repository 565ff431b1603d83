package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/slietar/okolab"
	"github.com/spf13/cobra"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List attached controllers",
	Long: `List Okolab controllers attached over USB.

Serial ports are matched against the controller's USB vendor and product
ids, so unrelated serial devices are hidden by default. Use --all to show
every USB serial port instead.`,
	Run: func(cmd *cobra.Command, args []string) {
		all, _ := cmd.Flags().GetBool("all")
		tableFormat, _ := cmd.Flags().GetBool("table")

		devices, err := okolab.ListDevices(all)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing controllers: %v\n", err)
			os.Exit(1)
		}

		if len(devices) == 0 {
			if all {
				fmt.Println("No USB serial ports found")
			} else {
				fmt.Println("No controller found")
			}
			return
		}

		if tableFormat {
			renderDeviceTable(devices)
		} else {
			for _, device := range devices {
				fmt.Println(device.Address)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolP("all", "a", false, "Include serial ports that are not recognized controllers")
	listCmd.Flags().BoolP("table", "t", false, "Display output in a styled table format")
}

// renderDeviceTable renders the controller list in a styled static table format
func renderDeviceTable(devices []okolab.DeviceInfo) {
	fmt.Printf("Found %d controller(s):\n\n", len(devices))

	addressWidth := 18
	serialWidth := 20

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99")).
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("240")).
		PaddingBottom(1)

	cellStyle := lipgloss.NewStyle().
		PaddingRight(2)

	header := fmt.Sprintf("%-*s %-*s",
		addressWidth, "Address",
		serialWidth, "Serial Number")
	fmt.Println(headerStyle.Render(header))

	for _, device := range devices {
		serialNumber := device.SerialNumber
		if serialNumber == "" {
			serialNumber = "-"
		}
		row := fmt.Sprintf("%-*s %-*s",
			addressWidth, device.Address,
			serialWidth, serialNumber)
		fmt.Println(cellStyle.Render(row))
	}
}
