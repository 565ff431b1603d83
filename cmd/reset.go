package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/slietar/okolab"
	"github.com/spf13/cobra"
)

// resetCmd represents the reset command
var resetCmd = &cobra.Command{
	Use:   "reset <port|serial>",
	Short: "Reset a controller at the USB level",
	Long: `Perform a USB-level reset on a controller. This can recover a
controller that is hung or unresponsive without physically unplugging it.

The controller will re-enumerate after reset, which may cause the port
path to change (e.g., /dev/ttyACM0 might become /dev/ttyACM1). Use
serial numbers to reliably identify controllers after reset.

Requirements:
- usbreset utility must be installed (from usbutils package)
- Root/sudo permissions required for USB operations

Examples:
  sudo okolab reset /dev/ttyACM0       # Reset by port path
  sudo okolab reset --serial H401123   # Reset by serial number`,
	Args: func(cmd *cobra.Command, args []string) error {
		serialFlag, _ := cmd.Flags().GetString("serial")
		if serialFlag == "" && len(args) != 1 {
			return errors.New("requires either a port path argument or --serial flag")
		}
		if serialFlag != "" && len(args) > 0 {
			return errors.New("cannot specify both port path and --serial flag")
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		if !okolab.IsUSBResetAvailable() {
			fmt.Fprintln(os.Stderr, "Error: usbreset utility not available")
			fmt.Fprintln(os.Stderr, "Install with: sudo apt-get install usbutils")
			os.Exit(1)
		}

		serialFlag, _ := cmd.Flags().GetString("serial")

		var err error
		if serialFlag != "" {
			fmt.Printf("Resetting controller with serial: %s\n", serialFlag)
			err = okolab.ResetUSBDeviceBySerial(serialFlag)
		} else {
			portPath := args[0]
			fmt.Printf("Resetting controller: %s\n", portPath)
			err = okolab.ResetUSBDevice(portPath)
		}

		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			if errors.Is(err, okolab.ErrUSBInfoNotAvailable) {
				fmt.Fprintln(os.Stderr, "This device does not appear to be a USB device")
			}
			os.Exit(1)
		}

		fmt.Println("Controller reset successfully")
		fmt.Println("Controller will re-enumerate (port path may change)")
		fmt.Println("\nUse 'okolab list --table' to see updated controllers")
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)

	resetCmd.Flags().StringP("serial", "s", "", "Reset controller by serial number")
}
