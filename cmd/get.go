package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/slietar/okolab"
	"github.com/spf13/cobra"
)

// getCmd represents the get command
var getCmd = &cobra.Command{
	Use:   "get <property> [port]",
	Short: "Read a single value from a controller",
	Long: `Read a single value from a controller and print it.

When no port is given and exactly one controller is attached, that
controller is used.

Properties:
  product-name       Product name reported by the controller
  serial-number      Controller serial number
  board-temperature  Temperature of the controller board
  uptime             Time since the controller powered on
  time               Controller clock
  device             Heating device type of a channel (requires --channel)
  temperature        Measured temperature of a channel (requires --channel)
  setpoint           Temperature setpoint of a channel (requires --channel)
  setpoint-range     Allowed setpoint range of a channel (requires --channel)
  status             Controller status, or channel status with --channel

Examples:
  okolab get serial-number
  okolab get temperature --channel 1 /dev/ttyACM0
  okolab get status --channel 2`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		property := args[0]
		channel, _ := cmd.Flags().GetInt("channel")

		address, err := resolveAddress(args[1:])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		err = withDevice(address, func(device *okolab.Device) error {
			return printProperty(device, property, channel)
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(getCmd)

	getCmd.Flags().IntP("channel", "c", 0, "Channel to read from: 1 or 2")
}

func printProperty(device *okolab.Device, property string, channel int) error {
	ctx := context.Background()

	switch property {
	case "product-name":
		value, err := device.GetProductName(ctx)
		if err != nil {
			return err
		}
		fmt.Println(value)

	case "serial-number":
		value, err := device.GetSerialNumber(ctx)
		if err != nil {
			return err
		}
		fmt.Println(value)

	case "board-temperature":
		value, err := device.GetBoardTemperature(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%.1f\n", value)

	case "uptime":
		value, err := device.GetUptime(ctx)
		if err != nil {
			return err
		}
		fmt.Println(value)

	case "time":
		value, err := device.GetTime(ctx)
		if err != nil {
			return err
		}
		fmt.Println(value.Format("2006-01-02 15:04:05"))

	case "device":
		getDevice, err := channelGetter(channel, device.GetDevice1, device.GetDevice2)
		if err != nil {
			return err
		}
		deviceType, ok, err := getDevice(ctx)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("disabled")
		} else {
			fmt.Println(deviceType)
		}

	case "temperature":
		getTemperature, err := channelGetter(channel, device.GetTemperature1, device.GetTemperature2)
		if err != nil {
			return err
		}
		value, ok, err := getTemperature(ctx)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("disabled")
		} else {
			fmt.Printf("%.1f\n", value)
		}

	case "setpoint":
		getSetpoint, err := channelGetter(channel, device.GetTemperatureSetpoint1, device.GetTemperatureSetpoint2)
		if err != nil {
			return err
		}
		value, err := getSetpoint(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%.1f\n", value)

	case "setpoint-range":
		getRange, err := channelRangeGetter(channel, device)
		if err != nil {
			return err
		}
		min, max, err := getRange(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%.1f %.1f\n", min, max)

	case "status":
		getStatus := device.GetStatus
		if channel != 0 {
			var err error
			getStatus, err = channelGetter(channel, device.GetStatus1, device.GetStatus2)
			if err != nil {
				return err
			}
		}
		value, err := getStatus(ctx)
		if err != nil {
			return err
		}
		fmt.Println(value)

	default:
		return fmt.Errorf("unknown property: %s", property)
	}
	return nil
}

// channelGetter selects between the channel 1 and channel 2 variant of a
// typed read.
func channelGetter[T any](channel int, first, second T) (T, error) {
	switch channel {
	case 1:
		return first, nil
	case 2:
		return second, nil
	default:
		var zero T
		return zero, fmt.Errorf("this property requires --channel 1 or --channel 2")
	}
}

func channelRangeGetter(channel int, device *okolab.Device) (func(context.Context) (float64, float64, error), error) {
	return channelGetter(channel, device.GetTemperatureSetpointRange1, device.GetTemperatureSetpointRange2)
}
