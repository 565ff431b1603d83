package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/slietar/okolab"
	"github.com/spf13/cobra"
)

// setCmd represents the set command
var setCmd = &cobra.Command{
	Use:   "set <property> <value> [port]",
	Short: "Write a single value to a controller",
	Long: `Write a single value to a controller.

When no port is given and exactly one controller is attached, that
controller is used.

Properties:
  setpoint  Temperature setpoint in °C (requires --channel)
  device    Heating device type, or "off" to disable (requires --channel)
  time      Controller clock, "now" or "2006-01-02 15:04:05"

Examples:
  okolab set setpoint 37.0 --channel 1
  okolab set device 3 --channel 1 --side glass
  okolab set device off --channel 2
  okolab set time now`,
	Args: cobra.RangeArgs(2, 3),
	Run: func(cmd *cobra.Command, args []string) {
		property := args[0]
		value := args[1]
		channel, _ := cmd.Flags().GetInt("channel")
		side, _ := cmd.Flags().GetString("side")

		address, err := resolveAddress(args[2:])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		err = withDevice(address, func(device *okolab.Device) error {
			return writeProperty(device, property, value, channel, side)
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(setCmd)

	setCmd.Flags().IntP("channel", "c", 0, "Channel to write to: 1 or 2")
	setCmd.Flags().StringP("side", "s", "", "Heating device side: glass or metal")
}

func writeProperty(device *okolab.Device, property, value string, channel int, side string) error {
	ctx := context.Background()

	switch property {
	case "setpoint":
		setSetpoint, err := channelGetter(channel, device.SetTemperatureSetpoint1, device.SetTemperatureSetpoint2)
		if err != nil {
			return err
		}
		setpoint, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid setpoint: %s", value)
		}
		return setSetpoint(ctx, setpoint)

	case "device":
		setDevice, err := channelGetter(channel, device.SetDevice1, device.SetDevice2)
		if err != nil {
			return err
		}

		deviceSide, err := parseSide(side)
		if err != nil {
			return err
		}

		if strings.EqualFold(value, "off") {
			return setDevice(ctx, -1, deviceSide)
		}
		deviceType, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid device type: %s", value)
		}
		return setDevice(ctx, deviceType, deviceSide)

	case "time":
		if strings.EqualFold(value, "now") {
			return device.SetTime(ctx, time.Now())
		}
		clock, err := time.ParseInLocation("2006-01-02 15:04:05", value, time.Local)
		if err != nil {
			return fmt.Errorf("invalid time, expected \"now\" or \"2006-01-02 15:04:05\": %s", value)
		}
		return device.SetTime(ctx, clock)

	default:
		return fmt.Errorf("unknown property: %s", property)
	}
}

func parseSide(side string) (okolab.Side, error) {
	switch strings.ToLower(side) {
	case "":
		return okolab.SideUnspecified, nil
	case "glass":
		return okolab.SideGlass, nil
	case "metal":
		return okolab.SideMetal, nil
	default:
		return okolab.SideUnspecified, fmt.Errorf("unknown side: %s (valid: glass, metal)", side)
	}
}
