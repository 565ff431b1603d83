package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/slietar/okolab"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "okolab",
	Short: "Control Okolab H401-T temperature controllers",
	Long: `Command line tool for Okolab H401-T-CONTROLLER stage-top incubator
temperature controllers attached over USB.

The controller exposes two temperature channels, each driving a heating
device such as a glass or metal plate. This tool can discover attached
controllers, read temperatures and setpoints, change setpoints, and
watch a controller live.

Examples:
  okolab list
  okolab status
  okolab get temperature --channel 1 /dev/ttyACM0
  okolab set setpoint 37.0 --channel 1 /dev/ttyACM0
  okolab watch /dev/ttyACM0`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/okolab.yaml)")
	rootCmd.PersistentFlags().IntP("baud", "b", 115200, "Baud rate for the serial connection")
	rootCmd.PersistentFlags().Duration("timeout", 2*time.Second, "Per-request timeout")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log protocol activity to stderr")

	viper.BindPFlag("baud", rootCmd.PersistentFlags().Lookup("baud"))
	viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in ~/.config with name "okolab" (without extension).
		viper.AddConfigPath(home + "/.config")
		viper.SetConfigType("yaml")
		viper.SetConfigName("okolab")
	}

	viper.SetEnvPrefix("OKOLAB")
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// deviceOptions builds handle options from the resolved configuration.
func deviceOptions() []okolab.Option {
	opts := []okolab.Option{
		okolab.WithBaudRate(viper.GetInt("baud")),
		okolab.WithRequestTimeout(viper.GetDuration("timeout")),
	}
	if viper.GetBool("verbose") {
		opts = append(opts, okolab.WithLogger(stderrLogger()))
	}
	return opts
}

// withDevice connects to the controller at address, runs fn, and always
// disconnects afterwards.
func withDevice(address string, fn func(device *okolab.Device) error) error {
	device, err := okolab.NewDevice(address, deviceOptions()...)
	if err != nil {
		return err
	}
	if err := device.Connect(); err != nil {
		return fmt.Errorf("connecting to %s: %w", address, err)
	}
	defer device.Disconnect()

	return fn(device)
}

// stderrLogger returns a debug-level logger for the --verbose flag.
func stderrLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// resolveAddress returns the controller address to use: the positional
// argument when given, otherwise the single discovered controller.
func resolveAddress(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}

	devices, err := okolab.ListDevices(false)
	if err != nil {
		return "", fmt.Errorf("discovering controllers: %w", err)
	}
	switch len(devices) {
	case 0:
		return "", fmt.Errorf("no controller found, specify a port such as /dev/ttyACM0")
	case 1:
		return devices[0].Address, nil
	default:
		return "", fmt.Errorf("found %d controllers, specify a port to choose one", len(devices))
	}
}
