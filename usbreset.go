package okolab

import (
	"fmt"
	"os/exec"
	"time"
)

// reenumerationDelay is how long the controller takes to come back on the
// bus after a reset.
const reenumerationDelay = 2 * time.Second

// Reset performs a USB-level reset of the controller behind this port.
// This can recover hardware that is in a hung state.
//
// Requires the usbreset utility (from usbutils) and appropriate
// permissions, typically root.
func (d DeviceInfo) Reset() error {
	info, err := GetPortInfo(d.Address)
	if err != nil {
		return fmt.Errorf("failed to get port info: %w", err)
	}

	if info.BusNumber == "" || info.DeviceNumber == "" {
		return ErrUSBInfoNotAvailable
	}

	if !IsUSBResetAvailable() {
		return ErrUSBResetNotAvailable
	}

	// usbreset expects zero-padded 3-digit bus and device numbers.
	usbPath := fmt.Sprintf("%03s/%03s", info.BusNumber, info.DeviceNumber)

	cmd := exec.Command("usbreset", usbPath)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("usbreset failed: %w (output: %s)", err, string(output))
	}

	time.Sleep(reenumerationDelay)

	return nil
}

// ResetUSBDevice resets the controller at the given port path.
func ResetUSBDevice(portPath string) error {
	return DeviceInfo{Address: portPath}.Reset()
}

// ResetUSBDeviceBySerial resets a controller by its USB serial number.
// Useful when device paths change after re-enumeration.
func ResetUSBDeviceBySerial(serialNumber string) error {
	if serialNumber == "" {
		return fmt.Errorf("serial number must not be empty")
	}

	devices, err := ListDevices(true)
	if err != nil {
		return err
	}

	for _, device := range devices {
		if device.SerialNumber == serialNumber {
			return device.Reset()
		}
	}

	return fmt.Errorf("%w: no controller with serial %s", ErrDeviceNotFound, serialNumber)
}

// IsUSBResetAvailable checks if usbreset utility is available in PATH
func IsUSBResetAvailable() bool {
	_, err := exec.LookPath("usbreset")
	return err == nil
}
