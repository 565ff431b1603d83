package okolab

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// USB vendor and product ids of the H401-T-CONTROLLER.
const (
	okolabVendorID  = "03eb"
	okolabProductID = "2404"
)

// DeviceInfo describes one discovered controller candidate.
type DeviceInfo struct {
	// Address is the serial device path, such as /dev/ttyACM0.
	Address string
	// SerialNumber is the USB serial number, when sysfs exposes one.
	SerialNumber string
}

// Create constructs a handle for the controller without opening the
// connection.
func (i DeviceInfo) Create(opts ...Option) (*Device, error) {
	return NewDevice(i.Address, opts...)
}

// ListDevices returns the visible controllers, ordered by address. With
// all set, devices whose USB vendor and product ids are not recognized
// are included too.
func ListDevices(all bool) ([]DeviceInfo, error) {
	ports, err := listSerialPorts()
	if err != nil {
		return nil, err
	}

	var devices []DeviceInfo
	for _, port := range ports {
		info := readPortInfo(port)
		if !all && (info.VendorID != okolabVendorID || info.ProductID != okolabProductID) {
			continue
		}
		devices = append(devices, DeviceInfo{
			Address:      port,
			SerialNumber: info.SerialNumber,
		})
	}

	return devices, nil
}

// serialPortPatterns match the device names a USB-attached controller can
// appear under.
var serialPortPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^ttyUSB\d+$`), // USB serial adapters
	regexp.MustCompile(`^ttyACM\d+$`), // USB CDC/ACM devices
}

// listSerialPorts returns candidate serial character devices under /dev,
// sorted for consistent ordering.
func listSerialPorts() ([]string, error) {
	entries, err := os.ReadDir("/dev")
	if err != nil {
		return nil, err
	}

	var ports []string
	for _, entry := range entries {
		name := entry.Name()

		matched := false
		for _, pattern := range serialPortPatterns {
			if pattern.MatchString(name) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}

		fullPath := filepath.Join("/dev", name)
		if isCharacterDevice(fullPath) {
			ports = append(ports, fullPath)
		}
	}

	sort.Strings(ports)
	return ports, nil
}

// isCharacterDevice checks if the given path is a character device
func isCharacterDevice(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// PortInfo holds USB metadata for a serial port, read from sysfs.
type PortInfo struct {
	Name         string
	Path         string
	VendorID     string
	ProductID    string
	SerialNumber string
	Manufacturer string
	Product      string
	BusNumber    string
	DeviceNumber string
}

// readPortInfo collects the sysfs metadata for a port. Fields that sysfs
// does not expose stay empty.
func readPortInfo(portPath string) *PortInfo {
	info := &PortInfo{
		Name: filepath.Base(portPath),
		Path: portPath,
	}
	if strings.HasPrefix(info.Name, "ttyUSB") || strings.HasPrefix(info.Name, "ttyACM") {
		enrichUSBInfo(info)
	}
	return info
}

// enrichUSBInfo resolves /sys/class/tty/<name>/device and walks up to the
// USB device directory holding idVendor, idProduct and serial.
func enrichUSBInfo(info *PortInfo) {
	devicePath := filepath.Join("/sys/class/tty", info.Name, "device")
	resolvedPath, err := filepath.EvalSymlinks(devicePath)
	if err != nil {
		return
	}

	// resolvedPath points at the USB interface directory; its parent is
	// the USB device.
	interfacePath := filepath.Dir(resolvedPath)
	usbDevicePath := filepath.Dir(interfacePath)

	info.VendorID = readSysfsFile(filepath.Join(usbDevicePath, "idVendor"))
	info.ProductID = readSysfsFile(filepath.Join(usbDevicePath, "idProduct"))
	info.SerialNumber = readSysfsFile(filepath.Join(usbDevicePath, "serial"))
	info.Manufacturer = readSysfsFile(filepath.Join(usbDevicePath, "manufacturer"))
	info.Product = readSysfsFile(filepath.Join(usbDevicePath, "product"))
	info.BusNumber = readSysfsFile(filepath.Join(usbDevicePath, "busnum"))
	info.DeviceNumber = readSysfsFile(filepath.Join(usbDevicePath, "devnum"))
}

// readSysfsFile reads a single-value sysfs file, returning "" when it is
// missing or unreadable.
func readSysfsFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// GetPortInfo returns USB metadata for a specific serial port.
func GetPortInfo(portPath string) (*PortInfo, error) {
	if !isCharacterDevice(portPath) {
		return nil, ErrDeviceNotFound
	}
	return readPortInfo(portPath), nil
}
