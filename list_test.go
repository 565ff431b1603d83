package okolab

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestListSerialPorts(t *testing.T) {
	ports, err := listSerialPorts()
	if err != nil {
		t.Errorf("listSerialPorts failed: %v", err)
	}

	for _, port := range ports {
		if filepath.Dir(port) != "/dev" {
			t.Errorf("Port path not under /dev: %s", port)
		}
		if !isCharacterDevice(port) {
			t.Errorf("Port is not a character device: %s", port)
		}
	}

	// Check that ports are sorted
	for i := 1; i < len(ports); i++ {
		if ports[i-1] > ports[i] {
			t.Errorf("Ports are not sorted: %s > %s", ports[i-1], ports[i])
		}
	}
}

func TestIsCharacterDevice(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"/dev/null", true},     // Should exist and be a character device
		{"/dev/zero", true},     // Should exist and be a character device
		{"/tmp", false},         // Directory, not character device
		{"/nonexistent", false}, // Doesn't exist
	}

	for _, test := range tests {
		result := isCharacterDevice(test.path)
		if result != test.expected {
			t.Errorf("isCharacterDevice(%s) = %v, expected %v", test.path, result, test.expected)
		}
	}
}

// TestPortFiltering tests that only USB-attached device names are considered
// controller candidates.
func TestPortFiltering(t *testing.T) {
	tests := []struct {
		name        string
		shouldMatch bool
	}{
		{"ttyUSB0", true},
		{"ttyUSB12", true},
		{"ttyACM0", true},
		{"ttyS0", false},    // Onboard UART - cannot be the controller
		{"ttyAMA0", false},  // ARM UART - cannot be the controller
		{"tty1", false},     // Virtual terminal
		{"console", false},  // Console
		{"ptmx", false},     // Pseudo-terminal
		{"random", false},   // Not a serial device
		{"ttyUSB", false},   // Missing index
		{"xttyUSB0", false}, // Prefix must anchor
	}

	for _, test := range tests {
		matched := false
		for _, pattern := range serialPortPatterns {
			if pattern.MatchString(test.name) {
				matched = true
				break
			}
		}
		if matched != test.shouldMatch {
			t.Errorf("Device %s: expected match=%v, got match=%v", test.name, test.shouldMatch, matched)
		}
	}
}

func TestGetPortInfoNonexistent(t *testing.T) {
	_, err := GetPortInfo("/dev/nonexistent")
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("Expected ErrDeviceNotFound, got %v", err)
	}
}

func TestReadPortInfoNonUSB(t *testing.T) {
	// A name outside the USB patterns must not trigger a sysfs walk and
	// leaves the USB fields empty.
	info := readPortInfo("/dev/null")
	if info.Name != "null" {
		t.Errorf("Expected name 'null', got '%s'", info.Name)
	}
	if info.Path != "/dev/null" {
		t.Errorf("Expected path '/dev/null', got '%s'", info.Path)
	}
	if info.VendorID != "" || info.ProductID != "" {
		t.Errorf("Expected empty USB ids, got vendor=%q product=%q", info.VendorID, info.ProductID)
	}
}

func TestReadSysfsFile(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "idVendor")
	if err := os.WriteFile(path, []byte("03eb\n"), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	if got := readSysfsFile(path); got != "03eb" {
		t.Errorf("readSysfsFile = %q, expected %q", got, "03eb")
	}
	if got := readSysfsFile(filepath.Join(dir, "missing")); got != "" {
		t.Errorf("readSysfsFile for missing file = %q, expected empty", got)
	}
}

func TestDeviceInfoCreate(t *testing.T) {
	info := DeviceInfo{Address: "/dev/ttyACM7", SerialNumber: "H401123"}

	device, err := info.Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if device.Address != "/dev/ttyACM7" {
		t.Errorf("Expected address /dev/ttyACM7, got %s", device.Address)
	}
	if device.State() != StateDisconnected {
		t.Errorf("Expected new handle to be disconnected, got %v", device.State())
	}
}
