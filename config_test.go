package okolab

import (
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.BaudRate != 115200 {
		t.Errorf("Expected BaudRate 115200, got %d", config.BaudRate)
	}
	if config.RequestTimeout != 2*time.Second {
		t.Errorf("Expected RequestTimeout 2s, got %v", config.RequestTimeout)
	}
	if config.Logger == nil {
		t.Error("Expected a default logger")
	}
}

func TestFunctionalOptions(t *testing.T) {
	config := DefaultConfig()

	if err := WithBaudRate(57600)(&config); err != nil {
		t.Errorf("WithBaudRate failed: %v", err)
	}
	if config.BaudRate != 57600 {
		t.Errorf("Expected BaudRate 57600, got %d", config.BaudRate)
	}

	if err := WithRequestTimeout(500 * time.Millisecond)(&config); err != nil {
		t.Errorf("WithRequestTimeout failed: %v", err)
	}
	if config.RequestTimeout != 500*time.Millisecond {
		t.Errorf("Expected RequestTimeout 500ms, got %v", config.RequestTimeout)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := WithLogger(logger)(&config); err != nil {
		t.Errorf("WithLogger failed: %v", err)
	}
	if config.Logger != logger {
		t.Error("Logger not applied")
	}

	if err := WithOnConnection(func(bool) {})(&config); err != nil {
		t.Errorf("WithOnConnection failed: %v", err)
	}
	if config.OnConnection == nil {
		t.Error("OnConnection not applied")
	}
}

func TestInvalidOptions(t *testing.T) {
	config := DefaultConfig()

	if err := WithBaudRate(123456)(&config); !errors.Is(err, ErrInvalidBaudRate) {
		t.Errorf("Expected ErrInvalidBaudRate, got %v", err)
	}
	if err := WithRequestTimeout(0)(&config); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for zero timeout, got %v", err)
	}
	if err := WithLogger(nil)(&config); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for nil logger, got %v", err)
	}
	if err := WithTransportOpener(nil)(&config); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for nil opener, got %v", err)
	}
}

func TestNewDeviceRejectsBadOption(t *testing.T) {
	if _, err := NewDevice("/dev/ttyTEST0", WithBaudRate(123456)); !errors.Is(err, ErrInvalidBaudRate) {
		t.Errorf("Expected ErrInvalidBaudRate, got %v", err)
	}
}

func TestGetBaudRate(t *testing.T) {
	tests := []struct {
		input    int
		hasError bool
	}{
		{9600, false},
		{115200, false},
		{230400, false},
		{123456, true},
		{0, true},
	}

	for _, test := range tests {
		result, err := getBaudRate(test.input)
		if test.hasError {
			if !errors.Is(err, ErrInvalidBaudRate) {
				t.Errorf("Expected ErrInvalidBaudRate for %d, got %v", test.input, err)
			}
		} else {
			if err != nil {
				t.Errorf("Unexpected error for baud rate %d: %v", test.input, err)
			}
			if result == 0 {
				t.Errorf("Got zero result for valid baud rate %d", test.input)
			}
		}
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state    State
		expected string
	}{
		{StateDisconnected, "Disconnected"},
		{StateConnecting, "Connecting"},
		{StateConnected, "Connected"},
		{StateFailing, "Failing"},
		{State(42), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.expected {
			t.Errorf("State(%d).String() = %q, expected %q", int(tt.state), got, tt.expected)
		}
	}
}
