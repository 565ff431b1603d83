package okolab

import (
	"errors"
	"fmt"
)

// Predefined error types for robust error handling
var (
	ErrDisconnected       = errors.New("okolab: controller disconnected")
	ErrRequestTimeout     = errors.New("okolab: request timed out")
	ErrReconnectCancelled = errors.New("okolab: reconnection cancelled")
	ErrReconnectActive    = errors.New("okolab: reconnection already in progress")
	ErrDeviceNotFound     = errors.New("okolab: device not found")
	ErrInvalidConfig      = errors.New("okolab: invalid configuration")
	ErrInvalidBaudRate    = errors.New("okolab: invalid baud rate")

	// USB-related errors
	ErrUSBInfoNotAvailable  = errors.New("okolab: USB device information not available")
	ErrUSBResetNotAvailable = errors.New("okolab: usbreset utility not available")
)

// EncodingError indicates a command could not be represented in the wire
// format. It is returned before any I/O takes place and is never retried.
type EncodingError struct {
	Command string
	Reason  string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("okolab: cannot encode command %q: %s", e.Command, e.Reason)
}

// FramingError indicates malformed bytes were received from the controller.
// A desynchronized line is not assumed to heal, so a framing error triggers
// the same disconnection path as a transport failure.
type FramingError struct {
	Raw    string
	Reason string
}

func (e *FramingError) Error() string {
	return fmt.Sprintf("okolab: malformed response %q: %s", e.Raw, e.Reason)
}

// systemErrorMessages maps the fault codes documented for the H401-T
// controller to their meanings.
var systemErrorMessages = map[int]string{
	1:  "command ID not valid",
	2:  "message request too long",
	3:  "message request too short",
	4:  "command cannot be executed",
	5:  "value out of range",
	6:  "value not available",
	8:  "generic error",
	15: "request not properly formatted",
}

// SystemError is a fault reported by the controller itself in response to a
// command. The connection remains usable and queued requests proceed.
type SystemError struct {
	Code int
}

func (e *SystemError) Error() string {
	if msg, ok := systemErrorMessages[e.Code]; ok {
		return fmt.Sprintf("okolab: controller error %d: %s", e.Code, msg)
	}
	return fmt.Sprintf("okolab: controller error %d", e.Code)
}
