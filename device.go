package okolab

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// State describes the connection lifecycle of a controller handle.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	// StateFailing is a transient state entered when a connect attempt
	// errors; it resolves back to StateDisconnected after the failure
	// callback runs.
	StateFailing
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "Disconnected"
	case StateConnecting:
		return "Connecting"
	case StateConnected:
		return "Connected"
	case StateFailing:
		return "Failing"
	}
	return "Unknown"
}

// Device is a handle to one H401-T temperature controller on a serial
// line. It owns the connection lifecycle and serializes every command
// exchange onto the half-duplex link; methods may be called concurrently
// from multiple goroutines.
//
// A Device is created without opening the connection. Call Connect before
// issuing commands; any command issued while not connected fails with
// ErrDisconnected.
type Device struct {
	// Address is the serial device path, such as /dev/ttyACM0.
	Address string

	config Config
	log    *slog.Logger

	mu           sync.Mutex
	state        State
	transport    Transport
	dispatcher   *dispatcher
	wasConnected bool
	reconnecting bool
}

// NewDevice constructs a handle for the controller at the given address
// without opening the connection.
func NewDevice(address string, opts ...Option) (*Device, error) {
	config := DefaultConfig()
	for _, opt := range opts {
		if err := opt(&config); err != nil {
			return nil, err
		}
	}
	if config.Opener == nil {
		baud := config.BaudRate
		config.Opener = func(addr string) (Transport, error) {
			return openSerialPort(addr, baud)
		}
	}

	return &Device{
		Address: address,
		config:  config,
		log:     config.Logger.With("address", address),
	}, nil
}

// State returns the current connection state.
func (d *Device) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Connected reports whether the handle currently holds a live transport.
func (d *Device) Connected() bool {
	return d.State() == StateConnected
}

// Connect opens the transport and moves the handle to StateConnected. It
// is a no-op when already connected or when another connect attempt is in
// flight, including one still resolving its failure; concurrent calls
// collapse into the single attempt and its single callback invocation.
//
// On failure the handle passes through StateFailing back to
// StateDisconnected, the failure callback fires, and the returned error
// matches ErrDisconnected.
func (d *Device) Connect() error {
	d.mu.Lock()
	if d.state != StateDisconnected {
		d.mu.Unlock()
		return nil
	}
	d.state = StateConnecting
	reconnection := d.wasConnected
	opener := d.config.Opener
	d.mu.Unlock()

	d.log.Debug("connecting")
	transport, err := opener(d.Address)
	if err != nil {
		d.mu.Lock()
		d.state = StateFailing
		d.mu.Unlock()

		d.log.Debug("connect failed", "error", err)
		d.invokeConnectionCallback("on_connection_fail", d.config.OnConnectionFail, reconnection)

		// StateFailing counts as in flight for the entry guard, so the
		// attempt owns the state until it resolves here.
		d.mu.Lock()
		if d.state == StateFailing {
			d.state = StateDisconnected
		}
		d.mu.Unlock()

		return fmt.Errorf("%w: %v", ErrDisconnected, err)
	}

	disp := newDispatcher(transport, d.config.RequestTimeout, d.log)
	disp.onLost = func(err error) {
		d.handleLoss(disp, err)
	}

	d.mu.Lock()
	d.transport = transport
	d.dispatcher = disp
	d.state = StateConnected
	d.wasConnected = true
	d.mu.Unlock()

	disp.start()

	d.log.Debug("connected", "reconnection", reconnection)
	d.invokeConnectionCallback("on_connection", d.config.OnConnection, reconnection)
	return nil
}

// Disconnect closes the connection explicitly. Queued requests resolve
// with ErrDisconnected and the disconnection callback fires with
// lost=false.
func (d *Device) Disconnect() error {
	d.mu.Lock()
	if d.state != StateConnected {
		d.mu.Unlock()
		return ErrDisconnected
	}
	transport := d.transport
	disp := d.dispatcher
	d.state = StateDisconnected
	d.transport = nil
	d.dispatcher = nil
	d.mu.Unlock()

	disp.shutdown()
	transport.Close()

	d.log.Debug("disconnected")
	d.invokeDisconnectionCallback(false)
	return nil
}

// handleLoss is invoked by the dispatcher, at most once per connection,
// when the transport fails mid-exchange. The dispatcher identity check
// discards stale reports from a connection that was already replaced.
func (d *Device) handleLoss(disp *dispatcher, cause error) {
	d.mu.Lock()
	if d.state != StateConnected || d.dispatcher != disp {
		d.mu.Unlock()
		return
	}
	transport := d.transport
	d.state = StateDisconnected
	d.transport = nil
	d.dispatcher = nil
	d.mu.Unlock()

	transport.Close()

	d.log.Warn("connection lost", "error", cause)
	d.invokeDisconnectionCallback(true)
}

// Submit sends a raw command to the controller and returns the response
// payload. It blocks until the exchange resolves, the per-request timeout
// elapses, or ctx ends. Requests from concurrent callers are served in
// submission order, one at a time.
//
// Submit fails immediately with ErrDisconnected while not connected,
// without touching the transport.
func (d *Device) Submit(ctx context.Context, command string, arg string) (string, error) {
	d.mu.Lock()
	if d.state != StateConnected {
		d.mu.Unlock()
		return "", ErrDisconnected
	}
	disp := d.dispatcher
	d.mu.Unlock()

	return disp.submit(ctx, command, arg)
}

// Callbacks are best-effort notifications; a panicking handler is logged
// and contained so it cannot corrupt the state machine.
func (d *Device) invokeConnectionCallback(name string, cb ConnectionCallback, reconnection bool) {
	if cb == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			d.log.Warn("callback panicked", "callback", name, "panic", r)
		}
	}()
	cb(reconnection)
}

func (d *Device) invokeDisconnectionCallback(lost bool) {
	cb := d.config.OnDisconnection
	if cb == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			d.log.Warn("callback panicked", "callback", "on_disconnection", "panic", r)
		}
	}()
	cb(lost)
}
