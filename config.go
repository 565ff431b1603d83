package okolab

import (
	"io"
	"log/slog"
	"time"
)

// ConnectionCallback is invoked after a connection attempt completes.
// reconnection is true when the handle had been connected before.
type ConnectionCallback func(reconnection bool)

// DisconnectionCallback is invoked when the connection ends. lost is true
// when the transport failed, false when Disconnect was called explicitly.
type DisconnectionCallback func(lost bool)

// Config holds the configuration for a controller handle
type Config struct {
	BaudRate       int
	RequestTimeout time.Duration
	Logger         *slog.Logger
	Opener         TransportOpener

	OnConnection     ConnectionCallback
	OnConnectionFail ConnectionCallback
	OnDisconnection  DisconnectionCallback
}

// Option is a functional option for configuring a controller handle
type Option func(*Config) error

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() Config {
	return Config{
		BaudRate:       115200,
		RequestTimeout: 2 * time.Second,
		Logger:         NopLogger(),
	}
}

// NopLogger returns a logger that discards all output. It is the default
// when no logger is configured.
func NopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// WithBaudRate sets the baud rate for the serial transport
func WithBaudRate(rate int) Option {
	return func(c *Config) error {
		if _, err := getBaudRate(rate); err != nil {
			return err
		}
		c.BaudRate = rate
		return nil
	}
}

// WithRequestTimeout sets the per-request deadline, measured from the
// moment the request is submitted
func WithRequestTimeout(timeout time.Duration) Option {
	return func(c *Config) error {
		if timeout <= 0 {
			return ErrInvalidConfig
		}
		c.RequestTimeout = timeout
		return nil
	}
}

// WithLogger sets the structured logger used for lifecycle events
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) error {
		if logger == nil {
			return ErrInvalidConfig
		}
		c.Logger = logger
		return nil
	}
}

// WithTransportOpener replaces the default serial transport, typically
// with a mock for testing
func WithTransportOpener(opener TransportOpener) Option {
	return func(c *Config) error {
		if opener == nil {
			return ErrInvalidConfig
		}
		c.Opener = opener
		return nil
	}
}

// WithOnConnection registers a callback invoked after a successful connect
func WithOnConnection(cb ConnectionCallback) Option {
	return func(c *Config) error {
		c.OnConnection = cb
		return nil
	}
}

// WithOnConnectionFail registers a callback invoked after a failed connect
// attempt
func WithOnConnectionFail(cb ConnectionCallback) Option {
	return func(c *Config) error {
		c.OnConnectionFail = cb
		return nil
	}
}

// WithOnDisconnection registers a callback invoked when the connection ends,
// whether lost or closed explicitly
func WithOnDisconnection(cb DisconnectionCallback) Option {
	return func(c *Config) error {
		c.OnDisconnection = cb
		return nil
	}
}
