package okolab

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// serialPort is the default Transport: a raw termios serial port.
type serialPort struct {
	mu     sync.RWMutex
	fd     int
	closed bool
}

var _ Transport = (*serialPort)(nil)

// getBaudRate converts an integer baud rate to the unix constant
func getBaudRate(rate int) (uint32, error) {
	switch rate {
	case 9600:
		return unix.B9600, nil
	case 19200:
		return unix.B19200, nil
	case 38400:
		return unix.B38400, nil
	case 57600:
		return unix.B57600, nil
	case 115200:
		return unix.B115200, nil
	case 230400:
		return unix.B230400, nil
	default:
		return 0, ErrInvalidBaudRate
	}
}

// openSerialPort opens the device file and configures it for raw 8N1
// communication at the given baud rate. VTIME is set so blocked reads
// return periodically, which lets callers notice a closed port.
func openSerialPort(device string, baudRate int) (*serialPort, error) {
	baud, err := getBaudRate(baudRate)
	if err != nil {
		return nil, err
	}

	fd, err := unix.Open(device, unix.O_RDWR|unix.O_NOCTTY, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", device, err)
	}

	if err := configurePort(fd, baud); err != nil {
		unix.Close(fd)
		return nil, err
	}

	return &serialPort{fd: fd}, nil
}

// configurePort applies raw-mode termios settings: 8 data bits, no parity,
// one stop bit, no flow control.
func configurePort(fd int, baud uint32) error {
	termios, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return fmt.Errorf("failed to get termios: %w", err)
	}

	termios.Cflag = unix.CS8 | unix.CREAD | unix.CLOCAL
	termios.Iflag = 0
	termios.Oflag = 0
	termios.Lflag = 0

	// VMIN=0, VTIME=1: reads return after at most 100ms even when the
	// line is silent.
	termios.Cc[unix.VMIN] = 0
	termios.Cc[unix.VTIME] = 1

	termios.Cflag = (termios.Cflag &^ unix.CBAUD) | baud
	termios.Ispeed = baud
	termios.Ospeed = baud

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, termios); err != nil {
		return fmt.Errorf("failed to set termios: %w", err)
	}

	// Discard anything the controller sent before we were listening.
	if err := unix.IoctlSetInt(fd, unix.TCFLSH, unix.TCIOFLUSH); err != nil {
		return fmt.Errorf("failed to flush port: %w", err)
	}

	return nil
}

// Read reads data from the serial port. A return of (0, nil) means the
// read timed out with the port still open.
func (p *serialPort) Read(buf []byte) (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return 0, ErrDisconnected
	}

	return unix.Read(p.fd, buf)
}

// Write writes data to the serial port
func (p *serialPort) Write(data []byte) (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return 0, ErrDisconnected
	}

	return unix.Write(p.fd, data)
}

// Close closes the serial port
func (p *serialPort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrDisconnected
	}

	err := unix.Close(p.fd)
	p.closed = true
	return err
}
