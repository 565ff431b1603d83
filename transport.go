package okolab

// Transport is a byte-stream connection to a controller. It carries no
// protocol knowledge; framing and dispatch live above it.
//
// The default implementation is a termios serial port. Custom transports can
// be injected with WithTransportOpener for testing or alternative links.
type Transport interface {
	Read(buf []byte) (int, error)
	Write(data []byte) (int, error)
	Close() error
}

// TransportOpener opens a Transport for the given device address, such as
// /dev/ttyACM0.
type TransportOpener func(address string) (Transport, error)
