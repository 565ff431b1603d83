// Package okolab is a driver for the Okolab H401-T-CONTROLLER, a
// serial-attached temperature controller with two heating channels.
//
// The controller speaks a line-oriented ASCII protocol over a half-duplex
// serial link, so only one request may be on the wire at a time. The
// driver serializes concurrent callers onto the line in submission order
// and exposes typed operations for the command catalog.
//
// # Basic Usage
//
// Discover controllers and read a temperature:
//
//	devices, err := okolab.ListDevices(false)
//	if err != nil || len(devices) == 0 {
//	    log.Fatal("no controller found")
//	}
//
//	device, err := devices[0].Create()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := device.Connect(); err != nil {
//	    log.Fatal(err)
//	}
//	defer device.Disconnect()
//
//	ctx := context.Background()
//	value, ok, err := device.GetTemperature1(ctx)
//
// # Lifecycle Callbacks
//
// Connection events are surfaced through optional callbacks:
//
//	device, err := okolab.NewDevice("/dev/ttyACM0",
//	    okolab.WithOnConnection(func(reconnection bool) { ... }),
//	    okolab.WithOnConnectionFail(func(reconnection bool) { ... }),
//	    okolab.WithOnDisconnection(func(lost bool) { ... }),
//	)
//
// The reconnection flag marks attempts that follow a prior disconnection;
// lost is true when the transport failed rather than being closed with
// Disconnect.
//
// # Reconnection
//
// A lost connection can be restored in the background:
//
//	task, err := device.Reconnect(time.Second)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// later: task.Cancel(), or task.Wait(ctx)
//
// # Error Handling
//
// Every command may fail with ErrDisconnected if the controller is or
// becomes disconnected, with ErrRequestTimeout if the per-request deadline
// elapses, or with a *SystemError if the controller reports a fault:
//
//	var sysErr *okolab.SystemError
//	if errors.As(err, &sysErr) {
//	    // controller fault, connection still usable
//	}
//	if errors.Is(err, okolab.ErrDisconnected) {
//	    // connection gone, reconnect before retrying
//	}
//
// # Transports
//
// The default transport is a raw termios serial port at 115200 8N1.
// WithTransportOpener injects an alternative transport, typically for
// tests.
package okolab
