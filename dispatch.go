package okolab

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// dispatcher serializes concurrent logical requests onto the single
// half-duplex serial line. Exactly one request is in flight at a time:
// its frame is written and its response fully consumed before the next
// frame touches the wire. Submissions are served in FIFO order.
//
// A transport failure or framing desync aborts every queued request with
// ErrDisconnected and reports the loss upward exactly once. A per-request
// timeout or a controller-reported fault resolves only that request; the
// line is assumed still usable and the queue continues. After a timeout
// the next exchange first waits out a short flush window so the late
// response, should it still arrive, is discarded rather than matched as
// the reply to the new request.
type dispatcher struct {
	transport Transport
	timeout   time.Duration
	log       *slog.Logger
	onLost    func(error)

	queue   chan *pendingRequest
	lines   chan []byte
	readErr chan error
	done    chan struct{}
	once    sync.Once

	// stale is set when an exchange times out after its frame was
	// written; staleAt anchors the flush window for the next exchange.
	// Only the worker goroutine touches them.
	stale   bool
	staleAt time.Time
}

// staleFlushWindow bounds how long the worker waits for the late response
// of a timed-out exchange before writing the next frame. It matches the
// read poll interval on the serial port.
const staleFlushWindow = 100 * time.Millisecond

// pendingRequest is one outstanding command. It is owned by the dispatcher
// from enqueue until resolved and is resolved exactly once.
type pendingRequest struct {
	command  string
	frame    []byte
	resp     chan requestResult
	deadline time.Time
}

type requestResult struct {
	payload string
	err     error
}

func newDispatcher(transport Transport, timeout time.Duration, log *slog.Logger) *dispatcher {
	return &dispatcher{
		transport: transport,
		timeout:   timeout,
		log:       log,
		queue:     make(chan *pendingRequest),
		lines:     make(chan []byte, 1),
		readErr:   make(chan error, 1),
		done:      make(chan struct{}),
	}
}

// start launches the reader and worker loops. onLost must be set before
// start is called.
func (d *dispatcher) start() {
	go d.reader()
	go d.worker()
}

// submit enqueues a command and blocks until it resolves or ctx ends.
// Encoding happens here so unrepresentable commands fail synchronously,
// before entering the queue.
func (d *dispatcher) submit(ctx context.Context, command string, arg string) (string, error) {
	frame, err := encodeFrame(command, arg)
	if err != nil {
		return "", err
	}

	req := &pendingRequest{
		command:  command,
		frame:    frame,
		resp:     make(chan requestResult, 1),
		deadline: time.Now().Add(d.timeout),
	}

	select {
	case d.queue <- req:
	case <-d.done:
		return "", ErrDisconnected
	case <-ctx.Done():
		return "", ctx.Err()
	}

	select {
	case res := <-req.resp:
		return res.payload, res.err
	case <-ctx.Done():
		// The worker still resolves the request; the buffered resp
		// channel keeps it from blocking on an absent caller.
		return "", ctx.Err()
	}
}

// shutdown stops the loops without reporting a lost connection. Queued
// requests resolve with ErrDisconnected.
func (d *dispatcher) shutdown() {
	d.once.Do(func() {
		close(d.done)
	})
}

// fail stops the loops and reports the transport loss upward. The once
// guard makes the state machine see at most one loss per connection.
func (d *dispatcher) fail(err error) {
	d.once.Do(func() {
		d.log.Warn("transport failure, aborting request queue", "error", err)
		close(d.done)
		if d.onLost != nil {
			d.onLost(err)
		}
	})
}

// reader continuously consumes bytes from the transport and emits complete
// terminator-delimited lines. A read of (0, nil) is a poll timeout on a
// silent line. The goroutine exits on transport error or shutdown.
func (d *dispatcher) reader() {
	buf := make([]byte, 256)
	var acc []byte

	for {
		n, err := d.transport.Read(buf)
		if n > 0 {
			acc = append(acc, buf[:n]...)
			for {
				i := indexTerminator(acc)
				if i < 0 {
					break
				}
				line := make([]byte, i+1)
				copy(line, acc[:i+1])
				acc = acc[i+1:]

				select {
				case d.lines <- line:
				case <-d.done:
					return
				}
			}
		}
		if err != nil {
			select {
			case d.readErr <- err:
			case <-d.done:
			}
			return
		}

		select {
		case <-d.done:
			return
		default:
		}
	}
}

func indexTerminator(b []byte) int {
	for i, c := range b {
		if c == frameTerminator {
			return i
		}
	}
	return -1
}

// worker pops requests one at a time and runs each exchange to completion.
func (d *dispatcher) worker() {
	for {
		select {
		case <-d.done:
			return
		case req := <-d.queue:
			if !d.serve(req) {
				return
			}
		}
	}
}

// serve performs one write/read exchange. It returns false when the
// connection is no longer usable and the worker must stop.
func (d *dispatcher) serve(req *pendingRequest) bool {
	// The previous exchange timed out after writing its frame, so its
	// response may still be in flight. Wait out the flush window so a
	// late line is discarded here instead of answering this request.
	// The wait does not count against this request's deadline.
	if d.stale {
		if wait := time.Until(d.staleAt.Add(staleFlushWindow)); wait > 0 {
			begin := time.Now()
			flush := time.NewTimer(wait)
			select {
			case line := <-d.lines:
				d.log.Debug("discarding late response", "line", string(line))
			case <-flush.C:
			case <-d.done:
				flush.Stop()
				req.resp <- requestResult{err: ErrDisconnected}
				return false
			}
			flush.Stop()
			req.deadline = req.deadline.Add(time.Since(begin))
		}
		d.stale = false
	}

	// Discard any stale response left over from a timed-out exchange.
	for {
		select {
		case <-d.lines:
			continue
		default:
		}
		break
	}

	// The deadline runs from submission, so a long queue wait can consume
	// it before the request reaches the wire.
	remaining := time.Until(req.deadline)
	if remaining <= 0 {
		req.resp <- requestResult{err: ErrRequestTimeout}
		return true
	}

	if _, err := d.transport.Write(req.frame); err != nil {
		req.resp <- requestResult{err: ErrDisconnected}
		d.fail(err)
		return false
	}

	timer := time.NewTimer(remaining)
	defer timer.Stop()

	select {
	case line := <-d.lines:
		f, err := decodeFrame(req.command, line)
		if err != nil {
			// Protocol desync is not self-healing; treat it like a
			// transport loss.
			req.resp <- requestResult{err: err}
			d.fail(err)
			return false
		}
		if f.IsError {
			req.resp <- requestResult{err: &SystemError{Code: f.ErrorCode}}
		} else {
			req.resp <- requestResult{payload: f.Payload}
		}
		return true

	case <-timer.C:
		d.stale = true
		d.staleAt = time.Now()
		req.resp <- requestResult{err: ErrRequestTimeout}
		return true

	case err := <-d.readErr:
		req.resp <- requestResult{err: ErrDisconnected}
		d.fail(err)
		return false

	case <-d.done:
		req.resp <- requestResult{err: ErrDisconnected}
		return false
	}
}
