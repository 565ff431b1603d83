package okolab

import (
	"context"
	"sync"
	"time"
)

// ReconnectTask is a running background loop restoring a lost connection.
// It retries Connect at a fixed cadence until the first success or until
// cancelled; individual attempt failures are swallowed (the failure
// callback still fires for each).
type ReconnectTask struct {
	device   *Device
	interval time.Duration

	cancel     chan struct{}
	cancelOnce sync.Once
	done       chan struct{}
	err        error
}

// Reconnect starts a background loop that retries Connect every interval
// until it succeeds or the task is cancelled. Only one task may run per
// handle: starting a second while one is active fails with
// ErrReconnectActive. Calling Reconnect while already connected returns a
// task that resolves immediately with success.
func (d *Device) Reconnect(interval time.Duration) (*ReconnectTask, error) {
	if interval <= 0 {
		return nil, ErrInvalidConfig
	}

	d.mu.Lock()
	if d.reconnecting {
		d.mu.Unlock()
		return nil, ErrReconnectActive
	}
	d.reconnecting = true
	d.mu.Unlock()

	task := &ReconnectTask{
		device:   d,
		interval: interval,
		cancel:   make(chan struct{}),
		done:     make(chan struct{}),
	}
	go task.run()
	return task, nil
}

func (t *ReconnectTask) run() {
	d := t.device
	defer func() {
		d.mu.Lock()
		d.reconnecting = false
		d.mu.Unlock()
		close(t.done)
	}()

	for {
		select {
		case <-t.cancel:
			t.err = ErrReconnectCancelled
			return
		default:
		}

		if d.Connected() {
			return
		}

		if err := d.Connect(); err == nil {
			return
		}

		// The wait is preemptible so cancellation takes effect
		// immediately, not at the next retry boundary.
		timer := time.NewTimer(t.interval)
		select {
		case <-t.cancel:
			timer.Stop()
			t.err = ErrReconnectCancelled
			return
		case <-timer.C:
		}
	}
}

// Cancel requests cooperative cancellation. It prevents any further retry;
// the task resolves with ErrReconnectCancelled unless a connection attempt
// already succeeded.
func (t *ReconnectTask) Cancel() {
	t.cancelOnce.Do(func() {
		close(t.cancel)
	})
}

// Done returns a channel closed when the task resolves.
func (t *ReconnectTask) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task resolves or ctx ends. It returns nil when the
// connection was restored and ErrReconnectCancelled when the task was
// cancelled first.
func (t *ReconnectTask) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
