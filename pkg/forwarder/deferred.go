package forwarder

import (
	"fmt"
	"sync"
	"time"

	"github.com/bindkit/bindkit/pkg/callback"
	"github.com/bindkit/bindkit/pkg/object"
)

// deferredCall schedules one callback invocation after a minimum delay.
// Firing and cancellation race by nature (the timer runs off-thread), so
// this is the one place in the engine with its own lock. The timer
// goroutine only ever touches this entry, never the context object: the
// destroy watch armed on the context stays attached until the context is
// destroyed on its owning goroutine, and once the entry is done the watch
// is a no-op.
type deferredCall struct {
	mu    sync.Mutex
	timer *time.Timer
	cb    *callback.Callback
	done  bool

	f *Forwarder
}

// DelayedCall schedules exactly one invocation of cb after at least
// minDelay has elapsed; the callback runs on the timer goroutine and may
// be delayed further by scheduling. If context is non-nil and destroyed
// before the delay elapses, the call is cancelled and never invoked. The
// timer is released as soon as it fires or is cancelled.
func (f *Forwarder) DelayedCall(minDelay time.Duration, context *object.Object, cb *callback.Callback) {
	if cb == nil {
		f.log.Warn("delayed call dropped", "error", "nil callback")
		return
	}
	if context != nil && context.Destroyed() {
		f.log.Warn("delayed call dropped",
			"context", context.Name(),
			"error", "context is destroyed")
		return
	}
	if minDelay < 0 {
		minDelay = 0
	}
	d := &deferredCall{cb: cb, f: f}
	if context != nil {
		context.OnDestroy(func(*object.Object) { d.cancel() })
	}
	d.timer = time.AfterFunc(minDelay, d.fire)
	metricsRecorder().RecordDeferredCall("scheduled")
}

func (d *deferredCall) fire() {
	d.mu.Lock()
	if d.done {
		d.mu.Unlock()
		return
	}
	d.done = true
	d.mu.Unlock()

	if err := d.cb.Invoke(); err != nil {
		metricsRecorder().RecordDeferredCall("error")
		d.f.failInvoke(fmt.Sprintf("deferred invoke %s: %v", d.cb.Name(), err))
		return
	}
	metricsRecorder().RecordDeferredCall("fired")
}

func (d *deferredCall) cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.done {
		return
	}
	d.done = true
	d.timer.Stop()
	metricsRecorder().RecordDeferredCall("cancelled")
}
