package forwarder

import (
	"sync"
	"time"

	"github.com/bindkit/bindkit/pkg/callback"
	"github.com/bindkit/bindkit/pkg/logger"
	"github.com/bindkit/bindkit/pkg/object"
)

// The process-wide sender-to-forwarder cache backing the package-level
// Connect functions. A forwarder is created on the first bind for a
// sender and dropped when the sender is destroyed. This registry is the
// one piece of shared mutable state in the package; the forwarders it
// hands out still follow the single-thread contract, so the package-level
// functions may only be called from the thread that owns the objects.
var (
	sharedMu   sync.Mutex
	shared     = make(map[string]*Forwarder)
	sharedOpts []Option

	deferredOnce sync.Once
	deferredFwd  *Forwarder
)

// SetSharedOptions configures how shared per-sender forwarders are built.
// It affects forwarders created after the call; typically invoked once at
// startup from loaded configuration.
func SetSharedOptions(opts ...Option) {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	sharedOpts = opts
}

// sharedFor returns the shared forwarder for sender, creating it on first
// use and evicting it when the sender is destroyed.
func sharedFor(sender *object.Object) *Forwarder {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	if f, ok := shared[sender.ID()]; ok {
		return f
	}
	f := New(sharedOpts...)
	shared[sender.ID()] = f
	id := sender.ID()
	sender.OnDestroy(func(*object.Object) {
		sharedMu.Lock()
		delete(shared, id)
		sharedMu.Unlock()
	})
	return f
}

// sharedLookup returns the cached forwarder for sender without creating
// one.
func sharedLookup(sender *object.Object) (*Forwarder, bool) {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	f, ok := shared[sender.ID()]
	return f, ok
}

// deferredForwarder backs package-level DelayedCall; deferred calls hold
// no slot ids, so one instance serves the whole process.
func deferredForwarder() *Forwarder {
	deferredOnce.Do(func() {
		deferredFwd = New()
	})
	return deferredFwd
}

// Connect installs a binding on the shared forwarder for sender, so that
// cb is invoked when sender emits the signal. The binding is removed when
// sender or the optional context is destroyed.
func Connect(sender *object.Object, signature string, context *object.Object, cb *callback.Callback) bool {
	if sender == nil {
		return false
	}
	if sender.Destroyed() {
		logger.Warn("signal bind rejected", "signal", signature, "sender", sender.Name(),
			"error", "sender is destroyed")
		return false
	}
	return sharedFor(sender).Bind(sender, signature, context, cb)
}

// Disconnect removes all shared-forwarder bindings for the signal on
// sender.
func Disconnect(sender *object.Object, signature string) {
	if sender == nil {
		return
	}
	if f, ok := sharedLookup(sender); ok {
		f.Unbind(sender, signature)
	}
}

// ConnectEvent installs an event binding on the shared forwarder for
// sender.
func ConnectEvent(sender *object.Object, kind object.EventKind, cb *callback.Callback, filter FilterFunc) bool {
	if sender == nil || sender.Destroyed() {
		return false
	}
	return sharedFor(sender).BindEvent(sender, kind, cb, filter)
}

// DisconnectEvent removes the shared-forwarder event binding for sender.
func DisconnectEvent(sender *object.Object, kind object.EventKind) {
	if sender == nil {
		return
	}
	if f, ok := sharedLookup(sender); ok {
		f.UnbindEvent(sender, kind)
	}
}

// ConnectWithSender connects a signal to a method on receiver whose first
// parameter receives the sender object, followed by the signal arguments.
// It is an alternative to inspecting the sender inside the handler.
func ConnectWithSender(sender *object.Object, signature string, receiver any, method string) bool {
	if sender == nil || sender.Destroyed() {
		return false
	}
	f := sharedFor(sender)
	cb, err := callback.NewMethod(receiver, method)
	if err != nil {
		f.log.Warn("signal bind rejected", "signal", signature, "sender", sender.Name(), "error", err)
		return false
	}
	return f.bind(sender, signature, nil, cb, true)
}

// DelayedCall schedules cb once after at least minDelay, cancelled if the
// optional context is destroyed first.
func DelayedCall(minDelay time.Duration, context *object.Object, cb *callback.Callback) {
	deferredForwarder().DelayedCall(minDelay, context, cb)
}
