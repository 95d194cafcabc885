package forwarder

import (
	"fmt"

	"github.com/bindkit/bindkit/pkg/callback"
	"github.com/bindkit/bindkit/pkg/object"
)

// FilterFunc decides whether an intercepted event is forwarded to its
// bound callback. A nil filter forwards every event of the bound kind.
type FilterFunc func(sender *object.Object, ev *object.Event) bool

// eventBinding is one installed event interception. The store keys
// bindings by sender alone; the record keeps the kind so dispatch can
// filter, and a later BindEvent on the same sender replaces the record
// regardless of kind.
type eventBinding struct {
	sender *object.Object
	kind   object.EventKind
	filter FilterFunc
	cb     *callback.Callback
}

// BindEvent installs sender as observed by this forwarder for event
// interception: when sender receives an event of the given kind, and the
// filter (if any) returns true for it, cb is invoked. The event still
// passes through to the sender's own handler afterward; interception is
// additive.
//
// The callback receives no event arguments, so it must have arity zero;
// use Bind on the callback to fix invocation arguments. At most one event
// binding exists per sender: rebinding replaces the previous one even for
// a different event kind.
func (f *Forwarder) BindEvent(sender *object.Object, kind object.EventKind, cb *callback.Callback, filter FilterFunc) bool {
	if err := f.tryBindEvent(sender, kind, cb, filter); err != nil {
		metricsRecorder().RecordBindRejected("event", rejectReason(err))
		f.log.Warn("event bind rejected",
			"kind", string(kind),
			"sender", senderName(sender),
			"error", err)
		return false
	}
	metricsRecorder().RecordBindingInstalled("event")
	return true
}

func (f *Forwarder) tryBindEvent(sender *object.Object, kind object.EventKind, cb *callback.Callback, filter FilterFunc) error {
	if sender == nil {
		return errNilSender
	}
	if sender.Destroyed() {
		return fmt.Errorf("%w: sender %q", errDestroyed, sender.Name())
	}
	if cb == nil {
		return errNilCallback
	}
	if kind == "" {
		return errEmptyEventKind
	}
	if cb.Arity() != 0 {
		return fmt.Errorf("%w: callback %s expects %d args, event dispatch supplies none",
			errTypeMismatch, cb.Name(), cb.Arity())
	}

	id := sender.ID()
	if prev, ok := f.events[id]; ok {
		// Rebinding keeps the filter installation and the watch reference.
		prev.kind = kind
		prev.filter = filter
		prev.cb = cb
		metricsRecorder().RecordBindingRemoved("event", "replaced")
		return nil
	}
	f.events[id] = &eventBinding{sender: sender, kind: kind, filter: filter, cb: cb}
	sender.InstallEventFilter(f)
	f.refWatch(sender)
	f.log.Debug("event binding installed", "kind", string(kind), "sender", sender.Name())
	return nil
}

// UnbindEvent removes the event binding for sender if it matches kind.
func (f *Forwarder) UnbindEvent(sender *object.Object, kind object.EventKind) {
	if sender == nil {
		return
	}
	if eb, ok := f.events[sender.ID()]; ok && eb.kind == kind {
		f.removeEventBinding(sender.ID(), "unbind")
	}
}

// removeEventBinding drops the event record, uninstalls the filter and
// unreferences the sender's lifetime watch.
func (f *Forwarder) removeEventBinding(senderID string, reason string) {
	eb, ok := f.events[senderID]
	if !ok {
		return
	}
	delete(f.events, senderID)
	eb.sender.RemoveEventFilter(f)
	f.unrefWatch(eb.sender)
	metricsRecorder().RecordBindingRemoved("event", reason)
}

// FilterEvent implements object.EventFilter. It forwards a matching event
// to the bound callback and always returns false so the event continues
// to the watched object's own handler.
func (f *Forwarder) FilterEvent(watched *object.Object, ev *object.Event) bool {
	eb, ok := f.events[watched.ID()]
	if !ok || eb.kind != ev.Kind {
		return false
	}
	if eb.filter != nil && !eb.filter(watched, ev) {
		metricsRecorder().RecordDispatch("event", "filtered")
		return false
	}
	if err := eb.cb.Invoke(); err != nil {
		metricsRecorder().RecordDispatch("event", "error")
		f.failInvoke(fmt.Sprintf("invoke %s for event %q on %q: %v",
			eb.cb.Name(), ev.Kind, watched.Name(), err))
		return false
	}
	metricsRecorder().RecordDispatch("event", "invoked")
	return false
}
