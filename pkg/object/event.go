package object

// EventKind is a discrete event tag, e.g. "mouse.enter" or "key.press".
type EventKind string

// Event is a discrete notification delivered to a single object, as
// opposed to a signal broadcast to listeners. Data carries event-specific
// payload such as which mouse button was released.
type Event struct {
	Kind EventKind
	Data any
}

// EventFilter intercepts events delivered to a watched object before the
// object's own handler sees them. Returning true consumes the event and
// stops further delivery; returning false passes it along.
type EventFilter interface {
	FilterEvent(watched *Object, ev *Event) bool
}

// InstallEventFilter adds a filter to the object. Filters run in reverse
// installation order so the most recently installed filter sees the event
// first. Installing the same filter twice is a no-op.
func (o *Object) InstallEventFilter(f EventFilter) {
	if o.destroyed || f == nil {
		return
	}
	for _, existing := range o.filters {
		if existing == f {
			return
		}
	}
	o.filters = append(o.filters, f)
}

// RemoveEventFilter removes a previously installed filter. No-op after
// Destroy or for a filter that was never installed.
func (o *Object) RemoveEventFilter(f EventFilter) {
	if o.destroyed {
		return
	}
	for i, existing := range o.filters {
		if existing == f {
			o.filters = append(o.filters[:i:i], o.filters[i+1:]...)
			return
		}
	}
}

// SetEventHandler sets the object's own event handler, the final recipient
// after all filters pass the event through.
func (o *Object) SetEventHandler(fn func(*Event)) {
	if o.destroyed {
		return
	}
	o.handler = fn
}

// SendEvent delivers an event to the object: installed filters first, most
// recent first, then the object's handler unless a filter consumed it.
// The return value reports whether the handler received the event.
func (o *Object) SendEvent(ev *Event) bool {
	if o.destroyed || ev == nil {
		return false
	}
	for i := len(o.filters) - 1; i >= 0; i-- {
		if o.filters[i].FilterEvent(o, ev) {
			return false
		}
	}
	if o.handler != nil {
		o.handler(ev)
	}
	return true
}
