// Package object provides the host object model consumed by the binding
// engine: objects declare typed signals, emit them to registered listeners,
// deliver discrete events through installable filters, and announce their
// own destruction so that bindings can be torn down before any dangling
// dispatch occurs.
//
// The object model is single-threaded by contract. All declaration,
// emission, and destruction must happen on one goroutine; concurrent use
// is undefined behavior.
package object

import (
	"fmt"

	"github.com/google/uuid"
)

// Listener receives signal deliveries on behalf of a registered connection.
// The slot is the connection handle supplied at registration time.
type Listener interface {
	DeliverSignal(sender *Object, signalIndex int, slot int, args []any)
}

// DestroyFunc is invoked when a watched object is destroyed. It runs
// before the object's connections and filters are torn down, so watchers
// can still deregister state keyed by the object.
type DestroyFunc func(*Object)

// signalDecl is one declared signal on an object. The index of the decl
// in Object.signals is the signal's local notification id.
type signalDecl struct {
	name      string
	signature string // normalized, e.g. "clicked(bool)"
	params    []string
}

// conn is one listener registration on a signal. Removal marks the entry
// dead rather than splicing so that an in-flight emission can skip it.
type conn struct {
	slot     int
	listener Listener
	removed  bool
}

// Object is the reference emitter implementation. Identity is the
// generated ID, used as a registry key and in diagnostics.
type Object struct {
	id        string
	name      string
	signals   []signalDecl
	indexes   map[string]int // normalized signature -> signal index
	conns     map[int][]*conn
	filters   []EventFilter
	handler   func(*Event)
	watches   map[int]DestroyFunc
	nextWatch int
	destroyed bool
}

// New creates an object with the given diagnostic name. The destruction
// signal is declared on every object so it can be bound like any other.
func New(name string) *Object {
	o := &Object{
		id:      uuid.NewString(),
		name:    name,
		indexes: make(map[string]int),
		conns:   make(map[int][]*conn),
		watches: make(map[int]DestroyFunc),
	}
	if _, err := o.DeclareSignal(SignalDestroyed); err != nil {
		// SignalDestroyed is a package constant with a valid grammar.
		panic(fmt.Sprintf("object: declare %s: %v", SignalDestroyed, err))
	}
	return o
}

// SignalDestroyed is emitted by Destroy with the object itself as the
// single argument, before listener registrations are torn down.
const SignalDestroyed = "destroyed(*object.Object)"

// ID returns the object's unique identity.
func (o *Object) ID() string { return o.id }

// Name returns the diagnostic name.
func (o *Object) Name() string { return o.name }

// Destroyed reports whether Destroy has been called.
func (o *Object) Destroyed() bool { return o.destroyed }

// DeclareSignal registers a signal signature like "valueChanged(int)" and
// returns its local index. Declaring the same signature twice returns the
// existing index.
func (o *Object) DeclareSignal(signature string) (int, error) {
	if o.destroyed {
		return -1, fmt.Errorf("object: declare signal on destroyed object %q", o.name)
	}
	name, params, err := ParseSignature(signature)
	if err != nil {
		return -1, err
	}
	norm := NormalizeSignature(name, params)
	if idx, ok := o.indexes[norm]; ok {
		return idx, nil
	}
	idx := len(o.signals)
	o.signals = append(o.signals, signalDecl{name: name, signature: norm, params: params})
	o.indexes[norm] = idx
	return idx, nil
}

// ResolveSignal resolves a signature string to its local index and ordered
// parameter type names. ok is false if the signature is malformed or not
// declared on this object.
func (o *Object) ResolveSignal(signature string) (index int, params []string, ok bool) {
	name, p, err := ParseSignature(signature)
	if err != nil {
		return -1, nil, false
	}
	idx, found := o.indexes[NormalizeSignature(name, p)]
	if !found {
		return -1, nil, false
	}
	return idx, o.signals[idx].params, true
}

// SignalParams returns the declared parameter types of a signal index, or
// nil for an unknown index.
func (o *Object) SignalParams(index int) []string {
	if index < 0 || index >= len(o.signals) {
		return nil
	}
	return o.signals[index].params
}

// ConnectSignal registers a listener for a signal index under the given
// slot handle. One listener may hold multiple slots on the same signal;
// each delivery carries its slot.
func (o *Object) ConnectSignal(index int, slot int, l Listener) error {
	if o.destroyed {
		return fmt.Errorf("object: connect on destroyed object %q", o.name)
	}
	if index < 0 || index >= len(o.signals) {
		return fmt.Errorf("object: connect to unknown signal index %d on %q", index, o.name)
	}
	if l == nil {
		return fmt.Errorf("object: nil listener for %q", o.name)
	}
	o.conns[index] = append(o.conns[index], &conn{slot: slot, listener: l})
	return nil
}

// DisconnectSignal removes the registration holding the given slot handle.
// Unknown slots are ignored. No-op after Destroy.
func (o *Object) DisconnectSignal(slot int) {
	if o.destroyed {
		return
	}
	for index, conns := range o.conns {
		for i, c := range conns {
			if c.slot == slot && !c.removed {
				c.removed = true
				o.conns[index] = append(conns[:i:i], conns[i+1:]...)
				return
			}
		}
	}
}

// Emit raises a declared signal with the given arguments. The argument
// count must match the declaration; argument runtime types travel to
// listeners as-is.
func (o *Object) Emit(signature string, args ...any) error {
	if o.destroyed {
		return fmt.Errorf("object: emit on destroyed object %q", o.name)
	}
	idx, params, ok := o.ResolveSignal(signature)
	if !ok {
		return fmt.Errorf("object: emit unknown signal %q on %q", signature, o.name)
	}
	if len(args) != len(params) {
		return fmt.Errorf("object: emit %q on %q with %d args, declared %d",
			signature, o.name, len(args), len(params))
	}
	o.emitIndex(idx, args)
	return nil
}

// emitIndex delivers a signal to all live registrations. A registration
// removed while the emission is in flight is skipped, which is what lets
// a destruction handler cut off later deliveries of the same notification.
func (o *Object) emitIndex(index int, args []any) {
	conns := o.conns[index]
	snapshot := make([]*conn, len(conns))
	copy(snapshot, conns)
	for _, c := range snapshot {
		if c.removed {
			continue
		}
		c.listener.DeliverSignal(o, index, c.slot, args)
	}
}

// OnDestroy attaches a destruction watch and returns its handle.
func (o *Object) OnDestroy(fn DestroyFunc) int {
	if o.destroyed || fn == nil {
		return -1
	}
	id := o.nextWatch
	o.nextWatch++
	o.watches[id] = fn
	return id
}

// RemoveDestroyWatch detaches a watch by handle. No-op after Destroy.
func (o *Object) RemoveDestroyWatch(id int) {
	if o.destroyed {
		return
	}
	delete(o.watches, id)
}

// DestroyWatchCount returns the number of attached destruction watches,
// for diagnostics and testing.
func (o *Object) DestroyWatchCount() int {
	return len(o.watches)
}

// Destroy marks the object dead and notifies watchers. The destruction
// signal is emitted and watches run before registrations are dropped, so
// any binding keyed by this object is removed before a later notification
// could be dispatched through it. Destroy is idempotent.
func (o *Object) Destroy() {
	if o.destroyed {
		return
	}
	// The destroyed signal goes out while registrations are still live.
	if idx, _, ok := o.ResolveSignal(SignalDestroyed); ok {
		o.emitIndex(idx, []any{o})
	}
	watches := make([]DestroyFunc, 0, len(o.watches))
	for _, fn := range o.watches {
		watches = append(watches, fn)
	}
	o.destroyed = true
	for _, fn := range watches {
		fn(o)
	}
	// A registration may still be pending in an emission snapshot when
	// a listener destroys the object mid-dispatch; mark them all removed
	// so the resumed emission delivers nothing further.
	for _, conns := range o.conns {
		for _, c := range conns {
			c.removed = true
		}
	}
	o.conns = nil
	o.filters = nil
	o.watches = nil
	o.handler = nil
}
