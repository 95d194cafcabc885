package forwarder

import "github.com/bindkit/bindkit/pkg/object"

// destroyWatch tracks one destruction watch on a unique object. Bindings
// referencing the object as sender or context each hold one reference;
// the watch itself is attached once per object and detached when the last
// reference goes away, so N bindings never install N watches.
type destroyWatch struct {
	obj     *object.Object
	watchID int
	refs    int
}

// refWatch adds a binding reference to obj's destruction watch, attaching
// the watch on first reference.
func (f *Forwarder) refWatch(obj *object.Object) {
	if w, ok := f.watches[obj.ID()]; ok {
		w.refs++
		return
	}
	w := &destroyWatch{obj: obj, refs: 1}
	w.watchID = obj.OnDestroy(f.objectDestroyed)
	f.watches[obj.ID()] = w
}

// unrefWatch drops a binding reference, detaching the watch when no
// binding references the object anymore.
func (f *Forwarder) unrefWatch(obj *object.Object) {
	w, ok := f.watches[obj.ID()]
	if !ok {
		return
	}
	w.refs--
	if w.refs > 0 {
		return
	}
	delete(f.watches, obj.ID())
	obj.RemoveDestroyWatch(w.watchID)
}

// objectDestroyed runs inside Object.Destroy, before any further
// notification can be dispatched. It removes every binding keyed by the
// dead object as sender, every binding keyed by it as context even when
// the sender differs, and its event binding.
func (f *Forwarder) objectDestroyed(obj *object.Object) {
	id := obj.ID()

	slots := append([]int(nil), f.senderSlots[id]...)
	for _, slot := range slots {
		if b := f.bindings[slot]; b != nil {
			f.removeBinding(b, "sender_destroyed")
		}
	}

	slots = append([]int(nil), f.contextSlots[id]...)
	for _, slot := range slots {
		if b := f.bindings[slot]; b != nil {
			f.removeBinding(b, "context_destroyed")
		}
	}

	f.removeEventBinding(id, "sender_destroyed")

	// The object tears down its own watch list; drop any leftover
	// bookkeeping so the entry cannot leak.
	delete(f.watches, id)
}
