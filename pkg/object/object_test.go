package object

import (
	"testing"
)

// recordingListener records every delivery it receives.
type recordingListener struct {
	deliveries []delivery
}

type delivery struct {
	sender *Object
	index  int
	slot   int
	args   []any
}

func (r *recordingListener) DeliverSignal(sender *Object, signalIndex int, slot int, args []any) {
	r.deliveries = append(r.deliveries, delivery{sender, signalIndex, slot, args})
}

func TestNew(t *testing.T) {
	o := New("button")
	if o.Name() != "button" {
		t.Errorf("expected name 'button', got %q", o.Name())
	}
	if o.ID() == "" {
		t.Error("expected non-empty id")
	}
	if o.Destroyed() {
		t.Error("new object must not be destroyed")
	}
	// Every object carries the destruction signal.
	if _, _, ok := o.ResolveSignal(SignalDestroyed); !ok {
		t.Errorf("expected %s to be declared", SignalDestroyed)
	}
}

func TestDeclareSignal(t *testing.T) {
	o := New("emitter")

	idx, err := o.DeclareSignal("valueChanged(int)")
	if err != nil {
		t.Fatalf("DeclareSignal failed: %v", err)
	}

	t.Run("redeclare returns same index", func(t *testing.T) {
		again, err := o.DeclareSignal("valueChanged( int )")
		if err != nil {
			t.Fatalf("redeclare failed: %v", err)
		}
		if again != idx {
			t.Errorf("expected index %d, got %d", idx, again)
		}
	})

	t.Run("malformed signature", func(t *testing.T) {
		if _, err := o.DeclareSignal("broken(int"); err == nil {
			t.Error("expected error for unterminated signature")
		}
	})

	t.Run("after destroy", func(t *testing.T) {
		dead := New("dead")
		dead.Destroy()
		if _, err := dead.DeclareSignal("late()"); err == nil {
			t.Error("expected error declaring on destroyed object")
		}
	})
}

func TestResolveSignal(t *testing.T) {
	o := New("emitter")
	idx, _ := o.DeclareSignal("moved(int,int)")

	got, params, ok := o.ResolveSignal("moved(int, int)")
	if !ok {
		t.Fatal("expected signal to resolve")
	}
	if got != idx {
		t.Errorf("expected index %d, got %d", idx, got)
	}
	if len(params) != 2 || params[0] != "int" || params[1] != "int" {
		t.Errorf("unexpected params %v", params)
	}

	if _, _, ok := o.ResolveSignal("missing()"); ok {
		t.Error("expected undeclared signal not to resolve")
	}
}

func TestEmit(t *testing.T) {
	o := New("emitter")
	idx, _ := o.DeclareSignal("clicked(bool)")

	l := &recordingListener{}
	if err := o.ConnectSignal(idx, 7, l); err != nil {
		t.Fatalf("ConnectSignal failed: %v", err)
	}

	if err := o.Emit("clicked(bool)", true); err != nil {
		t.Fatalf("Emit failed: %v", err)
	}
	if len(l.deliveries) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(l.deliveries))
	}
	d := l.deliveries[0]
	if d.sender != o || d.index != idx || d.slot != 7 {
		t.Errorf("unexpected delivery %+v", d)
	}
	if len(d.args) != 1 || d.args[0] != true {
		t.Errorf("unexpected args %v", d.args)
	}

	t.Run("argument count mismatch", func(t *testing.T) {
		if err := o.Emit("clicked(bool)"); err == nil {
			t.Error("expected error for missing argument")
		}
	})

	t.Run("unknown signal", func(t *testing.T) {
		if err := o.Emit("never()"); err == nil {
			t.Error("expected error for undeclared signal")
		}
	})
}

func TestDisconnectSignal(t *testing.T) {
	o := New("emitter")
	idx, _ := o.DeclareSignal("clicked(bool)")

	l := &recordingListener{}
	_ = o.ConnectSignal(idx, 1, l)
	_ = o.ConnectSignal(idx, 2, l)

	o.DisconnectSignal(1)
	_ = o.Emit("clicked(bool)", false)

	if len(l.deliveries) != 1 {
		t.Fatalf("expected 1 delivery after disconnect, got %d", len(l.deliveries))
	}
	if l.deliveries[0].slot != 2 {
		t.Errorf("expected delivery on slot 2, got %d", l.deliveries[0].slot)
	}
}

// removalDuringEmit disconnects a sibling slot when its own delivery
// arrives, which must suppress the sibling's in-flight delivery.
type removalDuringEmit struct {
	obj        *Object
	removeSlot int
	delivered  []int
}

func (r *removalDuringEmit) DeliverSignal(sender *Object, signalIndex int, slot int, args []any) {
	r.delivered = append(r.delivered, slot)
	if slot != r.removeSlot {
		r.obj.DisconnectSignal(r.removeSlot)
	}
}

func TestEmit_RemovalDuringEmission(t *testing.T) {
	o := New("emitter")
	idx, _ := o.DeclareSignal("changed()")

	l := &removalDuringEmit{obj: o, removeSlot: 2}
	_ = o.ConnectSignal(idx, 1, l)
	_ = o.ConnectSignal(idx, 2, l)

	_ = o.Emit("changed()")

	if len(l.delivered) != 1 || l.delivered[0] != 1 {
		t.Errorf("expected only slot 1 delivered, got %v", l.delivered)
	}
}

// destroyOnDeliver destroys the emitting object from inside a delivery.
type destroyOnDeliver struct {
	obj       *Object
	delivered []int
}

func (l *destroyOnDeliver) DeliverSignal(sender *Object, signalIndex int, slot int, args []any) {
	l.delivered = append(l.delivered, slot)
	l.obj.Destroy()
}

func TestEmit_DestroyDuringEmission(t *testing.T) {
	o := New("emitter")
	idx, _ := o.DeclareSignal("changed()")

	l := &destroyOnDeliver{obj: o}
	_ = o.ConnectSignal(idx, 1, l)
	_ = o.ConnectSignal(idx, 2, l)

	_ = o.Emit("changed()")

	if len(l.delivered) != 1 || l.delivered[0] != 1 {
		t.Errorf("expected the emission to stop at slot 1, got %v", l.delivered)
	}
	if !o.Destroyed() {
		t.Error("expected object to be destroyed")
	}
}

func TestDestroy(t *testing.T) {
	t.Run("emits destruction signal first", func(t *testing.T) {
		o := New("victim")
		idx, _, _ := o.ResolveSignal(SignalDestroyed)

		l := &recordingListener{}
		_ = o.ConnectSignal(idx, 3, l)

		var order []string
		o.OnDestroy(func(*Object) { order = append(order, "watch") })
		o.Destroy()

		if len(l.deliveries) != 1 {
			t.Fatalf("expected destruction signal delivery, got %d", len(l.deliveries))
		}
		if l.deliveries[0].args[0] != o {
			t.Error("expected the object itself as the signal argument")
		}
		if len(order) != 1 || order[0] != "watch" {
			t.Errorf("expected watch to run, got %v", order)
		}
		if !o.Destroyed() {
			t.Error("expected object to be marked destroyed")
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		o := New("victim")
		calls := 0
		o.OnDestroy(func(*Object) { calls++ })
		o.Destroy()
		o.Destroy()
		if calls != 1 {
			t.Errorf("expected 1 watch call, got %d", calls)
		}
	})

	t.Run("emit after destroy fails", func(t *testing.T) {
		o := New("victim")
		_, _ = o.DeclareSignal("clicked(bool)")
		o.Destroy()
		if err := o.Emit("clicked(bool)", true); err == nil {
			t.Error("expected error emitting on destroyed object")
		}
	})
}

func TestDestroyWatches(t *testing.T) {
	o := New("watched")

	id1 := o.OnDestroy(func(*Object) {})
	id2 := o.OnDestroy(func(*Object) {})
	if id1 == id2 {
		t.Error("expected distinct watch handles")
	}
	if o.DestroyWatchCount() != 2 {
		t.Errorf("expected 2 watches, got %d", o.DestroyWatchCount())
	}

	o.RemoveDestroyWatch(id1)
	if o.DestroyWatchCount() != 1 {
		t.Errorf("expected 1 watch after removal, got %d", o.DestroyWatchCount())
	}

	if id := o.OnDestroy(nil); id != -1 {
		t.Errorf("expected -1 for nil watch, got %d", id)
	}
}
