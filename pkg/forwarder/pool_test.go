package forwarder

import "testing"

func TestSlotPool_Acquire(t *testing.T) {
	p := newSlotPool(3)

	for want := 0; want < 3; want++ {
		id, ok := p.acquire()
		if !ok {
			t.Fatalf("acquire %d failed", want)
		}
		if id != want {
			t.Errorf("expected id %d, got %d", want, id)
		}
	}

	if p.available() {
		t.Error("expected pool to be exhausted")
	}
	if _, ok := p.acquire(); ok {
		t.Error("expected acquire past the limit to fail")
	}
}

func TestSlotPool_ReleaseReuse(t *testing.T) {
	p := newSlotPool(4)
	for i := 0; i < 4; i++ {
		p.acquire()
	}

	p.release(2)
	p.release(0)

	id, ok := p.acquire()
	if !ok || id != 0 {
		t.Errorf("expected lowest released id 0, got %d (ok=%v)", id, ok)
	}
	id, ok = p.acquire()
	if !ok || id != 2 {
		t.Errorf("expected id 2, got %d (ok=%v)", id, ok)
	}
	if p.available() {
		t.Error("expected pool to be exhausted again")
	}
}

func TestSlotPool_ReleaseBounds(t *testing.T) {
	p := newSlotPool(4)
	p.acquire()

	p.release(-1)
	p.release(5)
	p.release(3) // never handed out
	if got := p.inUse(); got != 1 {
		t.Errorf("expected 1 in use, got %d", got)
	}

	p.release(0)
	p.release(0) // double release is ignored
	if got := p.inUse(); got != 0 {
		t.Errorf("expected 0 in use, got %d", got)
	}
	if id, _ := p.acquire(); id != 0 {
		t.Errorf("expected 0, got %d", id)
	}
	if id, _ := p.acquire(); id != 1 {
		t.Errorf("expected 1, got %d", id)
	}
}
